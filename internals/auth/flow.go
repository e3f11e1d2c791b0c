// Package auth implements the OTP-gated account flows: signup verification,
// two-step login, password reset and Google sign-in, plus the session tokens
// issued once a flow is complete.
//
// Every pending proof (login/signup code or reset token) is a single challenge
// record per user; issuing a new one replaces the old one, and consuming it
// deletes the record. Expiry is checked lazily when a code is presented.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/mailer"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/models"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// MailQueue accepts outbound mail without waiting for delivery
type MailQueue interface {
	Enqueue(msg mailer.Message) bool
}

// Options wires a FlowManager
type Options struct {
	Users      store.Users
	Challenges store.Challenges
	Mail       MailQueue
	Templates  mailer.Templates
	Tokens     *TokenManager
	Identity   IdentityVerifier
	Logger     *slog.Logger

	AppName       string
	EncryptionKey string
	OTPTTL        time.Duration
	ResetTTL      time.Duration
}

// FlowManager owns the signup, login, reset and federated login state machine
type FlowManager struct {
	users      store.Users
	challenges store.Challenges
	mail       MailQueue
	templates  mailer.Templates
	tokens     *TokenManager
	identity   IdentityVerifier
	logger     *slog.Logger

	appName       string
	encryptionKey string
	otpTTL        time.Duration
	resetTTL      time.Duration

	now func() time.Time
}

func NewFlowManager(opts Options) *FlowManager {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 5 * time.Minute
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = 30 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &FlowManager{
		users:         opts.Users,
		challenges:    opts.Challenges,
		mail:          opts.Mail,
		templates:     opts.Templates,
		tokens:        opts.Tokens,
		identity:      opts.Identity,
		logger:        opts.Logger,
		appName:       opts.AppName,
		encryptionKey: opts.EncryptionKey,
		otpTTL:        opts.OTPTTL,
		resetTTL:      opts.ResetTTL,
		now:           time.Now,
	}
}

// SignupInput is the registration form
type SignupInput struct {
	FirstName string      `json:"firstName" validate:"required"`
	LastName  string      `json:"lastName" validate:"required"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required"`
	Gender    string      `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Phone     string      `json:"phone"`
	Role      models.Role `json:"role" validate:"omitempty,oneof=user admin"`
}

type EmailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OTPInput confirms a pending code. MFACode is only read by the login step.
type OTPInput struct {
	Email   string `json:"email" validate:"required,email"`
	OTP     string `json:"otp" validate:"required"`
	MFACode string `json:"mfaCode,omitempty"`
}

// ResetInput carries the token from the reset link as OTP
type ResetInput struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// FederatedInput is a Google ID token plus the authenticator code for
// accounts that have one
type FederatedInput struct {
	Credential string `json:"credential" validate:"required"`
	MFACode    string `json:"mfaCode,omitempty"`
}

// MFACodeInput activates an authenticator app
type MFACodeInput struct {
	Code string `json:"code" validate:"required"`
}

// LoginResult is returned once a flow ends with a session
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.PublicUser
}

// RequestSignup stores a new unverified user and mails it a verification code
func (f *FlowManager) RequestSignup(ctx context.Context, in SignupInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := check(in); err != nil {
		return err
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}

	_, err := f.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return ErrConflict
	case !errors.Is(err, store.ErrNotFound):
		return f.internal(ctx, "find user by email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return f.internal(ctx, "hash password", err)
	}

	user := &models.User{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  string(hash),
		Gender:    in.Gender,
		Phone:     in.Phone,
		Role:      in.Role,
	}
	if err := f.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrConflict
		}
		return f.internal(ctx, "insert user", err)
	}

	code, err := f.issueOTP(ctx, user.ID)
	if err != nil {
		// a user without a code could never verify and would block the email
		if delErr := f.users.Delete(ctx, user.ID); delErr != nil {
			f.logger.ErrorContext(ctx, "rolling back signup", "user_id", user.ID, "error", delErr)
		}
		return err
	}
	f.enqueue(f.templates.SignupOTP(user.Email, code, f.otpTTL))

	f.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return nil
}

// ResendSignupOTP replaces the pending code of an unverified user
func (f *FlowManager) ResendSignupOTP(ctx context.Context, email string) error {
	if err := check(EmailInput{Email: email}); err != nil {
		return err
	}
	user, err := f.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := f.issueOTP(ctx, user.ID)
	if err != nil {
		return err
	}
	f.enqueue(f.templates.SignupOTP(user.Email, code, f.otpTTL))
	return nil
}

// ConfirmSignupOTP marks the account verified when code matches the pending OTP
func (f *FlowManager) ConfirmSignupOTP(ctx context.Context, email, code string) error {
	if err := check(OTPInput{Email: email, OTP: code}); err != nil {
		return err
	}
	user, err := f.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := f.consumeOTP(ctx, user.ID, code); err != nil {
		return err
	}

	verified := true
	if err := f.users.Save(ctx, user.ID, store.UserUpdate{IsVerified: &verified}); err != nil {
		return f.internal(ctx, "mark user verified", err)
	}

	f.logger.InfoContext(ctx, "email verified", "user_id", user.ID)
	return nil
}

// RequestLogin checks the password and mails a login code; no token is issued yet
func (f *FlowManager) RequestLogin(ctx context.Context, email, password string) error {
	if err := check(LoginInput{Email: email, Password: password}); err != nil {
		return err
	}

	user, err := f.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	// Google-only accounts have no password to compare against
	if user.Password == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	if !user.IsVerified {
		return ErrNotVerified
	}

	code, err := f.issueOTP(ctx, user.ID)
	if err != nil {
		return err
	}
	f.enqueue(f.templates.LoginOTP(user.Email, code, f.otpTTL))
	return nil
}

// ConfirmLoginOTP completes a login. Accounts with an authenticator app also
// need mfaCode; a missing or wrong one leaves the email code pending.
func (f *FlowManager) ConfirmLoginOTP(ctx context.Context, email, code, mfaCode string) (*LoginResult, error) {
	if err := check(OTPInput{Email: email, OTP: code, MFACode: mfaCode}); err != nil {
		return nil, err
	}
	user, err := f.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	challenge, err := f.pendingOTP(ctx, user.ID, code)
	if err != nil {
		return nil, err
	}
	if err := f.secondFactor(ctx, user, mfaCode); err != nil {
		return nil, err
	}
	if err := f.challenges.Delete(ctx, challenge.UserID); err != nil {
		return nil, f.internal(ctx, "clear otp", err)
	}

	return f.session(ctx, user)
}

// RequestPasswordReset mails a reset link carrying a random token
func (f *FlowManager) RequestPasswordReset(ctx context.Context, email string) error {
	if err := check(EmailInput{Email: email}); err != nil {
		return err
	}
	user, err := f.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := GenerateResetToken()
	if err != nil {
		return f.internal(ctx, "generate reset token", err)
	}
	if err := f.challenges.Put(ctx, &models.Challenge{
		UserID:    user.ID,
		Kind:      models.ChallengeReset,
		Secret:    token,
		ExpiresAt: f.now().Add(f.resetTTL),
		CreatedAt: f.now(),
	}); err != nil {
		return f.internal(ctx, "store reset token", err)
	}

	f.enqueue(f.templates.PasswordReset(user.Email, token, f.resetTTL))
	return nil
}

// ConfirmPasswordReset sets a new password when token matches the pending reset
// challenge. A failed attempt leaves the challenge untouched.
func (f *FlowManager) ConfirmPasswordReset(ctx context.Context, email, token, newPassword string) error {
	if err := check(ResetInput{Email: email, OTP: token, NewPassword: newPassword}); err != nil {
		return err
	}
	user, err := f.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	challenge, err := f.challenge(ctx, user.ID)
	if err != nil {
		return err
	}
	if !challenge.SecretMatches(models.ChallengeReset, token) {
		return ErrInvalidOTP
	}
	if challenge.Expired(f.now()) {
		return ErrExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return f.internal(ctx, "hash password", err)
	}

	// the reset link proves ownership of the mailbox
	password := string(hash)
	verified := true
	if err := f.users.Save(ctx, user.ID, store.UserUpdate{Password: &password, IsVerified: &verified}); err != nil {
		return f.internal(ctx, "save password", err)
	}
	if err := f.challenges.Delete(ctx, user.ID); err != nil {
		return f.internal(ctx, "clear reset token", err)
	}

	f.logger.InfoContext(ctx, "password reset", "user_id", user.ID)
	return nil
}

// FederatedLogin signs in with a Google ID token, creating the account on first
// use, and issues a session immediately. Existing accounts with an
// authenticator app must also pass mfaCode.
func (f *FlowManager) FederatedLogin(ctx context.Context, assertion, mfaCode string) (*LoginResult, error) {
	if err := check(FederatedInput{Credential: assertion, MFACode: mfaCode}); err != nil {
		return nil, err
	}
	if f.identity == nil {
		return nil, fmt.Errorf("%w: no identity provider configured", ErrUpstream)
	}

	identity, err := f.identity.Verify(ctx, assertion)
	if err != nil {
		f.logger.WarnContext(ctx, "federated assertion rejected", "error", err)
		if errors.Is(err, ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	user, err := f.users.FindByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		user, err = f.createFederatedUser(ctx, identity)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, f.internal(ctx, "find user by email", err)
	default:
		if err := f.secondFactor(ctx, user, mfaCode); err != nil {
			return nil, err
		}
		if user.GoogleID == "" {
			if err := f.users.Save(ctx, user.ID, store.UserUpdate{GoogleID: &identity.Subject}); err != nil {
				return nil, f.internal(ctx, "attach google id", err)
			}
			user.GoogleID = identity.Subject
		} else if user.GoogleID != identity.Subject {
			f.logger.WarnContext(ctx, "google subject differs from the one on record", "user_id", user.ID)
		}
	}

	return f.session(ctx, user)
}

// UserByID returns the public projection of a user, for /me and admin lookups
func (f *FlowManager) UserByID(ctx context.Context, userID string) (models.PublicUser, error) {
	user, err := f.userByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, err
	}
	return user.Public(), nil
}

func (f *FlowManager) createFederatedUser(ctx context.Context, identity *Identity) (*models.User, error) {
	firstName, lastName := identity.GivenName, identity.FamilyName
	if firstName == "" && lastName == "" {
		firstName, lastName, _ = strings.Cut(strings.TrimSpace(identity.Name), " ")
	}

	user := &models.User{
		ID:         uuid.NewString(),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      identity.Email,
		IsVerified: true,
		GoogleID:   identity.Subject,
		Role:       models.RoleUser,
	}
	if err := f.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// lost a race with a concurrent first login for the same email
			return f.userByEmail(ctx, identity.Email)
		}
		return nil, f.internal(ctx, "insert federated user", err)
	}

	f.logger.InfoContext(ctx, "user created via google", "user_id", user.ID)
	return user, nil
}

func (f *FlowManager) session(ctx context.Context, user *models.User) (*LoginResult, error) {
	token, expiresAt, err := f.tokens.Issue(user)
	if err != nil {
		return nil, f.internal(ctx, "issue token", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

// issueOTP stores a fresh code for the user, replacing any pending challenge
func (f *FlowManager) issueOTP(ctx context.Context, userID string) (string, error) {
	code, err := GenerateOTP()
	if err != nil {
		return "", f.internal(ctx, "generate otp", err)
	}
	now := f.now()
	if err := f.challenges.Put(ctx, &models.Challenge{
		UserID:    userID,
		Kind:      models.ChallengeOTP,
		Secret:    code,
		ExpiresAt: now.Add(f.otpTTL),
		CreatedAt: now,
	}); err != nil {
		return "", f.internal(ctx, "store otp", err)
	}
	return code, nil
}

// pendingOTP returns the user's OTP challenge if code matches and is still valid
func (f *FlowManager) pendingOTP(ctx context.Context, userID, code string) (*models.Challenge, error) {
	challenge, err := f.challenge(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrInvalidOTP) {
			return nil, ErrInvalidOrExpiredOTP
		}
		return nil, err
	}
	if !challenge.SecretMatches(models.ChallengeOTP, code) || challenge.Expired(f.now()) {
		return nil, ErrInvalidOrExpiredOTP
	}
	return challenge, nil
}

func (f *FlowManager) consumeOTP(ctx context.Context, userID, code string) error {
	challenge, err := f.pendingOTP(ctx, userID, code)
	if err != nil {
		return err
	}
	if err := f.challenges.Delete(ctx, challenge.UserID); err != nil {
		return f.internal(ctx, "clear otp", err)
	}
	return nil
}

// challenge loads the pending challenge; none at all counts as a wrong code
func (f *FlowManager) challenge(ctx context.Context, userID string) (*models.Challenge, error) {
	c, err := f.challenges.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, f.internal(ctx, "load challenge", err)
	}
	return c, nil
}

func (f *FlowManager) userByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := f.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, f.internal(ctx, "find user by email", err)
	}
	return user, nil
}

func (f *FlowManager) userByID(ctx context.Context, id string) (*models.User, error) {
	user, err := f.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, f.internal(ctx, "find user by id", err)
	}
	return user, nil
}

// enqueue hands mail to the dispatcher; delivery problems never fail the flow
func (f *FlowManager) enqueue(msg mailer.Message) {
	if f.mail == nil {
		return
	}
	f.mail.Enqueue(msg)
}

func (f *FlowManager) internal(ctx context.Context, op string, err error) error {
	f.logger.ErrorContext(ctx, "auth flow failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
