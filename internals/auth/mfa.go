package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/models"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/store"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/utils"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpPeriod = 30

var totpOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// MFASetup is returned once, when an authenticator app is being linked
type MFASetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauthUrl"`
	// QRCode is a data: URL of a PNG that authenticator apps can scan
	QRCode string `json:"qrCode"`
}

// SetupMFA creates a TOTP key for the user and stores its sealed secret.
// The second factor stays disabled until ActivateMFA sees a valid code. An
// account that already has one enabled must keep it.
func (f *FlowManager) SetupMFA(ctx context.Context, userID string) (*MFASetup, error) {
	if f.encryptionKey == "" {
		return nil, ErrMFAUnavailable
	}
	user, err := f.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFAEnabled {
		return nil, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      f.appName,
		AccountName: user.Email,
		Period:      totpPeriod,
	})
	if err != nil {
		return nil, f.internal(ctx, "generate totp key", err)
	}

	sealed, err := utils.Seal(key.Secret(), f.encryptionKey)
	if err != nil {
		return nil, f.internal(ctx, "seal totp secret", err)
	}
	disabled := false
	var step int64
	if err := f.users.Save(ctx, user.ID, store.UserUpdate{TwoFASecret: &sealed, TwoFAEnabled: &disabled, TwoFALastStep: &step}); err != nil {
		return nil, f.internal(ctx, "save totp secret", err)
	}

	img, err := key.Image(200, 200)
	if err != nil {
		return nil, f.internal(ctx, "render totp qr code", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, f.internal(ctx, "encode totp qr code", err)
	}

	return &MFASetup{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// ActivateMFA enables the second factor after the user proves the app works
func (f *FlowManager) ActivateMFA(ctx context.Context, userID, code string) error {
	if err := check(MFACodeInput{Code: code}); err != nil {
		return err
	}
	user, err := f.userByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFAEnabled {
		return ErrMFAAlreadyEnabled
	}
	if user.TwoFASecret == "" {
		return ErrMFANotSetUp
	}
	step, err := f.matchTOTP(user.TwoFASecret, user.TwoFALastStep, code)
	if err != nil {
		return err
	}

	enabled := true
	if err := f.users.Save(ctx, user.ID, store.UserUpdate{TwoFAEnabled: &enabled, TwoFALastStep: &step}); err != nil {
		return f.internal(ctx, "enable totp", err)
	}
	f.enqueue(f.templates.MFAEnabled(user.Email))
	return nil
}

// secondFactor checks the authenticator code of accounts that have one enabled
// and burns the time step it was accepted for
func (f *FlowManager) secondFactor(ctx context.Context, user *models.User, code string) error {
	if !user.TwoFAEnabled {
		return nil
	}
	if code == "" {
		return ErrMFARequired
	}
	step, err := f.matchTOTP(user.TwoFASecret, user.TwoFALastStep, code)
	if err != nil {
		return err
	}
	if err := f.users.Save(ctx, user.ID, store.UserUpdate{TwoFALastStep: &step}); err != nil {
		return f.internal(ctx, "save totp step", err)
	}
	user.TwoFALastStep = step
	return nil
}

// matchTOTP accepts code for the current time step or one step either side,
// as long as that step is later than lastStep. It returns the matched step.
func (f *FlowManager) matchTOTP(sealed string, lastStep int64, code string) (int64, error) {
	if f.encryptionKey == "" {
		return 0, ErrMFAUnavailable
	}
	secret, err := utils.Unseal(sealed, f.encryptionKey)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	current := f.now().Unix() / totpPeriod
	for step := current - 1; step <= current+1; step++ {
		ok, err := totp.ValidateCustom(code, secret, time.Unix(step*totpPeriod, 0).UTC(), totpOpts)
		if err != nil || !ok {
			continue
		}
		if step <= lastStep {
			return 0, ErrInvalidMFACode
		}
		return step, nil
	}
	return 0, ErrInvalidMFACode
}
