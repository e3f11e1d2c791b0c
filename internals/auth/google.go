package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// Identity is what a verified federated assertion tells us about the user
type Identity struct {
	Subject    string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
}

// IdentityVerifier checks a signed assertion from an external identity provider
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens for our OAuth client id. Signature,
// expiry and audience are checked by idtoken, which caches Google's signing
// keys for as long as Google allows.
type GoogleVerifier struct {
	ClientID  string
	validator *idtoken.Validator
}

// NewGoogleVerifier builds the verifier. opts are handed to idtoken, e.g.
// option.WithHTTPClient to route certificate fetches.
func NewGoogleVerifier(ctx context.Context, clientID string, opts ...option.ClientOption) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google id token validator: %w", err)
	}
	return &GoogleVerifier{ClientID: clientID, validator: v}, nil
}

func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*Identity, error) {
	if v.ClientID == "" {
		return nil, fmt.Errorf("%w: google client id not configured", ErrUpstream)
	}

	payload, err := v.validator.Validate(ctx, assertion, v.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !googleIssuers[payload.Issuer] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrUpstream, payload.Issuer)
	}

	email := claim(payload, "email")
	if verified, _ := payload.Claims["email_verified"].(bool); email == "" || !verified {
		return nil, fmt.Errorf("%w: email not verified by google", ErrUpstream)
	}

	return &Identity{
		Subject:    payload.Subject,
		Email:      email,
		Name:       claim(payload, "name"),
		GivenName:  claim(payload, "given_name"),
		FamilyName: claim(payload, "family_name"),
	}, nil
}

func claim(p *idtoken.Payload, name string) string {
	s, _ := p.Claims[name].(string)
	return s
}
