package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Cookie names and lifetime of the cross-request login state. Both values
// are single-use: the callback clears them whether it succeeds or not.
const (
	StateCookieName    = "oidc_state"
	VerifierCookieName = "oidc_code_verifier"

	// LoginAttemptMaxAge bounds how long a started login stays completable.
	LoginAttemptMaxAge = 600 // seconds
)

// OIDCConfig is the provider configuration. All three provider fields must
// be set for the flow to be available.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// LoginAttempt is the transient state of one authorization initiation. The
// verifier and state travel back to the client in short-lived cookies; the
// server keeps nothing.
type LoginAttempt struct {
	AuthURL  string
	State    string
	Verifier string
}

// OIDC drives the authorization-code-with-PKCE flow against a discovered
// provider. Discovery runs once and is cached only on success, so a
// temporarily unreachable provider is retried on the next login.
type OIDC struct {
	cfg    OIDCConfig
	logger *zap.Logger

	mu       sync.Mutex
	provider *oidc.Provider
	oauth    *oauth2.Config
}

func NewOIDC(cfg OIDCConfig, logger *zap.Logger) *OIDC {
	return &OIDC{
		cfg:    cfg,
		logger: logger,
	}
}

// Configured reports whether the deployment has an identity provider. When
// false all auth-gated behavior degrades to anonymous-allowed.
func (o *OIDC) Configured() bool {
	return o.cfg.Issuer != "" && o.cfg.ClientID != "" && o.cfg.ClientSecret != ""
}

func (o *OIDC) discover(ctx context.Context) (*oauth2.Config, *oidc.Provider, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.provider != nil {
		return o.oauth, o.provider, nil
	}

	if !o.Configured() {
		return nil, nil, ErrOIDCNotConfigured
	}

	provider, err := oidc.NewProvider(ctx, o.cfg.Issuer)
	if err != nil {
		return nil, nil, fmt.Errorf("provider discovery: %w", err)
	}

	o.provider = provider
	o.oauth = &oauth2.Config{
		ClientID:     o.cfg.ClientID,
		ClientSecret: o.cfg.ClientSecret,
		RedirectURL:  o.cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return o.oauth, o.provider, nil
}

// BeginLogin generates fresh PKCE and anti-CSRF material and builds the
// authorization URL.
func (o *OIDC) BeginLogin(ctx context.Context) (*LoginAttempt, error) {
	conf, _, err := o.discover(ctx)
	if err != nil {
		return nil, err
	}

	verifier := oauth2.GenerateVerifier()
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	return &LoginAttempt{
		AuthURL:  conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)),
		State:    state,
		Verifier: verifier,
	}, nil
}

// CompleteLogin exchanges the callback code (with the saved verifier) for an
// ID token and maps its claims to an Identity. The caller has already
// checked the state parameter against the state cookie.
func (o *OIDC) CompleteLogin(ctx context.Context, code string, verifier string) (*Identity, error) {
	conf, provider, err := o.discover(ctx)
	if err != nil {
		return nil, err
	}

	token, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("no id_token in token response")
	}

	idToken, err := provider.Verifier(&oidc.Config{ClientID: o.cfg.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id token verification: %w", err)
	}

	if idToken.Subject == "" {
		return nil, fmt.Errorf("id token has no subject")
	}

	var claims struct {
		DisplayName       string `json:"display_name"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decoding claims: %w", err)
	}

	return &Identity{
		UserID:      idToken.Subject,
		DisplayName: displayNameFrom(claims.DisplayName, claims.Name, claims.PreferredUsername, claims.Email, idToken.Subject),
	}, nil
}

// displayNameFrom picks the first non-empty candidate.
func displayNameFrom(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
