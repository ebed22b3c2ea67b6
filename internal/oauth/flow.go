// Copyright 2024 Designetica Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package oauth implements the Figma authorization code flow.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/designetica/designetica/internal/config"
)

// State of the flow as reported by Status.
type State string

const (
	StateNotConfigured State = "NOT_CONFIGURED"
	StateAuthRequired  State = "AUTH_REQUIRED"
	StateValid         State = "VALID"
	StateExpired       State = "EXPIRED"
)

const (
	// DefaultExchangeTimeout bounds the token exchange when none is configured
	DefaultExchangeTimeout = 15 * time.Second
	// StateTTL is how long an issued state value can be redeemed
	StateTTL = 10 * time.Minute
)

var (
	ErrNotConfigured = errors.New("figma OAuth is not configured")
	ErrInvalidState  = errors.New("unknown or expired OAuth state")
	ErrMissingCode   = errors.New("authorization code is missing")
	ErrExchange      = errors.New("token exchange failed")
)

// TokenSet is the result of a successful exchange.
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope,omitempty"`
}

// Expired reports whether now is past ExpiresAt. Tokens without an expiry
// never expire.
func (t TokenSet) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// Flow runs the authorization code exchange and keeps the latest token.
type Flow struct {
	cfg     config.FigmaConfig
	oauth   oauth2.Config
	timeout time.Duration
	client  *http.Client
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	states map[string]time.Time
	token  *TokenSet
}

// Option configures a Flow
type Option func(*Flow)

// WithHTTPClient sets the client used for the token exchange
func WithHTTPClient(c *http.Client) Option {
	return func(f *Flow) {
		f.client = c
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

// NewFlow creates a Flow from the Figma configuration. A token configured
// as figma.access_token is not adopted; the flow only tracks OAuth tokens.
func NewFlow(cfg config.FigmaConfig, logger *zap.Logger, opts ...Option) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.OAuthTimeout
	if timeout <= 0 {
		timeout = DefaultExchangeTimeout
	}

	f := &Flow{
		cfg: cfg,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
		states:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Configured reports whether client credentials are present and are not
// template placeholders.
func (f *Flow) Configured() bool {
	return usable(f.cfg.ClientID) && usable(f.cfg.ClientSecret) &&
		f.cfg.AuthURL != "" && f.cfg.TokenURL != ""
}

func usable(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return false
	}
	for _, prefix := range []string{"your-", "your_", "<", "changeme", "placeholder"} {
		if strings.HasPrefix(v, prefix) {
			return false
		}
	}
	return true
}

// AuthURL issues a new state value and returns the provider URL the user
// must visit.
func (f *Flow) AuthURL() (authURL, state string, err error) {
	if !f.Configured() {
		return "", "", ErrNotConfigured
	}

	state = uuid.NewString()
	now := f.now()

	f.mu.Lock()
	for s, issued := range f.states {
		if now.Sub(issued) > StateTTL {
			delete(f.states, s)
		}
	}
	f.states[state] = now
	f.mu.Unlock()

	return f.oauth.AuthCodeURL(state), state, nil
}

// Exchange redeems an authorization code. The state must have been issued by
// AuthURL and is consumed whether or not the exchange succeeds.
func (f *Flow) Exchange(ctx context.Context, code, state string) (*TokenSet, error) {
	if !f.Configured() {
		return nil, ErrNotConfigured
	}
	if code == "" {
		return nil, ErrMissingCode
	}
	if !f.consumeState(state) {
		return nil, ErrInvalidState
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	if f.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)
	}

	start := f.now()
	token, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		f.logger.Warn("Figma token exchange failed", zap.Error(err), zap.Duration("timeout", f.timeout))
		return nil, fmt.Errorf("%w: %w", ErrExchange, err)
	}

	set := f.tokenSet(token, start)
	f.mu.Lock()
	f.token = set
	f.mu.Unlock()

	f.logger.Info("Figma token exchanged",
		zap.Int64("expires_in", set.ExpiresIn),
		zap.String("scope", set.Scope))
	return set, nil
}

func (f *Flow) consumeState(state string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	issued, ok := f.states[state]
	if !ok {
		return false
	}
	delete(f.states, state)
	return f.now().Sub(issued) <= StateTTL
}

// tokenSet derives expires_at as now + expires_in.
func (f *Flow) tokenSet(token *oauth2.Token, now time.Time) *TokenSet {
	set := &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		set.Scope = scope
	}

	switch v := token.Extra("expires_in").(type) {
	case float64:
		set.ExpiresIn = int64(v)
	case int64:
		set.ExpiresIn = v
	case string:
		set.ExpiresIn, _ = strconv.ParseInt(v, 10, 64)
	}
	if set.ExpiresIn > 0 {
		set.ExpiresAt = now.Add(time.Duration(set.ExpiresIn) * time.Second)
	} else if !token.Expiry.IsZero() {
		set.ExpiresAt = token.Expiry
		set.ExpiresIn = int64(token.Expiry.Sub(now).Seconds())
	}
	return set
}

// Token returns the last exchanged token, if any.
func (f *Flow) Token() (TokenSet, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == nil {
		return TokenSet{}, false
	}
	return *f.token, true
}

// ValidToken returns the access token if one is held and unexpired.
func (f *Flow) ValidToken() (string, bool) {
	token, ok := f.Token()
	if !ok || token.Expired(f.now()) {
		return "", false
	}
	return token.AccessToken, true
}

// StatusReport is the body of the status endpoint.
type StatusReport struct {
	State      State      `json:"state"`
	Configured bool       `json:"configured"`
	HasToken   bool       `json:"hasToken"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Message    string     `json:"message"`
}

// Status reports where the flow is.
func (f *Flow) Status() StatusReport {
	report := StatusReport{Configured: f.Configured()}
	if !report.Configured {
		report.State = StateNotConfigured
		report.Message = "Figma OAuth credentials are not configured; use a personal access token instead"
		return report
	}

	token, ok := f.Token()
	if !ok {
		report.State = StateAuthRequired
		report.Message = "Authorization required; start the OAuth flow"
		return report
	}

	report.HasToken = true
	if !token.ExpiresAt.IsZero() {
		expiresAt := token.ExpiresAt
		report.ExpiresAt = &expiresAt
	}
	if token.Expired(f.now()) {
		report.State = StateExpired
		report.Message = "Token expired; start the OAuth flow again"
		return report
	}
	report.State = StateValid
	report.Message = "Token is valid"
	return report
}

// Diagnostics describes the OAuth configuration without revealing secrets.
type Diagnostics struct {
	Configured          bool     `json:"configured"`
	ClientIDPresent     bool     `json:"clientIdPresent"`
	ClientID            string   `json:"clientId,omitempty"`
	ClientSecretPresent bool     `json:"clientSecretPresent"`
	AccessTokenPresent  bool     `json:"accessTokenPresent"`
	RedirectURI         string   `json:"redirectUri"`
	AuthURL             string   `json:"authUrl"`
	TokenURL            string   `json:"tokenUrl"`
	Scopes              []string `json:"scopes"`
	ExchangeTimeout     string   `json:"exchangeTimeout"`
	State               State    `json:"state"`
}

// Diagnostics reports which settings are present.
func (f *Flow) Diagnostics() Diagnostics {
	return Diagnostics{
		Configured:          f.Configured(),
		ClientIDPresent:     f.cfg.ClientID != "",
		ClientID:            mask(f.cfg.ClientID),
		ClientSecretPresent: f.cfg.ClientSecret != "",
		AccessTokenPresent:  f.cfg.AccessToken != "",
		RedirectURI:         f.cfg.RedirectURI,
		AuthURL:             f.cfg.AuthURL,
		TokenURL:            f.cfg.TokenURL,
		Scopes:              f.cfg.Scopes,
		ExchangeTimeout:     f.timeout.String(),
		State:               f.Status().State,
	}
}

func mask(v string) string {
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return v[:4] + strings.Repeat("*", len(v)-4)
}
