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

package oauth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/designetica/designetica/internal/config"
)

type tokenServer struct {
	mu    sync.Mutex
	codes []string
	delay time.Duration
	fail  bool
}

func (s *tokenServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		s.mu.Lock()
		s.codes = append(s.codes, r.PostForm.Get("code"))
		delay, fail := s.delay, s.fail
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
		}
		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "figu_abc123", "refresh_token": "figr_xyz", "expires_in": 3600, "scope": "file_content:read", "token_type": "bearer"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (s *tokenServer) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.codes...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig(tokenURL string) config.FigmaConfig {
	return config.FigmaConfig{
		ClientID:     "client-123456",
		ClientSecret: "secret-abcdef",
		RedirectURI:  "http://localhost:7071/api/figmaOAuthCallback",
		AuthURL:      "https://www.figma.com/oauth",
		TokenURL:     tokenURL,
		Scopes:       []string{"file_content:read"},
		OAuthTimeout: 2 * time.Second,
	}
}

func newTestFlow(t *testing.T, cfg config.FigmaConfig) (*Flow, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewFlow(cfg, zaptest.NewLogger(t), WithClock(clk.Now)), clk
}

func TestTokenSetExpired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token := TokenSet{ExpiresAt: now}

	assert.False(t, token.Expired(now.Add(-time.Second)))
	assert.False(t, token.Expired(now), "expired only once now is past expires_at")
	assert.True(t, token.Expired(now.Add(time.Second)))
	assert.False(t, TokenSet{}.Expired(now), "no expiry never expires")
}

func TestConfigured(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
		want   bool
	}{
		{"configured", "client-1", "secret-1", true},
		{"missing id", "", "secret-1", false},
		{"missing secret", "client-1", "", false},
		{"placeholder id", "your-figma-client-id", "secret-1", false},
		{"placeholder secret", "client-1", "YOUR_CLIENT_SECRET", false},
		{"angle placeholder", "<client id>", "secret-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("https://api.figma.com/v1/oauth/token")
			cfg.ClientID, cfg.ClientSecret = tt.id, tt.secret
			assert.Equal(t, tt.want, NewFlow(cfg, nil).Configured())
		})
	}
}

func TestAuthURL(t *testing.T) {
	flow, _ := newTestFlow(t, testConfig("https://api.figma.com/v1/oauth/token"))

	raw, state, err := flow.AuthURL()
	require.NoError(t, err)
	require.NotEmpty(t, state)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.figma.com", u.Host)
	q := u.Query()
	assert.Equal(t, "client-123456", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "file_content:read", q.Get("scope"))
	assert.Equal(t, "http://localhost:7071/api/figmaOAuthCallback", q.Get("redirect_uri"))

	_, other, err := flow.AuthURL()
	require.NoError(t, err)
	assert.NotEqual(t, state, other)
}

func TestNotConfiguredNeverCallsProvider(t *testing.T) {
	ts := &tokenServer{}
	cfg := testConfig(ts.start(t).URL)
	cfg.ClientSecret = ""
	flow, _ := newTestFlow(t, cfg)

	_, _, err := flow.AuthURL()
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = flow.Exchange(context.Background(), "code", "state")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, ts.received())
	assert.Equal(t, StateNotConfigured, flow.Status().State)
}

func TestExchange(t *testing.T) {
	ts := &tokenServer{}
	flow, clk := newTestFlow(t, testConfig(ts.start(t).URL))

	assert.Equal(t, StateAuthRequired, flow.Status().State)

	_, state, err := flow.AuthURL()
	require.NoError(t, err)

	token, err := flow.Exchange(context.Background(), "auth-code", state)
	require.NoError(t, err)
	assert.Equal(t, "figu_abc123", token.AccessToken)
	assert.Equal(t, "figr_xyz", token.RefreshToken)
	assert.Equal(t, int64(3600), token.ExpiresIn)
	assert.Equal(t, clk.Now().Add(time.Hour), token.ExpiresAt)
	assert.Equal(t, "file_content:read", token.Scope)
	assert.Equal(t, []string{"auth-code"}, ts.received())

	status := flow.Status()
	assert.Equal(t, StateValid, status.State)
	assert.True(t, status.HasToken)
	require.NotNil(t, status.ExpiresAt)

	access, ok := flow.ValidToken()
	assert.True(t, ok)
	assert.Equal(t, "figu_abc123", access)

	clk.Advance(time.Hour + time.Second)
	assert.Equal(t, StateExpired, flow.Status().State)
	_, ok = flow.ValidToken()
	assert.False(t, ok)
}

func TestExchangeRejectsState(t *testing.T) {
	ts := &tokenServer{}
	flow, clk := newTestFlow(t, testConfig(ts.start(t).URL))
	ctx := context.Background()

	_, err := flow.Exchange(ctx, "auth-code", "forged")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, state, err := flow.AuthURL()
	require.NoError(t, err)
	_, err = flow.Exchange(ctx, "", state)
	assert.ErrorIs(t, err, ErrMissingCode)

	_, err = flow.Exchange(ctx, "auth-code", state)
	require.NoError(t, err)
	_, err = flow.Exchange(ctx, "auth-code", state)
	assert.ErrorIs(t, err, ErrInvalidState, "state is single use")

	_, stale, err := flow.AuthURL()
	require.NoError(t, err)
	clk.Advance(StateTTL + time.Minute)
	_, err = flow.Exchange(ctx, "auth-code", stale)
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Len(t, ts.received(), 1)
}

func TestExchangeProviderError(t *testing.T) {
	ts := &tokenServer{fail: true}
	flow, _ := newTestFlow(t, testConfig(ts.start(t).URL))

	_, state, err := flow.AuthURL()
	require.NoError(t, err)

	_, err = flow.Exchange(context.Background(), "bad-code", state)
	assert.ErrorIs(t, err, ErrExchange)
	assert.Equal(t, StateAuthRequired, flow.Status().State)
}

func TestExchangeTimeout(t *testing.T) {
	ts := &tokenServer{delay: 5 * time.Second}
	cfg := testConfig(ts.start(t).URL)
	cfg.OAuthTimeout = 100 * time.Millisecond
	flow, _ := newTestFlow(t, cfg)

	_, state, err := flow.AuthURL()
	require.NoError(t, err)

	start := time.Now()
	_, err = flow.Exchange(context.Background(), "slow-code", state)
	assert.True(t, errors.Is(err, ErrExchange))
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestDiagnostics(t *testing.T) {
	cfg := testConfig("https://api.figma.com/v1/oauth/token")
	cfg.AccessToken = "figd_manual"
	flow, _ := newTestFlow(t, cfg)

	diag := flow.Diagnostics()
	assert.True(t, diag.Configured)
	assert.True(t, diag.ClientIDPresent)
	assert.Equal(t, "clie*********", diag.ClientID)
	assert.True(t, diag.ClientSecretPresent)
	assert.True(t, diag.AccessTokenPresent)
	assert.Equal(t, "2s", diag.ExchangeTimeout)
	assert.Equal(t, StateAuthRequired, diag.State)
}

func TestPages(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSuccessPage(&buf, TokenSet{
		AccessToken: `figu_"abc"</script>`,
		ExpiresIn:   3600,
		ExpiresAt:   time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	page := buf.String()
	assert.Contains(t, page, "Figma connected")
	assert.Contains(t, page, "2024-06-01 13:00 UTC")
	assert.NotContains(t, page, `figu_"abc"</script>`)
	assert.Contains(t, page, "figu_&#34;abc&#34;&lt;/script&gt;")

	buf.Reset()
	require.NoError(t, WriteFailurePage(&buf, "token exchange timed out", "/api/figmaOAuthStart"))
	assert.Contains(t, buf.String(), `href="/api/figmaOAuthStart"`)
	assert.Contains(t, buf.String(), "token exchange timed out")
}
