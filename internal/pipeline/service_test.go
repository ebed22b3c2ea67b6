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

package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/designetica/designetica/internal/openai"
	"github.com/designetica/designetica/internal/prompt"
	"github.com/designetica/designetica/internal/resilience"
)

type fakeCompleter struct {
	reply  string
	err    error
	prompt prompt.Prompt
	config openai.ModelConfig
	calls  int
}

func (f *fakeCompleter) Invoke(_ context.Context, p prompt.Prompt, mc openai.ModelConfig) (string, error) {
	f.calls++
	f.prompt = p
	f.config = mc
	return f.reply, f.err
}

var richPage = "```html\n<!DOCTYPE html><html><head><title>Contact</title></head><body><main>" +
	"<h1>Contact Microsoft support</h1><form><label>Email<input type=\"email\"></label><button>Send</button></form>" +
	"<p>" + strings.Repeat("Lorem ipsum dolor sit amet. ", 5) + "</p></main></body></html>\n```"

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestGenerateStandardVariant(t *testing.T) {
	completer := &fakeCompleter{reply: richPage}
	svc := NewService(completer, zaptest.NewLogger(t))

	out, err := svc.Generate(context.Background(), Request{Description: "Create a contact form", ColorScheme: "blue"})
	require.NoError(t, err)

	assert.Equal(t, SourceAI, out.Source)
	assert.True(t, out.AIGenerated)
	assert.Equal(t, "standard", out.Variant)
	assert.True(t, strings.HasPrefix(out.HTML, "<!DOCTYPE html>"))
	assert.NotContains(t, out.HTML, "```")

	doc := parse(t, out.HTML)
	assert.Equal(t, 1, doc.Find("nav").Length())
	assert.Equal(t, 1, doc.Find("footer").Length())
	assert.Zero(t, doc.Find(".hero").Length(), "hero is only injected by the enhanced variant")
	assert.True(t, doc.Find("button").First().HasClass("ds-button"))
	assert.Contains(t, doc.Find("h1").Text(), "Microsoft", "branding filter is off for standard")

	assert.Contains(t, completer.prompt.User, "Create a contact form")
	assert.Contains(t, completer.prompt.User, "blue color scheme")
	assert.Zero(t, completer.config.MaxTokens)
}

func TestGenerateCleanVariantFiltersBranding(t *testing.T) {
	svc := NewService(&fakeCompleter{reply: richPage}, nil)

	out, err := svc.Generate(context.Background(), Request{Description: "Create a contact form", Variant: "clean"})
	require.NoError(t, err)

	doc := parse(t, out.HTML)
	assert.Equal(t, "Contact Company support", doc.Find("h1").Text())
	assert.Zero(t, doc.Find("nav").Length(), "clean does not inject components")
}

func TestGenerateEnhancedVariantInjectsHero(t *testing.T) {
	completer := &fakeCompleter{reply: richPage}
	svc := NewService(completer, nil)

	out, err := svc.Generate(context.Background(), Request{Description: "Create a contact form", Variant: "Enhanced"})
	require.NoError(t, err)

	doc := parse(t, out.HTML)
	assert.Equal(t, 1, doc.Find(".hero").Length())
	assert.Equal(t, "Create a contact form", doc.Find(".hero h1").Text())
	assert.Contains(t, completer.prompt.User, "navigation bar, hero section")
}

func TestGeneratePureAIKeepsOutput(t *testing.T) {
	svc := NewService(&fakeCompleter{reply: richPage}, nil)

	out, err := svc.Generate(context.Background(), Request{Description: "Create a contact form", Variant: "pure-ai"})
	require.NoError(t, err)

	doc := parse(t, out.HTML)
	assert.Zero(t, doc.Find("nav").Length())
	assert.False(t, doc.Find("button").HasClass("ds-button"))
}

func TestGenerateFastModeLimitsTokens(t *testing.T) {
	completer := &fakeCompleter{reply: richPage}
	svc := NewService(completer, nil)

	_, err := svc.Generate(context.Background(), Request{Description: "Blog", FastMode: true})
	require.NoError(t, err)
	assert.Equal(t, fastModeMaxTokens, completer.config.MaxTokens)
}

func TestGenerateInsufficientContentUsesFallback(t *testing.T) {
	for _, reply := range []string{"<div>Hi</div>", "I am sorry, I cannot do that."} {
		svc := NewService(&fakeCompleter{reply: reply}, nil)

		out, err := svc.Generate(context.Background(), Request{Description: "Create a contact form", Theme: "dark"})
		require.NoError(t, err)
		assert.Equal(t, SourceFallback, out.Source, reply)
		assert.False(t, out.AIGenerated)
		assert.NotEmpty(t, out.Warning)
		assert.Contains(t, out.HTML, "Create a contact form")
		assert.Contains(t, out.HTML, `data-theme="dark"`)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name     string
		svc      *Service
		req      Request
		wantCode resilience.ErrorCode
		wantHTTP int
	}{
		{
			name:     "blank description",
			svc:      NewService(&fakeCompleter{reply: richPage}, nil),
			req:      Request{Description: "  "},
			wantCode: resilience.ErrorCodeValidationFailed,
			wantHTTP: http.StatusBadRequest,
		},
		{
			name:     "unknown variant",
			svc:      NewService(&fakeCompleter{reply: richPage}, nil),
			req:      Request{Description: "Blog", Variant: "fancy"},
			wantCode: resilience.ErrorCodeValidationFailed,
			wantHTTP: http.StatusBadRequest,
		},
		{
			name:     "not configured",
			svc:      NewService(nil, nil),
			req:      Request{Description: "Blog"},
			wantCode: resilience.ErrorCodeNotConfigured,
			wantHTTP: http.StatusServiceUnavailable,
		},
		{
			name:     "model failure",
			svc:      NewService(&fakeCompleter{err: &openai.APIError{StatusCode: 500, Message: "boom"}}, nil),
			req:      Request{Description: "Blog"},
			wantCode: resilience.ErrorCodeDependencyFailure,
			wantHTTP: http.StatusBadGateway,
		},
		{
			name:     "rate limited",
			svc:      NewService(&fakeCompleter{err: &openai.APIError{StatusCode: 429, Message: "slow down"}}, nil),
			req:      Request{Description: "Blog"},
			wantCode: resilience.ErrorCodeTooManyRequests,
			wantHTTP: http.StatusTooManyRequests,
		},
		{
			name:     "timeout",
			svc:      NewService(&fakeCompleter{err: context.DeadlineExceeded}, nil),
			req:      Request{Description: "Blog"},
			wantCode: resilience.ErrorCodeTimeout,
			wantHTTP: http.StatusGatewayTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Generate(context.Background(), tt.req)
			var serviceErr *resilience.ServiceError
			require.True(t, errors.As(err, &serviceErr), "got %v", err)
			assert.Equal(t, tt.wantCode, serviceErr.Code)
			assert.Equal(t, tt.wantHTTP, serviceErr.StatusCode)
		})
	}
}

func TestNotConfiguredSkipsModel(t *testing.T) {
	svc := NewService(nil, nil)
	assert.False(t, svc.Configured())
	assert.True(t, NewService(&fakeCompleter{}, nil).Configured())
}

func TestLookupVariant(t *testing.T) {
	for _, name := range VariantNames() {
		v, err := LookupVariant(name)
		require.NoError(t, err)
		assert.Equal(t, name, v.Name)
	}

	v, err := LookupVariant("")
	require.NoError(t, err)
	assert.Equal(t, DefaultVariant, v.Name)

	clean, err := LookupVariant(" CLEAN ")
	require.NoError(t, err)
	assert.True(t, clean.BrandingFilterEnabled)
	assert.False(t, clean.ComponentInjectionEnabled)

	_, err = LookupVariant("fancy")
	assert.ErrorContains(t, err, "available: clean, enhanced, minimal, pure-ai, standard")
}
