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

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAlwaysIncludesConstraints(t *testing.T) {
	for style := range styleNames {
		p, err := Build("Create a contact form", Options{Style: style})
		require.NoError(t, err)
		assert.Contains(t, p.System, "<!DOCTYPE html>", style.String())
		assert.Contains(t, p.System, "brand names", style.String())
		assert.Contains(t, p.User, "Create a contact form", style.String())
	}
}

func TestBuildContentInstructions(t *testing.T) {
	p, err := Build("  Pricing page  ", Options{ColorScheme: "green", Theme: "dark", FastMode: true})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p.User, "Create a wireframe for: Pricing page\n"))
	assert.Contains(t, p.User, "green color scheme")
	assert.Contains(t, p.User, "dark theme")
	assert.Contains(t, p.User, "Keep the markup short")

	light, err := Build("Pricing page", Options{})
	require.NoError(t, err)
	assert.Contains(t, light.User, "light theme")
	assert.NotContains(t, light.User, "color scheme")
	assert.NotContains(t, light.User, "Keep the markup short")
}

func TestBuildStylesDiffer(t *testing.T) {
	minimal, err := Build("Blog", Options{Style: StyleMinimal})
	require.NoError(t, err)
	enhanced, err := Build("Blog", Options{Style: StyleEnhanced})
	require.NoError(t, err)

	assert.Equal(t, minimal.System, enhanced.System)
	assert.NotEqual(t, minimal.User, enhanced.User)
}

func TestBuildRejectsEmptyDescription(t *testing.T) {
	_, err := Build(" \n\t", Options{})
	assert.ErrorIs(t, err, ErrEmptyDescription)
}

func TestBuildTruncatesDescription(t *testing.T) {
	p, err := Build(strings.Repeat("é", 50), Options{MaxDescriptionRunes: 10})
	require.NoError(t, err)
	assert.Contains(t, p.User, strings.Repeat("é", 10)+"\n")
	assert.NotContains(t, p.User, strings.Repeat("é", 11))
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		input    string
		expected Style
		wantErr  bool
	}{
		{"", StyleStandard, false},
		{"minimal", StyleMinimal, false},
		{" Clean ", StyleClean, false},
		{"pure-ai", StylePureAI, false},
		{"enhanced", StyleEnhanced, false},
		{"fancy", StyleStandard, true},
	}

	for _, tt := range tests {
		got, err := ParseStyle(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got, tt.input)
	}
	assert.Equal(t, "Style(42)", Style(42).String())
}
