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

package fallback

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestGenerateIsDeterministic(t *testing.T) {
	engine := NewEngine()
	inputs := []struct{ description, theme, colorScheme string }{
		{"Create a contact form", "light", "blue"},
		{"Analytics dashboard with user table", "dark", "green"},
		{"Landing page for a coffee shop", "", ""},
	}

	for _, in := range inputs {
		first, err := engine.Generate(in.description, in.theme, in.colorScheme)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := engine.Generate(in.description, in.theme, in.colorScheme)
			require.NoError(t, err)
			assert.Equal(t, first, again, "fallback must be byte-identical for %q", in.description)
		}
	}
}

func TestGenerateIsValidHTMLWithDescription(t *testing.T) {
	description := "Create a contact form"
	page, err := NewEngine().Generate(description, "light", "blue")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, description)

	doc := parse(t, page)
	assert.Equal(t, 1, doc.Find("head").Length())
	assert.Equal(t, 1, doc.Find("body").Length())
	assert.Equal(t, description, doc.Find(".hero p").Text())
	assert.Equal(t, 1, doc.Find("form").Length(), "contact keyword adds a form section")
}

func TestGenerateSections(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		description string
		selector    string
	}{
		{"Login screen for admins", "input[type=password]"},
		{"Sales dashboard", ".stat"},
		{"Inventory table", "table"},
		{"Portfolio homepage", ".grid .card h3"},
	}

	for _, tt := range tests {
		page, err := engine.Generate(tt.description, "light", "blue")
		require.NoError(t, err)
		assert.Greater(t, parse(t, page).Find(tt.selector).Length(), 0, tt.description)
	}
}

func TestGenerateThemeAndColor(t *testing.T) {
	engine := NewEngine()

	dark, err := engine.Generate("Settings page", "dark", "purple")
	require.NoError(t, err)
	assert.Contains(t, dark, `data-theme="dark"`)
	assert.Contains(t, dark, "#5c2d91")
	assert.Contains(t, dark, "#1b1a19")

	unknown, err := engine.Generate("Settings page", "neon", "chartreuse")
	require.NoError(t, err)
	assert.Contains(t, unknown, `data-theme="light"`)
	assert.Contains(t, unknown, "#0078d4", "unknown color schemes use the default palette")
}

func TestGenerateEscapesMarkup(t *testing.T) {
	page, err := NewEngine().Generate("<script>alert(1)</script> page", "light", "blue")
	require.NoError(t, err)
	assert.NotContains(t, page, "<script>alert(1)</script>")
}

func TestGenerateRejectsEmptyDescription(t *testing.T) {
	_, err := NewEngine().Generate("   ", "light", "blue")
	assert.Error(t, err)
}

func TestEmergency(t *testing.T) {
	description := "Create a contact form"
	page := Emergency(description)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, description)
	assert.Equal(t, page, Emergency(description))

	doc := parse(t, page)
	assert.Equal(t, description, doc.Find(".card p").Text())
	assert.Contains(t, Emergency(""), "<!DOCTYPE html>")
}

func TestDescriptionEmbeddedAsTyped(t *testing.T) {
	descriptions := []string{
		"Create a user's profile page",
		`Q&A page with "featured" answers`,
	}

	for _, description := range descriptions {
		t.Run(description, func(t *testing.T) {
			page, err := NewEngine().Generate(description, "light", "blue")
			require.NoError(t, err)
			assert.Contains(t, page, strings.ReplaceAll(description, "&", "&amp;"))
			assert.Equal(t, description, parse(t, page).Find(".hero p").Text())

			emergency := Emergency(description)
			assert.Contains(t, emergency, strings.ReplaceAll(description, "&", "&amp;"))
			assert.Equal(t, description, parse(t, emergency).Find(".card p").Text())
		})
	}
}

func TestTitleFor(t *testing.T) {
	assert.Equal(t, "Create a contact form", titleFor("create a contact form"))
	assert.Equal(t, "One two three four five six", titleFor("one two three four five six seven"))
	assert.Equal(t, "Écran de connexion", titleFor("écran de connexion"))
}
