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

// Package fallback renders deterministic wireframes from the description text
// alone, used whenever AI generation fails or returns too little content.
package fallback

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Engine produces a fallback wireframe. Implementations must be pure functions of their inputs.
type Engine interface {
	Generate(description, theme, colorScheme string) (string, error)
}

// palette is the set of colors a color scheme resolves to
type palette struct {
	Primary    template.CSS
	Accent     template.CSS
	Background template.CSS
	Surface    template.CSS
	Text       template.CSS
	Muted      template.CSS
}

var palettes = map[string]palette{
	"blue":   {Primary: "#0078d4", Accent: "#106ebe"},
	"green":  {Primary: "#107c10", Accent: "#0b5a0b"},
	"purple": {Primary: "#5c2d91", Accent: "#4b2479"},
	"red":    {Primary: "#d13438", Accent: "#a4262c"},
	"orange": {Primary: "#ca5010", Accent: "#a33e0c"},
	"teal":   {Primary: "#038387", Accent: "#026466"},
}

// section kinds, chosen from keywords in the description
const (
	sectionForm      = "form"
	sectionLogin     = "login"
	sectionDashboard = "dashboard"
	sectionTable     = "table"
	sectionFeatures  = "features"
)

// sectionRules are checked in order; every matching rule contributes one section
var sectionRules = []struct {
	section  string
	keywords []string
}{
	{sectionLogin, []string{"login", "log in", "sign in", "signin"}},
	{sectionForm, []string{"form", "contact", "sign up", "signup", "register", "survey"}},
	{sectionDashboard, []string{"dashboard", "analytics", "metrics", "stats"}},
	{sectionTable, []string{"table", "list", "inventory", "orders"}},
}

type pageData struct {
	Title       string
	Description template.HTML
	Theme       string
	Palette     palette
	Sections    []string
}

// TemplateEngine renders the enhanced fallback layout
type TemplateEngine struct {
	tmpl *template.Template
}

// NewEngine creates the enhanced fallback engine
func NewEngine() *TemplateEngine {
	return &TemplateEngine{tmpl: pageTemplate}
}

// Generate renders a complete HTML document embedding description
func (e *TemplateEngine) Generate(description, theme, colorScheme string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("description cannot be empty")
	}

	data := pageData{
		Title:       titleFor(description),
		Description: template.HTML(escapeText(description)),
		Theme:       normalizeTheme(theme),
		Palette:     resolvePalette(theme, colorScheme),
		Sections:    sectionsFor(description),
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render fallback wireframe: %w", err)
	}
	return buf.String(), nil
}

// Emergency returns the last-resort wireframe. It performs no parsing and cannot fail.
func Emergency(description string) string {
	escaped := escapeText(strings.TrimSpace(description))
	if escaped == "" {
		escaped = "Wireframe"
	}
	return "<!DOCTYPE html>\n" +
		"<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n" +
		"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n" +
		"<title>Wireframe</title>\n" +
		"<style>body{font-family:'Segoe UI',sans-serif;margin:0;padding:40px;background:#f5f5f5;color:#323130}" +
		".card{max-width:720px;margin:0 auto;background:#fff;border-radius:8px;padding:32px;box-shadow:0 2px 8px rgba(0,0,0,.1)}" +
		".notice{background:#fff4ce;border-left:4px solid #ffb900;padding:12px 16px;margin-bottom:24px}" +
		"button{background:#0078d4;color:#fff;border:none;border-radius:4px;padding:10px 20px}</style>\n" +
		"</head>\n<body>\n<div class=\"card\">\n" +
		"<div class=\"notice\">The generator is unavailable. Showing a basic layout.</div>\n" +
		"<h1>Wireframe</h1>\n<p>" + escaped + "</p>\n" +
		"<button type=\"button\">Get Started</button>\n" +
		"</div>\n</body>\n</html>\n"
}

// textEscaper covers the characters that are significant inside a text node.
// Quotes are left alone so the description appears as typed.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func normalizeTheme(theme string) string {
	if strings.EqualFold(strings.TrimSpace(theme), "dark") {
		return "dark"
	}
	return "light"
}

func resolvePalette(theme, colorScheme string) palette {
	p, ok := palettes[strings.ToLower(strings.TrimSpace(colorScheme))]
	if !ok {
		p = palettes["blue"]
	}
	if normalizeTheme(theme) == "dark" {
		p.Background, p.Surface, p.Text, p.Muted = "#1b1a19", "#252423", "#f3f2f1", "#a19f9d"
	} else {
		p.Background, p.Surface, p.Text, p.Muted = "#faf9f8", "#ffffff", "#323130", "#605e5c"
	}
	return p
}

func sectionsFor(description string) []string {
	lower := strings.ToLower(description)
	var sections []string
	for _, rule := range sectionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				sections = append(sections, rule.section)
				break
			}
		}
	}
	if len(sections) == 0 {
		sections = append(sections, sectionFeatures)
	}
	return sections
}

// titleFor derives a short page title from the first words of the description
func titleFor(description string) string {
	words := strings.Fields(description)
	if len(words) > 6 {
		words = words[:6]
	}
	title := strings.Join(words, " ")
	if title == "" {
		return "Wireframe"
	}
	r, size := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(r)) + title[size:]
}
