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

// Package htmlproc cleans completion output into a renderable HTML document and
// applies the optional design-system and content filtering steps.
package htmlproc

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MinContentLength is the shortest output Sufficient accepts.
const MinContentLength = 100

const doctype = "<!DOCTYPE html>"

// Context selects the optional processing steps.
type Context struct {
	InjectNavigation bool
	InjectHero       bool
	InjectFooter     bool
	// ComponentLibrary swaps plain buttons for design-system buttons.
	ComponentLibrary bool
	// BrandingFilter is applied to visible text when non-nil.
	BrandingFilter *ContentFilter
	Title          string
}

func (c Context) needsDocument() bool {
	return c.InjectNavigation || c.InjectHero || c.InjectFooter || c.ComponentLibrary || c.BrandingFilter != nil
}

var (
	openFence  = regexp.MustCompile("(?s)^```[a-zA-Z]*[ \t]*\r?\n?")
	closeFence = regexp.MustCompile("(?s)\r?\n?```[ \t]*$")
	innerFence = regexp.MustCompile("(?s)```(?:html|HTML)?[ \t]*\r?\n(.*?)\r?\n?```")
	markupTag  = regexp.MustCompile(`(?i)<(html|head|body|div|section|main|header|nav|footer|form|p|h[1-6]|button|span|table|ul|ol|a|img|input)\b`)
	doctypeTag = regexp.MustCompile(`(?i)^<!doctype\s+html`)
)

// Process cleans raw completion text. It never panics; on any internal failure
// the input is returned unchanged.
func Process(raw string, ctx Context) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = raw
		}
	}()

	cleaned := StripWrappers(raw)
	if !LooksLikeHTML(cleaned) {
		return cleaned
	}
	cleaned = EnsureDoctype(cleaned)

	if !ctx.needsDocument() {
		return cleaned
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleaned))
	if err != nil {
		return cleaned
	}

	body := doc.Find("body").First()
	if ctx.InjectHero && doc.Find(".hero, [class*='hero']").Length() == 0 {
		body.PrependHtml(heroSnippet(ctx.Title))
	}
	if ctx.InjectNavigation && doc.Find("nav").Length() == 0 {
		body.PrependHtml(navigationSnippet)
	}
	if ctx.InjectFooter && doc.Find("footer").Length() == 0 {
		body.AppendHtml(footerSnippet)
	}
	if ctx.ComponentLibrary {
		substituteButtons(doc)
	}
	if ctx.BrandingFilter != nil {
		ctx.BrandingFilter.ApplyDocument(doc)
	}

	rendered, err := doc.Html()
	if err != nil {
		return cleaned
	}
	return EnsureDoctype(strings.TrimSpace(rendered))
}

// StripWrappers removes markdown code fences and stray quotes around the markup.
func StripWrappers(raw string) string {
	s := strings.TrimSpace(raw)

	if m := innerFence.FindStringSubmatch(s); m != nil && !strings.HasPrefix(s, "```") {
		s = m[1]
	} else {
		s = openFence.ReplaceAllString(s, "")
		s = closeFence.ReplaceAllString(s, "")
	}

	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}

// LooksLikeHTML reports whether s contains at least one common HTML element.
func LooksLikeHTML(s string) bool {
	return markupTag.MatchString(s)
}

// EnsureDoctype prepends the HTML5 doctype when missing.
func EnsureDoctype(s string) string {
	if doctypeTag.MatchString(strings.TrimSpace(s)) {
		return s
	}
	return doctype + "\n" + s
}

// Sufficient reports whether generated output is long enough and contains markup.
func Sufficient(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= MinContentLength && LooksLikeHTML(s)
}

func substituteButtons(doc *goquery.Document) {
	doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("data-component"); ok {
			return
		}
		s.AddClass("ds-button")
		if !s.HasClass("ds-button--secondary") {
			s.AddClass("ds-button--primary")
		}
		s.SetAttr("data-component", "Button")
		if _, ok := s.Attr("type"); !ok {
			s.SetAttr("type", "button")
		}
	})
}
