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

package htmlproc

import (
	"html"
	"regexp"
	"strings"
)

var (
	imgTag      = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	attrPattern = regexp.MustCompile(`(?is)\s(src|alt)\s*=\s*("([^"]*)"|'([^']*)')`)
	iconToken   = regexp.MustCompile(`\{\{\s*icon:([a-z0-9-]+)\s*\}\}`)
)

var placeholderHosts = []string{
	"placeholder.com",
	"placehold.it",
	"placehold.co",
	"example.com",
	"dummyimage.com",
}

// Icons maps icon token names to the glyph rendered in their place.
var Icons = map[string]string{
	"search":      "🔍",
	"home":        "🏠",
	"user":        "👤",
	"settings":    "⚙",
	"mail":        "✉",
	"phone":       "📞",
	"cart":        "🛒",
	"star":        "★",
	"check":       "✓",
	"close":       "✕",
	"menu":        "☰",
	"arrow-right": "→",
	"arrow-left":  "←",
	"heart":       "♥",
	"bell":        "🔔",
	"calendar":    "📅",
	"lock":        "🔒",
}

const unknownIcon = "■"

// RepairImagePlaceholders replaces images whose source is missing, empty or a
// placeholder service with a styled placeholder block labelled by the alt text.
func RepairImagePlaceholders(s string) string {
	return imgTag.ReplaceAllStringFunc(s, func(tag string) string {
		var src, alt string
		var hasSrc bool
		for _, m := range attrPattern.FindAllStringSubmatch(tag, -1) {
			value := m[3] + m[4]
			switch strings.ToLower(m[1]) {
			case "src":
				src, hasSrc = value, true
			case "alt":
				alt = value
			}
		}
		if hasSrc && !isPlaceholderSource(src) {
			return tag
		}

		label := html.UnescapeString(alt)
		if strings.TrimSpace(label) == "" {
			label = "Image"
		}
		escaped := html.EscapeString(label)
		return `<div class="image-placeholder" role="img" aria-label="` + escaped + `">` + escaped + `</div>`
	})
}

func isPlaceholderSource(src string) bool {
	src = strings.TrimSpace(strings.ToLower(src))
	if src == "" || src == "#" || strings.HasPrefix(src, "{{") {
		return true
	}
	for _, host := range placeholderHosts {
		if strings.Contains(src, host) {
			return true
		}
	}
	return false
}

// SubstituteIconPlaceholders renders {{icon:name}} tokens as glyph spans.
func SubstituteIconPlaceholders(s string) string {
	return iconToken.ReplaceAllStringFunc(s, func(token string) string {
		name := iconToken.FindStringSubmatch(token)[1]
		glyph, ok := Icons[name]
		if !ok {
			glyph = unknownIcon
		}
		return `<span class="icon icon-` + name + `" aria-hidden="true">` + glyph + `</span>`
	})
}
