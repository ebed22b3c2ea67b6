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

// Package prompt builds the system and user messages sent to the completion API
// when generating a wireframe.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Style selects the content instructions appended after the fixed constraints.
type Style int

const (
	StyleStandard Style = iota
	StyleMinimal
	StyleClean
	StylePureAI
	StyleEnhanced
)

var styleNames = map[Style]string{
	StyleStandard: "standard",
	StyleMinimal:  "minimal",
	StyleClean:    "clean",
	StylePureAI:   "pure-ai",
	StyleEnhanced: "enhanced",
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle maps a style name to its Style. Empty input yields StyleStandard.
func ParseStyle(name string) (Style, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StyleStandard, nil
	}
	for style, n := range styleNames {
		if n == name {
			return style, nil
		}
	}
	return StyleStandard, fmt.Errorf("unknown prompt style %q", name)
}

// DefaultMaxDescriptionRunes bounds the description copied into the user message.
const DefaultMaxDescriptionRunes = 2000

// ErrEmptyDescription is returned when the description is blank.
var ErrEmptyDescription = errors.New("description cannot be empty")

// Options holds configuration for prompt generation
type Options struct {
	ColorScheme         string
	Theme               string
	Style               Style
	FastMode            bool
	MaxDescriptionRunes int
}

// Prompt is a system+user message pair.
type Prompt struct {
	System string
	User   string
}

const constraints = `You are an expert UI designer who produces HTML wireframes.

Non-negotiable output rules:
1. Respond with a single complete HTML document that starts with <!DOCTYPE html>.
2. Do not wrap the document in markdown code fences and do not add commentary.
3. Put all styling in one inline <style> element; do not reference external stylesheets, fonts or scripts.
4. Do not include any company, product or vendor brand names, logos or trademarks.
5. Use semantic elements (header, nav, main, section, footer) and accessible labels for every form control.
6. Use placeholder images as <div class="image-placeholder"> elements and icons as {{icon:name}} tokens.`

var styleInstructions = map[Style]string{
	StyleStandard: "Build a realistic, well-structured page with a header, the main content the user asked for, and a footer.",
	StyleMinimal:  "Keep the layout minimal: only the elements the description asks for, generous whitespace, a single accent color.",
	StyleClean:    "Produce a clean, neutral layout with no marketing copy. Use short generic labels such as \"Title\" and \"Action\".",
	StylePureAI:   "Follow the description literally and make every layout decision yourself; do not add navigation, hero or footer unless asked.",
	StyleEnhanced: "Produce a rich page: navigation bar, hero section, the requested content, supporting cards and a footer, with hover states for interactive elements.",
}

// Build constructs the prompt for a description. The constraints section is
// always present; the content section depends on the description and options.
func Build(description string, opts Options) (Prompt, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Prompt{}, ErrEmptyDescription
	}

	maxRunes := opts.MaxDescriptionRunes
	if maxRunes <= 0 {
		maxRunes = DefaultMaxDescriptionRunes
	}
	description = truncateRunes(description, maxRunes)

	instructions, ok := styleInstructions[opts.Style]
	if !ok {
		instructions = styleInstructions[StyleStandard]
	}

	var user strings.Builder
	user.WriteString(fmt.Sprintf("Create a wireframe for: %s\n\n", description))
	user.WriteString("--- Content Instructions ---\n")
	user.WriteString(instructions)
	user.WriteString("\n")

	if scheme := strings.TrimSpace(opts.ColorScheme); scheme != "" {
		user.WriteString(fmt.Sprintf("Use a %s color scheme for primary actions and accents.\n", scheme))
	}

	theme := strings.ToLower(strings.TrimSpace(opts.Theme))
	if theme == "dark" {
		user.WriteString("Use a dark theme: dark backgrounds with light text.\n")
	} else {
		user.WriteString("Use a light theme: light backgrounds with dark text.\n")
	}

	if opts.FastMode {
		user.WriteString("Keep the markup short; prefer fewer sections over detail.\n")
	}

	user.WriteString("\nReturn only the HTML document.")

	return Prompt{System: constraints, User: user.String()}, nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
