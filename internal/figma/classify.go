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

package figma

import (
	"strings"
	"unicode"
)

// ComponentKind is the semantic role of a node.
type ComponentKind int

const (
	KindGeneric ComponentKind = iota
	KindText
	KindHero
	KindButton
	KindCard
	KindInput
	KindImage
)

func (k ComponentKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindHero:
		return "hero"
	case KindButton:
		return "button"
	case KindCard:
		return "card"
	case KindInput:
		return "input"
	case KindImage:
		return "image"
	default:
		return "generic"
	}
}

// nameRules are checked in order; the first keyword hit wins. Keywords of
// three letters or fewer must match a whole word so that "Rectangle" is not
// read as "cta".
var nameRules = []struct {
	kind     ComponentKind
	keywords []string
}{
	{KindHero, []string{"hero", "banner", "jumbotron"}},
	{KindButton, []string{"button", "btn", "cta"}},
	{KindCard, []string{"card", "tile"}},
	{KindInput, []string{"input", "textfield", "text field", "search field", "textarea"}},
	{KindImage, []string{"image", "img", "photo", "picture", "avatar"}},
}

// Classify returns the kind of a token. Precedence:
//
//  1. TEXT nodes are always text.
//  2. Name keywords, in the order hero, button, card, input, image.
//  3. Nodes with an image fill are images.
//  4. Small filled frames with rounded corners and a text child are buttons.
//  5. Frames with a fill and two or more children are cards.
//  6. Everything else is generic.
func Classify(t DesignToken) ComponentKind {
	if t.Type == "TEXT" {
		return KindText
	}

	name := strings.ToLower(t.Name)
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, rule := range nameRules {
		for _, kw := range rule.keywords {
			if nameHas(name, words, kw) {
				return rule.kind
			}
		}
	}

	if t.HasImageFill {
		return KindImage
	}
	if isButtonShape(t) {
		return KindButton
	}
	if isCardShape(t) {
		return KindCard
	}
	return KindGeneric
}

func nameHas(name string, words []string, kw string) bool {
	if len(kw) > 3 {
		return strings.Contains(name, kw)
	}
	for _, w := range words {
		if w == kw {
			return true
		}
	}
	return false
}

func isContainer(t DesignToken) bool {
	switch t.Type {
	case "FRAME", "COMPONENT", "INSTANCE", "GROUP":
		return true
	}
	return false
}

func isButtonShape(t DesignToken) bool {
	if !isContainer(t) || len(t.Fills) == 0 || t.CornerRadius < 2 {
		return false
	}
	if t.Width > 400 || t.Height > 80 {
		return false
	}
	for _, c := range t.Children {
		if c.Type == "TEXT" {
			return true
		}
	}
	return false
}

func isCardShape(t DesignToken) bool {
	return isContainer(t) && len(t.Fills) > 0 && len(t.Children) >= 2
}
