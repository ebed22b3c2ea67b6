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
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokens(t *testing.T) {
	tokens := ExtractTokens(fixtureNode(t))

	assert.Equal(t, "Product Card", tokens.Name)
	assert.Equal(t, "FRAME", tokens.Type)
	assert.Equal(t, 320.0, tokens.Width)
	assert.Equal(t, 200.0, tokens.Height)
	assert.Equal(t, []string{"#ffffff"}, tokens.Fills)
	assert.Equal(t, []string{"#cccccc"}, tokens.Strokes)
	assert.Equal(t, 8.0, tokens.CornerRadius)
	assert.Equal(t, Padding{Top: 16, Right: 16, Bottom: 16, Left: 16}, tokens.Padding)
	assert.Equal(t, "VERTICAL", tokens.LayoutMode)
	assert.Equal(t, 12.0, tokens.ItemSpacing)

	require.Len(t, tokens.Children, 2, "invisible children are skipped")

	title := tokens.Children[0]
	assert.Equal(t, "Wireless <Headphones>", title.Text)
	require.NotNil(t, title.Typography)
	assert.Equal(t, Typography{
		FontFamily: "Inter",
		FontSize:   24,
		FontWeight: 700,
		LineHeight: 32,
		TextAlign:  "left",
		Color:      "#000000",
	}, *title.Typography)

	button := tokens.Children[1]
	assert.Equal(t, []string{"#0078d4"}, button.Fills)
	require.Len(t, button.Children, 1)
	assert.Equal(t, "Buy now", button.Children[0].Text)
}

func TestExtractTokensPaints(t *testing.T) {
	hidden := false
	half := 0.5
	node := Node{
		ID:   "9:1",
		Type: "RECTANGLE",
		Fills: []Paint{
			{Type: "SOLID", Visible: &hidden, Color: &Color{R: 1, A: 1}},
			{Type: "SOLID", Opacity: &half, Color: &Color{R: 1, G: 0, B: 0, A: 1}},
			{Type: "IMAGE", ImageRef: "abc"},
			{Type: "GRADIENT_LINEAR"},
		},
	}

	tokens := ExtractTokens(node)
	assert.Equal(t, []string{"rgba(255, 0, 0, 0.50)"}, tokens.Fills)
	assert.True(t, tokens.HasImageFill)
	assert.Nil(t, tokens.Typography)
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#0078d4", Color{R: 0, G: 0.47, B: 0.83, A: 1}.Hex())
	assert.Equal(t, "#ffffff", Color{R: 1.2, G: 1, B: 1, A: 1}.CSS())
	assert.Equal(t, "#000000", Color{R: -1, A: 0.3}.Hex())
	assert.Equal(t, "rgba(0, 0, 0, 0.30)", Color{A: 0.3}.CSS())
}

func TestClassify(t *testing.T) {
	textChild := []DesignToken{{Type: "TEXT", Text: "Go"}}
	fill := []string{"#0078d4"}

	tests := []struct {
		name  string
		token DesignToken
		want  ComponentKind
	}{
		{"text wins over name", DesignToken{Name: "Hero Button", Type: "TEXT"}, KindText},
		{"hero before button", DesignToken{Name: "Hero CTA Button", Type: "FRAME"}, KindHero},
		{"button by name", DesignToken{Name: "Primary btn", Type: "INSTANCE"}, KindButton},
		{"button before card", DesignToken{Name: "Card Button", Type: "FRAME"}, KindButton},
		{"card by name", DesignToken{Name: "Pricing Tile", Type: "FRAME"}, KindCard},
		{"card before input", DesignToken{Name: "Input Card", Type: "FRAME"}, KindCard},
		{"input by name", DesignToken{Name: "Email TextField", Type: "FRAME"}, KindInput},
		{"image by name", DesignToken{Name: "User Avatar", Type: "ELLIPSE"}, KindImage},
		{"image fill", DesignToken{Name: "Rectangle 4", Type: "RECTANGLE", HasImageFill: true}, KindImage},
		{"name before image fill", DesignToken{Name: "Banner", Type: "FRAME", HasImageFill: true}, KindHero},
		{
			"button structure",
			DesignToken{Name: "Frame 12", Type: "FRAME", Fills: fill, CornerRadius: 6, Width: 120, Height: 40, Children: textChild},
			KindButton,
		},
		{
			"too large for button",
			DesignToken{Name: "Frame 13", Type: "FRAME", Fills: fill, CornerRadius: 6, Width: 900, Height: 40, Children: textChild},
			KindGeneric,
		},
		{
			"card structure",
			DesignToken{Name: "Frame 14", Type: "FRAME", Fills: fill, Width: 300, Height: 400, Children: []DesignToken{{Type: "TEXT"}, {Type: "RECTANGLE"}}},
			KindCard,
		},
		{"short keyword needs a whole word", DesignToken{Name: "Rectangle 7", Type: "RECTANGLE"}, KindGeneric},
		{"generic", DesignToken{Name: "Group 1", Type: "GROUP"}, KindGeneric},
		{"vector is generic", DesignToken{Name: "Vector", Type: "VECTOR", Fills: fill}, KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.token))
		})
	}
}

func TestComponentKindString(t *testing.T) {
	assert.Equal(t, "hero", KindHero.String())
	assert.Equal(t, "generic", ComponentKind(99).String())
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "fig-1-234", ClassName("1:234"))
	assert.Equal(t, "fig-I1-2-3-4", ClassName("I1:2;3:4"))
}

func TestRenderHTML(t *testing.T) {
	out := RenderHTML(ExtractTokens(fixtureNode(t)))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	card := doc.Find("div.fig-1-234.fig-card")
	require.Equal(t, 1, card.Length(), out)
	assert.Equal(t, "Product Card", card.AttrOr("data-figma-name", ""))

	assert.Equal(t, "Wireless <Headphones>", card.Find("h2.fig-1-235").Text())
	assert.Contains(t, out, "Wireless &lt;Headphones&gt;")

	button := card.Find("button.fig-1-236")
	require.Equal(t, 1, button.Length())
	assert.Equal(t, "Buy now", button.Text())
	assert.Equal(t, "button", button.AttrOr("type", ""))

	assert.NotContains(t, out, "secret")
}

func TestRenderHTMLKinds(t *testing.T) {
	input := RenderHTML(DesignToken{ID: "4:1", Name: "Search input", Type: "FRAME",
		Children: []DesignToken{{ID: "4:2", Type: "TEXT", Text: "Search products"}}})
	assert.Equal(t, `<input type="text" class="fig-4-1 fig-input" placeholder="Search products">`, input)

	image := RenderHTML(DesignToken{ID: "5:1", Name: `Cover "photo"`, Type: "RECTANGLE"})
	assert.Equal(t, `<div class="fig-5-1 fig-image" role="img" aria-label="Cover &#34;photo&#34;"></div>`, image)

	hero := RenderHTML(DesignToken{ID: "6:1", Name: "Hero", Type: "FRAME",
		Children: []DesignToken{{ID: "6:2", Type: "TEXT", Text: "Welcome"}}})
	assert.Equal(t, `<section class="fig-6-1 fig-hero" data-figma-name="Hero"><p class="fig-6-2 fig-text">Welcome</p></section>`, hero)

	unlabeled := RenderHTML(DesignToken{ID: "7:1", Name: "Submit button", Type: "FRAME"})
	assert.Equal(t, `<button type="button" class="fig-7-1 fig-button">Submit button</button>`, unlabeled)
}

func TestRenderCSS(t *testing.T) {
	css := RenderCSS(ExtractTokens(fixtureNode(t)))

	assert.Contains(t, css, ".fig-1-234 { width: 320px; min-height: 200px; background: #ffffff; "+
		"border: 1px solid #cccccc; border-radius: 8px; padding: 16px 16px 16px 16px; "+
		"display: flex; flex-direction: column; gap: 12px; }")
	assert.Contains(t, css, `.fig-1-235 { font-family: "Inter", sans-serif; font-size: 24px; `+
		`font-weight: 700; line-height: 32px; text-align: left; color: #000000; }`)
	assert.Contains(t, css, ".fig-1-236 { width: 120px; min-height: 40px; background: #0078d4; border-radius: 4px; }")
	assert.NotContains(t, css, ".fig-1-237", "nodes without styles produce no rule")
	assert.NotContains(t, css, ".fig-1-238")
}

func TestRenderDocument(t *testing.T) {
	page := RenderDocument("A <b> title", `<div class="fig-1">x</div>`, ".fig-1 { color: red; }\n</style><script>")

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>A &lt;b&gt; title</title>")
	assert.Contains(t, page, ".fig-1 { color: red; }")
	assert.NotContains(t, page, "</style><script>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("body div.fig-1").Length())
	assert.Equal(t, 0, doc.Find("script").Length())
}
