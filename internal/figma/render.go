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
	"html"
	"strconv"
	"strings"
)

// headingFontSize is the font size from which text renders as a heading.
const headingFontSize = 24

// ClassName returns the CSS class used for a node id, e.g. "fig-1-234".
func ClassName(id string) string {
	var b strings.Builder
	b.WriteString("fig-")
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// RenderHTML converts a token tree to markup. Text is escaped.
func RenderHTML(t DesignToken) string {
	var b strings.Builder
	renderNode(&b, t)
	return b.String()
}

func renderNode(b *strings.Builder, t DesignToken) {
	kind := Classify(t)
	class := html.EscapeString(ClassName(t.ID) + " fig-" + kind.String())

	switch kind {
	case KindText:
		tag := "p"
		if t.Typography != nil && t.Typography.FontSize >= headingFontSize {
			tag = "h2"
		}
		b.WriteString("<" + tag + ` class="` + class + `">`)
		b.WriteString(html.EscapeString(t.Text))
		b.WriteString("</" + tag + ">")
	case KindButton:
		b.WriteString(`<button type="button" class="` + class + `">`)
		b.WriteString(html.EscapeString(labelOf(t)))
		b.WriteString("</button>")
	case KindInput:
		b.WriteString(`<input type="text" class="` + class + `" placeholder="`)
		b.WriteString(html.EscapeString(labelOf(t)))
		b.WriteString(`">`)
	case KindImage:
		b.WriteString(`<div class="` + class + `" role="img" aria-label="`)
		b.WriteString(html.EscapeString(t.Name))
		b.WriteString(`"></div>`)
	default:
		tag := "div"
		if kind == KindHero {
			tag = "section"
		}
		b.WriteString("<" + tag + ` class="` + class + `" data-figma-name="` + html.EscapeString(t.Name) + `">`)
		for _, child := range t.Children {
			renderNode(b, child)
		}
		b.WriteString("</" + tag + ">")
	}
}

// labelOf returns the first text found under t, or its name.
func labelOf(t DesignToken) string {
	if text := firstText(t); text != "" {
		return text
	}
	return t.Name
}

func firstText(t DesignToken) string {
	if t.Type == "TEXT" && t.Text != "" {
		return t.Text
	}
	for _, c := range t.Children {
		if text := firstText(c); text != "" {
			return text
		}
	}
	return ""
}

// RenderCSS returns one rule per node of the tree.
func RenderCSS(t DesignToken) string {
	var b strings.Builder
	renderRules(&b, t)
	return b.String()
}

func renderRules(b *strings.Builder, t DesignToken) {
	var decls []string
	add := func(prop, value string) {
		decls = append(decls, prop+": "+value+";")
	}

	if t.Type != "TEXT" {
		if t.Width > 0 {
			add("width", px(t.Width))
		}
		if t.Height > 0 {
			add("min-height", px(t.Height))
		}
		if len(t.Fills) > 0 {
			add("background", t.Fills[0])
		}
	}
	if len(t.Strokes) > 0 {
		weight := t.StrokeWeight
		if weight == 0 {
			weight = 1
		}
		add("border", px(weight)+" solid "+t.Strokes[0])
	}
	if t.CornerRadius > 0 {
		add("border-radius", px(t.CornerRadius))
	}
	if p := t.Padding; p != (Padding{}) {
		add("padding", px(p.Top)+" "+px(p.Right)+" "+px(p.Bottom)+" "+px(p.Left))
	}
	switch t.LayoutMode {
	case "HORIZONTAL":
		add("display", "flex")
		add("flex-direction", "row")
	case "VERTICAL":
		add("display", "flex")
		add("flex-direction", "column")
	}
	if t.LayoutMode != "" && t.ItemSpacing > 0 {
		add("gap", px(t.ItemSpacing))
	}
	if typo := t.Typography; typo != nil {
		if typo.FontFamily != "" {
			add("font-family", strconv.Quote(typo.FontFamily)+", sans-serif")
		}
		if typo.FontSize > 0 {
			add("font-size", px(typo.FontSize))
		}
		if typo.FontWeight > 0 {
			add("font-weight", num(typo.FontWeight))
		}
		if typo.LineHeight > 0 {
			add("line-height", px(typo.LineHeight))
		}
		if typo.TextAlign != "" {
			add("text-align", typo.TextAlign)
		}
		if typo.Color != "" {
			add("color", typo.Color)
		}
	}

	if len(decls) > 0 {
		b.WriteString("." + ClassName(t.ID) + " { " + strings.Join(decls, " ") + " }\n")
	}
	for _, child := range t.Children {
		renderRules(b, child)
	}
}

// RenderDocument wraps markup and styles in a standalone page.
func RenderDocument(title, body, css string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	b.WriteString("<style>\nbody { margin: 0; font-family: \"Segoe UI\", sans-serif; }\n")
	b.WriteString(strings.ReplaceAll(css, "</", "<\\/"))
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

func px(v float64) string {
	return num(v) + "px"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
