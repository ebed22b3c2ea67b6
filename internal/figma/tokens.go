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

// ExtractTokens walks a node tree and returns its design tokens. Invisible
// children are skipped.
func ExtractTokens(node Node) DesignToken {
	token := DesignToken{
		ID:           node.ID,
		Name:         node.Name,
		Type:         node.Type,
		StrokeWeight: node.StrokeWeight,
		CornerRadius: node.CornerRadius,
		LayoutMode:   node.LayoutMode,
		ItemSpacing:  node.ItemSpacing,
		Padding: Padding{
			Top:    node.PaddingTop,
			Right:  node.PaddingRight,
			Bottom: node.PaddingBottom,
			Left:   node.PaddingLeft,
		},
	}
	if box := node.AbsoluteBoundingBox; box != nil {
		token.Width = box.Width
		token.Height = box.Height
	}

	for _, fill := range node.Fills {
		if !fill.visible() {
			continue
		}
		switch fill.Type {
		case "SOLID":
			if fill.Color != nil {
				token.Fills = append(token.Fills, paintCSS(fill))
			}
		case "IMAGE":
			token.HasImageFill = true
		}
	}
	for _, stroke := range node.Strokes {
		if stroke.visible() && stroke.Type == "SOLID" && stroke.Color != nil {
			token.Strokes = append(token.Strokes, paintCSS(stroke))
		}
	}

	if node.Type == "TEXT" {
		token.Text = node.Characters
		token.Typography = typographyOf(node, token.Fills)
	}

	for _, child := range node.Children {
		if !child.IsVisible() {
			continue
		}
		token.Children = append(token.Children, ExtractTokens(child))
	}
	return token
}

func paintCSS(p Paint) string {
	c := *p.Color
	if p.Opacity != nil {
		c.A *= *p.Opacity
	}
	return c.CSS()
}

func typographyOf(node Node, fills []string) *Typography {
	typo := &Typography{}
	if s := node.Style; s != nil {
		typo.FontFamily = s.FontFamily
		typo.FontSize = s.FontSize
		typo.FontWeight = s.FontWeight
		typo.LineHeight = s.LineHeightPx
		typo.TextAlign = cssTextAlign(s.TextAlignHorizontal)
	}
	if len(fills) > 0 {
		typo.Color = fills[0]
	}
	return typo
}

func cssTextAlign(figmaAlign string) string {
	switch figmaAlign {
	case "CENTER":
		return "center"
	case "RIGHT":
		return "right"
	case "JUSTIFIED":
		return "justify"
	case "LEFT":
		return "left"
	default:
		return ""
	}
}

// FindNode returns the node with the given id in the tree rooted at root.
func FindNode(root *Node, id string) (*Node, bool) {
	if root.ID == id {
		return root, true
	}
	for i := range root.Children {
		if n, ok := FindNode(&root.Children[i], id); ok {
			return n, true
		}
	}
	return nil, false
}
