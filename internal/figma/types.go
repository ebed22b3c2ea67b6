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

// Package figma imports components from the Figma REST API: it parses Figma
// URLs, fetches file and component data, extracts a design token tree and
// renders it to HTML and CSS.
package figma

import (
	"fmt"
	"math"
)

// Node mirrors a node of the Figma REST API document tree.
type Node struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Type                string     `json:"type"`
	Visible             *bool      `json:"visible,omitempty"`
	Children            []Node     `json:"children,omitempty"`
	Characters          string     `json:"characters,omitempty"`
	Fills               []Paint    `json:"fills,omitempty"`
	Strokes             []Paint    `json:"strokes,omitempty"`
	StrokeWeight        float64    `json:"strokeWeight,omitempty"`
	CornerRadius        float64    `json:"cornerRadius,omitempty"`
	LayoutMode          string     `json:"layoutMode,omitempty"`
	ItemSpacing         float64    `json:"itemSpacing,omitempty"`
	PaddingTop          float64    `json:"paddingTop,omitempty"`
	PaddingRight        float64    `json:"paddingRight,omitempty"`
	PaddingBottom       float64    `json:"paddingBottom,omitempty"`
	PaddingLeft         float64    `json:"paddingLeft,omitempty"`
	Style               *TypeStyle `json:"style,omitempty"`
	AbsoluteBoundingBox *Rectangle `json:"absoluteBoundingBox,omitempty"`
	ComponentID         string     `json:"componentId,omitempty"`
}

// IsVisible reports whether the node is rendered; a missing flag means visible.
func (n *Node) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// Paint is a fill or stroke.
type Paint struct {
	Type     string   `json:"type"`
	Visible  *bool    `json:"visible,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	Color    *Color   `json:"color,omitempty"`
	ImageRef string   `json:"imageRef,omitempty"`
}

func (p Paint) visible() bool {
	return p.Visible == nil || *p.Visible
}

// Color is an RGBA color in Figma's 0-1 float range.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Hex returns the color as "#rrggbb", ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

// CSS returns "#rrggbb" for opaque colors and rgba() otherwise.
func (c Color) CSS() string {
	if c.A >= 1 {
		return c.Hex()
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", channel(c.R), channel(c.G), channel(c.B), c.A)
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// TypeStyle holds text styling.
type TypeStyle struct {
	FontFamily          string  `json:"fontFamily"`
	FontWeight          float64 `json:"fontWeight"`
	FontSize            float64 `json:"fontSize"`
	LineHeightPx        float64 `json:"lineHeightPx"`
	TextAlignHorizontal string  `json:"textAlignHorizontal"`
}

// Rectangle is a bounding box.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// File is the response of GET /files/:key.
type File struct {
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	Version      string `json:"version"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Document     Node   `json:"document"`
}

// ComponentMeta is one entry of GET /files/:key/components.
type ComponentMeta struct {
	Key             string `json:"key"`
	FileKey         string `json:"file_key"`
	NodeID          string `json:"node_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ThumbnailURL    string `json:"thumbnail_url"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	ContainingFrame struct {
		Name     string `json:"name"`
		NodeID   string `json:"nodeId"`
		PageName string `json:"pageName"`
	} `json:"containing_frame"`
}

type componentsResponse struct {
	Status int  `json:"status"`
	Error  bool `json:"error"`
	Meta   struct {
		Components []ComponentMeta `json:"components"`
	} `json:"meta"`
}

type imagesResponse struct {
	Err    *string           `json:"err"`
	Images map[string]string `json:"images"`
}

// Padding is the inner spacing of a frame.
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Typography is the text style of a text token.
type Typography struct {
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontWeight float64 `json:"fontWeight,omitempty"`
	LineHeight float64 `json:"lineHeight,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty"`
	Color      string  `json:"color,omitempty"`
}

// DesignToken is the styling extracted from one node, with its children.
type DesignToken struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Fills        []string      `json:"fills,omitempty"`
	Strokes      []string      `json:"strokes,omitempty"`
	StrokeWeight float64       `json:"strokeWeight,omitempty"`
	CornerRadius float64       `json:"cornerRadius,omitempty"`
	Padding      Padding       `json:"padding"`
	LayoutMode   string        `json:"layoutMode,omitempty"`
	ItemSpacing  float64       `json:"itemSpacing,omitempty"`
	Typography   *Typography   `json:"typography,omitempty"`
	Text         string        `json:"text,omitempty"`
	HasImageFill bool          `json:"hasImageFill,omitempty"`
	Children     []DesignToken `json:"children,omitempty"`
}
