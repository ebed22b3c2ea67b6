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
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/registry"
)

// ComponentStore persists imported components.
type ComponentStore interface {
	Upsert(ctx context.Context, c registry.Component) (*registry.Component, error)
}

// Importer turns Figma nodes into registry components.
type Importer struct {
	client *Client
	store  ComponentStore
	logger *zap.Logger

	// IncludeImage also requests an SVG render of imported nodes.
	IncludeImage bool
}

// NewImporter creates an Importer. store may be nil for read-only use.
func NewImporter(client *Client, store ComponentStore, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{client: client, store: store, logger: logger, IncludeImage: true}
}

// ImportNode fetches the node referenced by figmaURL, renders it and stores
// the result under the id "<fileKey>:<nodeId>".
func (im *Importer) ImportNode(ctx context.Context, figmaURL string) (*registry.Component, error) {
	ref, err := ParseURL(figmaURL)
	if err != nil {
		return nil, err
	}
	if ref.NodeID == "" {
		return nil, newError(CodeInvalidURL, "Figma URL has no node-id parameter", nil)
	}

	logger := im.logger.With(zap.String("file_key", ref.FileKey), zap.String("node_id", ref.NodeID))
	logger.Info("Importing Figma node")

	components, err := im.client.GetComponents(ctx, ref.FileKey)
	if err != nil {
		return nil, err
	}
	var meta *ComponentMeta
	for i := range components {
		if components[i].NodeID == ref.NodeID {
			meta = &components[i]
			break
		}
	}

	file, err := im.client.GetFile(ctx, ref.FileKey, ref.NodeID)
	if err != nil {
		return nil, err
	}
	node, ok := FindNode(&file.Document, ref.NodeID)
	if !ok {
		return nil, newError(CodeNodeNotFound, "node "+ref.NodeID+" not found in file "+ref.FileKey, nil)
	}

	tokens := ExtractTokens(*node)
	name := node.Name
	metadata := map[string]any{
		"source":    "figma",
		"sourceUrl": figmaURL,
		"fileKey":   ref.FileKey,
		"fileName":  file.Name,
		"nodeId":    ref.NodeID,
		"nodeType":  node.Type,
		"kind":      Classify(tokens).String(),
	}
	if meta != nil {
		if meta.Name != "" {
			name = meta.Name
		}
		metadata["componentKey"] = meta.Key
		metadata["description"] = meta.Description
		metadata["thumbnailUrl"] = meta.ThumbnailURL
	}

	if im.IncludeImage {
		images, err := im.client.GetImageURLs(ctx, ref.FileKey, []string{ref.NodeID}, "svg")
		if err != nil {
			logger.Warn("SVG render unavailable", zap.Error(err))
		} else if u := images[ref.NodeID]; u != "" {
			metadata["svgUrl"] = u
		}
	}

	component := registry.Component{
		ID:       ref.FileKey + ":" + ref.NodeID,
		Name:     name,
		HTML:     RenderHTML(tokens),
		CSS:      RenderCSS(tokens),
		Metadata: metadata,
	}
	if im.store == nil {
		return &component, nil
	}

	saved, err := im.store.Upsert(ctx, component)
	if err != nil {
		return nil, newError(CodeStorageFailed, "saving component", err)
	}
	logger.Info("Figma node imported", zap.String("component_id", saved.ID), zap.String("kind", metadata["kind"].(string)))
	return saved, nil
}

// FileInfo describes a Figma file.
type FileInfo struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	Version      string `json:"version"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// FrameSummary is a top level frame of a page.
type FrameSummary struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Page   string  `json:"page"`
	Kind   string  `json:"kind"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ComponentSummary is a published component of a file.
type ComponentSummary struct {
	NodeID      string `json:"nodeId"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Frame       string `json:"frame,omitempty"`
	Page        string `json:"page,omitempty"`
}

// Summary is the overview of a file returned by Summarize.
type Summary struct {
	File          FileInfo           `json:"file"`
	Frames        []FrameSummary     `json:"frames"`
	Components    []ComponentSummary `json:"components"`
	WireframeHTML string             `json:"wireframeHtml"`
}

// Summarize lists the frames and components of a file and renders its
// frames into a single wireframe page.
func (im *Importer) Summarize(ctx context.Context, fileKeyOrURL string) (*Summary, error) {
	fileKey, err := ParseFileKey(fileKeyOrURL)
	if err != nil {
		return nil, err
	}

	file, err := im.client.GetFile(ctx, fileKey)
	if err != nil {
		return nil, err
	}
	components, err := im.client.GetComponents(ctx, fileKey)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		File: FileInfo{
			Key:          fileKey,
			Name:         file.Name,
			LastModified: file.LastModified,
			Version:      file.Version,
			ThumbnailURL: file.ThumbnailURL,
		},
		Frames:     []FrameSummary{},
		Components: make([]ComponentSummary, 0, len(components)),
	}

	var body, css strings.Builder
	for _, page := range file.Document.Children {
		if page.Type != "CANVAS" {
			continue
		}
		for _, frame := range page.Children {
			if !frame.IsVisible() || !isTopLevelFrame(frame.Type) {
				continue
			}
			tokens := ExtractTokens(frame)
			summary.Frames = append(summary.Frames, FrameSummary{
				ID:     frame.ID,
				Name:   frame.Name,
				Page:   page.Name,
				Kind:   Classify(tokens).String(),
				Width:  tokens.Width,
				Height: tokens.Height,
			})
			body.WriteString(RenderHTML(tokens))
			body.WriteString("\n")
			css.WriteString(RenderCSS(tokens))
		}
	}

	for _, c := range components {
		summary.Components = append(summary.Components, ComponentSummary{
			NodeID:      c.NodeID,
			Key:         c.Key,
			Name:        c.Name,
			Description: c.Description,
			Frame:       c.ContainingFrame.Name,
			Page:        c.ContainingFrame.PageName,
		})
	}

	summary.WireframeHTML = RenderDocument(file.Name, body.String(), css.String())
	im.logger.Info("Figma file summarized",
		zap.String("file_key", fileKey),
		zap.Int("frames", len(summary.Frames)),
		zap.Int("components", len(summary.Components)))
	return summary, nil
}

func isTopLevelFrame(nodeType string) bool {
	switch nodeType {
	case "FRAME", "COMPONENT", "COMPONENT_SET", "SECTION":
		return true
	}
	return false
}
