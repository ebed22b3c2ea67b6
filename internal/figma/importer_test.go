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
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/designetica/designetica/internal/registry"
)

type memoryStore struct {
	saved []registry.Component
	err   error
}

func (m *memoryStore) Upsert(_ context.Context, c registry.Component) (*registry.Component, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.saved = append(m.saved, c)
	return &c, nil
}

const nodeURL = "https://www.figma.com/design/ABC123/Storefront?node-id=1-234"

func TestImportNode(t *testing.T) {
	api, srv := newFakeAPI(t)
	store := &memoryStore{}
	importer := NewImporter(newTestClient(t, srv.URL, "figd_test"), store, zaptest.NewLogger(t))

	component, err := importer.ImportNode(context.Background(), nodeURL)
	require.NoError(t, err)

	assert.Equal(t, "ABC123:1:234", component.ID)
	assert.Equal(t, "Card / Product", component.Name, "published component name wins")
	assert.Contains(t, component.HTML, `class="fig-1-234 fig-card"`)
	assert.Contains(t, component.CSS, ".fig-1-236 {")
	assert.Equal(t, "figma", component.Metadata["source"])
	assert.Equal(t, "card", component.Metadata["kind"])
	assert.Equal(t, "c0ffee", component.Metadata["componentKey"])
	assert.Equal(t, "Storefront", component.Metadata["fileName"])
	assert.Equal(t, "https://example.com/1-234.svg", component.Metadata["svgUrl"])
	require.Len(t, store.saved, 1)

	assert.Equal(t, []string{"/files/ABC123/components", "/files/ABC123", "/images/ABC123"}, api.paths())
}

func TestImportNodeWithoutImage(t *testing.T) {
	api, srv := newFakeAPI(t)
	importer := NewImporter(newTestClient(t, srv.URL, "figd_test"), &memoryStore{}, nil)
	importer.IncludeImage = false

	component, err := importer.ImportNode(context.Background(), nodeURL)
	require.NoError(t, err)
	assert.NotContains(t, component.Metadata, "svgUrl")
	assert.Len(t, api.paths(), 2)
}

func TestImportNodeImageFailureIsNotFatal(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.imageErr = true
	importer := NewImporter(newTestClient(t, srv.URL, "figd_test"), &memoryStore{}, zaptest.NewLogger(t))

	component, err := importer.ImportNode(context.Background(), nodeURL)
	require.NoError(t, err)
	assert.NotContains(t, component.Metadata, "svgUrl")
}

func TestImportNodeErrors(t *testing.T) {
	_, srv := newFakeAPI(t)

	tests := []struct {
		name  string
		url   string
		token string
		store *memoryStore
		code  string
	}{
		{"malformed URL", "https://example.com/x", "figd_test", &memoryStore{}, CodeInvalidURL},
		{"missing node id", "https://www.figma.com/design/ABC123/Storefront", "figd_test", &memoryStore{}, CodeInvalidURL},
		{"missing token", nodeURL, "", &memoryStore{}, CodeMissingToken},
		{"unknown file", "https://www.figma.com/design/OTHER/x?node-id=1-234", "figd_test", &memoryStore{}, CodeNotFound},
		{"unknown node", "https://www.figma.com/design/ABC123/x?node-id=9-9", "figd_test", &memoryStore{}, CodeNodeNotFound},
		{"storage failure", nodeURL, "figd_test", &memoryStore{err: errors.New("disk full")}, CodeStorageFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importer := NewImporter(newTestClient(t, srv.URL, tt.token), tt.store, zaptest.NewLogger(t))
			component, err := importer.ImportNode(context.Background(), tt.url)
			assert.Nil(t, component)
			assert.Equal(t, tt.code, asFigmaError(t, err).Code)
			assert.Empty(t, tt.store.saved)
		})
	}
}

func TestImportNodeOverwritesByID(t *testing.T) {
	_, srv := newFakeAPI(t)
	store, err := registry.NewStore(filepath.Join(t.TempDir(), "components.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	importer := NewImporter(newTestClient(t, srv.URL, "figd_test"), store, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err = importer.ImportNode(ctx, nodeURL)
	require.NoError(t, err)
	_, err = importer.ImportNode(ctx, nodeURL)
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	saved, err := store.Get(ctx, "ABC123:1:234")
	require.NoError(t, err)
	assert.Equal(t, "card", saved.Metadata["kind"])
}

func TestSummarize(t *testing.T) {
	_, srv := newFakeAPI(t)
	importer := NewImporter(newTestClient(t, srv.URL, "figd_test"), nil, zaptest.NewLogger(t))

	summary, err := importer.Summarize(context.Background(), "https://www.figma.com/file/ABC123/Storefront")
	require.NoError(t, err)

	assert.Equal(t, FileInfo{
		Key:          "ABC123",
		Name:         "Storefront",
		LastModified: "2024-05-01T10:00:00Z",
		Version:      "42",
		ThumbnailURL: "https://example.com/thumb.png",
	}, summary.File)

	require.Len(t, summary.Frames, 2, "loose text on the page is not a frame")
	assert.Equal(t, FrameSummary{ID: "1:234", Name: "Product Card", Page: "Page 1", Kind: "card", Width: 320, Height: 200}, summary.Frames[0])
	assert.Equal(t, "hero", summary.Frames[1].Kind)

	require.Len(t, summary.Components, 1)
	assert.Equal(t, ComponentSummary{
		NodeID:      "1:234",
		Key:         "c0ffee",
		Name:        "Card / Product",
		Description: "Product tile with purchase button",
		Frame:       "Cards",
		Page:        "Page 1",
	}, summary.Components[0])

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(summary.WireframeHTML))
	require.NoError(t, err)
	assert.Equal(t, "Storefront", doc.Find("title").Text())
	assert.Equal(t, 1, doc.Find("body div.fig-card").Length())
	assert.Equal(t, "Sound, reimagined", doc.Find("body section.fig-hero p").Text())
}

func TestSummarizeAcceptsFileKey(t *testing.T) {
	_, srv := newFakeAPI(t)
	importer := NewImporter(newTestClient(t, srv.URL, "figd_test"), nil, nil)

	summary, err := importer.Summarize(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", summary.File.Key)

	_, err = importer.Summarize(context.Background(), "not a key!")
	assert.Equal(t, CodeInvalidURL, asFigmaError(t, err).Code)
}
