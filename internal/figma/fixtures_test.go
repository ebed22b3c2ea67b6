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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureFile = `{
  "name": "Storefront",
  "lastModified": "2024-05-01T10:00:00Z",
  "version": "42",
  "thumbnailUrl": "https://example.com/thumb.png",
  "document": {
    "id": "0:0", "name": "Document", "type": "DOCUMENT",
    "children": [{
      "id": "0:1", "name": "Page 1", "type": "CANVAS",
      "children": [{
        "id": "1:234", "name": "Product Card", "type": "FRAME",
        "absoluteBoundingBox": {"x": 0, "y": 0, "width": 320, "height": 200},
        "fills": [{"type": "SOLID", "color": {"r": 1, "g": 1, "b": 1, "a": 1}}],
        "strokes": [{"type": "SOLID", "color": {"r": 0.8, "g": 0.8, "b": 0.8, "a": 1}}],
        "strokeWeight": 1,
        "cornerRadius": 8,
        "layoutMode": "VERTICAL",
        "itemSpacing": 12,
        "paddingTop": 16, "paddingRight": 16, "paddingBottom": 16, "paddingLeft": 16,
        "children": [
          {
            "id": "1:235", "name": "Title", "type": "TEXT",
            "characters": "Wireless <Headphones>",
            "style": {"fontFamily": "Inter", "fontSize": 24, "fontWeight": 700, "lineHeightPx": 32, "textAlignHorizontal": "LEFT"},
            "fills": [{"type": "SOLID", "color": {"r": 0, "g": 0, "b": 0, "a": 1}}]
          },
          {
            "id": "1:236", "name": "Buy Button", "type": "FRAME",
            "absoluteBoundingBox": {"x": 0, "y": 0, "width": 120, "height": 40},
            "fills": [{"type": "SOLID", "color": {"r": 0, "g": 0.47, "b": 0.83, "a": 1}}],
            "cornerRadius": 4,
            "children": [{"id": "1:237", "name": "Label", "type": "TEXT", "characters": "Buy now"}]
          },
          {"id": "1:238", "name": "Draft note", "type": "TEXT", "visible": false, "characters": "secret"}
        ]
      }, {
        "id": "2:1", "name": "Marketing Hero", "type": "FRAME",
        "absoluteBoundingBox": {"x": 400, "y": 0, "width": 1200, "height": 480},
        "children": [{"id": "2:2", "name": "Headline", "type": "TEXT", "characters": "Sound, reimagined"}]
      }, {
        "id": "3:1", "name": "loose text", "type": "TEXT", "characters": "not a frame"
      }]
    }]
  }
}`

const fixtureComponents = `{
  "status": 200,
  "error": false,
  "meta": {
    "components": [{
      "key": "c0ffee",
      "file_key": "ABC123",
      "node_id": "1:234",
      "name": "Card / Product",
      "description": "Product tile with purchase button",
      "thumbnail_url": "https://example.com/card.png",
      "containing_frame": {"name": "Cards", "nodeId": "1:1", "pageName": "Page 1"}
    }]
  }
}`

func fixtureNode(t *testing.T) Node {
	t.Helper()
	var file File
	require.NoError(t, json.Unmarshal([]byte(fixtureFile), &file))
	node, ok := FindNode(&file.Document, "1:234")
	require.True(t, ok)
	return *node
}

// fakeAPI serves the Figma endpoints used by the adapter.
type fakeAPI struct {
	mu         sync.Mutex
	requests   []*http.Request
	rateLimits int
	imageErr   bool
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(r.Context()))
		limited := f.rateLimits > 0
		if limited {
			f.rateLimits--
		}
		imageErr := f.imageErr
		f.mu.Unlock()

		if limited {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		if r.Header.Get("X-Figma-Token") == "" && !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/files/ABC123/components":
			_, _ = w.Write([]byte(fixtureComponents))
		case r.URL.Path == "/files/ABC123":
			_, _ = w.Write([]byte(fixtureFile))
		case r.URL.Path == "/images/ABC123":
			if imageErr {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"err": null, "images": {"1:234": "https://example.com/1-234.svg"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status": 404, "err": "Not found"}`))
		}
	})
}

func (f *fakeAPI) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.URL.Path)
	}
	return out
}

func (f *fakeAPI) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return api, srv
}
