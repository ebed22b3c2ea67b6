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
	"net/url"
	"regexp"
	"strings"
)

// Ref identifies a file, and optionally a node, referenced by a Figma URL.
type Ref struct {
	FileKey string
	NodeID  string
	Kind    string
}

var (
	fileKeyPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	nodeIDPattern  = regexp.MustCompile(`^[0-9]+[-:][0-9]+(?:[;_-][0-9]+[-:][0-9]+)*$`)
)

// ParseURL extracts the file key and node id from a Figma URL. Supported shapes:
//
//	https://www.figma.com/design/<key>/<name>?node-id=1-234
//	https://www.figma.com/file/<key>/<name>?node-id=1-234
//	https://www.figma.com/proto/<key>/<name>?node-id=1-234
//	https://www.figma.com/design/<key>/branch/<branchKey>/<name>
//
// The dash separated node id of the URL is returned in the colon separated
// form the REST API expects. Malformed input returns an INVALID_URL error.
func ParseURL(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, newError(CodeInvalidURL, "empty Figma URL", nil)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Ref{}, newError(CodeInvalidURL, "unparseable Figma URL", err)
	}

	host := strings.ToLower(u.Hostname())
	if host != "figma.com" && !strings.HasSuffix(host, ".figma.com") {
		return Ref{}, newError(CodeInvalidURL, "not a Figma URL: host is "+host, nil)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return Ref{}, newError(CodeInvalidURL, "expected figma.com/<design|file|proto>/<fileKey>", nil)
	}

	ref := Ref{Kind: parts[0], FileKey: parts[1]}
	switch ref.Kind {
	case "design", "file", "proto", "board":
	default:
		return Ref{}, newError(CodeInvalidURL, "unsupported Figma URL type: "+ref.Kind, nil)
	}

	if len(parts) >= 4 && parts[2] == "branch" {
		ref.FileKey = parts[3]
	}
	if !fileKeyPattern.MatchString(ref.FileKey) {
		return Ref{}, newError(CodeInvalidURL, "invalid file key in Figma URL", nil)
	}

	if nodeID := u.Query().Get("node-id"); nodeID != "" {
		if !nodeIDPattern.MatchString(nodeID) {
			return Ref{}, newError(CodeInvalidURL, "invalid node-id in Figma URL", nil)
		}
		ref.NodeID = NormalizeNodeID(nodeID)
	}

	return ref, nil
}

// NormalizeNodeID converts "1-234" to the API form "1:234".
func NormalizeNodeID(id string) string {
	return strings.ReplaceAll(id, "-", ":")
}

// ParseFileKey accepts either a bare file key or a Figma URL.
func ParseFileKey(keyOrURL string) (string, error) {
	keyOrURL = strings.TrimSpace(keyOrURL)
	if fileKeyPattern.MatchString(keyOrURL) {
		return keyOrURL, nil
	}
	ref, err := ParseURL(keyOrURL)
	if err != nil {
		return "", err
	}
	return ref.FileKey, nil
}
