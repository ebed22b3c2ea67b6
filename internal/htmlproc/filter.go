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

package htmlproc

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultDenyList holds the brand terms removed in clean mode.
var DefaultDenyList = []string{
	"Microsoft 365",
	"Microsoft",
	"Office 365",
	"Azure",
	"Fluent UI",
	"Windows",
	"Atlas",
	"Figma",
	"OpenAI",
}

// DefaultReplacement is substituted for a denied term.
const DefaultReplacement = "Company"

var filteredAttributes = []string{"alt", "title", "placeholder", "aria-label", "content"}

// ContentFilter replaces deny-listed terms. Matching is case-insensitive and
// limited to whole words; longer terms win over their prefixes.
type ContentFilter struct {
	terms       []string
	replacement string
	pattern     *regexp.Regexp
}

// NewContentFilter builds a filter for terms. Blank terms are ignored.
func NewContentFilter(terms []string, replacement string) *ContentFilter {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })

	f := &ContentFilter{terms: cleaned, replacement: replacement}
	if len(cleaned) == 0 {
		return f
	}

	quoted := make([]string, len(cleaned))
	for i, t := range cleaned {
		quoted[i] = regexp.QuoteMeta(t)
	}
	f.pattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return f
}

// DefaultContentFilter uses DefaultDenyList and DefaultReplacement.
func DefaultContentFilter() *ContentFilter {
	return NewContentFilter(DefaultDenyList, DefaultReplacement)
}

// Terms returns the deny-list, longest first.
func (f *ContentFilter) Terms() []string {
	return append([]string(nil), f.terms...)
}

// Apply returns s with every denied term replaced.
func (f *ContentFilter) Apply(s string) string {
	if f == nil || f.pattern == nil {
		return s
	}
	return f.pattern.ReplaceAllString(s, f.replacement)
}

// Matches lists the denied terms found in s, in order of appearance.
func (f *ContentFilter) Matches(s string) []string {
	if f == nil || f.pattern == nil {
		return nil
	}
	return f.pattern.FindAllString(s, -1)
}

// ApplyDocument filters visible text nodes and descriptive attributes.
// Script and style contents are left alone.
func (f *ContentFilter) ApplyDocument(doc *goquery.Document) {
	if f == nil || f.pattern == nil {
		return
	}

	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) != "#text" {
			return
		}
		switch goquery.NodeName(s.Parent()) {
		case "script", "style":
			return
		}
		node := s.Get(0)
		node.Data = f.Apply(node.Data)
	})

	for _, attr := range filteredAttributes {
		doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			if v, ok := s.Attr(attr); ok {
				s.SetAttr(attr, f.Apply(v))
			}
		})
	}
}
