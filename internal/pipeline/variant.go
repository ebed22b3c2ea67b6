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

package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/designetica/designetica/internal/prompt"
)

// DefaultVariant is used when a request names no variant.
const DefaultVariant = "standard"

// Variant parameterizes the prompt, post-processing and filtering steps.
type Variant struct {
	Name                      string
	PromptStyle               prompt.Style
	BrandingFilterEnabled     bool
	ComponentInjectionEnabled bool
}

var presets = map[string]Variant{
	"standard": {Name: "standard", PromptStyle: prompt.StyleStandard, ComponentInjectionEnabled: true},
	"minimal":  {Name: "minimal", PromptStyle: prompt.StyleMinimal},
	"clean":    {Name: "clean", PromptStyle: prompt.StyleClean, BrandingFilterEnabled: true},
	"pure-ai":  {Name: "pure-ai", PromptStyle: prompt.StylePureAI},
	"enhanced": {Name: "enhanced", PromptStyle: prompt.StyleEnhanced, ComponentInjectionEnabled: true},
}

// LookupVariant returns the preset for name. Names are case-insensitive and an
// empty name selects DefaultVariant.
func LookupVariant(name string) (Variant, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultVariant
	}
	v, ok := presets[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown variant %q (available: %s)", name, strings.Join(VariantNames(), ", "))
	}
	return v, nil
}

// VariantNames lists the preset names in sorted order.
func VariantNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
