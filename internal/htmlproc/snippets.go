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

import "html"

const navigationSnippet = `<nav class="ds-nav" data-component="Navigation">
  <a class="ds-nav__brand" href="#">Home</a>
  <ul class="ds-nav__links">
    <li><a href="#">Products</a></li>
    <li><a href="#">Solutions</a></li>
    <li><a href="#">Resources</a></li>
    <li><a href="#">Contact</a></li>
  </ul>
</nav>`

const footerSnippet = `<footer class="ds-footer" data-component="Footer">
  <ul class="ds-footer__links">
    <li><a href="#">Privacy</a></li>
    <li><a href="#">Terms</a></li>
    <li><a href="#">Accessibility</a></li>
  </ul>
</footer>`

func heroSnippet(title string) string {
	if title == "" {
		title = "Welcome"
	}
	return `<section class="ds-hero hero" data-component="Hero">
  <h1>` + html.EscapeString(title) + `</h1>
  <p>Supporting copy describing the page.</p>
  <button class="ds-button ds-button--primary" data-component="Button" type="button">Get started</button>
</section>`
}
