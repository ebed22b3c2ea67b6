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

package fallback

import "html/template"

var pageTemplate = template.Must(template.New("fallback").Parse(`<!DOCTYPE html>
<html lang="en" data-theme="{{.Theme}}">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: 'Segoe UI', -apple-system, sans-serif; background: {{.Palette.Background}}; color: {{.Palette.Text}}; }
header { background: {{.Palette.Primary}}; color: #ffffff; padding: 16px 32px; display: flex; justify-content: space-between; align-items: center; }
header nav a { color: #ffffff; margin-left: 24px; text-decoration: none; }
main { max-width: 1080px; margin: 0 auto; padding: 32px; }
.hero { background: {{.Palette.Surface}}; border-radius: 8px; padding: 40px; margin-bottom: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }
.hero p { color: {{.Palette.Muted}}; font-size: 18px; }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(240px, 1fr)); gap: 24px; margin-bottom: 32px; }
.card { background: {{.Palette.Surface}}; border-radius: 8px; padding: 24px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }
.stat { font-size: 32px; font-weight: 600; color: {{.Palette.Primary}}; }
label { display: block; margin: 16px 0 6px; font-weight: 600; }
input, textarea { width: 100%; box-sizing: border-box; padding: 10px; border: 1px solid #c8c6c4; border-radius: 4px; }
table { width: 100%; border-collapse: collapse; background: {{.Palette.Surface}}; }
th, td { text-align: left; padding: 12px; border-bottom: 1px solid #edebe9; }
.btn { background: {{.Palette.Primary}}; color: #ffffff; border: none; border-radius: 4px; padding: 10px 20px; font-size: 15px; cursor: pointer; }
.btn:hover { background: {{.Palette.Accent}}; }
.btn-secondary { background: transparent; color: {{.Palette.Primary}}; border: 1px solid {{.Palette.Primary}}; }
footer { text-align: center; color: {{.Palette.Muted}}; padding: 24px; }
</style>
</head>
<body>
<header>
<strong>{{.Title}}</strong>
<nav><a href="#">Home</a><a href="#">About</a><a href="#">Contact</a></nav>
</header>
<main>
<section class="hero">
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
<button class="btn" type="button">Get Started</button>
<button class="btn btn-secondary" type="button">Learn More</button>
</section>
{{range .Sections}}{{if eq . "login"}}
<section class="card" style="max-width: 420px;">
<h2>Sign In</h2>
<form>
<label for="email">Email</label>
<input id="email" type="email" placeholder="you@example.com">
<label for="password">Password</label>
<input id="password" type="password" placeholder="Password">
<p><button class="btn" type="submit">Sign In</button></p>
</form>
</section>
{{else if eq . "form"}}
<section class="card">
<h2>Your Details</h2>
<form>
<label for="name">Name</label>
<input id="name" type="text" placeholder="Full name">
<label for="contact-email">Email</label>
<input id="contact-email" type="email" placeholder="you@example.com">
<label for="message">Message</label>
<textarea id="message" rows="4" placeholder="How can we help?"></textarea>
<p><button class="btn" type="submit">Submit</button></p>
</form>
</section>
{{else if eq . "dashboard"}}
<section class="grid">
<div class="card"><div>Total Users</div><div class="stat">1,248</div></div>
<div class="card"><div>Active Sessions</div><div class="stat">312</div></div>
<div class="card"><div>Conversion</div><div class="stat">4.7%</div></div>
</section>
{{else if eq . "table"}}
<section class="card">
<h2>Items</h2>
<table>
<thead><tr><th>Name</th><th>Status</th><th>Updated</th></tr></thead>
<tbody>
<tr><td>Item One</td><td>Active</td><td>Today</td></tr>
<tr><td>Item Two</td><td>Pending</td><td>Yesterday</td></tr>
<tr><td>Item Three</td><td>Archived</td><td>Last week</td></tr>
</tbody>
</table>
</section>
{{else}}
<section class="grid">
<div class="card"><h3>Feature One</h3><p>Describe the first key capability.</p></div>
<div class="card"><h3>Feature Two</h3><p>Describe the second key capability.</p></div>
<div class="card"><h3>Feature Three</h3><p>Describe the third key capability.</p></div>
</section>
{{end}}{{end}}
</main>
<footer>Generated wireframe preview</footer>
</body>
</html>
`))
