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

package oauth

import (
	"html/template"
	"io"
	"time"
)

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Figma connected</title>
<style>
body { font-family: "Segoe UI", sans-serif; max-width: 640px; margin: 48px auto; color: #323130; }
code { display: block; padding: 12px; background: #f3f2f1; word-break: break-all; }
</style>
</head>
<body>
<h1>Figma connected</h1>
<p>Designetica can now read your Figma files.{{if not .ExpiresAt.IsZero}} The token expires at {{.ExpiresAt.Format "2006-01-02 15:04 MST"}}.{{end}}</p>
<p>Access token:</p>
<code id="figma-token">{{.AccessToken}}</code>
<p>You can close this window.</p>
<script>
if (window.opener) {
  window.opener.postMessage({type: "figma-oauth-success", accessToken: {{.AccessToken}}, expiresIn: {{.ExpiresIn}}}, "*");
}
</script>
</body>
</html>
`))

var failurePage = template.Must(template.New("failure").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Figma authorization failed</title>
<style>
body { font-family: "Segoe UI", sans-serif; max-width: 640px; margin: 48px auto; color: #323130; }
a.retry { display: inline-block; padding: 8px 16px; background: #0078d4; color: #fff; text-decoration: none; }
</style>
</head>
<body>
<h1>Figma authorization failed</h1>
<p>{{.Message}}</p>
<p><a class="retry" href="{{.RetryURL}}">Retry authorization</a></p>
<p>Alternatively, paste a personal access token in the Figma import dialog.</p>
</body>
</html>
`))

// WriteSuccessPage renders the confirmation page embedding the token.
func WriteSuccessPage(w io.Writer, token TokenSet) error {
	return successPage.Execute(w, struct {
		AccessToken string
		ExpiresIn   int64
		ExpiresAt   time.Time
	}{token.AccessToken, token.ExpiresIn, token.ExpiresAt})
}

// WriteFailurePage renders the error page with a link back to retryURL.
func WriteFailurePage(w io.Writer, message, retryURL string) error {
	return failurePage.Execute(w, struct {
		Message  string
		RetryURL string
	}{message, retryURL})
}
