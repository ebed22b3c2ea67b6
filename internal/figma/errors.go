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
	"fmt"
	"net/http"
)

// Error codes reported by the adapter.
const (
	CodeInvalidURL    = "INVALID_URL"
	CodeMissingToken  = "MISSING_TOKEN"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeRateLimited   = "RATE_LIMITED"
	CodeAPIError      = "API_ERROR"
	CodeDecodeError   = "DECODE_ERROR"
	CodeNodeNotFound  = "NODE_NOT_FOUND"
	CodeStorageFailed = "STORAGE_FAILED"
)

// Error is the structured failure of any Figma operation.
type Error struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("figma %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("figma %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to the status a handler should return.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidURL:
		return http.StatusBadRequest
	case CodeMissingToken, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeNodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeStorageFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func statusError(status int, body string) *Error {
	e := &Error{StatusCode: status, Message: body}
	switch status {
	case http.StatusUnauthorized:
		e.Code, e.Message = CodeUnauthorized, "unauthorized, check the access token"
	case http.StatusForbidden:
		e.Code, e.Message = CodeForbidden, "forbidden, the token may lack access to this file"
	case http.StatusNotFound:
		e.Code, e.Message = CodeNotFound, "file not found, check the file key"
	case http.StatusTooManyRequests:
		e.Code, e.Message = CodeRateLimited, "rate limit exceeded"
	default:
		e.Code = CodeAPIError
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
	}
	return e
}
