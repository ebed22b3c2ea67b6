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

package server

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/config"
	"github.com/designetica/designetica/internal/figma"
	"github.com/designetica/designetica/internal/oauth"
	"github.com/designetica/designetica/internal/registry"
	"github.com/designetica/designetica/internal/resilience"
)

const oauthStartPath = "/api/figmaOAuthStart"

func (s *Server) figmaOAuthStart(c *gin.Context) {
	authURL, state, err := s.oauth.AuthURL()
	if errors.Is(err, oauth.ErrNotConfigured) {
		s.fail(c, resilience.NewNotConfiguredError(
			"Figma OAuth is not configured. Set FIGMA_CLIENT_ID and FIGMA_CLIENT_SECRET, or use a personal access token"))
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info("Figma OAuth flow started", zap.String("correlation_id", c.GetString(correlationKey)))

	if c.Query("mode") == "json" || strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.JSON(http.StatusOK, gin.H{"status": "redirect", "auth_url": authURL, "state": state})
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

func (s *Server) figmaOAuthCallback(c *gin.Context) {
	if providerErr := c.Query("error"); providerErr != "" {
		s.oauthPage(c, http.StatusBadRequest, nil, "Figma denied the authorization request: "+providerErr)
		return
	}

	token, err := s.oauth.Exchange(c.Request.Context(), c.Query("code"), c.Query("state"))
	switch {
	case err == nil:
		s.oauthPage(c, http.StatusOK, token, "")
	case errors.Is(err, oauth.ErrNotConfigured):
		s.oauthPage(c, http.StatusServiceUnavailable, nil, "Figma OAuth is not configured on this server.")
	case errors.Is(err, oauth.ErrMissingCode), errors.Is(err, oauth.ErrInvalidState):
		s.oauthPage(c, http.StatusBadRequest, nil, "The authorization response was invalid or has expired.")
	default:
		s.logger.Error("Figma OAuth callback failed",
			zap.Error(err),
			zap.String("correlation_id", c.GetString(correlationKey)))
		s.oauthPage(c, http.StatusBadGateway, nil, "The token exchange with Figma failed or timed out.")
	}
}

func (s *Server) oauthPage(c *gin.Context, status int, token *oauth.TokenSet, message string) {
	var buf bytes.Buffer
	var err error
	if token != nil {
		err = oauth.WriteSuccessPage(&buf, *token)
	} else {
		err = oauth.WriteFailurePage(&buf, message, oauthStartPath)
	}
	if err != nil {
		s.fail(c, resilience.NewInternalError("failed to render OAuth page", err))
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) figmaOAuthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.oauth.Status())
}

func (s *Server) figmaOAuthDiagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, s.oauth.Diagnostics())
}

// figmaClient picks the token for a request: an explicit personal token from
// the body, then a valid OAuth token, then the configured access token.
func (s *Server) figmaClient(manualToken string) *figma.Client {
	var cfg config.FigmaConfig
	if s.cfg != nil {
		cfg = s.cfg.Figma
	}

	if manualToken = strings.TrimSpace(manualToken); manualToken != "" {
		cfg.AccessToken = manualToken
		return figma.NewClient(cfg, s.logger)
	}
	if s.oauth != nil {
		if token, ok := s.oauth.ValidToken(); ok {
			return figma.NewClient(cfg, s.logger, figma.WithBearerToken(token))
		}
	}
	return figma.NewClient(cfg, s.logger)
}

func (s *Server) figmaImporter(manualToken string) *figma.Importer {
	var store figma.ComponentStore
	if s.registry != nil {
		store = s.registry
	}
	return figma.NewImporter(s.figmaClient(manualToken), store, s.logger)
}

// failFigma reports a figma.Error with its own code and status.
func (s *Server) failFigma(c *gin.Context, err error) {
	var figmaErr *figma.Error
	if !errors.As(err, &figmaErr) {
		s.fail(c, err)
		return
	}

	s.logger.Warn("Figma request failed",
		zap.String("code", figmaErr.Code),
		zap.Error(err),
		zap.String("correlation_id", c.GetString(correlationKey)))

	c.AbortWithStatusJSON(figmaErr.HTTPStatus(), resilience.ErrorResponse{
		Success:   false,
		Error:     figmaErr.Message,
		Code:      figmaErr.Code,
		RequestID: c.GetString(correlationKey),
		Timestamp: time.Now(),
	})
}

// FigmaComponentsRequest is the body of POST /api/figma/components.
type FigmaComponentsRequest struct {
	FileURL     string `json:"fileUrl"`
	FileKey     string `json:"fileKey"`
	AccessToken string `json:"accessToken"`
}

func (s *Server) figmaComponents(c *gin.Context) {
	var req FigmaComponentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, resilience.NewBadRequestError("Invalid request format", err))
		return
	}

	ref := req.FileKey
	if ref == "" {
		ref = req.FileURL
	}
	if strings.TrimSpace(ref) == "" {
		s.fail(c, resilience.NewValidationError("fileUrl or fileKey is required"))
		return
	}

	summary, err := s.figmaImporter(req.AccessToken).Summarize(c.Request.Context(), ref)
	if err != nil {
		s.failFigma(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"file":          summary.File,
		"frames":        summary.Frames,
		"components":    summary.Components,
		"wireframeHtml": summary.WireframeHTML,
	})
}

// FigmaImportRequest is the body of POST /api/figma/import.
type FigmaImportRequest struct {
	FigmaURL     string `json:"figmaUrl"`
	AccessToken  string `json:"accessToken"`
	IncludeImage *bool  `json:"includeImage"`
}

func (s *Server) figmaImport(c *gin.Context) {
	var req FigmaImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, resilience.NewBadRequestError("Invalid request format", err))
		return
	}
	if strings.TrimSpace(req.FigmaURL) == "" {
		s.fail(c, resilience.NewValidationError("figmaUrl is required"))
		return
	}

	importer := s.figmaImporter(req.AccessToken)
	if req.IncludeImage != nil {
		importer.IncludeImage = *req.IncludeImage
	}

	component, err := importer.ImportNode(c.Request.Context(), req.FigmaURL)
	if err != nil {
		s.failFigma(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "component": component})
}

func (s *Server) listComponents(c *gin.Context) {
	components, err := s.registry.List(c.Request.Context())
	if err != nil {
		s.fail(c, resilience.NewInternalError("failed to list components", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "components": components, "count": len(components)})
}

func (s *Server) getComponent(c *gin.Context) {
	component, err := s.registry.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, registry.ErrNotFound) {
		s.fail(c, resilience.NewNotFoundError("component not found", err))
		return
	}
	if err != nil {
		s.fail(c, resilience.NewInternalError("failed to load component", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "component": component})
}

func (s *Server) deleteComponent(c *gin.Context) {
	err := s.registry.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, registry.ErrNotFound) {
		s.fail(c, resilience.NewNotFoundError("component not found", err))
		return
	}
	if err != nil {
		s.fail(c, resilience.NewInternalError("failed to delete component", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": c.Param("id")})
}
