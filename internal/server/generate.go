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
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/pipeline"
	"github.com/designetica/designetica/internal/resilience"
)

// GenerateRequest is the body of POST /api/generate-wireframe.
type GenerateRequest struct {
	Description string `json:"description"`
	Theme       string `json:"theme"`
	ColorScheme string `json:"colorScheme"`
	FastMode    bool   `json:"fastMode"`
	Variant     string `json:"variant"`
	// Probe asks only whether the AI path is available; the model is not called.
	Probe bool `json:"probe"`
}

// GenerateMetadata describes how a response was produced.
type GenerateMetadata struct {
	CorrelationID    string `json:"correlationId"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	Variant          string `json:"variant,omitempty"`
	FastMode         bool   `json:"fastMode"`
}

// GenerateResponse is the success body of POST /api/generate-wireframe.
type GenerateResponse struct {
	Success     bool             `json:"success"`
	HTML        string           `json:"html,omitempty"`
	Source      string           `json:"source,omitempty"`
	AIGenerated bool             `json:"aiGenerated"`
	Probe       bool             `json:"probe,omitempty"`
	Warning     string           `json:"warning,omitempty"`
	Metadata    GenerateMetadata `json:"metadata"`
}

var numericPattern = regexp.MustCompile(`^[+-]?[0-9][0-9.,\s]*$`)

// validateDescription rejects blank and purely numeric descriptions.
func validateDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return resilience.NewValidationError("description is required")
	}
	if numericPattern.MatchString(description) {
		return resilience.NewValidationError("description must describe a UI, not a number")
	}
	return nil
}

func (s *Server) generateWireframe(c *gin.Context) {
	correlationID := c.GetString(correlationKey)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, resilience.NewBadRequestError("Invalid request format", err))
		return
	}

	if req.Probe {
		c.JSON(http.StatusOK, GenerateResponse{
			Success:     true,
			AIGenerated: s.pipeline.Configured(),
			Probe:       true,
			Metadata:    GenerateMetadata{CorrelationID: correlationID},
		})
		return
	}

	if err := validateDescription(req.Description); err != nil {
		s.fail(c, err)
		return
	}

	variant := req.Variant
	if variant == "" && s.cfg != nil {
		variant = s.cfg.Generation.Variant
	}

	s.logger.Info("Generation request received",
		zap.String("correlation_id", correlationID),
		zap.String("variant", variant),
		zap.Bool("fast_mode", req.FastMode),
		zap.Int("description_length", len(req.Description)))

	out, err := s.pipeline.Generate(c.Request.Context(), pipeline.Request{
		Description: req.Description,
		Theme:       req.Theme,
		ColorScheme: req.ColorScheme,
		Variant:     variant,
		FastMode:    req.FastMode,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Success:     true,
		HTML:        out.HTML,
		Source:      out.Source,
		AIGenerated: out.AIGenerated,
		Warning:     out.Warning,
		Metadata: GenerateMetadata{
			CorrelationID:    correlationID,
			ProcessingTimeMs: out.Duration.Milliseconds(),
			Variant:          out.Variant,
			FastMode:         req.FastMode,
		},
	})
}
