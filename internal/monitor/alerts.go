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

package monitor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertType classifies an alert.
type AlertType string

const (
	AlertDNSFailure     AlertType = "DNS_FAILURE"
	AlertRequestFailed  AlertType = "REQUEST_FAILED"
	AlertHTTPStatus     AlertType = "HTTP_STATUS"
	AlertHighLatency    AlertType = "HIGH_LATENCY"
	AlertCertExpiring   AlertType = "CERT_EXPIRING"
)

const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is one entry of the alerts file.
type Alert struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Endpoint  string    `json:"endpoint"`
	Type      AlertType `json:"type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
}

// Thresholds for alerting. Zero values disable the check.
type Thresholds struct {
	Latency        time.Duration
	CertExpiryDays int
}

// Evaluate returns the alerts raised by a probe result.
func Evaluate(r ProbeResult, th Thresholds) []Alert {
	var alerts []Alert
	raise := func(typ AlertType, severity, format string, args ...any) {
		alerts = append(alerts, Alert{
			ID:        uuid.NewString(),
			Timestamp: r.Timestamp,
			Endpoint:  r.Endpoint,
			Type:      typ,
			Severity:  severity,
			Message:   fmt.Sprintf(format, args...),
		})
	}

	switch {
	case r.DNS != nil && r.DNS.Error != "":
		raise(AlertDNSFailure, SeverityCritical, "DNS lookup for %s failed: %s", r.DNS.Host, r.DNS.Error)
		return alerts
	case r.StatusCode == 0:
		raise(AlertRequestFailed, SeverityCritical, "%s is unreachable: %s", r.Endpoint, r.Error)
		return alerts
	case r.StatusCode >= 500:
		raise(AlertHTTPStatus, SeverityCritical, "%s returned HTTP %d", r.Endpoint, r.StatusCode)
	case r.StatusCode < 200 || r.StatusCode >= 300:
		raise(AlertHTTPStatus, SeverityWarning, "%s returned HTTP %d", r.Endpoint, r.StatusCode)
	}

	if th.Latency > 0 && time.Duration(r.LatencyMs)*time.Millisecond > th.Latency {
		raise(AlertHighLatency, SeverityWarning, "%s responded in %dms, threshold %dms",
			r.Endpoint, r.LatencyMs, th.Latency.Milliseconds())
	}

	if r.TLS != nil && th.CertExpiryDays > 0 {
		switch days := r.TLS.DaysRemaining; {
		case days < 0:
			raise(AlertCertExpiring, SeverityCritical, "certificate for %s expired on %s",
				r.Endpoint, r.TLS.NotAfter.Format("2006-01-02"))
		case days <= th.CertExpiryDays:
			raise(AlertCertExpiring, SeverityWarning, "certificate for %s expires in %d days",
				r.Endpoint, days)
		}
	}
	return alerts
}
