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
	"context"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DNSResult is the outcome of resolving the endpoint host.
type DNSResult struct {
	Host      string   `json:"host"`
	Addresses []string `json:"addresses,omitempty"`
	LatencyMs int64    `json:"latencyMs"`
	Error     string   `json:"error,omitempty"`
}

// TLSResult describes the leaf certificate served by the endpoint.
type TLSResult struct {
	Subject       string    `json:"subject"`
	Issuer        string    `json:"issuer"`
	NotAfter      time.Time `json:"notAfter"`
	DaysRemaining int       `json:"daysRemaining"`
}

// ProbeResult is one log entry.
type ProbeResult struct {
	Endpoint   string     `json:"endpoint"`
	Timestamp  time.Time  `json:"timestamp"`
	Healthy    bool       `json:"healthy"`
	StatusCode int        `json:"statusCode,omitempty"`
	LatencyMs  int64      `json:"latencyMs"`
	Error      string     `json:"error,omitempty"`
	DNS        *DNSResult `json:"dns,omitempty"`
	TLS        *TLSResult `json:"tls,omitempty"`
}

// Prober checks a single endpoint over DNS, HTTP and TLS.
type Prober struct {
	client   *http.Client
	resolver Resolver
	now      func() time.Time
}

// ProberOption configures a Prober
type ProberOption func(*Prober)

// WithHTTPClient replaces the probe client. Its Timeout is kept as is.
func WithHTTPClient(c *http.Client) ProberOption {
	return func(p *Prober) {
		p.client = c
	}
}

// WithResolver replaces the DNS resolver
func WithResolver(r Resolver) ProberOption {
	return func(p *Prober) {
		p.resolver = r
	}
}

// WithClock replaces time.Now for certificate expiry
func WithClock(now func() time.Time) ProberOption {
	return func(p *Prober) {
		p.now = now
	}
}

// NewProber creates a Prober whose requests time out after timeout.
func NewProber(timeout time.Duration, opts ...ProberOption) *Prober {
	p := &Prober{
		client:   &http.Client{Timeout: timeout},
		resolver: net.DefaultResolver,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe resolves the endpoint host, then issues a GET. A DNS failure skips
// the request.
func (p *Prober) Probe(ctx context.Context, endpoint string) ProbeResult {
	result := ProbeResult{Endpoint: endpoint, Timestamp: p.now().UTC()}

	u, err := url.Parse(endpoint)
	if err != nil || u.Hostname() == "" {
		result.Error = fmt.Sprintf("invalid endpoint %q", endpoint)
		return result
	}

	if host := u.Hostname(); net.ParseIP(host) == nil {
		dns := p.lookup(ctx, host)
		result.DNS = &dns
		if dns.Error != "" {
			result.Error = "dns lookup failed: " + dns.Error
			return result
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result
	}
	req.Header.Set("User-Agent", "designetica-monitor")

	start := time.Now()
	resp, err := p.client.Do(req)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	result.StatusCode = resp.StatusCode
	result.Healthy = resp.StatusCode >= 200 && resp.StatusCode < 300

	if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
		leaf := resp.TLS.PeerCertificates[0]
		result.TLS = &TLSResult{
			Subject:       leaf.Subject.String(),
			Issuer:        leaf.Issuer.String(),
			NotAfter:      leaf.NotAfter.UTC(),
			DaysRemaining: int(math.Floor(leaf.NotAfter.Sub(p.now()).Hours() / 24)),
		}
	}
	return result
}

func (p *Prober) lookup(ctx context.Context, host string) DNSResult {
	start := time.Now()
	addrs, err := p.resolver.LookupHost(ctx, host)
	dns := DNSResult{Host: host, Addresses: addrs, LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		dns.Error = err.Error()
	} else if len(addrs) == 0 {
		dns.Error = "no addresses"
	}
	return dns
}
