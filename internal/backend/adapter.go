// Package backend performs the remote calls behind each workflow stage:
// image upload against the image-processing service, color enhancement and
// clustering against the clustering service, and validation/generation
// against the dxf-export service.
//
// The Adapter is constructed explicitly from a Config holding the three
// base URLs and is the only component that touches the network. Every call
// enforces its own deadline (30s, 60s for export), carries a generated
// X-Request-ID, and normalizes failure into the CallError taxonomy:
// network (no response, timeout flagged), service (error status with the
// backend's own message when present), malformed (response received but
// failing the contract's structural validation).
//
// See DDR-007: Backend Service Adapter for the deployment topologies.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service names used in errors and logs.
const (
	ServiceProcessing = "image-processing"
	ServiceClustering = "clustering"
	ServiceExport     = "dxf-export"
)

// Per-call deadline budgets. Export is allowed longer: the payload is
// larger and the server generates a file before answering.
const (
	callTimeout   = 30 * time.Second
	exportTimeout = 60 * time.Second
	healthTimeout = 10 * time.Second
)

// Adapter is the HTTP client for the three backend services.
type Adapter struct {
	httpClient    *http.Client
	processingURL string
	clusteringURL string
	exportURL     string
}

// NewAdapter creates an Adapter for the configured base URLs.
// Deadlines are per call, so the underlying client carries no timeout.
func NewAdapter(cfg Config) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backend config: %w", err)
	}
	return &Adapter{
		httpClient:    &http.Client{},
		processingURL: cfg.ProcessingURL,
		clusteringURL: cfg.ClusteringURL,
		exportURL:     cfg.ExportURL,
	}, nil
}

// postJSON sends payload as a JSON POST and decodes the 2xx response into
// out. Pass a nil out to discard the body.
func (a *Adapter) postJSON(ctx context.Context, service, operation, callURL string, timeout time.Duration, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, _, err := a.send(req, service, operation, timeout)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return malformedResponse(service, operation,
			fmt.Errorf("parse response: %w (body: %s)", err, truncate(string(respBody), 200)))
	}
	return nil
}

// getJSON sends a GET and decodes the 2xx response into out.
func (a *Adapter) getJSON(ctx context.Context, service, operation, callURL string, timeout time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callURL, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}

	respBody, _, err := a.send(req, service, operation, timeout)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return malformedResponse(service, operation,
			fmt.Errorf("parse response: %w (body: %s)", err, truncate(string(respBody), 200)))
	}
	return nil
}

// send executes the request and returns the body of a 2xx response.
// Transport failures, error statuses, and unreadable bodies are normalized
// into CallErrors; timeout detection relies on the deadline already set on
// the request context.
func (a *Adapter) send(req *http.Request, service, operation string, budget time.Duration) ([]byte, http.Header, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	log.Debug().
		Str("service", service).
		Str("operation", operation).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("requestId", requestID).
		Msg("Backend request")

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Debug().
			Str("service", service).
			Str("operation", operation).
			Dur("duration", duration).
			Err(err).
			Msg("Backend request failed")
		return nil, nil, networkError(service, operation, err, budget)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, networkError(service, operation, fmt.Errorf("read response: %w", err), budget)
	}

	log.Debug().
		Str("service", service).
		Str("operation", operation).
		Int("statusCode", resp.StatusCode).
		Int("bodyBytes", len(body)).
		Dur("duration", duration).
		Msg("Backend response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		svcErr := serviceError(service, operation, resp.StatusCode, body)
		log.Warn().
			Str("service", service).
			Str("operation", operation).
			Int("statusCode", resp.StatusCode).
			Str("message", svcErr.Message).
			Msg("Backend error response")
		return nil, nil, svcErr
	}

	return body, resp.Header, nil
}
