// Package ors implements the routing client against the OpenRouteService
// directions API. Route durations come from the geojson response summary;
// transient failures are retried with exponential backoff before the
// client gives up and reports the provider unavailable.
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const (
	// DefaultBaseURL is the public OpenRouteService endpoint.
	DefaultBaseURL = "https://api.openrouteservice.org"

	profile        = "driving-car"
	requestTimeout = 10 * time.Second
	maxAttempts    = 4
	initialBackoff = 200 * time.Millisecond
)

// Client calls the OpenRouteService directions API.
// The client is safe for concurrent use.
type Client struct {
	session *http.Client
	apiKey  string
	baseURL string
}

// NewClient creates an OpenRouteService client. The API key is required;
// an empty baseURL falls back to the public endpoint.
func NewClient(apiKey string, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, errs.NewValueIsRequiredError("apiKey")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		session: &http.Client{Timeout: requestTimeout},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Duration float64 `json:"duration"`
				Distance float64 `json:"distance"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Route returns the driving duration for visiting the stops in order.
// Provider failures are wrapped in ports.ErrRoutingUnavailable so callers
// can treat them as a wait condition rather than a fault.
func (c *Client) Route(ctx context.Context, stops []kernel.GeoPoint) (time.Duration, error) {
	if len(stops) < 2 {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"stops", fmt.Errorf("%d stops is fewer than 2", len(stops)))
	}
	for _, stop := range stops {
		if err := stop.Validate(); err != nil {
			return 0, err
		}
	}

	// ORS expects lng/lat pairs.
	coordinates := make([][]float64, 0, len(stops))
	for _, stop := range stops {
		coordinates = append(coordinates, []float64{stop.Lng(), stop.Lat()})
	}

	body, err := json.Marshal(directionsRequest{Coordinates: coordinates})
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/v2/directions/%s/geojson", c.baseURL, profile)

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, url, bytes.NewReader(body))
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: %w", ports.ErrRoutingUnavailable, err)
	}
	defer resp.Body.Close()

	var parsed directionsResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("%w: decode directions response: %w", ports.ErrRoutingUnavailable, err)
	}
	if len(parsed.Features) == 0 {
		return 0, fmt.Errorf("%w: directions response has no features", ports.ErrRoutingUnavailable)
	}

	seconds := parsed.Features[0].Properties.Summary.Duration
	return time.Duration(seconds * float64(time.Second)), nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (c *Client) newRequest(
	ctx context.Context, method string, url string, body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) using exponential backoff while respecting context
// cancellation.
func (c *Client) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	backoff := initialBackoff

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case http.StatusTooManyRequests,
				http.StatusInternalServerError,
				http.StatusBadGateway,
				http.StatusServiceUnavailable,
				http.StatusGatewayTimeout:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
