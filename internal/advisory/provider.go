package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider is one configured external model endpoint. Advise must honor
// ctx's deadline; the service applies a fixed per-call timeout on top of
// whatever the caller supplies.
type Provider interface {
	ID() string
	Advise(ctx context.Context, req Request) (Response, error)
}

// HTTPProvider calls a JSON HTTP endpoint authenticated with an API key
// drawn from AI_PROVIDER_KEYS. The wire format is intentionally the same
// shape as Response, so callers never branch on whether a result came
// from a model or the deterministic fallback.
type HTTPProvider struct {
	id       string
	endpoint *url.URL
	apiKey   string
	client   *http.Client
}

// NewHTTPProvider constructs a provider identified by id and
// authenticated with apiKey, posting requests to endpoint.
func NewHTTPProvider(id, endpoint, apiKey string) (*HTTPProvider, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("advisory provider %s: endpoint is required", id)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("advisory provider %s: parse endpoint: %w", id, err)
	}
	return &HTTPProvider{
		id:       id,
		endpoint: u,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 2 * time.Second},
	}, nil
}

func (p *HTTPProvider) ID() string { return p.id }

func (p *HTTPProvider) Advise(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("advisory provider %s: encode request: %w", p.id, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("advisory provider %s: build request: %w", p.id, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("advisory provider %s: call: %w", p.id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("advisory provider %s: unexpected status %d", p.id, resp.StatusCode)
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("advisory provider %s: decode response: %w", p.id, err)
	}
	out.Source = p.id
	out.Kind = req.Kind
	return out, nil
}
