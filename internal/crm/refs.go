package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
)

// Ref is one lookup endpoint of the CRM reference API.
type Ref struct {
	Name  string
	Path  string
	Query url.Values
}

// DefaultRefs are the lookups operators need to maintain mapping.yaml.
func DefaultRefs() []Ref {
	return []Ref{
		{Name: "user", Path: "auth/user"},
		{Name: "organizations", Path: "load-organizations"},
		{Name: "trade points", Path: "load-trade-points", Query: url.Values{"organization_id": {"1"}}},
		{Name: "cities", Path: "cities-list"},
		{Name: "payment options", Path: "payment-options"},
		{Name: "sales channels", Path: "order/sales-channels"},
		{Name: "cashboxes", Path: "cashboxes", Query: url.Values{"per_page": {"50"}, "page": {"1"}}},
		{Name: "nomenclature balances", Path: "nomenclature-item-balance", Query: url.Values{"per_page": {"100"}, "page": {"1"}}},
		{Name: "nomenclatures", Path: "nomenclatures", Query: url.Values{"per_page": {"100"}, "page": {"1"}}},
	}
}

// RefsClient reads the CRM lookup endpoints.
type RefsClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewRefsClient(baseURL, token string, timeout time.Duration) *RefsClient {
	return &RefsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: observability.NewHTTPClient(timeout),
	}
}

// Fetch GETs ref and returns its body indented. Non-200 answers are errors
// carrying the start of the body.
func (c *RefsClient) Fetch(ctx context.Context, ref Ref) ([]byte, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}
	u := c.baseURL + "/" + strings.TrimLeft(ref.Path, "/")
	if len(ref.Query) > 0 {
		u += "?" + ref.Query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", ref.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d: %s", ref.Path, resp.StatusCode, truncate(string(raw)))
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref.Path, err)
	}
	return out.Bytes(), nil
}
