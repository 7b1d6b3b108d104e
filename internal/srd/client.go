// Package srd loads and caches rule-reference tables from a 5e SRD API
// service. The service is an external collaborator: every lookup tolerates
// partial or unavailable data and degrades to empty tables.
package srd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/config"
)

// ErrUnavailable indicates the rules service could not serve a category.
var ErrUnavailable = errors.New("reference data unavailable")

// Record is one reference table row. The registry of categories is
// open-ended, so rows stay schemaless beyond the name/index contract.
type Record map[string]any

// Index returns the record's normalized index, falling back to the name.
func (r Record) Index() string {
	if idx, ok := r["index"].(string); ok && idx != "" {
		return NormalizeIndex(idx)
	}
	if name, ok := r["name"].(string); ok {
		return NormalizeIndex(strings.ToLower(strings.ReplaceAll(name, " ", "-")))
	}
	return ""
}

// Name returns the record's display name.
func (r Record) Name() string {
	if name, ok := r["name"].(string); ok {
		return name
	}
	return r.Index()
}

// NormalizeIndex converts a service index to the canonical key form used by
// all downstream lookups: hyphens and spaces become underscores.
func NormalizeIndex(index string) string {
	key := strings.TrimSpace(strings.ToLower(index))
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ReplaceAll(key, " ", "_")
}

var abilityShortNames = map[string]string{
	"str": "strength",
	"dex": "dexterity",
	"con": "constitution",
	"int": "intelligence",
	"wis": "wisdom",
	"cha": "charisma",
}

// expandAbility maps a short ability index (str, dex, ...) to its full name.
// Full names pass through; unknown input falls back to strength, the
// pipeline-wide default.
func expandAbility(short string) string {
	s := strings.ToLower(strings.TrimSpace(short))
	if full, ok := abilityShortNames[s]; ok {
		return full
	}
	for _, full := range abilityShortNames {
		if full == s {
			return s
		}
	}
	return "strength"
}

// Client talks to the SRD API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a rules-service client from config. The base URL is
// suffixed with the SRD version unless already present.
func NewClient(cfg config.SRDConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	version := cfg.Version
	if version == "" {
		version = "2014"
	}
	if !strings.HasSuffix(base, "/2014") && !strings.HasSuffix(base, "/2024") {
		base = base + "/" + version
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	url := c.baseURL
	if path != "" {
		url = url + "/" + strings.TrimLeft(path, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetch %s: %v", ErrUnavailable, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: fetch %s: status %d", ErrUnavailable, path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}
	return nil
}

// List fetches all records for a category. Paginated responses keyed by
// "results" and flat list responses are both accepted.
func (c *Client) List(ctx context.Context, category string) ([]Record, error) {
	var raw json.RawMessage
	if err := c.get(ctx, category, &raw); err != nil {
		return nil, err
	}

	var envelope struct {
		Results []Record `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Results != nil {
		return envelope.Results, nil
	}

	var flat []Record
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	return nil, fmt.Errorf("%w: category %s has no recognizable list shape", ErrUnavailable, category)
}

// Detail fetches a single record by category and index.
func (c *Client) Detail(ctx context.Context, category, index string) (Record, error) {
	var rec Record
	if err := c.get(ctx, category+"/"+index, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Root fetches the category registry from the service root. Keys map to
// endpoint paths such as "/api/2014/skills".
func (c *Client) Root(ctx context.Context) (map[string]string, error) {
	var root map[string]string
	if err := c.get(ctx, "", &root); err != nil {
		return nil, err
	}
	return root, nil
}
