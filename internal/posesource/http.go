package posesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrStatus is returned for non-2xx responses.
var ErrStatus = errors.New("posesource: unexpected HTTP status")

// HTTP serves pose files from a base URL. Without an index it scrapes the
// directory listing page at the base URL; with Index set it reads that JSON
// document (an array of names, or {"files": [...]}) instead.
type HTTP struct {
	Base   *url.URL
	Index  string
	Client *http.Client
}

// NewHTTP parses base and returns a source using a client with the given
// timeout (0 disables it).
func NewHTTP(base string, timeout time.Duration) (*HTTP, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("posesource: parse base %q: %w", base, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &HTTP{Base: u, Client: &http.Client{Timeout: timeout}}, nil
}

func (h *HTTP) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return http.DefaultClient
}

func (h *HTTP) get(ctx context.Context, ref string) (io.ReadCloser, error) {
	rel, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("posesource: parse %q: %w", ref, err)
	}
	target := h.Base.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("posesource: request %s: %w", target, err)
	}
	resp, err := h.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("posesource: get %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s %s", ErrStatus, target, resp.Status)
	}
	return resp.Body, nil
}

// List returns the .json names found in the listing page or index document.
func (h *HTTP) List(ctx context.Context) ([]string, error) {
	if h.Index != "" {
		body, err := h.get(ctx, h.Index)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return DecodeIndex(body)
	}

	body, err := h.get(ctx, "")
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseListing(body)
}

// Fetch opens name relative to the base URL.
func (h *HTTP) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	return h.get(ctx, name)
}

type indexDoc struct {
	Files []string `json:"files"`
}

// DecodeIndex reads an explicit index: either a JSON array of names or an
// object with a "files" array.
func DecodeIndex(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("posesource: read index: %w", err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		return names, nil
	}
	var doc indexDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("posesource: decode index: %w", err)
	}
	return doc.Files, nil
}
