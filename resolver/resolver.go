// Package resolver looks up document URLs for drug reference codes against the
// external drug document service.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/giygas/medref-api/entities"
	"github.com/giygas/medref-api/interfaces"
	"github.com/giygas/medref-api/logging"
	"github.com/giygas/medref-api/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/japanese"
)

const (
	// DefaultTimeout bounds a single code lookup.
	DefaultTimeout = 10 * time.Second

	lookupPath   = "/api/v1/documents/by-code/"
	maxBodyBytes = 2 * 1024 * 1024
)

// Compile-time check to ensure Resolver implements URLResolver
var _ interfaces.URLResolver = (*Resolver)(nil)

// Config configures a Resolver.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// Resolver resolves reference codes concurrently, one call per unique code.
type Resolver struct {
	base    string
	timeout time.Duration
	client  *http.Client
}

// New returns a Resolver. A nil Client uses a dedicated http.Client.
func New(cfg Config) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	return &Resolver{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		client:  cfg.Client,
	}
}

// Resolve looks up every unique code concurrently and returns the request-scoped
// cache. A failed lookup is logged and leaves its code with no URLs; it never
// affects the other codes. When ctx is cancelled the results are discarded.
func (r *Resolver) Resolve(ctx context.Context, codes []string) entities.URLCache {
	unique := uniqueCodes(codes)
	cache := make(entities.URLCache, len(unique))
	if len(unique) == 0 {
		return cache
	}

	// Each lookup owns one slot; the map is filled after all of them settle.
	results := make([][]string, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	for i, code := range unique {
		g.Go(func() error {
			urls, err := r.lookup(gctx, code)
			switch {
			case err != nil:
				metrics.RecordReferenceLookup(metrics.LookupFailed)
				logging.Warn("Reference code lookup failed", "code", code, "error", err)
			case len(urls) == 0:
				metrics.RecordReferenceLookup(metrics.LookupEmpty)
			default:
				metrics.RecordReferenceLookup(metrics.LookupResolved)
			}
			results[i] = urls
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		logging.Debug("Reference lookups abandoned", "codes", len(unique), "error", ctx.Err())
		return entities.URLCache{}
	}

	for i, code := range unique {
		cache[code] = results[i]
	}
	return cache
}

type documentLink struct {
	URL string `json:"url"`
}

type lookupResponse struct {
	DocumentLinks struct {
		HTML []documentLink `json:"html"`
		PDF  []documentLink `json:"pdf"`
	} `json:"document_links"`
}

// urls prefers HTML links and falls back to PDF links when there are none.
func (l lookupResponse) urls() []string {
	if urls := linkURLs(l.DocumentLinks.HTML); len(urls) > 0 {
		return urls
	}
	return linkURLs(l.DocumentLinks.PDF)
}

func linkURLs(links []documentLink) []string {
	var urls []string
	for _, l := range links {
		if u := strings.TrimSpace(l.URL); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func (r *Resolver) lookup(ctx context.Context, code string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	endpoint := r.base + lookupPath + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s: %v", entities.ErrReferenceResolution, code, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entities.ErrReferenceResolution, code, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: %s: status %d", entities.ErrReferenceResolution, code, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", entities.ErrReferenceResolution, code, err)
	}

	var doc lookupResponse
	if err := json.Unmarshal(toUTF8(body), &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: malformed response: %v", entities.ErrReferenceResolution, code, err)
	}
	return doc.urls(), nil
}

// toUTF8 decodes a body that is not valid UTF-8 as Shift_JIS.
func toUTF8(body []byte) []byte {
	if utf8.Valid(body) {
		return body
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

func uniqueCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
