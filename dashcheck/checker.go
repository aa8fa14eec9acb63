// Package dashcheck pings the web dashboard's HTTP endpoints to check they respond.
package dashcheck

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

const (
	// DefaultBaseURL is where the dashboard listens when run locally.
	DefaultBaseURL = "http://localhost:10000"
	// DefaultTimeout bounds each endpoint request.
	DefaultTimeout = 10 * time.Second
)

// Endpoints are the dashboard paths checked on every run.
var Endpoints = []string{
	"/api/health",
	"/api/stats",
	"/api/commands",
	"/api/servers",
	"/api/analytics",
	"/api/botinfo",
	"/api/status",
	"/",
}

// Result is the outcome of checking one endpoint.
type Result struct {
	Path     string
	Status   int
	Duration time.Duration
	// Title is the page title when the endpoint served HTML.
	Title string
	Err   error
}

// OK reports whether the endpoint answered with a 2xx status.
func (r Result) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Checker issues plain GET requests against a dashboard.
type Checker struct {
	client  *resty.Client
	baseURL string
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.client.SetTimeout(d)
	}
}

// NewChecker creates a Checker for the dashboard at baseURL.
func NewChecker(baseURL string, options ...Option) *Checker {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Checker{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(DefaultTimeout).
			SetHeader("User-Agent", "embedbot-dashcheck"),
		baseURL: baseURL,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// BaseURL returns the dashboard address being checked.
func (c *Checker) BaseURL() string {
	return c.baseURL
}

// Run checks every endpoint in order.
func (c *Checker) Run(ctx context.Context) []Result {
	return c.Check(ctx, Endpoints...)
}

// Check checks the given paths in order. A failed endpoint does not stop the run.
func (c *Checker) Check(ctx context.Context, paths ...string) []Result {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		result := c.checkEndpoint(ctx, path)
		if result.OK() {
			slog.Debug("endpoint ok", "path", path, "status", result.Status, "duration", result.Duration)
		} else {
			slog.Warn("endpoint failed", "path", path, "status", result.Status, "error", result.Err)
		}
		results = append(results, result)
	}
	return results
}

func (c *Checker) checkEndpoint(ctx context.Context, path string) Result {
	result := Result{Path: path}
	start := time.Now()

	resp, err := c.client.R().SetContext(ctx).Get(path)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = fmt.Errorf("request failed: %w", err)
		return result
	}

	result.Status = resp.StatusCode()
	if !result.OK() {
		result.Err = fmt.Errorf("unexpected status %s", resp.Status())
		return result
	}

	if strings.HasPrefix(resp.Header().Get("Content-Type"), "text/html") {
		title, err := pageTitle(resp.Body())
		if err != nil {
			slog.Debug("failed to parse page", "path", path, "error", err)
		}
		result.Title = title
	}

	return result
}

// pageTitle returns the text of the document's first <title> element.
func pageTitle(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var find func(*html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				return strings.TrimSpace(n.FirstChild.Data)
			}
			return ""
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if title := find(child); title != "" {
				return title
			}
		}
		return ""
	}

	return find(doc), nil
}

// Summary counts passing and failing results.
func Summary(results []Result) (passed, failed int) {
	for _, r := range results {
		if r.OK() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
