package entity

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// BundledOrigin is the Origin of the built-in roster.
	BundledOrigin = "bundled"

	// DefaultTimeout for HTTP roster requests.
	DefaultTimeout = 15 * time.Second
)

//go:embed roster.yaml
var bundledRoster []byte

// Source loads a roster from a file, an HTTP(S) URL or the bundled default.
type Source struct {
	client   *http.Client
	location string
	timeout  time.Duration
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) SourceOption {
	return func(s *Source) {
		s.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *Source) {
		s.client = client
	}
}

// NewSource creates a roster source. An empty location means the bundled roster.
func NewSource(location string, opts ...SourceOption) *Source {
	s := &Source{
		location: location,
		timeout:  DefaultTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = &http.Client{
			Timeout: s.timeout,
		}
	}

	return s
}

// LoadResult contains the result of a load operation.
type LoadResult struct {
	Roster   *Roster
	RawBytes []byte
	LoadedAt time.Time
	Duration time.Duration
	Error    error
}

// Load reads and parses the roster.
func (s *Source) Load(ctx context.Context) LoadResult {
	start := time.Now()
	result := LoadResult{
		LoadedAt: start,
	}

	raw, format, err := s.read(ctx)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}
	result.RawBytes = raw

	roster, err := Parse(raw, format)
	if err != nil {
		result.Error = fmt.Errorf("parse roster: %w", err)
		return result
	}
	roster.Origin = s.Origin()
	result.Roster = roster

	return result
}

// Origin returns where rosters come from.
func (s *Source) Origin() string {
	if s.location == "" {
		return BundledOrigin
	}
	return s.location
}

func (s *Source) read(ctx context.Context) ([]byte, Format, error) {
	switch {
	case s.location == "":
		return bundledRoster, FormatYAML, nil
	case isURL(s.location):
		return s.readHTTP(ctx)
	default:
		format, err := DetectFormat(s.location, "")
		if err != nil {
			return nil, "", err
		}
		data, err := os.ReadFile(s.location)
		if err != nil {
			return nil, "", fmt.Errorf("read roster file: %w", err)
		}
		return data, format, nil
	}
}

func (s *Source) readHTTP(ctx context.Context) ([]byte, Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "ls-globe/1.0 (Professionals Globe)")
	req.Header.Set("Accept", "application/geo+json, application/json, application/yaml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	format, err := DetectFormat(req.URL.Path, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response body: %w", err)
	}

	return body, format, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
