package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FetchError reports a transport failure, a non-2xx upstream response or a
// body that could not be read or decoded. StatusCode is set only for non-2xx
// responses.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: HTTP error: %s", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Fetcher struct {
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int64
}

func NewFetcher(httpClient *http.Client, userAgent string, maxBodyBytes int64) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{
		httpClient:   httpClient,
		userAgent:    userAgent,
		maxBodyBytes: maxBodyBytes,
	}
}

// Run performs one GET of url bounded by timeout (no bound when timeout is
// zero) and returns the body decoded to UTF-8.
func (f *Fetcher) Run(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	started := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	// Upstream answered 2xx; the failure is ours, so no status is reported.
	body, err := f.readBody(resp)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	slog.Debug("Feed fetched",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(started))

	return body, nil
}

func (f *Fetcher) readBody(resp *http.Response) (string, error) {
	var reader io.Reader = resp.Body
	if f.maxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBodyBytes+1)
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if f.maxBodyBytes > 0 && int64(len(raw)) > f.maxBodyBytes {
		return "", fmt.Errorf("response body exceeds %d bytes", f.maxBodyBytes)
	}

	decoder, err := bodyDecoder(resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	data, _, err := transform.Bytes(unicode.BOMOverride(decoder), raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return string(data), nil
}

// bodyDecoder picks a decoder from the charset parameter of contentType.
// UTF-8 and unlabeled bodies pass through unchanged.
func bodyDecoder(contentType string) (transform.Transformer, error) {
	if contentType == "" {
		return transform.Nop, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return transform.Nop, nil
	}

	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return transform.Nop, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder(), nil
}
