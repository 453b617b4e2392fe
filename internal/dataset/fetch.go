package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// DefaultPopulationURL is the public country population snapshot loaded
// when no dataset is named.
const DefaultPopulationURL = "https://raw.githubusercontent.com/datasets/population/master/data/population.csv"

// FetchOptions controls HTTP timeouts and the retry strategy.
type FetchOptions struct {
	Timeout   time.Duration
	RetryMax  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Fetcher downloads dataset snapshots over HTTP with retries.
type Fetcher struct {
	httpClient *http.Client
	retryMax   int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewFetcher returns a fetcher with the given limits, falling back to
// 60s timeout, 3 attempts, and 500ms..4s backoff where unset.
func NewFetcher(opts FetchOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 4 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: opts.Timeout},
		retryMax:   opts.RetryMax,
		baseDelay:  opts.BaseDelay,
		maxDelay:   opts.MaxDelay,
	}
}

// Fetch downloads a dataset and parses it according to the URL's file
// extension, defaulting to CSV.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts Options) (*table.Table, error) {
	body, err := f.FetchRaw(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	name := NameFromURL(rawURL)
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx":
		return ReadXLSXBytes(body, name, opts)
	case ".tsv", ".tab":
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
		return ReadCSV(bytes.NewReader(body), name, opts)
	default:
		return ReadCSV(bytes.NewReader(body), name, opts)
	}
}

// FetchRaw downloads rawURL and returns the response body. Transient
// network errors, 429s, and 5xx responses are retried with exponential
// backoff and jitter; a Retry-After header overrides the computed delay.
func (f *Fetcher) FetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	backoff := f.baseDelay
	var lastErr error
	for attempt := 1; attempt <= f.retryMax; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := f.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if isRetryableNetErr(err) && attempt < f.retryMax {
				lastErr = err
				sleep := withJitter(backoff)
				if f.maxDelay > 0 && sleep > f.maxDelay {
					sleep = f.maxDelay
				}
				time.Sleep(sleep)
				backoff *= 2
				continue
			}
			return nil, fmt.Errorf("http request: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read response: %w", err)
			}
			return body, nil
		}

		retryAfter := resp.Header.Get("Retry-After")
		io.Copy(io.Discard, io.LimitReader(resp.Body, 8<<10))
		resp.Body.Close()

		statusErr := fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
		retryable := resp.StatusCode == http.StatusTooManyRequests ||
			(resp.StatusCode >= 500 && resp.StatusCode <= 599)
		if !retryable || attempt == f.retryMax {
			return nil, statusErr
		}
		lastErr = statusErr

		sleep := withJitter(backoff)
		if secs, err := parseRetryAfterSeconds(retryAfter); err == nil && secs > 0 {
			sleep = time.Duration(secs) * time.Second
		}
		if f.maxDelay > 0 && sleep > f.maxDelay {
			sleep = f.maxDelay
		}
		time.Sleep(sleep)
		backoff *= 2
	}
	return nil, lastErr
}

// NameFromURL derives a dataset file name from the URL path.
func NameFromURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "." && base != "/" {
			return base
		}
	}
	return "remote-dataset"
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// parseRetryAfterSeconds interprets a Retry-After value as seconds or an
// HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if v == "" {
		return 0, errors.New("empty Retry-After")
	}
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// withJitter scales d by a factor in [0.8, 1.2).
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}
