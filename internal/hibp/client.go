// Package hibp queries the Pwned Passwords range API. Only a short
// digest prefix is ever transmitted (k-anonymity); the caller matches
// the returned suffixes against the rest of the digest locally.
package hibp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AelaNieve/appsalon/internal/account"
)

// DefaultBaseURL is the public range endpoint.
const DefaultBaseURL = "https://api.pwnedpasswords.com/range"

const defaultTimeout = 5 * time.Second

var errUnexpectedStatus = errors.New("unexpected breach index status")

// Client implements [account.BreachIndex] over HTTP with a bounded
// timeout. A zero Client is not usable; construct with New.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the range endpoint, primarily for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout bounds a single range query. A slow or down index must
// never stall registration; the caller fails open on timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New returns a range API client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the candidate rows for a 5-hex-character digest prefix.
// The response body is CRLF-separated "SUFFIX:COUNT" lines. Any non-200
// response is an error; the policy evaluator treats errors as
// not-breached.
func (c *Client) Lookup(ctx context.Context, prefix string) ([]account.SuffixCount, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+prefix, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	var out []account.SuffixCount
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		suffix, countStr, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			count = 0
		}
		out = append(out, account.SuffixCount{
			Suffix: strings.ToUpper(suffix),
			Count:  count,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
