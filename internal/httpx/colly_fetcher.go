package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"

	"github.com/baxromumarov/pharma-pricer/internal/urlutil"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// CollyFetcher wraps Colly for polite single-attempt HTML fetching.
type CollyFetcher struct {
	userAgent    string
	timeout      time.Duration
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
	hosts        map[string]*rate.Limiter
	transport    http.RoundTripper
}

type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch error (status %d)", e.Status)
	}
	return fmt.Sprintf("fetch error (status %d): %v", e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewCollyFetcher(userAgent string, timeout time.Duration) *CollyFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 40 * time.Second
	}
	return &CollyFetcher{
		userAgent:    userAgent,
		timeout:      timeout,
		defaultRate:  rate.Every(time.Second),
		defaultBurst: 2,
		hosts:        make(map[string]*rate.Limiter),
	}
}

// WithTransport swaps the HTTP transport, mostly for tests.
func (f *CollyFetcher) WithTransport(rt http.RoundTripper) *CollyFetcher {
	f.transport = rt
	return f
}

func (f *CollyFetcher) SetHostLimit(host string, per time.Duration, burst int) {
	if host == "" || per <= 0 || burst <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hosts[normalizeHost(host)] = rate.NewLimiter(rate.Every(per), burst)
}

// Load fetches rawURL and returns the response body.
func (f *CollyFetcher) Load(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := f.FetchBytes(ctx, rawURL)
	return body, err
}

// FetchBytes performs one GET under the host's rate limit. Failures,
// including robots.txt refusals and HTTP error statuses, come back as
// *FetchError.
func (f *CollyFetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, int, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return nil, 0, err
	}
	if err := f.limiterFor(hostKey(target)).Wait(ctx); err != nil {
		return nil, 0, err
	}

	res := f.get(ctx, target)
	if res.err != nil {
		if errors.Is(res.err, colly.ErrRobotsTxtBlocked) {
			res.status = http.StatusForbidden
		}
		return nil, res.status, &FetchError{Status: res.status, Err: res.err}
	}
	return res.body, res.status, nil
}

type response struct {
	body   []byte
	status int
	err    error
}

func (f *CollyFetcher) get(ctx context.Context, target string) response {
	var res response
	c := f.newCollector()
	c.OnResponse(func(r *colly.Response) {
		res.status = r.StatusCode
		res.body = append([]byte(nil), r.Body...)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			res.status = r.StatusCode
		}
		res.err = err
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	switch err := c.Request(http.MethodGet, target, nil, collyCtx, nil); {
	case err != nil:
		res.err = err
	case ctx.Err() != nil:
		res.err = ctx.Err()
	case res.err == nil && res.status >= 400:
		res.err = fmt.Errorf("status %d", res.status)
	case res.err == nil && res.status == 0:
		res.status = http.StatusOK
	}
	return res
}

func (f *CollyFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.UserAgent(f.userAgent), colly.AllowURLRevisit())
	c.IgnoreRobotsTxt = false
	c.SetRequestTimeout(f.timeout)
	if f.transport != nil {
		c.WithTransport(f.transport)
	}

	c.OnRequest(func(r *colly.Request) {
		ctx := context.Background()
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok {
				ctx = reqCtx
			}
		}
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	return c
}

func (f *CollyFetcher) limiterFor(host string) *rate.Limiter {
	if host == "" {
		host = "default"
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.hosts[host]; ok {
		return l
	}
	l := rate.NewLimiter(f.defaultRate, f.defaultBurst)
	f.hosts[host] = l
	return l
}

func normalizeURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.String(), nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

func hostKey(rawURL string) string {
	return urlutil.Host(rawURL)
}
