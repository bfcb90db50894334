// Package submission sends rating changes to the catalog site's rating endpoint.
package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

const RatePath = "/rating/rate/"

var ErrInvalidRequest = errors.New("invalid rating submission")

type Request struct {
	EntityType string
	EntityID   string
	Rating     int
	// ReturnTo is the page path the user was on.
	ReturnTo string
	// Cookie is forwarded verbatim so the call carries the user's login.
	Cookie string
}

// Target is the path and query of the rate call, e.g.
// /rating/rate/?entity_type=artist&entity_id=1&rating=57&returnto=%2Fartist%2Fx
func (r Request) Target() string {
	var b strings.Builder
	b.WriteString(RatePath)
	b.WriteString("?entity_type=")
	b.WriteString(url.QueryEscape(r.EntityType))
	b.WriteString("&entity_id=")
	b.WriteString(url.QueryEscape(r.EntityID))
	b.WriteString("&rating=")
	b.WriteString(strconv.Itoa(r.Rating))
	b.WriteString("&returnto=")
	b.WriteString(encodeURIComponent(r.ReturnTo))
	return b.String()
}

func (r Request) validate() error {
	switch {
	case strings.TrimSpace(r.EntityType) == "":
		return fmt.Errorf("%w: entity_type required", ErrInvalidRequest)
	case strings.TrimSpace(r.EntityID) == "":
		return fmt.Errorf("%w: entity_id required", ErrInvalidRequest)
	case !rating.ValidValue(r.Rating):
		return fmt.Errorf("%w: rating %d outside 0-100", ErrInvalidRequest, r.Rating)
	}
	return nil
}

// Outcome is the result of one submit attempt. OK is true when the final
// answer, after same-host redirects, is 2xx.
type Outcome struct {
	OK         bool
	StatusCode int
	Err        error
}

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	HTTPClient *http.Client
	Log        *logger.Logger
}

type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	log        *logger.Logger
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid baseURL %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	// The site answers a rating with a redirect to returnto; success is judged
	// on where that lands. Redirects off the catalog host are not followed.
	following := *hc
	following.CheckRedirect = sameHostRedirects(u.Host)

	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  strings.TrimSpace(opts.UserAgent),
		timeout:    timeout,
		httpClient: &following,
		log:        log.With("client", "SubmissionClient"),
	}, nil
}

const maxRedirects = 10

func sameHostRedirects(host string) func(*http.Request, []*http.Request) error {
	return func(next *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if !strings.EqualFold(next.URL.Host, host) {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Submit makes a single POST attempt. It never retries; the caller decides
// how to tell the user about a failure.
func (c *Client) Submit(ctx context.Context, req Request) Outcome {
	if err := req.validate(); err != nil {
		return Outcome{Err: err}
	}

	ctx, span := otel.Tracer("advanced-rating/submission").Start(ctx, "submission.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("rating.entity_type", req.EntityType),
		attribute.String("rating.entity_id", req.EntityID),
		attribute.Int("rating.value", req.Rating),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+req.Target(), nil)
	if err != nil {
		return c.fail(span, req, Outcome{Err: fmt.Errorf("build request: %w", err)})
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if cookie := strings.TrimSpace(req.Cookie); cookie != "" {
		httpReq.Header.Set("Cookie", cookie)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.fail(span, req, Outcome{Err: fmt.Errorf("post rating: %w", err)})
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	_, _ = io.Copy(io.Discard, resp.Body)

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(span, req, Outcome{
			StatusCode: resp.StatusCode,
			Err:        &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))},
		})
	}

	c.log.Info("Rating submitted",
		"entity_type", req.EntityType,
		"entity_id", req.EntityID,
		"rating", req.Rating,
		"status", resp.StatusCode,
	)
	return Outcome{OK: true, StatusCode: resp.StatusCode}
}

func (c *Client) fail(span trace.Span, req Request, out Outcome) Outcome {
	span.RecordError(out.Err)
	span.SetStatus(codes.Error, out.Err.Error())
	c.log.Warn("Rating submission failed",
		"entity_type", req.EntityType,
		"entity_id", req.EntityID,
		"rating", req.Rating,
		"status", out.StatusCode,
		"error", out.Err,
	)
	return out
}

// encodeURIComponent escapes like the browser function of the same name,
// which is what the site expects in returnto.
func encodeURIComponent(s string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isUnreserved(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[ch>>4])
		b.WriteByte(upperhex[ch&15])
	}
	return b.String()
}

func isUnreserved(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	switch ch {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
