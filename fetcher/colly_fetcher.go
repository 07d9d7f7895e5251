package fetcher

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

// ErrUnexpectedStatus is wrapped by StatusError.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError is returned when the server answers with anything but 200
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s %d", e.Method, e.URL, ErrUnexpectedStatus, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// CollyFetcher implements the Fetcher interface using colly. One instance is
// one session: the collector's cookie jar carries the server-assigned cookies
// from request to request.
type CollyFetcher struct {
	collector   *colly.Collector
	endpoint    string
	pagingField string
	extraFields map[string]string
	log         zerolog.Logger

	response *colly.Response
	failed   *colly.Response
}

// Option configures a CollyFetcher
type Option func(*CollyFetcher)

// WithPagingField sets the form field that carries the paging token
func WithPagingField(field string) Option {
	return func(cf *CollyFetcher) { cf.pagingField = field }
}

// WithExtraFields adds fields posted along with the paging token
func WithExtraFields(fields map[string]string) Option {
	return func(cf *CollyFetcher) {
		for k, v := range fields {
			cf.extraFields[k] = v
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(cf *CollyFetcher) {
		if ua != "" {
			cf.collector.UserAgent = ua
		}
	}
}

// WithTimeout sets the request timeout. Zero keeps the collector's default.
func WithTimeout(d time.Duration) Option {
	return func(cf *CollyFetcher) {
		if d > 0 {
			cf.collector.SetRequestTimeout(d)
		}
	}
}

// WithMaxBodySize caps response bodies at n bytes. Zero means no limit.
func WithMaxBodySize(n int) Option {
	return func(cf *CollyFetcher) { cf.collector.MaxBodySize = n }
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(cf *CollyFetcher) { cf.log = log }
}

// NewCollyFetcher creates a new CollyFetcher for endpoint
func NewCollyFetcher(endpoint string, opts ...Option) *CollyFetcher {
	c := colly.NewCollector(
		// every request targets the same URL
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
		// a truncated page would silently lose rows
		colly.MaxBodySize(0),
	)

	cf := &CollyFetcher{
		collector:   c,
		endpoint:    endpoint,
		pagingField: "fpdbr_0_PagingMove",
		extraFields: make(map[string]string),
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cf)
	}

	c.OnRequest(func(r *colly.Request) {
		cf.log.Debug().Str("method", r.Method).Str("url", r.URL.String()).Msg("Sending request")
	})

	c.OnResponse(func(r *colly.Response) {
		cf.response = r
	})

	c.OnError(func(r *colly.Response, err error) {
		cf.failed = r
		cf.log.Error().Err(err).Str("url", cf.endpoint).Int("status", r.StatusCode).Msg("Error fetching page")
	})

	return cf
}

// FetchInitial implements the Fetcher interface
func (cf *CollyFetcher) FetchInitial() ([]byte, error) {
	return cf.do(http.MethodGet, func() error {
		return cf.collector.Visit(cf.endpoint)
	})
}

// FetchNext implements the Fetcher interface
func (cf *CollyFetcher) FetchNext(token string) ([]byte, error) {
	form := make(map[string]string, len(cf.extraFields)+1)
	for k, v := range cf.extraFields {
		form[k] = v
	}
	form[cf.pagingField] = token

	return cf.do(http.MethodPost, func() error {
		return cf.collector.Post(cf.endpoint, form)
	})
}

// do runs one synchronous collector request and returns the body of a 200 response.
func (cf *CollyFetcher) do(method string, request func() error) ([]byte, error) {
	cf.response, cf.failed = nil, nil

	err := request()
	if cf.failed != nil && cf.failed.StatusCode != 0 && cf.failed.StatusCode != http.StatusOK {
		return nil, &StatusError{Method: method, URL: cf.endpoint, StatusCode: cf.failed.StatusCode}
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, cf.endpoint, err)
	}
	if cf.response == nil {
		return nil, fmt.Errorf("%s %s: no response received", method, cf.endpoint)
	}
	if cf.response.StatusCode != http.StatusOK {
		return nil, &StatusError{Method: method, URL: cf.endpoint, StatusCode: cf.response.StatusCode}
	}

	return cf.response.Body, nil
}
