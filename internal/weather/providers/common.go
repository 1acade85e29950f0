package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Backoff controls the retry schedule of a resilientClient.
type Backoff struct {
	MaxRetries int
	Initial    time.Duration
	Max        time.Duration
}

// delay returns the wait before retry number attempt (zero based).
func (b Backoff) delay(attempt int) time.Duration {
	d := b.Initial << attempt
	if b.Max > 0 && (d > b.Max || d <= 0) {
		return b.Max
	}
	return d
}

func defaultBackoff() Backoff {
	return Backoff{MaxRetries: 3, Initial: 500 * time.Millisecond, Max: 5 * time.Second}
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
	errBadBackoff   = errors.New("invalid backoff configuration")
	errNoAPIKey     = errors.New("api key is not configured")
)

// httpStatusError carries the status of a non-retryable response.
type httpStatusError struct {
	status int
}

func (e httpStatusError) Error() string {
	return fmt.Sprintf("%v: %d", errUnexpected, e.status)
}

func (e httpStatusError) Unwrap() error {
	return errUnexpected
}

// checkStatus turns a non-2xx response into an error and closes its body.
func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	resp.Body.Close()

	switch {
	case code == http.StatusTooManyRequests:
		return errRateLimited
	case code >= 500:
		return fmt.Errorf("%w: %d", errServerError, code)
	default:
		return httpStatusError{status: code}
	}
}

// retryable reports whether another attempt may succeed. Client errors
// other than 429 (bad key, unknown city) will not.
func retryable(err error) bool {
	return !errors.Is(err, errUnexpected)
}

// upstreamHealthy tells the circuit breaker which outcomes count as
// successes. A bad key or unknown city says nothing about upstream health.
func upstreamHealthy(err error) bool {
	return err == nil || !retryable(err)
}

// resilientClient wraps an http.Client with retries, exponential backoff
// and a circuit breaker shared by every request of one provider.
type resilientClient struct {
	client  *http.Client
	backoff Backoff
	breaker *gobreaker.CircuitBreaker
}

func newResilientClient(name string, client *http.Client) *resilientClient {
	return &resilientClient{
		client:  client,
		backoff: defaultBackoff(),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:         name,
			MaxRequests:  5,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			IsSuccessful: upstreamHealthy,
		}),
	}
}

// get issues a GET to rawURL until it succeeds, fails permanently or the
// retry budget runs out. The caller closes the returned body.
func (c *resilientClient) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if c.client == nil {
		return nil, errNoHTTPClient
	}
	if c.backoff.MaxRetries < 0 || c.backoff.Initial <= 0 {
		return nil, errBadBackoff
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, rawURL)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) || attempt >= c.backoff.MaxRetries {
			return nil, err
		}

		timer := time.NewTimer(c.backoff.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *resilientClient) attempt(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if err := checkStatus(resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}
