package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ServerUnavailableError is returned by WaitUntilReady when the target never answered with a
// success status before the timeout.
type ServerUnavailableError struct {
	URL     string
	Timeout time.Duration
	LastErr error
}

func (e *ServerUnavailableError) Error() string {
	return fmt.Sprintf("server at %s did not become ready within %s: %v", e.URL, e.Timeout, e.LastErr)
}

func (e *ServerUnavailableError) Unwrap() error { return e.LastErr }

// WaitUntilReady polls url with GET requests until one of them gets a 2xx response. Between
// attempts it writes a status line to output and sleeps for interval. Once timeout has elapsed
// without a successful probe it returns a *ServerUnavailableError.
func WaitUntilReady(ctx context.Context, url string, timeout, interval time.Duration, output io.Writer) error {
	if interval <= 0 {
		return fmt.Errorf("readiness interval must be positive, got %s", interval)
	}
	if timeout <= interval {
		return fmt.Errorf("readiness timeout (%s) must be longer than the interval (%s)", timeout, interval)
	}
	if output == nil {
		output = io.Discard
	}

	deadline := time.Now().Add(timeout)
	for {
		probeTimeout := minDuration(interval, time.Until(deadline))
		err := probe(ctx, url, probeTimeout)
		if err == nil {
			fmt.Fprintln(output, "Server is up and running!")
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		fmt.Fprintf(output, "Waiting for server at %s to start...\n", url)

		remaining := time.Until(deadline)
		if remaining > 0 {
			timer := time.NewTimer(minDuration(interval, remaining))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if !time.Now().Before(deadline) {
			return &ServerUnavailableError{URL: url, Timeout: timeout, LastErr: err}
		}
	}
}

func probe(ctx context.Context, url string, timeout time.Duration) error {
	if timeout <= 0 {
		return errors.New("no time left for another request")
	}
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("server returned status code %d", resp.StatusCode)
	}
	return nil
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
