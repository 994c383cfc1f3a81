// Package httputil provides HTTP utilities for the remote map client.
//
// # Overview
//
// This package provides the request plumbing used by [store.Client] when it
// talks to a mindgrid server:
//
//   - [Retry]: Automatic retry with exponential backoff
//   - [RetryableError]: Marks failures worth retrying
//
// # Retry
//
// [Retry] re-runs an operation when it fails with a transient error. Only
// errors wrapped in [RetryableError] are retried; anything else, such as a
// 404 for a missing map or a validation rejection, returns immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    if resp.StatusCode >= 500 {
//	        return &httputil.RetryableError{Err: fmt.Errorf("server error: %s", resp.Status)}
//	    }
//	    return handle(resp)
//	})
//
// The delay doubles after each failed attempt, and a cancelled context ends
// the wait early.
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Max retries: 3
//   - Base backoff: 1 second
//
// [RetryWithBackoff] applies them in one call.
//
// [store.Client]: https://pkg.go.dev/github.com/matzehuels/mindgrid/pkg/store#Client
package httputil
