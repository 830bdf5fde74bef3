package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// httpError carries the status code so callers can branch on specific
// responses (the credential conflict path depends on this).
type httpError struct {
	Status int
	Body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// httpClient is a thin resty wrapper shared by the CLOB and data clients.
// resty picks up HTTP(S)_PROXY from the environment on its own.
type httpClient struct {
	rc *resty.Client
}

func newHTTPClient(host string) *httpClient {
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(host, "/")).
		SetTimeout(60 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// honour Retry-After on 429s
			if resp.StatusCode() == http.StatusTooManyRequests {
				if ra := resp.Header().Get("Retry-After"); ra != "" {
					if d, err := time.ParseDuration(ra + "s"); err == nil {
						return d, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})
	return &httpClient{rc: rc}
}

func (h *httpClient) newRequest(ctx context.Context, headers map[string]string) *resty.Request {
	r := h.rc.R().SetContext(ctx)
	r.SetHeader("Accept", "*/*")
	r.SetHeader("User-Agent", "polyclob/1.0")
	for k, v := range headers {
		r.SetHeader(k, v)
	}
	return r
}

// get issues a GET and decodes the JSON response into out when out is non-nil.
func (h *httpClient) get(ctx context.Context, path string, headers, query map[string]string, out any) error {
	r := h.newRequest(ctx, headers)
	if query != nil {
		r.SetQueryParams(query)
	}
	resp, err := r.Get(path)
	return h.finish(resp, err, out)
}

// post sends body as-is. The caller marshals the body itself so the exact
// bytes that were HMAC-signed are the bytes that go on the wire.
func (h *httpClient) post(ctx context.Context, path string, headers map[string]string, body []byte, out any) error {
	r := h.newRequest(ctx, headers)
	if body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(body)
	}
	resp, err := r.Post(path)
	return h.finish(resp, err, out)
}

// del issues a DELETE, optionally with a JSON body (order cancellation).
func (h *httpClient) del(ctx context.Context, path string, headers map[string]string, body []byte, out any) error {
	r := h.newRequest(ctx, headers)
	if body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(body)
	}
	resp, err := r.Delete(path)
	return h.finish(resp, err, out)
}

func (h *httpClient) finish(resp *resty.Response, err error, out any) error {
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &httpError{Status: resp.StatusCode(), Body: strings.TrimSpace(string(resp.Body()))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(err, "decode response (%d bytes)", len(resp.Body()))
	}
	return nil
}
