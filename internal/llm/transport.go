package llm

import (
	"net/http"
)

// headerTransport sets fixed attribution headers on every outbound request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	return t.base.RoundTrip(req)
}

// keepLastResponse hands the final response to the caller once retries are exhausted, so the
// status code reaches the client instead of a generic "giving up" error.
func keepLastResponse(resp *http.Response, err error, _ int) (*http.Response, error) {
	if resp != nil {
		return resp, nil
	}

	return nil, err
}
