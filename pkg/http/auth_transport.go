package http

import "net/http"

type bearerTransport struct {
	token string
	next  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(req)
}

// WithAuthToken sends the token as a bearer credential. An empty token leaves requests untouched.
func WithAuthToken(token string) HttpOpts {
	return func(c *httpConfig) {
		if token == "" {
			return
		}
		c.transports = append(c.transports, func(rt http.RoundTripper) http.RoundTripper {
			return &bearerTransport{token: token, next: rt}
		})
	}
}
