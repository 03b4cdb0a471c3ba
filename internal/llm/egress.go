package llm

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

// Egress is one network path to the model provider: through a proxy, or
// direct when Proxy is nil.
type Egress struct {
	Proxy *url.URL
}

// Name identifies the path in logs. Credentials in the proxy URL are redacted.
func (e Egress) Name() string {
	if e.Proxy == nil {
		return "direct"
	}
	return e.Proxy.Redacted()
}

// ParseEgress turns proxy URLs into egress paths, in order, and appends the
// direct path.
func ParseEgress(proxies []string) ([]Egress, error) {
	paths := make([]Egress, 0, len(proxies)+1)
	for _, raw := range proxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q", raw)
		}
		paths = append(paths, Egress{Proxy: u})
	}
	return append(paths, Egress{}), nil
}

// trackingTransport records whether any response came back, which separates
// transport failures from provider-level rejections.
type trackingTransport struct {
	base      http.RoundTripper
	responded atomic.Bool
}

func (t *trackingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil {
		t.responded.Store(true)
	}
	return resp, err
}

// client builds an HTTP client bound to this egress path.
func (e Egress) client(timeout time.Duration) (*http.Client, *trackingTransport) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if e.Proxy != nil {
		base.Proxy = http.ProxyURL(e.Proxy)
	} else {
		base.Proxy = nil
	}
	tracker := &trackingTransport{base: base}
	return &http.Client{Transport: tracker, Timeout: timeout}, tracker
}
