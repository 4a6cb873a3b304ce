package llm

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sashabaranov/go-openai"
)

// newHTTPClient returns the client used for provider calls
func newHTTPClient(config Config) (*http.Client, error) {
	proxy, err := proxyFunc(config.HTTPProxy, config.HTTPSProxy)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxy

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

// proxyFunc routes requests through the given proxies. If none is set it
// falls back to HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
func proxyFunc(httpProxy, httpsProxy string) (func(*http.Request) (*url.URL, error), error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment, nil
	}

	var httpURL, httpsURL *url.URL
	var err error
	if httpProxy != "" {
		if httpURL, err = url.Parse(httpProxy); err != nil {
			return nil, fmt.Errorf("invalid http proxy: %w", err)
		}
	}
	if httpsProxy != "" {
		if httpsURL, err = url.Parse(httpsProxy); err != nil {
			return nil, fmt.Errorf("invalid https proxy: %w", err)
		}
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsURL != nil {
			return httpsURL, nil
		}
		if httpURL != nil {
			return httpURL, nil
		}
		return http.ProxyFromEnvironment(req)
	}, nil
}

// IsTemporary reports whether err is a provider reply worth retrying later:
// rate limiting or a server-side failure
func IsTemporary(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) {
		return temporaryStatus(openaiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return temporaryStatus(reqErr.HTTPStatusCode)
	}
	return false
}

func temporaryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
