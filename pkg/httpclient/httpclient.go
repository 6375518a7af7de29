// pkg/httpclient/httpclient.go

package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

var defaultClient = mustClient("")

// DefaultClient returns a preconfigured HTTP client used across nyx
func DefaultClient() *http.Client {
	return defaultClient
}

// NewClient builds a client trusting the system roots plus caFile, if given.
// The client has no overall timeout; downloads are bounded by their context.
func NewClient(caFile string) (*http.Client, error) {
	tlsCfg, err := tlsConfig(caFile)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsCfg,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		},
	}, nil
}

func mustClient(caFile string) *http.Client {
	c, err := NewClient(caFile)
	if err != nil {
		panic(err)
	}
	return c
}

func tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate from %s: %w", caFile, err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to parse CA certificate from %s", caFile)
	}
	cfg.RootCAs = pool
	return cfg, nil
}
