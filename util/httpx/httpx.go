package httpx

import (
	"net"
	"net/http"
	"time"
)

// shared client for outbound lookups (Open Library covers etc.);
// timeouts keep a slow upstream from stalling catalog writes
var defaultClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 8 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	},
}

func Client() *http.Client { return defaultClient }
