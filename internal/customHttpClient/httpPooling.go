package customHttpClient

import (
	"net/http"

	"github.com/proview/proview-api/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooledClient = &http.Client{
	Transport: customTransport,
	Timeout:   config.LLMCallTimeout,
}

// Pooled returns the shared keep-alive client for upstream API calls.
func Pooled() *http.Client {
	return pooledClient
}
