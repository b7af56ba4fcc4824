package util

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://plain:8080", "http://secure:8443", "localhost, .internal.corp")

	req, _ := http.NewRequest(http.MethodGet, "https://api.tavily.com/search", nil)
	u, err := proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "secure:8443", u.Host)

	req, _ = http.NewRequest(http.MethodGet, "http://example.com", nil)
	u, err = proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "plain:8080", u.Host)

	req, _ = http.NewRequest(http.MethodGet, "http://localhost:6379", nil)
	u, err = proxy(req)
	require.NoError(t, err)
	assert.Nil(t, u)

	req, _ = http.NewRequest(http.MethodGet, "https://llm.internal.corp/v1", nil)
	u, err = proxy(req)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(5*time.Second, "", "", "")
	assert.Equal(t, 5*time.Second, c.Timeout)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, tr.Proxy)
}
