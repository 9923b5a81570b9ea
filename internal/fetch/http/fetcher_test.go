package httpfetch

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimihsan/manup/internal/fetch/servermock"
	"github.com/asimihsan/manup/internal/metrics"
	"github.com/asimihsan/manup/pkg/gate"
)

func TestFetcher_Get(t *testing.T) {
	server := servermock.NewServer().WithDefaultDocument()
	defer server.Close()

	f := New(time.Second)
	body, err := f.Get(context.Background(), server.URL())
	require.NoError(t, err)

	doc, err := gate.ParsePolicyDocument(body)
	require.NoError(t, err)
	require.NotNil(t, doc["ios"])
	assert.Equal(t, "2.5.0", doc["ios"].Latest)
	assert.Equal(t, []string{""}, server.Queries())
}

func TestFetcher_CacheBuster(t *testing.T) {
	server := servermock.NewServer().WithDefaultDocument()
	defer server.Close()

	f := New(time.Second, WithCacheBuster())
	_, err := f.Get(context.Background(), server.URL())
	require.NoError(t, err)
	_, err = f.Get(context.Background(), server.URL())
	require.NoError(t, err)

	queries := server.Queries()
	require.Len(t, queries, 2)
	for _, q := range queries {
		values, err := url.ParseQuery(q)
		require.NoError(t, err)
		assert.NotEmpty(t, values.Get("q"))
	}
}

func TestFetcher_ErrorHandling(t *testing.T) {
	server := servermock.NewServer().SetStatus(http.StatusInternalServerError)
	defer server.Close()

	f := New(time.Second)

	// Server error should return ErrNetworkFailure
	_, err := f.Get(context.Background(), server.URL())
	assert.Error(t, err)
	assert.True(t, gate.IsWrappingError(err, gate.ErrNetworkFailure))

	// Invalid URL should return error
	_, err = f.Get(context.Background(), "http://invalid-url-that-wont-resolve.invalid/manup.json")
	assert.Error(t, err)
	assert.True(t, gate.IsWrappingError(err, gate.ErrNetworkFailure))

	// Unparseable URL with the cache buster on
	_, err = New(time.Second, WithCacheBuster()).Get(context.Background(), "http://[::1")
	assert.True(t, gate.IsWrappingError(err, gate.ErrNetworkFailure))
}

func TestFetcher_Timeout(t *testing.T) {
	server := servermock.NewServer().WithDefaultDocument()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(time.Second).Get(ctx, server.URL())
	assert.True(t, gate.IsWrappingError(err, gate.ErrNetworkFailure))
}

func TestFetcher_OversizeBody(t *testing.T) {
	oversize := metrics.MetadataFetchErrors.WithLabelValues("oversize")
	before := testutil.ToFloat64(oversize)

	server := servermock.NewServer().SetDocument(`{"ios":"` + strings.Repeat("x", maxBodyBytes) + `"}`)
	defer server.Close()

	_, err := New(5*time.Second).Get(context.Background(), server.URL())
	require.Error(t, err)
	assert.ErrorIs(t, err, gate.ErrNetworkFailure)
	assert.Contains(t, err.Error(), "exceeds")
	assert.Equal(t, before+1, testutil.ToFloat64(oversize))
}

func TestFetcher_BodyAtLimit(t *testing.T) {
	body := strings.Repeat(" ", maxBodyBytes-2) + "{}"
	server := servermock.NewServer().SetDocument(body)
	defer server.Close()

	got, err := New(5*time.Second).Get(context.Background(), server.URL())
	require.NoError(t, err)
	assert.Len(t, got, maxBodyBytes)
}
