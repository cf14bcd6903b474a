package wiki

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-air-service/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSummary_Success(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"Berlin","extract":"Berlin is the capital of Germany."}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5*time.Second, testLogger())
	text, err := c.Summary(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin is the capital of Germany.", text)
	assert.Equal(t, "/Berlin", gotPath)
}

func TestSummary_EscapesTerm(t *testing.T) {
	var gotEscaped string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEscaped = r.URL.EscapedPath()
		w.Write([]byte(`{"extract":"x"}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5*time.Second, testLogger())
	_, err := c.Summary(context.Background(), "San José, Costa Rica")
	require.NoError(t, err)
	assert.NotContains(t, gotEscaped, " ")
}

func TestSummary_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"type":"not_found"}`, http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5*time.Second, testLogger())
	_, err := c.Summary(context.Background(), "Nowhereville")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummary_MissingExtract(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"title":"Berlin"}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5*time.Second, testLogger())
	text, err := c.Summary(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestSummary_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5*time.Second, testLogger())
	_, err := c.Summary(context.Background(), "Berlin")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "status 500")
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", time.Second, testLogger())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
