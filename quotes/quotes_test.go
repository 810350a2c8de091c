package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *AlphaVantage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewAlphaVantage("test-key", time.Second)
	p.baseURL = srv.URL
	return p
}

func TestLookup(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		switch r.URL.Query().Get("function") {
		case "GLOBAL_QUOTE":
			w.Write([]byte(`{"Global Quote": {"01. symbol": "NFLX", "05. price": "387.1500"}}`))
		case "SYMBOL_SEARCH":
			w.Write([]byte(`{"bestMatches": [{"1. symbol": "NFLX", "2. name": "Netflix Inc."}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	q, err := p.Lookup(context.Background(), "nflx")
	require.NoError(t, err)
	assert.Equal(t, "NFLX", q.Symbol)
	assert.Equal(t, "Netflix Inc.", q.Name)
	assert.True(t, q.Price.Equal(decimal.RequireFromString("387.15")), "price = %s", q.Price)
}

func TestLookupUnknownSymbol(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		// Alpha Vantage answers an unknown symbol with an empty quote object
		w.Write([]byte(`{"Global Quote": {}}`))
	})

	_, err := p.Lookup(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupNameFallsBackToSymbol(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("function") == "GLOBAL_QUOTE" {
			w.Write([]byte(`{"Global Quote": {"01. symbol": "NFLX", "05. price": "387.15"}}`))
			return
		}
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	q, err := p.Lookup(context.Background(), "NFLX")
	require.NoError(t, err)
	assert.Equal(t, "NFLX", q.Name)
}

func TestLookupBadPayloads(t *testing.T) {
	testTable := []struct {
		name string
		body string
	}{
		{name: "unparseable price", body: `{"Global Quote": {"01. symbol": "NFLX", "05. price": "n/a"}}`},
		{name: "non-positive price", body: `{"Global Quote": {"01. symbol": "NFLX", "05. price": "0.0000"}}`},
		{name: "not json", body: `<html>maintenance</html>`},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(testCase.body))
			})
			_, err := p.Lookup(context.Background(), "NFLX")
			assert.Error(t, err)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLookupUpstreamError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := p.Lookup(context.Background(), "NFLX")
	assert.Error(t, err)
}

func TestLookupTimesOut(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	p.client.Timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := p.Lookup(context.Background(), "NFLX")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}
