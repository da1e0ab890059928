package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"AtlasQuant/internal/services/analytics"
)

// chartPayload builds a minimal chart API response with n daily bars.
func chartPayload(n int) map[string]interface{} {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := make([]int64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		ts[i] = base.AddDate(0, 0, i).Unix()
		closes[i] = 100 + float64(i)
	}
	quote := map[string]interface{}{
		"open": closes, "high": closes, "low": closes, "close": closes, "volume": closes,
	}
	return map[string]interface{}{
		"chart": map[string]interface{}{
			"result": []interface{}{
				map[string]interface{}{
					"timestamp": ts,
					"indicators": map[string]interface{}{
						"quote":    []interface{}{quote},
						"adjclose": []interface{}{map[string]interface{}{"adjclose": closes}},
					},
				},
			},
		},
	}
}

func TestFetchDailyLookbackLadder(t *testing.T) {
	var ranges []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rng := r.URL.Query().Get("range")
		ranges = append(ranges, rng)
		switch rng {
		case "2y":
			http.Error(w, "upstream busy", http.StatusBadGateway)
		case "1y":
			// Too few rows; the ladder must keep going.
			_ = json.NewEncoder(w).Encode(chartPayload(10))
		default:
			_ = json.NewEncoder(w).Encode(chartPayload(60))
		}
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bars, meta, err := c.FetchDaily(context.Background(), "PETR4.SA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 60 {
		t.Fatalf("bars = %d, want 60", len(bars))
	}
	if meta.Used != "6mo" {
		t.Fatalf("used = %q, want 6mo", meta.Used)
	}
	if len(meta.Attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(meta.Attempts))
	}
	if meta.Attempts[0].OK || meta.Attempts[1].OK || !meta.Attempts[2].OK {
		t.Fatalf("attempt flags wrong: %+v", meta.Attempts)
	}
	want := []string{"2y", "1y", "6mo"}
	for i, rng := range want {
		if ranges[i] != rng {
			t.Fatalf("request %d range = %q, want %q", i, ranges[i], rng)
		}
	}
}

func TestFetchDailyFirstLookbackWins(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(chartPayload(250))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL}, nil)
	_, meta, err := c.FetchDaily(context.Background(), "VALE3.SA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || meta.Used != "2y" {
		t.Fatalf("calls=%d used=%q, want one call using 2y", calls, meta.Used)
	}
}

func TestFetchDailyAllLookbacksFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chartPayload(5))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL}, nil)
	_, meta, err := c.FetchDaily(context.Background(), "XXXX")
	var de *analytics.DataError
	if !errors.As(err, &de) {
		t.Fatalf("want DataError, got %v", err)
	}
	if len(meta.Attempts) != 3 {
		t.Fatalf("attempts = %d, want 3 recorded failures", len(meta.Attempts))
	}
	for _, a := range meta.Attempts {
		if a.OK {
			t.Fatalf("no attempt should be marked ok: %+v", a)
		}
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	var ce *analytics.ConfigError
	if _, err := NewClient(Config{}, nil); !errors.As(err, &ce) {
		t.Fatalf("empty base url should be ConfigError, got %v", err)
	}
}
