package provider

import (
	"net/http"
	"testing"
	"time"
)

func TestRetryAfterHeader(t *testing.T) {
	cases := []struct {
		header string
		want   time.Duration
	}{
		{"", -1},
		{"garbage", -1},
		{"0", 0},
		{"-3", 0},
		{"7", 7 * time.Second},
		{" 2 ", 2 * time.Second},
	}
	for _, tc := range cases {
		got := retryAfter(tc.header)
		if tc.want < 0 {
			if got >= 0 {
				t.Fatalf("retryAfter(%q) = %v, want unusable", tc.header, got)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("retryAfter(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}

func TestRetryAfterHTTPDate(t *testing.T) {
	at := time.Now().Add(5 * time.Second).UTC()
	got := retryAfter(at.Format(http.TimeFormat))
	if got <= 0 || got > 5*time.Second {
		t.Fatalf("retryAfter(date) = %v, want within (0, 5s]", got)
	}
	past := time.Now().Add(-time.Minute).UTC()
	if got := retryAfter(past.Format(http.TimeFormat)); got != 0 {
		t.Fatalf("retryAfter(past date) = %v, want 0", got)
	}
}

func TestBackoffGrowthAndCap(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 0; attempt < 4; attempt++ {
		got := backoff(attempt)
		if got < prev {
			t.Fatalf("backoff(%d) = %v, shrank from %v", attempt, got, prev)
		}
		prev = got
	}
	limit := backoffCap + time.Duration(float64(backoffCap)*backoffJitter)
	if got := backoff(30); got > limit {
		t.Fatalf("backoff(30) = %v, want at most %v", got, limit)
	}
}
