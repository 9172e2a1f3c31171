package timedtext

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseSkipsNonTextEvents(t *testing.T) {
	data := []byte(`{"events":[
		{"tStartMs":0,"dDurationMs":1000,"wpWinId":1},
		{"tStartMs":500,"dDurationMs":2000,"segs":[{"utf8":"Hello "},{"utf8":"world"}]},
		{"tStartMs":3000,"dDurationMs":1000,"segs":[{"utf8":"\n"}]}
	]}`)

	cues, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("len(cues) = %d, want 1", len(cues))
	}
	if cues[0].Text != "Hello world" {
		t.Fatalf("cue text = %q, want %q", cues[0].Text, "Hello world")
	}
	if cues[0].StartMs != 500 || cues[0].DurationMs != 2000 {
		t.Fatalf("cue timing = %d/%d, want 500/2000", cues[0].StartMs, cues[0].DurationMs)
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`<transcript/>`)); err == nil {
		t.Fatalf("expected error for non-json body")
	}
}

func TestFetchForcesJSON3Format(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("fmt"); got != "json3" {
			t.Errorf("fmt = %q, want json3", got)
		}
		_, _ = w.Write([]byte(`{"events":[{"tStartMs":0,"dDurationMs":100,"segs":[{"utf8":"hi"}]}]}`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), RetryConfig{})
	cues, err := f.Fetch(context.Background(), srv.URL+"/api/timedtext?v=abc&lang=en&fmt=srv3", nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(cues) != 1 || cues[0].Text != "hi" {
		t.Fatalf("unexpected cues: %+v", cues)
	}
}

func TestFetchRetriesTransientStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"events":[{"tStartMs":0,"dDurationMs":100,"segs":[{"utf8":"ok"}]}]}`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), RetryConfig{InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond})
	cues, err := f.Fetch(context.Background(), srv.URL+"/api/timedtext?v=abc", nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("len(cues) = %d, want 1", len(cues))
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), RetryConfig{InitialBackoff: time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL+"/api/timedtext?v=abc", nil)
	if err == nil {
		t.Fatalf("expected error for 404")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
