package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

const playerResponseOK = `{
	"playabilityStatus": {"status": "OK"},
	"videoDetails": {
		"videoId": "dQw4w9WgXcQ",
		"title": "François's Talk!!",
		"lengthSeconds": "212",
		"author": "Some Channel",
		"viewCount": "1000"
	},
	"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
		{"baseUrl": "https://captions.test/api/timedtext?lang=es&v=dQw4w9WgXcQ", "languageCode": "es", "kind": "asr", "vssId": "a.es", "name": {"simpleText": "Spanish (auto-generated)"}},
		{"baseUrl": "https://captions.test/api/timedtext?lang=en&v=dQw4w9WgXcQ", "languageCode": "en", "vssId": ".en", "name": {"simpleText": "English"}}
	]}}
}`

const timedtextJSON3 = `{"events":[
	{"tStartMs":0,"dDurationMs":2500,"segs":[{"utf8":"hello there"}]},
	{"tStartMs":62200,"dDurationMs":1800,"segs":[{"utf8":"one minute in"}]}
]}`

func newTestClient(t *testing.T, playerCalls, captionCalls *atomic.Int32) *Client {
	t.Helper()
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(r.URL.Path, "/youtubei/v1/player"):
			if playerCalls != nil {
				playerCalls.Add(1)
			}
			return jsonResponse(http.StatusOK, playerResponseOK), nil
		case r.URL.Host == "captions.test":
			if captionCalls != nil {
				captionCalls.Add(1)
			}
			if r.URL.Query().Get("fmt") != "json3" {
				t.Errorf("caption fetch fmt = %q, want json3", r.URL.Query().Get("fmt"))
			}
			return jsonResponse(http.StatusOK, timedtextJSON3), nil
		default:
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}
	})
	return New(Config{
		HTTPClient:                     &http.Client{Transport: transport},
		ClientOverrides:                []string{"web"},
		DisableFallbackClients:         true,
		DisableDynamicAPIKeyResolution: true,
	})
}

func TestGetVideoReturnsMetadataAndTracks(t *testing.T) {
	c := newTestClient(t, nil, nil)
	info, err := c.GetVideo(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("GetVideo error = %v", err)
	}
	if info.Title != "François's Talk!!" || info.DurationSec != 212 {
		t.Fatalf("info = %+v", info)
	}
	if len(info.Tracks) != 2 {
		t.Fatalf("tracks = %d, want 2", len(info.Tracks))
	}
	if !info.Tracks[0].IsGenerated || info.Tracks[1].IsGenerated {
		t.Fatalf("generated flags wrong: %+v", info.Tracks)
	}
	if info.Tracks[0].ID() != "a.es" || info.Tracks[1].ID() != ".en" {
		t.Fatalf("track ids = %q, %q, want a.es, .en", info.Tracks[0].ID(), info.Tracks[1].ID())
	}
}

func TestGetTranscriptSelectsManualEnglish(t *testing.T) {
	c := newTestClient(t, nil, nil)
	transcript, err := c.GetTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ", nil)
	if err != nil {
		t.Fatalf("GetTranscript error = %v", err)
	}
	if transcript.Track.LanguageCode != "en" || transcript.Track.IsGenerated {
		t.Fatalf("selected track = %+v, want manual en", transcript.Track)
	}
	if len(transcript.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(transcript.Entries))
	}
	if got := transcript.Entries[0].Text; got != "hello there" {
		t.Fatalf("first entry = %q", got)
	}
}

func TestSessionCacheReusesPlayerResponse(t *testing.T) {
	var playerCalls atomic.Int32
	c := newTestClient(t, &playerCalls, nil)

	ctx := context.Background()
	if _, err := c.GetVideo(ctx, "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("GetVideo error = %v", err)
	}
	if _, err := c.GetTranscript(ctx, "dQw4w9WgXcQ", []string{"en"}); err != nil {
		t.Fatalf("GetTranscript error = %v", err)
	}
	if got := playerCalls.Load(); got != 1 {
		t.Fatalf("player calls = %d, want 1", got)
	}
}

func TestSessionCacheExpires(t *testing.T) {
	var playerCalls atomic.Int32
	c := newTestClient(t, &playerCalls, nil)

	current := time.Now()
	c.now = func() time.Time { return current }

	ctx := context.Background()
	if _, err := c.GetVideo(ctx, "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("GetVideo error = %v", err)
	}
	current = current.Add(c.sessionTTL + time.Second)
	if _, err := c.GetVideo(ctx, "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("GetVideo after expiry error = %v", err)
	}
	if got := playerCalls.Load(); got != 2 {
		t.Fatalf("player calls = %d, want 2 after TTL expiry", got)
	}
}

func TestDownloadTranscriptWritesFile(t *testing.T) {
	c := newTestClient(t, nil, nil)
	dir := t.TempDir()

	path, transcript, err := c.DownloadTranscript(context.Background(), "dQw4w9WgXcQ", DownloadOptions{
		Directory: dir,
	})
	if err != nil {
		t.Fatalf("DownloadTranscript error = %v", err)
	}
	if filepath.Base(path) != "Francois_s_Talk.txt" {
		t.Fatalf("filename = %q, want Francois_s_Talk.txt", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "[00:00] hello there\n[01:02] one minute in\n"
	if string(data) != want {
		t.Fatalf("file content = %q, want %q", string(data), want)
	}
	if transcript.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("transcript video id = %q", transcript.VideoID)
	}
}

func TestDownloadTranscriptNonEnglishSuffix(t *testing.T) {
	c := newTestClient(t, nil, nil)
	dir := t.TempDir()

	path, _, err := c.DownloadTranscript(context.Background(), "dQw4w9WgXcQ", DownloadOptions{
		Directory: dir,
		Languages: []string{"es"},
	})
	if err != nil {
		t.Fatalf("DownloadTranscript error = %v", err)
	}
	if filepath.Base(path) != "Francois_s_Talk_es.txt" {
		t.Fatalf("filename = %q, want Francois_s_Talk_es.txt", filepath.Base(path))
	}
}

func TestDownloadTranscriptExplicitPathBypassesNaming(t *testing.T) {
	c := newTestClient(t, nil, nil)
	target := filepath.Join(t.TempDir(), "nested", "my-notes.txt")

	path, _, err := c.DownloadTranscript(context.Background(), "dQw4w9WgXcQ", DownloadOptions{
		OutputPath: target,
	})
	if err != nil {
		t.Fatalf("DownloadTranscript error = %v", err)
	}
	if path != target {
		t.Fatalf("path = %q, want explicit %q", path, target)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("stat output: %v", err)
	}
}

func TestGetTranscriptTranscriptsDisabled(t *testing.T) {
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"playabilityStatus":{"status":"OK"},"videoDetails":{"videoId":"dQw4w9WgXcQ","title":"No Captions"}}`), nil
	})
	c := New(Config{
		HTTPClient:                     &http.Client{Transport: transport},
		ClientOverrides:                []string{"web"},
		DisableFallbackClients:         true,
		DisableDynamicAPIKeyResolution: true,
	})
	_, err := c.GetTranscript(context.Background(), "dQw4w9WgXcQ", nil)
	if !errors.Is(err, ErrTranscriptsDisabled) {
		t.Fatalf("err = %v, want ErrTranscriptsDisabled", err)
	}
}

func TestGetVideoLoginRequiredMapsDetailError(t *testing.T) {
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm your age"}}`), nil
	})
	c := New(Config{
		HTTPClient:                     &http.Client{Transport: transport},
		ClientOverrides:                []string{"web"},
		DisableFallbackClients:         true,
		DisableDynamicAPIKeyResolution: true,
	})
	_, err := c.GetVideo(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("err = %v, want ErrLoginRequired", err)
	}
	var detail *LoginRequiredDetailError
	if !errors.As(err, &detail) {
		t.Fatalf("err = %T, want *LoginRequiredDetailError", err)
	}
	if len(detail.Attempts) == 0 || detail.Attempts[0].PlayabilityStatus != "LOGIN_REQUIRED" {
		t.Fatalf("attempts = %+v", detail.Attempts)
	}
}

func TestGetVideoInvalidInput(t *testing.T) {
	c := newTestClient(t, nil, nil)
	if _, err := c.GetVideo(context.Background(), "not a video"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
