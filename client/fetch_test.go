package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Stephensmetana/youtube-transcriptor/internal/timedtext"
)

const syntheticNPlayerJS = `var yGa=function(a){a=a.split("");a.reverse();return a.join("")};
var c={get:function(){}};var d=c.get("n");if(d&&(b=yGa(b)))c.set("n",b);`

func TestResolveTrackURLSolvesNChallenge(t *testing.T) {
	var playerJSCalls atomic.Int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(r.URL.Path, "/watch"), strings.Contains(r.URL.Path, "/iframe_api"):
			body := `"PLAYER_JS_URL":"/s/player/abcdef01/player_ias.vflset/en_US/base.js"`
			return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(body))}, nil
		case strings.HasSuffix(r.URL.Path, "base.js"):
			playerJSCalls.Add(1)
			return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(syntheticNPlayerJS))}, nil
		default:
			return &http.Response{StatusCode: 404, Body: io.NopCloser(strings.NewReader(""))}, nil
		}
	})
	c := New(Config{
		HTTPClient:                     &http.Client{Transport: transport},
		DisableDynamicAPIKeyResolution: true,
	})
	session := &sessionEntry{videoID: "dQw4w9WgXcQ", challenge: newChallengeState()}

	resolved, err := c.resolveTrackURL(context.Background(), session, "https://captions.test/api/timedtext?lang=en&n=12345")
	if err != nil {
		t.Fatalf("resolveTrackURL error = %v", err)
	}
	if !strings.Contains(resolved, "n=54321") {
		t.Fatalf("resolved = %q, want solved n=54321", resolved)
	}

	// Second URL with the same n value must hit the solution cache.
	if _, err := c.resolveTrackURL(context.Background(), session, "https://captions.test/api/timedtext?lang=es&n=12345"); err != nil {
		t.Fatalf("second resolveTrackURL error = %v", err)
	}
	if got := playerJSCalls.Load(); got != 1 {
		t.Fatalf("player js fetches = %d, want 1", got)
	}
}

func TestResolveTrackURLWithoutChallengePassesThrough(t *testing.T) {
	c := New(Config{DisableDynamicAPIKeyResolution: true})
	session := &sessionEntry{videoID: "dQw4w9WgXcQ", challenge: newChallengeState()}
	raw := "https://captions.test/api/timedtext?lang=en"
	resolved, err := c.resolveTrackURL(context.Background(), session, raw)
	if err != nil {
		t.Fatalf("resolveTrackURL error = %v", err)
	}
	if resolved != raw {
		t.Fatalf("resolved = %q, want unchanged %q", resolved, raw)
	}
}

type staticTokenProvider struct{ token string }

func (p staticTokenProvider) GetToken(ctx context.Context, clientID string) (string, error) {
	return p.token, nil
}

func TestResolveTrackURLInjectsPoToken(t *testing.T) {
	c := New(Config{
		PoTokenProvider:                staticTokenProvider{token: "tok123"},
		DisableDynamicAPIKeyResolution: true,
	})
	session := &sessionEntry{videoID: "dQw4w9WgXcQ", sourceClient: "WEB", challenge: newChallengeState()}
	resolved, err := c.resolveTrackURL(context.Background(), session, "https://captions.test/api/timedtext?lang=en")
	if err != nil {
		t.Fatalf("resolveTrackURL error = %v", err)
	}
	if !strings.Contains(resolved, "pot=tok123") {
		t.Fatalf("resolved = %q, want pot injected", resolved)
	}
}

func TestMapCaptionErrorStatuses(t *testing.T) {
	c := New(Config{DisableDynamicAPIKeyResolution: true})
	if err := c.mapCaptionError(&timedtext.StatusError{StatusCode: 403}); err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("403 mapping = %v", err)
	}
	if err := c.mapCaptionError(&timedtext.StatusError{StatusCode: 404}); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("404 mapping = %v", err)
	}
}
