package client

import (
	"errors"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	cases := map[string]string{
		"dQw4w9WgXcQ": "dQw4w9WgXcQ",
		// any 11 chars of the ID alphabet are a syntactically valid ID
		"not-a-video": "not-a-video",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":       "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=10":                 "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":        "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":         "dQw4w9WgXcQ",
		"https://www.youtube.com/live/dQw4w9WgXcQ?feature=": "dQw4w9WgXcQ",
	}
	for in, want := range cases {
		got, err := ExtractVideoID(in)
		if err != nil {
			t.Fatalf("ExtractVideoID(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("ExtractVideoID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractVideoIDRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "short", "not a video", "https://example.com/watch?v=nope"} {
		if _, err := ExtractVideoID(in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ExtractVideoID(%q) err = %v, want ErrInvalidInput", in, err)
		}
	}
}
