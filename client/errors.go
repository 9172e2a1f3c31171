package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput indicates malformed input (not a video ID/url).
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable indicates video is unavailable.
	ErrUnavailable = errors.New("video unavailable")
	// ErrLoginRequired indicates authenticated session is required.
	ErrLoginRequired = errors.New("login required")
	// ErrNoTranscript indicates no caption track matched or none exist.
	ErrNoTranscript = errors.New("no transcript available")
	// ErrTranscriptsDisabled indicates captions are turned off for the video.
	ErrTranscriptsDisabled = errors.New("transcripts disabled")
	// ErrChallengeNotSolved indicates caption URL gating is still unresolved.
	ErrChallengeNotSolved = errors.New("challenge not solved")
	// ErrAllClientsFailed indicates fallback attempts all failed.
	ErrAllClientsFailed = errors.New("all clients failed")
)

// AttemptDetail describes one failed client attempt for diagnostics.
type AttemptDetail struct {
	Client            string
	Stage             string
	Reason            string
	PlayabilityStatus string
	PlayabilityReason string
	HTTPStatus        int
	GeoRestricted     bool
	LoginRequired     bool
	AgeRestricted     bool
	Unavailable       bool
}

// LoginRequiredDetailError wraps ErrLoginRequired with per-client attempts.
type LoginRequiredDetailError struct {
	Attempts []AttemptDetail
}

func (e *LoginRequiredDetailError) Error() string {
	return "login required" + attemptSummary(e.Attempts)
}

func (e *LoginRequiredDetailError) Unwrap() error { return ErrLoginRequired }

// UnavailableDetailError wraps ErrUnavailable with per-client attempts.
type UnavailableDetailError struct {
	Attempts []AttemptDetail
}

func (e *UnavailableDetailError) Error() string {
	return "video unavailable" + attemptSummary(e.Attempts)
}

func (e *UnavailableDetailError) Unwrap() error { return ErrUnavailable }

// AllClientsFailedDetailError wraps ErrAllClientsFailed with per-client attempts.
type AllClientsFailedDetailError struct {
	Attempts []AttemptDetail
}

func (e *AllClientsFailedDetailError) Error() string {
	return "all clients failed" + attemptSummary(e.Attempts)
}

func (e *AllClientsFailedDetailError) Unwrap() error { return ErrAllClientsFailed }

func attemptSummary(attempts []AttemptDetail) string {
	if len(attempts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		reason := a.Reason
		if reason == "" {
			reason = a.Stage
		}
		parts = append(parts, fmt.Sprintf("%s: %s", a.Client, reason))
	}
	return " (" + strings.Join(parts, "; ") + ")"
}
