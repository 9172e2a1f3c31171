package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Stephensmetana/youtube-transcriptor/internal/timedtext"
)

func hasQueryParam(rawURL, name string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return strings.TrimSpace(u.Query().Get(name)) != ""
}

func rewriteURLParam(rawURL, name, value string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(name, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// resolveTrackURL prepares a caption URL for fetching. Tracks handed out
// by some clients carry an n challenge parameter that must be solved for
// the timedtext endpoint to answer at full speed (or at all).
func (c *Client) resolveTrackURL(ctx context.Context, session *sessionEntry, rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", ErrNoTranscript
	}
	resolved := rawURL

	if hasQueryParam(resolved, "n") {
		u, err := url.Parse(resolved)
		if err != nil {
			return "", fmt.Errorf("parse caption url: %w", err)
		}
		n := u.Query().Get("n")
		solved, err := c.transformNWithCache(ctx, session.challenge, session.videoID, n)
		if err != nil {
			c.logger.Warn("n challenge unsolved, using caption url as-is",
				"video_id", session.videoID, "err", err)
		} else if solved != "" && solved != n {
			resolved, err = rewriteURLParam(resolved, "n", solved)
			if err != nil {
				return "", err
			}
		}
	}

	return c.applyPoTokenToURL(ctx, resolved, session.sourceClient), nil
}

// fetchTranscript downloads and parses the caption payload for a track.
func (c *Client) fetchTranscript(ctx context.Context, session *sessionEntry, track TranscriptTrack) ([]TranscriptEntry, error) {
	trackURL, err := c.resolveTrackURL(ctx, session, track.baseURL)
	if err != nil {
		return nil, err
	}

	headers := buildMediaRequestHeaders(c.config.RequestHeaders, session.videoID)
	cues, err := c.captionFetcher.Fetch(ctx, trackURL, headers)
	if err != nil {
		return nil, c.mapCaptionError(err)
	}
	if len(cues) == 0 {
		return nil, ErrNoTranscript
	}
	return entriesFromCues(cues), nil
}

func (c *Client) mapCaptionError(err error) error {
	var statusErr *timedtext.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case 403:
			return fmt.Errorf("%w: caption endpoint returned 403", ErrChallengeNotSolved)
		case 404, 410:
			return fmt.Errorf("%w: caption endpoint returned %d", ErrNoTranscript, statusErr.StatusCode)
		}
	}
	return err
}
