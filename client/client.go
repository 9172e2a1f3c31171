package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Stephensmetana/youtube-transcriptor/internal/challenge"
	"github.com/Stephensmetana/youtube-transcriptor/internal/innertube"
	"github.com/Stephensmetana/youtube-transcriptor/internal/logging"
	"github.com/Stephensmetana/youtube-transcriptor/internal/orchestrator"
	"github.com/Stephensmetana/youtube-transcriptor/internal/playerjs"
	"github.com/Stephensmetana/youtube-transcriptor/internal/policy"
	"github.com/Stephensmetana/youtube-transcriptor/internal/timedtext"
	"github.com/Stephensmetana/youtube-transcriptor/internal/types"
)

const (
	defaultSessionCacheTTL        = 5 * time.Minute
	defaultSessionCacheMaxEntries = 32
)

// Client fetches video metadata and transcripts.
type Client struct {
	config         Config
	httpClient     *http.Client
	engine         *orchestrator.Engine
	playerResolver playerjs.Resolver
	captionFetcher *timedtext.Fetcher
	potProvider    innertube.PoTokenProvider
	logger         *slog.Logger

	sessionMu  sync.Mutex
	sessions   map[string]*sessionEntry
	sessionTTL time.Duration
	sessionMax int
	now        func() time.Time
}

// sessionEntry caches one resolved player response together with the
// challenge state for its player build.
type sessionEntry struct {
	videoID      string
	response     *innertube.PlayerResponse
	sourceClient string
	challenge    *challengeState
	fetchedAt    time.Time
	lastUsed     time.Time
}

// New creates a transcript client. The zero Config is usable.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient(cfg.ProxyURL)
	}
	if cfg.CookieJar != nil && httpClient.Jar == nil {
		jarClient := *httpClient
		jarClient.Jar = cfg.CookieJar
		httpClient = &jarClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	potProvider := challenge.NewCachedPoTokenProvider(cfg.PoTokenProvider)

	itConfig := cfg.ToInnerTubeConfig()
	itConfig.HTTPClient = httpClient
	itConfig.PoTokenProvider = potProvider

	registry := innertube.NewRegistry()
	selector := policy.NewSelector(registry, cfg.ClientOverrides, cfg.ClientSkip, cfg.CookieJar != nil)
	engine := orchestrator.NewEngine(selector, itConfig)

	resolver := playerjs.NewResolver(httpClient, playerjs.NewMemoryCache(), playerjs.ResolverConfig{
		BaseURL:         cfg.PlayerJSBaseURL,
		UserAgent:       cfg.PlayerJSUserAgent,
		Headers:         cfg.PlayerJSHeaders,
		PreferredLocale: cfg.PlayerJSPreferredLocale,
	})

	ttl := cfg.SessionCacheTTL
	if ttl <= 0 {
		ttl = defaultSessionCacheTTL
	}
	maxEntries := cfg.SessionCacheMaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultSessionCacheMaxEntries
	}

	return &Client{
		config:         cfg,
		httpClient:     httpClient,
		engine:         engine,
		playerResolver: resolver,
		captionFetcher: timedtext.NewFetcher(httpClient, cfg.CaptionRetry),
		potProvider:    potProvider,
		logger:         logger,
		sessions:       make(map[string]*sessionEntry),
		sessionTTL:     ttl,
		sessionMax:     maxEntries,
		now:            time.Now,
	}
}

// GetVideo returns metadata and the caption track listing for a video.
func (c *Client) GetVideo(ctx context.Context, input string) (*VideoInfo, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	videoID, err := ExtractVideoID(input)
	if err != nil {
		return nil, err
	}
	session, err := c.ensureSession(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return videoInfoFromSession(session), nil
}

// ListTranscriptTracks returns the caption tracks available for a video.
func (c *Client) ListTranscriptTracks(ctx context.Context, input string) ([]TranscriptTrack, error) {
	info, err := c.GetVideo(ctx, input)
	if err != nil {
		return nil, err
	}
	return info.Tracks, nil
}

// GetTranscript selects the best caption track per the language
// preferences and fetches it.
func (c *Client) GetTranscript(ctx context.Context, input string, preferredLangs []string) (*Transcript, error) {
	transcript, _, err := c.getTranscript(ctx, input, preferredLangs)
	return transcript, err
}

func (c *Client) getTranscript(ctx context.Context, input string, preferredLangs []string) (*Transcript, SelectionResult, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	videoID, err := ExtractVideoID(input)
	if err != nil {
		return nil, SelectionResult{}, err
	}
	session, err := c.ensureSession(ctx, videoID)
	if err != nil {
		return nil, SelectionResult{}, err
	}

	tracks := tracksFromResponse(session.response)
	if len(tracks) == 0 {
		return nil, SelectionResult{}, fmt.Errorf("video %s: %w", videoID, transcriptAbsenceError(session.response))
	}

	selection, err := SelectTranscriptTrack(tracks, preferredLangs)
	if err != nil {
		return nil, SelectionResult{}, fmt.Errorf("video %s: %w", videoID, err)
	}

	entries, err := c.fetchTranscript(ctx, session, selection.Track)
	if err != nil {
		return nil, SelectionResult{}, err
	}

	return &Transcript{
		VideoID: videoID,
		Title:   session.response.VideoDetails.Title,
		Track:   selection.Track,
		Entries: entries,
	}, selection, nil
}

// DownloadOptions controls where and how DownloadTranscript writes.
type DownloadOptions struct {
	// OutputPath, when set, is used verbatim as the output file path and
	// no filename is derived from the title.
	OutputPath string
	// Directory receives the output file when OutputPath is empty.
	// Default "transcripts".
	Directory string
	// Languages is the preference order of caption language codes.
	Languages []string
	// Format selects the serialization. Default OutputText.
	Format OutputFormat
	// OmitTimestamps drops the [MM:SS] prefixes in text output.
	OmitTimestamps bool
}

// DownloadTranscript fetches the transcript and writes it to disk,
// deriving the filename from the video title. It returns the written
// path along with the transcript.
func (c *Client) DownloadTranscript(ctx context.Context, input string, opts DownloadOptions) (string, *Transcript, error) {
	transcript, selection, err := c.getTranscript(ctx, input, opts.Languages)
	if err != nil {
		return "", nil, err
	}

	format := opts.Format
	if format == "" {
		format = OutputText
	}

	path := strings.TrimSpace(opts.OutputPath)
	if path == "" {
		dir := strings.TrimSpace(opts.Directory)
		if dir == "" {
			dir = "transcripts"
		}
		name := BuildTranscriptFilename(transcript.Title, selection.IsEnglish, selection.Track.LanguageCode)
		if format != OutputText {
			name = strings.TrimSuffix(name, ".txt") + format.Extension()
		}
		path = filepath.Join(dir, name)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := transcript.Write(f, format, !opts.OmitTimestamps); err != nil {
		return "", nil, fmt.Errorf("write transcript: %w", err)
	}

	c.logger.Info("transcript saved",
		"video_id", transcript.VideoID,
		"language", languageSuffix(selection.Track.LanguageCode),
		"path", path)
	return path, transcript, nil
}

func (c *Client) ensureSession(ctx context.Context, videoID string) (*sessionEntry, error) {
	now := c.now()

	c.sessionMu.Lock()
	c.evictExpiredLocked(now)
	if entry, ok := c.sessions[videoID]; ok {
		entry.lastUsed = now
		c.sessionMu.Unlock()
		return entry, nil
	}
	c.sessionMu.Unlock()

	resp, sourceClient, err := c.engine.GetPlayerResponseDetailed(ctx, videoID)
	if err != nil {
		return nil, c.mapError(err)
	}

	entry := &sessionEntry{
		videoID:      videoID,
		response:     resp,
		sourceClient: sourceClient,
		challenge:    newChallengeState(),
		fetchedAt:    now,
		lastUsed:     now,
	}

	c.sessionMu.Lock()
	if existing, ok := c.sessions[videoID]; ok {
		existing.lastUsed = now
		c.sessionMu.Unlock()
		return existing, nil
	}
	c.sessions[videoID] = entry
	c.evictLRULocked()
	c.sessionMu.Unlock()
	return entry, nil
}

func (c *Client) evictExpiredLocked(now time.Time) {
	for id, entry := range c.sessions {
		if now.Sub(entry.fetchedAt) > c.sessionTTL {
			delete(c.sessions, id)
		}
	}
}

func (c *Client) evictLRULocked() {
	for len(c.sessions) > c.sessionMax {
		oldestID := ""
		var oldest time.Time
		for id, entry := range c.sessions {
			if oldestID == "" || entry.lastUsed.Before(oldest) {
				oldestID = id
				oldest = entry.lastUsed
			}
		}
		delete(c.sessions, oldestID)
	}
}

func videoInfoFromSession(session *sessionEntry) *VideoInfo {
	details := session.response.VideoDetails
	micro := session.response.Microformat.PlayerMicroformatRenderer
	return &VideoInfo{
		ID:          details.VideoID,
		Title:       details.Title,
		Author:      details.Author,
		Description: details.ShortDescription,
		DurationSec: parseInt64String(details.LengthSeconds),
		ViewCount:   parseInt64String(details.ViewCount),
		ChannelID:   details.ChannelID,
		PublishDate: micro.PublishDate,
		UploadDate:  micro.UploadDate,
		Category:    micro.Category,
		IsLive:      details.IsLiveContent,
		Keywords:    details.Keywords,
		Tracks:      tracksFromResponse(session.response),
	}
}

func parseInt64String(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// transcriptAbsenceError distinguishes "captions turned off" from
// "no track matched" when the caption renderer is empty.
func transcriptAbsenceError(resp *innertube.PlayerResponse) error {
	renderer := resp.Captions.PlayerCaptionsTracklistRenderer
	if len(renderer.CaptionTracks) == 0 {
		return ErrTranscriptsDisabled
	}
	return ErrNoTranscript
}

func (c *Client) mapError(err error) error {
	if err == nil {
		return nil
	}

	var allFailed *orchestrator.AllClientsFailedError
	if errors.As(err, &allFailed) {
		attempts := make([]AttemptDetail, 0, len(allFailed.Attempts))
		loginRequired := false
		unavailable := false
		for _, attempt := range allFailed.Attempts {
			detail := attemptDetail(attempt)
			if detail.LoginRequired || detail.AgeRestricted {
				loginRequired = true
			}
			if detail.Unavailable {
				unavailable = true
			}
			attempts = append(attempts, detail)
		}
		if loginRequired {
			return &LoginRequiredDetailError{Attempts: attempts}
		}
		if unavailable {
			return &UnavailableDetailError{Attempts: attempts}
		}
		return &AllClientsFailedDetailError{Attempts: attempts}
	}

	if errors.Is(err, types.ErrNoClientsAvailable) {
		return fmt.Errorf("%w: no clients available", ErrAllClientsFailed)
	}
	return err
}

func attemptDetail(attempt orchestrator.AttemptError) AttemptDetail {
	detail := AttemptDetail{Client: attempt.Client}
	if attempt.Err == nil {
		return detail
	}
	detail.Reason = attempt.Err.Error()

	var pErr *orchestrator.PlayabilityError
	if errors.As(attempt.Err, &pErr) {
		detail.Stage = "playability"
		detail.PlayabilityStatus = pErr.Status
		detail.PlayabilityReason = pErr.Reason
		detail.LoginRequired = pErr.RequiresLogin()
		detail.AgeRestricted = pErr.IsAgeRestricted()
		detail.GeoRestricted = pErr.IsGeoRestricted()
		detail.Unavailable = pErr.IsUnavailable()
		return detail
	}

	var httpErr *orchestrator.HTTPStatusError
	if errors.As(attempt.Err, &httpErr) {
		detail.Stage = "http"
		detail.HTTPStatus = httpErr.StatusCode
		return detail
	}

	var poErr *orchestrator.PoTokenRequiredError
	if errors.As(attempt.Err, &poErr) {
		detail.Stage = "po_token"
		return detail
	}

	detail.Stage = "transport"
	return detail
}
