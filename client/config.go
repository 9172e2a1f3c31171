package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Stephensmetana/youtube-transcriptor/internal/innertube"
	"github.com/Stephensmetana/youtube-transcriptor/internal/timedtext"
)

// Config holds configuration for the transcript client.
type Config struct {
	// HTTPClient is the client used for making requests.
	// If nil, a client derived from ProxyURL (or http.DefaultClient) is used.
	HTTPClient *http.Client

	// ProxyURL is the optional proxy URL to use for requests.
	// If HTTPClient is provided, this field is ignored.
	ProxyURL string

	// CookieJar carries an authenticated session. When set, client
	// selection prefers profiles that honor cookies.
	CookieJar http.CookieJar

	// PoTokenProvider supplies PO tokens for gated caption URLs.
	// If nil, tokens are not injected, which may cause throttling.
	PoTokenProvider innertube.PoTokenProvider

	// VisitorData is the "VISITOR_INFO1_LIVE" cookie value.
	// Use this to persist sessions or emulate a specific user context.
	VisitorData string

	// PlayerJSBaseURL overrides player JS fetch host (default: https://www.youtube.com).
	PlayerJSBaseURL string

	// PlayerJSUserAgent overrides player JS fetch User-Agent.
	PlayerJSUserAgent string

	// PlayerJSHeaders are additional headers for player JS fetches.
	PlayerJSHeaders http.Header

	// PlayerJSPreferredLocale controls canonical locale for player JS fetch path.
	// Default is "en_US". Fetch falls back to the original watch-page locale path.
	PlayerJSPreferredLocale string

	// ClientOverrides sets Innertube client trial order (e.g. "web", "android").
	// If empty, package defaults are used.
	ClientOverrides []string

	// ClientSkip removes clients from the trial order by alias.
	ClientSkip []string

	// RequestHeaders are extra headers added to player requests.
	RequestHeaders http.Header

	// RequestTimeout bounds each top-level operation when the caller's
	// context has no deadline of its own.
	RequestTimeout time.Duration

	// SessionCacheTTL bounds how long a fetched player response is reused.
	SessionCacheTTL time.Duration

	// SessionCacheMaxEntries caps the session cache size (LRU eviction).
	SessionCacheMaxEntries int

	// CaptionRetry tunes transient-failure handling for caption fetches.
	// The zero value means 3 retries with short backoff.
	CaptionRetry timedtext.RetryConfig

	// DisableFallbackClients turns off the embedded/TV fallback phase.
	DisableFallbackClients bool

	// DisableDynamicAPIKeyResolution disables watch-page ytcfg extraction.
	DisableDynamicAPIKeyResolution bool

	// Logger receives non-fatal diagnostics. Nil means silent.
	Logger *slog.Logger

	// OnExtractionEvent observes extraction lifecycle events.
	OnExtractionEvent innertube.ExtractionEventHandler
}

func (c Config) ToInnerTubeConfig() innertube.Config {
	return innertube.Config{
		HTTPClient:                    c.HTTPClient,
		ProxyURL:                      c.ProxyURL,
		PoTokenProvider:               c.PoTokenProvider,
		VisitorData:                   c.VisitorData,
		PlayerJSBaseURL:               c.PlayerJSBaseURL,
		PlayerJSUserAgent:             c.PlayerJSUserAgent,
		PlayerJSHeaders:               c.PlayerJSHeaders,
		PlayerJSPreferredLocale:       c.PlayerJSPreferredLocale,
		ClientOverrides:               c.ClientOverrides,
		ClientSkip:                    c.ClientSkip,
		RequestHeaders:                c.RequestHeaders,
		RequestTimeout:                c.RequestTimeout,
		DisableFallbackClients:        c.DisableFallbackClients,
		EnableDynamicAPIKeyResolution: !c.DisableDynamicAPIKeyResolution,
		OnExtractionEvent:             c.OnExtractionEvent,
	}
}
