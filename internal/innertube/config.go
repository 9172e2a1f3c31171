package innertube

import (
	"context"
	"net/http"
	"time"
)

// ExtractionEvent represents one extraction-stage lifecycle event.
type ExtractionEvent struct {
	Stage   string
	Client  string
	VideoID string
	Err     error
}

// ExtractionEventHandler handles extraction events from orchestrator/client flows.
type ExtractionEventHandler func(ExtractionEvent)

// PoTokenProvider defines an interface for injecting PO Tokens.
type PoTokenProvider interface {
	GetToken(ctx context.Context, clientID string) (string, error)
}

// Config holds configuration specific to InnerTube and the extraction engine.
type Config struct {
	HTTPClient                    *http.Client
	ProxyURL                      string
	PoTokenProvider               PoTokenProvider
	VisitorData                   string
	PlayerJSBaseURL               string
	PlayerJSUserAgent             string
	PlayerJSHeaders               http.Header
	PlayerJSPreferredLocale       string
	ClientOverrides               []string
	ClientSkip                    []string
	RequestHeaders                http.Header
	RequestTimeout                time.Duration
	DisableFallbackClients        bool
	EnableDynamicAPIKeyResolution bool
	OnExtractionEvent             ExtractionEventHandler
}
