package innertube

import "net/http"

// PoTokenPolicy describes how a client profile relates to Proof of Origin
// (PO) tokens for caption and metadata requests.
type PoTokenPolicy struct {
	Required    bool
	Recommended bool
}

type ClientProfile struct {
	// ID is the registry alias used for policy and diagnostics
	// (e.g. "web_embedded"), distinct from Innertube clientName
	// ("WEB_EMBEDDED_PLAYER").
	ID              string
	Name            string
	Version         string
	APIKey          string
	UserAgent       string
	ContextNameID   int
	SupportsCookies bool
	RequiresAuth    bool
	Host            string
	Headers         http.Header
	Screen          string // e.g. "EMBED"

	PoTokenPolicy PoTokenPolicy
}

type Registry interface {
	Get(name string) (ClientProfile, bool)
	All() []ClientProfile
}
