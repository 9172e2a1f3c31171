package playerjs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

type Resolver interface {
	GetPlayerJS(ctx context.Context, playerID string) (string, error)
	GetPlayerURL(ctx context.Context, videoID string) (string, error)
}

type defaultResolver struct {
	client *http.Client
	cache  Cache
	config ResolverConfig
}

// ResolverConfig contains externally tunable settings for player JS fetches.
type ResolverConfig struct {
	BaseURL         string
	UserAgent       string
	Headers         http.Header
	PreferredLocale string
}

const defaultPlayerJSUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
const defaultPlayerJSLocale = "en_US"

var playerJSURLCfg = regexp.MustCompile(`(?i)["']PLAYER_JS_URL["']\s*:\s*["']([^"']+)["']`)
var playerContextJSURL = regexp.MustCompile(`(?i)["']jsUrl["']\s*:\s*["']([^"']+/base\.js)["']`)
var playerURLPattern = regexp.MustCompile(`(/s/player/[A-Za-z0-9_-]+/[A-Za-z0-9._/-]*/base\.js)`)
var playerPathPattern = regexp.MustCompile(`^/s/player/([A-Za-z0-9_-]+)/(.+)$`)
var localePathPattern = regexp.MustCompile(`(?i)(player(?:_[a-z0-9]+)?\.vflset)/[a-z]{2,3}_[a-z]{2,3}/base\.js$`)
var nonAlnumPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func NewResolver(client *http.Client, cache Cache, cfg ...ResolverConfig) Resolver {
	resolverConfig := ResolverConfig{}
	if len(cfg) > 0 {
		resolverConfig = cfg[0]
	}
	return &defaultResolver{
		client: client,
		cache:  cache,
		config: resolverConfig,
	}
}

func (r *defaultResolver) GetPlayerJS(ctx context.Context, playerURL string) (string, error) {
	normalizedPath := r.normalizePlayerPath(playerURL)
	cacheKey := r.playerCacheKey(normalizedPath)
	if body, ok := r.cache.Get(cacheKey); ok {
		return body, nil
	}

	candidates := []string{normalizedPath}
	if playerURL != normalizedPath {
		candidates = append(candidates, playerURL)
	}

	var lastErr error
	for _, candidate := range candidates {
		body, err := r.fetchPlayerJS(ctx, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		r.cache.Set(cacheKey, body)
		return body, nil
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("failed to fetch player JS")
}

func (r *defaultResolver) fetchPlayerJS(ctx context.Context, playerURL string) (string, error) {
	urlToFetch := playerURL
	if !strings.HasPrefix(urlToFetch, "http://") && !strings.HasPrefix(urlToFetch, "https://") {
		urlToFetch = strings.TrimRight(r.baseURL(), "/") + playerURL
	}

	body, err := r.get(ctx, urlToFetch)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetPlayerURL locates the current player script path for a video. It tries
// the watch page ytcfg first, then the web player context config, then a
// bare path scan, and finally the iframe API bootstrap script.
func (r *defaultResolver) GetPlayerURL(ctx context.Context, videoID string) (string, error) {
	base := strings.TrimRight(r.baseURL(), "/")

	u, err := url.Parse(base + "/watch")
	if err != nil {
		return "", fmt.Errorf("failed to build watch url: %w", err)
	}
	q := u.Query()
	q.Set("v", videoID)
	u.RawQuery = q.Encode()

	body, err := r.get(ctx, u.String())
	if err != nil {
		return "", err
	}
	if playerURL := extractPlayerURL(body); playerURL != "" {
		return playerURL, nil
	}

	// Watch page without a player reference: the iframe API bootstrap
	// embeds the same path.
	iframeBody, err := r.get(ctx, base+"/iframe_api")
	if err != nil {
		return "", err
	}
	if playerURL := extractPlayerURL(iframeBody); playerURL != "" {
		return playerURL, nil
	}
	return "", fmt.Errorf("player url not found")
}

func extractPlayerURL(body []byte) string {
	for _, re := range []*regexp.Regexp{playerJSURLCfg, playerContextJSURL, playerURLPattern} {
		m := re.FindSubmatch(body)
		if len(m) < 2 {
			continue
		}
		candidate := strings.ReplaceAll(strings.TrimSpace(string(m[1])), `\/`, "/")
		if candidate == "" {
			continue
		}
		if strings.HasPrefix(candidate, "//") {
			return "https:" + candidate
		}
		return candidate
	}
	return ""
}

func (r *defaultResolver) get(ctx context.Context, fetchURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	ua := r.config.UserAgent
	if ua == "" {
		ua = defaultPlayerJSUserAgent
	}
	req.Header.Set("User-Agent", ua)
	for k, values := range r.config.Headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (r *defaultResolver) baseURL() string {
	if r.config.BaseURL != "" {
		return r.config.BaseURL
	}
	return "https://www.youtube.com"
}

func (r *defaultResolver) normalizePlayerPath(playerURL string) string {
	u, err := url.Parse(playerURL)
	if err == nil && u.Path != "" {
		playerURL = u.Path
	}
	locale := r.config.PreferredLocale
	if locale == "" {
		locale = defaultPlayerJSLocale
	}
	if localePathPattern.MatchString(playerURL) {
		return localePathPattern.ReplaceAllString(playerURL, "${1}/"+locale+"/base.js")
	}
	return playerURL
}

func (r *defaultResolver) playerCacheKey(playerPath string) string {
	m := playerPathPattern.FindStringSubmatch(playerPath)
	if len(m) < 3 {
		return playerPath
	}
	playerID := m[1]
	variant := nonAlnumPattern.ReplaceAllString(m[2], "_")
	return playerID + ":" + variant
}
