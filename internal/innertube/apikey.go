package innertube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var innertubeAPIKeyPattern = regexp.MustCompile(`(?i)["']INNERTUBE_API_KEY["']\s*:\s*["']([^"']+)["']`)
var visitorDataPattern = regexp.MustCompile(`(?i)["']VISITOR_DATA["']\s*:\s*["']([^"']+)["']`)
var signatureTimestampPattern = regexp.MustCompile(`(?i)["']STS["']\s*:\s*["']?(\d+)["']?`)
var playerSignatureTimestampPattern = regexp.MustCompile(`(?i)(?:signatureTimestamp|sts)\s*:\s*(\d{5})`)
var playerJSURLCfgPattern = regexp.MustCompile(`(?i)["']PLAYER_JS_URL["']\s*:\s*["']([^"']+)["']`)
var webPlayerContextJSURLPattern = regexp.MustCompile(`(?i)["']jsUrl["']\s*:\s*["']([^"']+/base\.js)["']`)
var playerURLPattern = regexp.MustCompile(`(/s/player/[A-Za-z0-9_-]+/[A-Za-z0-9._/-]*/base\.js)`)

type resolvedWatchData struct {
	APIKey             string
	VisitorData        string
	SignatureTimestamp int
}

// APIKeyResolver extracts per-profile Innertube API keys and related ytcfg
// values from watch pages. Results are cached per host+profile.
type APIKeyResolver struct {
	httpClient *http.Client
	mu         sync.RWMutex
	cache      map[string]resolvedWatchData
}

func NewAPIKeyResolver(httpClient *http.Client) *APIKeyResolver {
	return &APIKeyResolver{
		httpClient: httpClient,
		cache:      make(map[string]resolvedWatchData),
	}
}

// Resolve returns the dynamic API key for the profile, falling back to the
// profile's static key when watch-page extraction fails.
func (r *APIKeyResolver) Resolve(ctx context.Context, profile ClientProfile, videoID string) (string, error) {
	fallback := strings.TrimSpace(profile.APIKey)
	if fallback == "" {
		fallback = defaultInnertubeAPIKey
	}
	if r == nil || r.httpClient == nil {
		return fallback, nil
	}

	cacheKey := profileCacheKey(profile)
	if cacheKey == "" {
		return fallback, nil
	}

	if data, ok := r.get(cacheKey); ok {
		if strings.TrimSpace(data.APIKey) == "" {
			return fallback, nil
		}
		return data.APIKey, nil
	}

	resolved, err := r.fetchFromWatch(ctx, profile, videoID)
	if err != nil || strings.TrimSpace(resolved.APIKey) == "" {
		r.set(cacheKey, resolvedWatchData{APIKey: fallback})
		if err != nil {
			return fallback, err
		}
		return fallback, nil
	}

	r.set(cacheKey, resolved)
	return resolved.APIKey, nil
}

// ResolveVisitorData returns cached visitor data for the profile, if any.
func (r *APIKeyResolver) ResolveVisitorData(ctx context.Context, profile ClientProfile, videoID string) string {
	if r == nil || r.httpClient == nil {
		return ""
	}
	cacheKey := profileCacheKey(profile)
	if cacheKey == "" {
		return ""
	}
	if data, ok := r.get(cacheKey); ok {
		return strings.TrimSpace(data.VisitorData)
	}
	resolved, err := r.fetchFromWatch(ctx, profile, videoID)
	if err != nil {
		return ""
	}
	r.set(cacheKey, resolved)
	return strings.TrimSpace(resolved.VisitorData)
}

// ResolveSignatureTimestamp returns the player signature timestamp used in
// playback context. Zero means unknown.
func (r *APIKeyResolver) ResolveSignatureTimestamp(ctx context.Context, profile ClientProfile, videoID string) int {
	if r == nil || r.httpClient == nil {
		return 0
	}
	cacheKey := profileCacheKey(profile)
	if cacheKey == "" {
		return 0
	}
	if data, ok := r.get(cacheKey); ok {
		return data.SignatureTimestamp
	}
	resolved, err := r.fetchFromWatch(ctx, profile, videoID)
	if err != nil && resolved.APIKey == "" && resolved.VisitorData == "" {
		return 0
	}
	r.set(cacheKey, resolved)
	return resolved.SignatureTimestamp
}

func (r *APIKeyResolver) get(key string) (resolvedWatchData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.cache[key]
	return data, ok
}

func (r *APIKeyResolver) set(key string, data resolvedWatchData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = data
}

func (r *APIKeyResolver) fetchFromWatch(ctx context.Context, profile ClientProfile, videoID string) (resolvedWatchData, error) {
	watchURL := watchPageURLForProfile(profile, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return resolvedWatchData{}, err
	}
	if profile.UserAgent != "" {
		req.Header.Set("User-Agent", profile.UserAgent)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return resolvedWatchData{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resolvedWatchData{}, fmt.Errorf("watch request failed: status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resolvedWatchData{}, err
	}

	resolved := resolvedWatchData{}
	if match := innertubeAPIKeyPattern.FindSubmatch(body); len(match) >= 2 {
		resolved.APIKey = strings.TrimSpace(string(match[1]))
	}
	if match := visitorDataPattern.FindSubmatch(body); len(match) >= 2 {
		resolved.VisitorData = strings.TrimSpace(string(match[1]))
	}
	if match := signatureTimestampPattern.FindSubmatch(body); len(match) >= 2 {
		if parsed, err := strconv.Atoi(strings.TrimSpace(string(match[1]))); err == nil {
			resolved.SignatureTimestamp = parsed
		}
	}
	if resolved.SignatureTimestamp == 0 {
		if playerURL := extractPlayerURLFromWatchBody(body); playerURL != "" {
			if sts, err := r.extractSignatureTimestampFromPlayerJS(ctx, profile, playerURL); err == nil {
				resolved.SignatureTimestamp = sts
			}
		}
	}
	if resolved.APIKey == "" {
		return resolved, fmt.Errorf("INNERTUBE_API_KEY not found in watch page")
	}
	return resolved, nil
}

func extractPlayerURLFromWatchBody(body []byte) string {
	for _, re := range []*regexp.Regexp{playerJSURLCfgPattern, webPlayerContextJSURLPattern, playerURLPattern} {
		match := re.FindSubmatch(body)
		if len(match) < 2 {
			continue
		}
		candidate := strings.TrimSpace(string(match[1]))
		if candidate == "" {
			continue
		}
		candidate = strings.ReplaceAll(candidate, `\/`, "/")
		if strings.HasPrefix(candidate, "//") {
			return "https:" + candidate
		}
		return candidate
	}
	return ""
}

func (r *APIKeyResolver) extractSignatureTimestampFromPlayerJS(ctx context.Context, profile ClientProfile, playerURL string) (int, error) {
	fullURL := playerURL
	if !strings.HasPrefix(fullURL, "http://") && !strings.HasPrefix(fullURL, "https://") {
		host := strings.TrimSpace(profile.Host)
		if host == "" {
			host = "www.youtube.com"
		}
		fullURL = "https://" + host + playerURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, err
	}
	if ua := strings.TrimSpace(profile.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("player js request failed: status=%d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	match := playerSignatureTimestampPattern.FindSubmatch(body)
	if len(match) < 2 {
		return 0, fmt.Errorf("signatureTimestamp not found in player js")
	}
	return strconv.Atoi(strings.TrimSpace(string(match[1])))
}

func profileCacheKey(profile ClientProfile) string {
	host := strings.ToLower(strings.TrimSpace(profile.Host))
	if host == "" {
		return ""
	}
	id := strings.ToLower(strings.TrimSpace(profile.ID))
	if id == "" {
		id = strings.ToLower(strings.TrimSpace(profile.Name))
	}
	return host + "|" + id
}

func watchPageURLForProfile(profile ClientProfile, videoID string) string {
	id := strings.ToLower(strings.TrimSpace(profile.ID))
	videoID = strings.TrimSpace(videoID)
	switch {
	case id == "mweb":
		if videoID == "" {
			return "https://m.youtube.com"
		}
		return "https://m.youtube.com/watch?v=" + videoID
	case strings.HasPrefix(id, "web_embedded"):
		if videoID == "" {
			return "https://www.youtube.com/embed/"
		}
		return "https://www.youtube.com/embed/" + videoID + "?html5=1"
	case strings.HasPrefix(id, "tv"):
		return "https://www.youtube.com/tv"
	default:
		host := strings.TrimSpace(profile.Host)
		if host == "" {
			host = "www.youtube.com"
		}
		if videoID == "" {
			return "https://" + host
		}
		return "https://" + host + "/watch?v=" + videoID
	}
}
