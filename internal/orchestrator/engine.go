package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"sync"

	"github.com/Stephensmetana/youtube-transcriptor/internal/innertube"
	"github.com/Stephensmetana/youtube-transcriptor/internal/policy"
	"github.com/Stephensmetana/youtube-transcriptor/internal/types"
)

// Engine races player requests across client profiles and returns the first
// usable player response.
type Engine struct {
	selector       policy.Selector
	config         innertube.Config
	apiKeyResolver *innertube.APIKeyResolver
}

func NewEngine(selector policy.Selector, config innertube.Config) *Engine {
	engine := &Engine{
		selector: selector,
		config:   config,
	}
	if config.EnableDynamicAPIKeyResolution {
		engine.apiKeyResolver = innertube.NewAPIKeyResolver(config.HTTPClient)
	}
	return engine
}

type extractionResult struct {
	response *innertube.PlayerResponse
	err      error
	client   string
}

// GetPlayerResponse fetches the player response using the configured policy
// and clients. Profiles within a phase race; the first success cancels the
// rest.
func (e *Engine) GetPlayerResponse(ctx context.Context, videoID string) (*innertube.PlayerResponse, error) {
	resp, _, err := e.GetPlayerResponseDetailed(ctx, videoID)
	return resp, err
}

// GetPlayerResponseDetailed additionally reports the name of the client
// profile whose response won the race.
func (e *Engine) GetPlayerResponseDetailed(ctx context.Context, videoID string) (*innertube.PlayerResponse, string, error) {
	clients := e.selector.Select(videoID)
	clients = e.withFallbackClients(clients)
	if len(clients) == 0 {
		return nil, "", types.ErrNoClientsAvailable
	}

	primary, fallback := splitClientPhases(clients)

	resp, client, attempts := e.tryPhase(ctx, videoID, primary)
	if resp != nil {
		return resp, client, nil
	}

	if len(fallback) > 0 && shouldRunFallbackPhase(attempts) {
		fallbackResp, fallbackClient, fallbackAttempts := e.tryPhase(ctx, videoID, fallback)
		if fallbackResp != nil {
			return fallbackResp, fallbackClient, nil
		}
		attempts = append(attempts, fallbackAttempts...)
	}

	if len(attempts) > 0 {
		return nil, "", &AllClientsFailedError{Attempts: attempts}
	}
	return nil, "", types.ErrNoClientsAvailable
}

func (e *Engine) tryPhase(ctx context.Context, videoID string, clients []innertube.ClientProfile) (*innertube.PlayerResponse, string, []AttemptError) {
	if len(clients) == 0 {
		return nil, "", nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan extractionResult, len(clients))
	var wg sync.WaitGroup

	for _, profile := range clients {
		wg.Add(1)
		go func(p innertube.ClientProfile) {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}

			e.emit(innertube.ExtractionEvent{Stage: "attempt", Client: p.Name, VideoID: videoID})

			req := innertube.NewPlayerRequest(p, videoID, innertube.PlayerRequestOptions{
				VisitorData:        e.resolveVisitorData(ctx, p, videoID),
				SignatureTimestamp: e.resolveSignatureTimestamp(ctx, p, videoID),
			})
			e.applyPoToken(ctx, req, p)
			resp, err := e.fetch(ctx, req, p)

			select {
			case results <- extractionResult{response: resp, err: err, client: p.Name}:
			case <-ctx.Done():
			}
		}(profile)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var attempts []AttemptError
	for res := range results {
		if res.err == nil {
			e.emit(innertube.ExtractionEvent{Stage: "success", Client: res.client, VideoID: videoID})
			cancel()
			return res.response, res.client, attempts
		}
		e.emit(innertube.ExtractionEvent{Stage: "failure", Client: res.client, VideoID: videoID, Err: res.err})
		attempts = append(attempts, AttemptError{
			Client: res.client,
			Err:    res.err,
		})
	}
	return nil, "", attempts
}

func (e *Engine) emit(ev innertube.ExtractionEvent) {
	if e.config.OnExtractionEvent != nil {
		e.config.OnExtractionEvent(ev)
	}
}

func (e *Engine) withFallbackClients(clients []innertube.ClientProfile) []innertube.ClientProfile {
	if len(clients) == 0 || e.config.DisableFallbackClients {
		return clients
	}
	registry := e.selector.Registry()
	if registry == nil {
		return clients
	}
	out := append([]innertube.ClientProfile(nil), clients...)
	seenFallback := map[string]struct{}{}
	for _, c := range out {
		if isFallbackClient(c) {
			seenFallback[strings.ToUpper(strings.TrimSpace(c.Name))] = struct{}{}
		}
	}
	appendIfMissing := func(alias string) {
		p, ok := registry.Get(alias)
		if !ok {
			return
		}
		name := strings.ToUpper(strings.TrimSpace(p.Name))
		if _, exists := seenFallback[name]; exists {
			return
		}
		out = append(out, p)
		seenFallback[name] = struct{}{}
	}
	appendIfMissing("web_embedded")
	appendIfMissing("tv")
	return out
}

func (e *Engine) applyPoToken(ctx context.Context, req *innertube.PlayerRequest, profile innertube.ClientProfile) {
	if !profile.PoTokenPolicy.Required && !profile.PoTokenPolicy.Recommended {
		return
	}
	if e.config.PoTokenProvider == nil {
		// Non-blocking: proceed without token when provider is not configured.
		return
	}
	token, err := e.config.PoTokenProvider.GetToken(ctx, profile.Name)
	if err != nil || token == "" {
		// Non-blocking: proceed without token when provider fails.
		return
	}
	req.SetPoToken(token)
}

func splitClientPhases(clients []innertube.ClientProfile) ([]innertube.ClientProfile, []innertube.ClientProfile) {
	var primary []innertube.ClientProfile
	var fallback []innertube.ClientProfile
	for _, c := range clients {
		if isFallbackClient(c) {
			fallback = append(fallback, c)
			continue
		}
		primary = append(primary, c)
	}
	return primary, fallback
}

func isFallbackClient(c innertube.ClientProfile) bool {
	name := strings.ToUpper(strings.TrimSpace(c.Name))
	return name == "WEB_EMBEDDED_PLAYER" || name == "TVHTML5"
}

func shouldRunFallbackPhase(attempts []AttemptError) bool {
	for _, attempt := range attempts {
		var pErr *PlayabilityError
		if !errors.As(attempt.Err, &pErr) {
			var poErr *PoTokenRequiredError
			if errors.As(attempt.Err, &poErr) {
				return true
			}
			continue
		}
		// Keep fallback targeted to known playability gating classes.
		if pErr.RequiresLogin() || pErr.IsAgeRestricted() || pErr.IsGeoRestricted() || pErr.IsUnavailable() {
			return true
		}
	}
	return false
}

func (e *Engine) fetch(ctx context.Context, req *innertube.PlayerRequest, profile innertube.ClientProfile) (*innertube.PlayerResponse, error) {
	apiKey := e.resolveAPIKey(ctx, profile, req.VideoID)
	url := "https://" + profile.Host + "/youtubei/v1/player"
	if apiKey != "" {
		url += "?key=" + neturl.QueryEscape(apiKey)
	}

	body, err := innertube.MarshalRequest(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", profile.UserAgent)
	httpReq.Header.Set("Origin", "https://"+profile.Host)
	httpReq.Header.Set("Referer", "https://"+profile.Host+"/watch?v="+req.VideoID)
	for k, v := range profile.Headers {
		for _, val := range v {
			httpReq.Header.Add(k, val)
		}
	}
	for k, v := range e.config.RequestHeaders {
		for _, val := range v {
			httpReq.Header.Add(k, val)
		}
	}

	resp, err := e.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{
			Client:     profile.Name,
			StatusCode: resp.StatusCode,
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var playerResp innertube.PlayerResponse
	if err := json.Unmarshal(respBody, &playerResp); err != nil {
		return nil, err
	}

	if !playerResp.PlayabilityStatus.IsOK() && !playerResp.PlayabilityStatus.IsLive() {
		return nil, &PlayabilityError{
			Client: profile.Name,
			Status: playerResp.PlayabilityStatus.Status,
			Reason: playerResp.PlayabilityStatus.Reason,
		}
	}

	return &playerResp, nil
}

func (e *Engine) resolveAPIKey(ctx context.Context, profile innertube.ClientProfile, videoID string) string {
	if e.apiKeyResolver == nil {
		return profile.APIKey
	}
	key, err := e.apiKeyResolver.Resolve(ctx, profile, videoID)
	if err != nil {
		return profile.APIKey
	}
	return key
}

func (e *Engine) resolveVisitorData(ctx context.Context, profile innertube.ClientProfile, videoID string) string {
	if e.config.VisitorData != "" {
		return e.config.VisitorData
	}
	if e.apiKeyResolver == nil {
		return ""
	}
	return e.apiKeyResolver.ResolveVisitorData(ctx, profile, videoID)
}

func (e *Engine) resolveSignatureTimestamp(ctx context.Context, profile innertube.ClientProfile, videoID string) int {
	if e.apiKeyResolver == nil {
		return 0
	}
	return e.apiKeyResolver.ResolveSignatureTimestamp(ctx, profile, videoID)
}
