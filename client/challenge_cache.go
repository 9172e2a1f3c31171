package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/Stephensmetana/youtube-transcriptor/internal/playerjs"
)

// challengeState caches the n-transformer and solved values for one
// player build so a multi-track download only pays the goja cost once.
type challengeState struct {
	mu          sync.Mutex
	transformer *playerjs.NTransformer
	solvedN     map[string]string
}

func newChallengeState() *challengeState {
	return &challengeState{solvedN: make(map[string]string)}
}

func (c *Client) loadTransformer(ctx context.Context, state *challengeState, videoID string) (*playerjs.NTransformer, error) {
	state.mu.Lock()
	if state.transformer != nil {
		t := state.transformer
		state.mu.Unlock()
		return t, nil
	}
	state.mu.Unlock()

	playerURL, err := c.playerResolver.GetPlayerURL(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("resolve player url: %w", err)
	}
	body, err := c.playerResolver.GetPlayerJS(ctx, playerURL)
	if err != nil {
		return nil, fmt.Errorf("fetch player js: %w", err)
	}
	transformer := playerjs.NewNTransformer(body)

	state.mu.Lock()
	if state.transformer == nil {
		state.transformer = transformer
	}
	transformer = state.transformer
	state.mu.Unlock()
	return transformer, nil
}

func (c *Client) transformNWithCache(ctx context.Context, state *challengeState, videoID, n string) (string, error) {
	state.mu.Lock()
	if solved, ok := state.solvedN[n]; ok {
		state.mu.Unlock()
		return solved, nil
	}
	state.mu.Unlock()

	transformer, err := c.loadTransformer(ctx, state, videoID)
	if err != nil {
		return "", err
	}
	solved, err := transformer.Transform(n)
	if err != nil {
		return "", err
	}

	state.mu.Lock()
	state.solvedN[n] = solved
	state.mu.Unlock()
	return solved, nil
}
