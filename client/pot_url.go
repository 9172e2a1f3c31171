package client

import (
	"context"
	"net/url"
	"strings"
)

func hasPoTokenInURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	if strings.TrimSpace(u.Query().Get("pot")) != "" {
		return true
	}
	return strings.Contains(u.Path, "/pot/")
}

func injectPoToken(rawURL string, token string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("pot", strings.TrimSpace(token))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// applyPoTokenToURL injects a provider token when the URL lacks one.
// Provider failures are logged and the original URL is kept; caption
// endpoints usually still answer without a token, only slower.
func (c *Client) applyPoTokenToURL(ctx context.Context, rawURL string, sourceClient string) string {
	if strings.TrimSpace(rawURL) == "" || hasPoTokenInURL(rawURL) {
		return rawURL
	}
	if c.potProvider == nil {
		return rawURL
	}
	token, err := c.potProvider.GetToken(ctx, sourceClient)
	if err != nil {
		c.logger.Warn("po token provider error, continuing without token",
			"client", sourceClient, "err", err)
		return rawURL
	}
	if strings.TrimSpace(token) == "" {
		return rawURL
	}
	withToken, err := injectPoToken(rawURL, token)
	if err != nil {
		return rawURL
	}
	return withToken
}
