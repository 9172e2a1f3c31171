package cookies

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
)

// LoadJar reads a Netscape cookies.txt file and returns a jar seeded with
// its cookies, grouped per domain so the jar serves them to the right hosts.
func LoadJar(path string) (http.CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookie file: %w", err)
	}
	defer f.Close()

	parsed, err := ParseNetscape(f)
	if err != nil {
		return nil, fmt.Errorf("parse cookie file: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	byDomain := make(map[string][]*http.Cookie)
	for _, c := range parsed {
		domain := strings.TrimPrefix(c.Domain, ".")
		if domain == "" {
			continue
		}
		byDomain[domain] = append(byDomain[domain], c)
	}
	for domain, list := range byDomain {
		u := &url.URL{Scheme: "https", Host: domain, Path: "/"}
		jar.SetCookies(u, list)
	}
	return jar, nil
}
