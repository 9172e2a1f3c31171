package cookies

import (
	"net/url"
	"os"
	"strings"
	"testing"
)

const sampleCookiesTxt = `# Netscape HTTP Cookie File
# This is a generated file! Do not edit.

.youtube.com	TRUE	/	TRUE	1999999999	SID	abc123
.youtube.com	TRUE	/	TRUE	1999999999	HSID	def456
.example.com	TRUE	/	FALSE	1999999999	other	zzz
malformed line without tabs
`

func TestParseNetscape(t *testing.T) {
	cookies, err := ParseNetscape(strings.NewReader(sampleCookiesTxt))
	if err != nil {
		t.Fatalf("ParseNetscape error = %v", err)
	}
	if len(cookies) != 3 {
		t.Fatalf("parsed %d cookies, want 3", len(cookies))
	}
	if cookies[0].Name != "SID" || cookies[0].Value != "abc123" {
		t.Fatalf("first cookie = %+v", cookies[0])
	}
	if !cookies[0].Secure {
		t.Fatalf("expected secure flag parsed")
	}
}

func TestLoadJarServesCookiesPerDomain(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/cookies.txt"
	if err := writeFile(path, sampleCookiesTxt); err != nil {
		t.Fatalf("write cookie file: %v", err)
	}

	jar, err := LoadJar(path)
	if err != nil {
		t.Fatalf("LoadJar error = %v", err)
	}

	yt, _ := url.Parse("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	got := jar.Cookies(yt)
	if len(got) != 2 {
		t.Fatalf("youtube cookies = %d, want 2", len(got))
	}

	other, _ := url.Parse("https://unrelated.test/")
	if extra := jar.Cookies(other); len(extra) != 0 {
		t.Fatalf("unrelated host got %d cookies, want 0", len(extra))
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
