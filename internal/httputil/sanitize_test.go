package httputil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid HTTPS", "https://example.com/path", false},
		{"HTTP rejected", "http://example.com/path", true},
		{"javascript scheme rejected", "javascript:alert(1)", true},
		{"FTP rejected", "ftp://example.com/file", true},
		{"empty string", "", true},
		{"no host", "https://", true},
		{"valid with query", "https://www.youtube.com/oembed?url=x&format=json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDeptCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"U56", false},
		{"U33A", false},
		{"C10", false},
		{"", true},
		{"u56", true},
		{"U56;rm", true},
		{"../U56", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := ValidateDeptCode(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDeptCode(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Plain Title", "Plain Title"},
		{`AC/DC: "Live" <2024>?`, `AC_DC_ _Live_ _2024__`},
		{"a\\b*c|d", "a_b_c_d"},
		{"Rock ⧸ Roll", "Rock _ Roll"},
		{"左／右", "左_右"},
		{"x∕y", "x_y"},
		{"中文標題 MV", "中文標題 MV"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeTitle(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			if again := SanitizeTitle(got); again != got {
				t.Errorf("SanitizeTitle not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal", "My Video.mp4", "My Video.mp4"},
		{"path traversal", "../../etc/passwd", "____etc_passwd"},
		{"null byte", "file\x00name", "filename"},
		{"empty", "", "untitled"},
		{"dot", ".", "untitled"},
		{"colon", "Title: Subtitle", "Title_ Subtitle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSafeDownloadPath(t *testing.T) {
	dir := t.TempDir()

	got, err := SafeDownloadPath(dir, "U56_資訊工程學系學士班.json")
	if err != nil {
		t.Fatalf("SafeDownloadPath() error: %v", err)
	}
	if filepath.Dir(got) != dir {
		t.Errorf("path %q escapes %q", got, dir)
	}

	got, err = SafeDownloadPath(dir, "../../escape.json")
	if err != nil {
		t.Fatalf("SafeDownloadPath() error: %v", err)
	}
	if filepath.Dir(got) != dir {
		t.Errorf("sanitized path %q should stay in %q", got, dir)
	}
}

func TestContainedPath(t *testing.T) {
	dir := t.TempDir()

	got, err := ContainedPath(dir, "Hmm....mp4")
	if err != nil {
		t.Fatalf("ContainedPath() error: %v", err)
	}
	if want := filepath.Join(dir, "Hmm....mp4"); got != want {
		t.Errorf("ContainedPath() = %q, want %q", got, want)
	}

	for _, name := range []string{"", ".", "..", "../escape.mp4", "a/b.mp4", `a\b.mp4`} {
		if _, err := ContainedPath(dir, name); err == nil {
			t.Errorf("ContainedPath(%q) accepted", name)
		}
	}
}

func TestEncodeSearchQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Python 教學", "Python+%E6%95%99%E5%AD%B8"},
		{"  lofi   hip hop ", "lofi+hip+hop"},
		{"a&b", "a%26b"},
	}

	for _, tt := range tests {
		got := EncodeSearchQuery(tt.input)
		if got != tt.expected {
			t.Errorf("EncodeSearchQuery(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseForm(t *testing.T) {
	html := `<html><body>
<form id="fm1" action="/cas/login?service=x" method="post">
  <div id="username"><input name="username" type="text"></div>
  <input id="password" name="password" type="password">
  <input type="hidden" name="execution" value="e1s1">
  <input type="hidden" name="_eventId" value="submit">
  <input type="checkbox" name="remember">
  <input type="submit" name="submit" value="Login">
</form></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	form, err := ParseForm(doc, "#password", "https://sso.example.com/cas/login")
	if err != nil {
		t.Fatalf("ParseForm() error: %v", err)
	}

	if form.Action != "https://sso.example.com/cas/login?service=x" {
		t.Errorf("Action = %q", form.Action)
	}
	if form.Fields["execution"] != "e1s1" || form.Fields["_eventId"] != "submit" {
		t.Errorf("hidden fields not preserved: %v", form.Fields)
	}
	if _, ok := form.Fields["remember"]; ok {
		t.Error("unchecked checkbox should be skipped")
	}
	if _, ok := form.Fields["submit"]; ok {
		t.Error("submit button should be skipped")
	}

	name, err := InputName(doc, "#username")
	if err != nil || name != "username" {
		t.Errorf("InputName(#username) = %q, %v", name, err)
	}
	name, err = InputName(doc, "#password")
	if err != nil || name != "password" {
		t.Errorf("InputName(#password) = %q, %v", name, err)
	}
}
