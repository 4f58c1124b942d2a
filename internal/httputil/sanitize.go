package httputil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// forbiddenChars matches characters that are not allowed in file names on common OSes.
	forbiddenChars = regexp.MustCompile(`[\\/*?:"<>|]`)

	// separatorVariants are look-alike slashes yt-dlp substitutes into titles.
	separatorVariants = strings.NewReplacer(
		"⧸", "_",
		"／", "_",
		"∕", "_",
	)

	// deptCodePattern matches department codes such as U56 or U33A.
	deptCodePattern = regexp.MustCompile(`^[A-Z][0-9A-Z]{1,5}$`)
)

// ValidateURL checks that a URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateDeptCode checks that a department code contains only safe characters.
func ValidateDeptCode(code string) error {
	if code == "" {
		return fmt.Errorf("department code cannot be empty")
	}
	if !deptCodePattern.MatchString(code) {
		return fmt.Errorf("invalid department code: %q", code)
	}
	return nil
}

// SanitizeTitle replaces characters that are forbidden in file names, and the
// slash look-alikes yt-dlp writes in their place, with underscores.
// Applying it twice yields the same result.
func SanitizeTitle(title string) string {
	title = forbiddenChars.ReplaceAllString(title, "_")
	return separatorVariants.Replace(title)
}

// SanitizeFilename removes path traversal and dangerous characters from a filename.
// Returns just the base name, stripped of any directory components.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\x00", "")
	name = SanitizeTitle(name)
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.TrimSpace(name)

	if name == "" || name == "." {
		return "untitled"
	}

	return name
}

// SafeDownloadPath resolves and validates a download path ensuring it stays within the target directory.
func SafeDownloadPath(dir, filename string) (string, error) {
	sanitized := SanitizeFilename(filename)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	full := filepath.Join(absDir, sanitized)

	resolved, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	if !strings.HasPrefix(resolved, absDir+string(filepath.Separator)) && resolved != absDir {
		return "", fmt.Errorf("path traversal detected: %q escapes %q", resolved, absDir)
	}

	return resolved, nil
}

// ContainedPath joins an already sanitized name onto dir without rewriting it.
// Names that carry a directory component or would leave dir are rejected.
func ContainedPath(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	full := filepath.Join(absDir, name)
	if filepath.Dir(full) != absDir {
		return "", fmt.Errorf("path traversal detected: %q escapes %q", full, absDir)
	}
	return full, nil
}

// EncodeSearchQuery encodes a free-text query for a results page, joining
// words with '+' the way the site's own search box does.
func EncodeSearchQuery(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	return strings.Join(words, "+")
}

// ResolveReference resolves ref against base, returning ref unchanged when
// either fails to parse.
func ResolveReference(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
