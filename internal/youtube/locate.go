package youtube

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Candidate is a file considered when recovering a download's output path.
type Candidate struct {
	Name    string
	ModTime time.Time
}

// RankCandidates picks the file most likely produced for title. A file
// qualifies when the title is longer than 5 characters and the name holds
// its first 5, or the title is longer than 10 characters and the name holds
// any of its words. The most recently modified qualifying file wins.
//
// The word rule matches loosely: a common word can select an unrelated file.
func RankCandidates(title string, files []Candidate) (string, bool) {
	runes := []rune(title)
	var prefix string
	if len(runes) > 5 {
		prefix = string(runes[:5])
	}
	var words []string
	if len(runes) > 10 {
		words = strings.Fields(title)
	}

	var best Candidate
	found := false
	for _, f := range files {
		if !matchesTitle(f.Name, prefix, words) {
			continue
		}
		if !found || f.ModTime.After(best.ModTime) {
			best = f
			found = true
		}
	}
	return best.Name, found
}

func matchesTitle(name, prefix string, words []string) bool {
	if prefix != "" && strings.Contains(name, prefix) {
		return true
	}
	for _, w := range words {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// listCandidates returns the regular files in dir.
func listCandidates(dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, Candidate{Name: e.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

// splitFiles finds the separate video and audio files left behind when
// streams could not be merged. Either result may be empty.
func splitFiles(dir, title string, files []Candidate) (video, audio string) {
	for _, f := range files {
		if !strings.Contains(f.Name, title) {
			continue
		}
		switch strings.ToLower(filepath.Ext(f.Name)) {
		case ".mp4":
			if video == "" {
				video = filepath.Join(dir, f.Name)
			}
		case ".webm", ".m4a":
			if audio == "" {
				audio = filepath.Join(dir, f.Name)
			}
		}
	}
	return video, audio
}
