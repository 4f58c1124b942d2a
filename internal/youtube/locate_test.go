package youtube

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRankCandidates(t *testing.T) {
	now := time.Now()
	older := now.Add(-time.Hour)

	tests := []struct {
		name   string
		title  string
		files  []Candidate
		want   string
		wantOK bool
	}{
		{
			name:  "prefix match",
			title: "Lofi Girl Radio",
			files: []Candidate{
				{"unrelated.mp4", now},
				{"Lofi Girl Radio [abc].mp4", older},
			},
			want:   "Lofi Girl Radio [abc].mp4",
			wantOK: true,
		},
		{
			name:  "newest wins",
			title: "Lofi Girl Radio",
			files: []Candidate{
				{"Lofi Girl Radio.webm", older},
				{"Lofi Girl Radio.mp4", now},
			},
			want:   "Lofi Girl Radio.mp4",
			wantOK: true,
		},
		{
			name:  "token match on long title",
			title: "Some Long Title Here",
			files: []Candidate{
				{"renamed Title.mp4", now},
			},
			want:   "renamed Title.mp4",
			wantOK: true,
		},
		{
			name:  "short title never matches",
			title: "abcde",
			files: []Candidate{
				{"abcde.mp4", now},
			},
			wantOK: false,
		},
		{
			name:  "eleven rune title uses words",
			title: "Hello World",
			files: []Candidate{
				{"World.mp4", now},
			},
			want:   "World.mp4",
			wantOK: true,
		},
		{
			name:  "ten rune title has no token rule",
			title: "Hi World!!",
			files: []Candidate{
				{"World.mp4", now},
			},
			wantOK: false,
		},
		{
			name:  "multibyte prefix",
			title: "周杰倫 晴天 官方MV",
			files: []Candidate{
				{"周杰倫 晴天 官方MV.mp4", now},
			},
			want:   "周杰倫 晴天 官方MV.mp4",
			wantOK: true,
		},
		{
			name:   "empty listing",
			title:  "Anything Goes Here",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RankCandidates(tt.title, tt.files)
			if ok != tt.wantOK {
				t.Fatalf("RankCandidates() ok = %v, want %v (got %q)", ok, tt.wantOK, got)
			}
			if ok && got != tt.want {
				t.Errorf("RankCandidates() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitFiles(t *testing.T) {
	files := []Candidate{
		{Name: "My Song.f137.mp4"},
		{Name: "My Song.f140.m4a"},
		{Name: "Other.mp4"},
	}

	video, audio := splitFiles("/dl", "My Song", files)
	if video != filepath.Join("/dl", "My Song.f137.mp4") {
		t.Errorf("video = %q", video)
	}
	if audio != filepath.Join("/dl", "My Song.f140.m4a") {
		t.Errorf("audio = %q", audio)
	}

	video, audio = splitFiles("/dl", "Missing", files)
	if video != "" || audio != "" {
		t.Errorf("expected no matches, got %q / %q", video, audio)
	}
}

func TestListCandidates(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.mp4"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := listCandidates(dir)
	if err != nil {
		t.Fatalf("listCandidates() error: %v", err)
	}
	if len(files) != 1 || files[0].Name != "a.mp4" {
		t.Errorf("listCandidates() = %+v", files)
	}
}
