package media

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, Unknown},
		{-5, Unknown},
		{45, "0:45"},
		{605, "10:05"},
		{3600, "1:00:00"},
		{3661, "1:01:01"},
		{36000 + 59, "10:00:59"},
	}

	for _, tt := range tests {
		got := FormatDuration(tt.seconds)
		if got != tt.expected {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		input string
		want  Quality
	}{
		{"best", Quality{Kind: QualityBest}},
		{"", Quality{Kind: QualityBest}},
		{"highest", Quality{Kind: QualityBest}},
		{"worst", Quality{Kind: QualityWorst}},
		{"AUDIO", Quality{Kind: QualityAudio}},
		{"720p", Quality{Kind: QualityHeight, Height: 720}},
		{"480", Quality{Kind: QualityHeight, Height: 480}},
		{"bv*+ba", Quality{Kind: QualityRaw, Raw: "bv*+ba"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseQuality(tt.input)
			if got != tt.want {
				t.Errorf("ParseQuality(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestQualityForChoice(t *testing.T) {
	tests := []struct {
		choice string
		want   string
	}{
		{"1", "best"},
		{"2", "audio"},
		{"3", "720p"},
		{"4", "480p"},
		{"5", "360p"},
		{"9", "best"},
		{"abc", "best"},
		{" 2 ", "audio"},
	}

	for _, tt := range tests {
		t.Run(tt.choice, func(t *testing.T) {
			got := QualityForChoice(tt.choice).String()
			if got != tt.want {
				t.Errorf("QualityForChoice(%q) = %q, want %q", tt.choice, got, tt.want)
			}
		})
	}
}

func TestNewMetadataDefaults(t *testing.T) {
	m := NewMetadata("dQw4w9WgXcQ")
	if m.Title != Unknown || m.Author != Unknown {
		t.Errorf("expected unknown title/author, got %q/%q", m.Title, m.Author)
	}
	if m.ThumbnailURL != "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Errorf("ThumbnailURL = %q", m.ThumbnailURL)
	}
	if m.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("URL = %q", m.URL)
	}
	if m.Description != NoDescription {
		t.Errorf("Description = %q, want %q", m.Description, NoDescription)
	}
}
