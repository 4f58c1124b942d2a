package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"harvest/internal/media"
	"harvest/internal/youtube"
)

type stubInfo struct {
	meta *media.Metadata
	err  error
}

func (s stubInfo) Info(context.Context, string) (*media.Metadata, error) {
	return s.meta, s.err
}

func TestLookupInfo(t *testing.T) {
	meta := media.NewMetadata("dQw4w9WgXcQ")

	tests := []struct {
		name     string
		src      stubInfo
		wantMeta bool
		wantErr  error
	}{
		{"found", stubInfo{meta: meta}, true, nil},
		{"unavailable continues", stubInfo{err: fmt.Errorf("%w: gone", youtube.ErrUnavailable)}, false, nil},
		{"invalid url stops", stubInfo{err: fmt.Errorf("%w: %q", youtube.ErrInvalidURL, "x")}, false, youtube.ErrInvalidURL},
		{"cancelled stops", stubInfo{err: context.Canceled}, false, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lookupInfo(context.Background(), tt.src, "https://youtu.be/dQw4w9WgXcQ")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("lookupInfo() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("lookupInfo() error: %v", err)
			}
			if (got != nil) != tt.wantMeta {
				t.Errorf("lookupInfo() metadata = %v, want present=%v", got, tt.wantMeta)
			}
		})
	}
}
