package youtube

import (
	"fmt"

	"harvest/internal/media"
	"harvest/internal/tools"
)

const (
	mergeContainer  = "mp4"
	audioContainer  = "mp3"
	audioBitrateStr = "192"
	audioBitrate    = 192
)

// SelectFormat resolves quality into the backend query for the given
// capabilities.
func SelectFormat(q media.Quality, caps tools.Capabilities) Selection {
	sel := Selection{Quality: q}

	switch q.Kind {
	case media.QualityBest:
		sel.Format = "bestvideo+bestaudio/best"
	case media.QualityWorst:
		sel.Format = "worstvideo+worstaudio/worst"
	case media.QualityAudio:
		sel.Format = "bestaudio/best"
		if caps.HasMuxer {
			sel.ExtractAudio = true
			sel.AudioFormat = audioContainer
			sel.AudioQuality = audioBitrateStr
		}
	case media.QualityHeight:
		sel.Format = fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", q.Height, q.Height)
	default:
		sel.Format = q.Raw
	}

	if caps.HasMuxer {
		sel.MergeFormat = mergeContainer
	}
	return sel
}

// ExpectedExt is the extension of the finished file for sel.
func ExpectedExt(sel Selection) string {
	if sel.ExtractAudio {
		return audioContainer
	}
	return mergeContainer
}

// NeedsConfirmation reports whether a download would leave separate video
// and audio files behind.
func NeedsConfirmation(q media.Quality, caps tools.Capabilities) bool {
	return !caps.HasMuxer && !q.IsAudio()
}
