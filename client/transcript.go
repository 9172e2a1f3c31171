package client

import (
	"fmt"
	"strings"

	"github.com/Stephensmetana/youtube-transcriptor/internal/timedtext"
)

func entriesFromCues(cues []timedtext.Cue) []TranscriptEntry {
	entries := make([]TranscriptEntry, 0, len(cues))
	for _, cue := range cues {
		entries = append(entries, TranscriptEntry{
			StartSec: float64(cue.StartMs) / 1000,
			DurSec:   float64(cue.DurationMs) / 1000,
			Text:     cue.Text,
		})
	}
	return entries
}

// FormatText renders the transcript as plain text, one entry per line.
// Timestamps are [MM:SS]; minutes are not capped at 59 so long videos
// produce entries like [75:02].
func (t *Transcript) FormatText(withTimestamps bool) string {
	var b strings.Builder
	for _, e := range t.Entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		if withTimestamps {
			total := int(e.StartSec)
			fmt.Fprintf(&b, "[%02d:%02d] ", total/60, total%60)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String()
}
