package client

import (
	"fmt"
	"io"
	"strings"
)

// OutputFormat identifies a transcript serialization.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputSRT  OutputFormat = "srt"
	OutputVTT  OutputFormat = "vtt"
)

// ResolveOutputFormat normalizes user input to a supported format.
func ResolveOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return OutputText, nil
	case "srt":
		return OutputSRT, nil
	case "vtt", "webvtt":
		return OutputVTT, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// Extension returns the file extension for the format, with leading dot.
func (f OutputFormat) Extension() string {
	switch f {
	case OutputSRT:
		return ".srt"
	case OutputVTT:
		return ".vtt"
	default:
		return ".txt"
	}
}

// Write serializes the transcript to w in the given format.
func (t *Transcript) Write(w io.Writer, format OutputFormat, withTimestamps bool) error {
	switch format {
	case OutputSRT:
		return t.writeSRT(w)
	case OutputVTT:
		return t.writeVTT(w)
	default:
		_, err := io.WriteString(w, t.FormatText(withTimestamps))
		return err
	}
}

func (t *Transcript) writeSRT(w io.Writer) error {
	index := 1
	for _, e := range t.Entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		start := formatSRTTimestamp(e.StartSec)
		end := formatSRTTimestamp(e.StartSec + e.DurSec)
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", index, start, end, text); err != nil {
			return err
		}
		index++
	}
	return nil
}

func (t *Transcript) writeVTT(w io.Writer) error {
	if _, err := io.WriteString(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for _, e := range t.Entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		start := formatVTTTimestamp(e.StartSec)
		end := formatVTTTimestamp(e.StartSec + e.DurSec)
		if _, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n", start, end, text); err != nil {
			return err
		}
	}
	return nil
}

func formatSRTTimestamp(seconds float64) string {
	h, m, s, ms := splitTimestamp(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func formatVTTTimestamp(seconds float64) string {
	h, m, s, ms := splitTimestamp(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func splitTimestamp(seconds float64) (int, int, int, int) {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int(seconds*1000 + 0.5)
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	return totalSec / 3600, (totalSec % 3600) / 60, totalSec % 60, ms
}
