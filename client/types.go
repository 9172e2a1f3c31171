package client

// VideoInfo is the package-level metadata result.
type VideoInfo struct {
	ID          string
	Title       string
	Author      string
	Description string
	DurationSec int64
	ViewCount   int64
	ChannelID   string
	PublishDate string
	UploadDate  string
	Category    string
	IsLive      bool
	Keywords    []string
	Tracks      []TranscriptTrack
}

// TranscriptTrack is one selectable caption stream for a video.
type TranscriptTrack struct {
	LanguageCode   string
	LanguageName   string
	IsGenerated    bool
	IsTranslatable bool

	baseURL string
	vssID   string
}

// ID returns the track's vss identifier, e.g. ".en" for a manual English
// track or "a.en" for an auto-generated one.
func (t TranscriptTrack) ID() string {
	return t.vssID
}

// SelectionResult is the outcome of track selection. IsEnglish is derived
// from the selected track's language code and drives filename suffixing.
type SelectionResult struct {
	Track     TranscriptTrack
	IsEnglish bool
}

// TranscriptEntry is one caption segment with second-based timing.
type TranscriptEntry struct {
	StartSec float64
	DurSec   float64
	Text     string
}

// Transcript is a fetched caption track with video context.
type Transcript struct {
	VideoID string
	Title   string
	Track   TranscriptTrack
	Entries []TranscriptEntry
}
