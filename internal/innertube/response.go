package innertube

// PlayerResponse is the top-level response from the /player endpoint.
// Only the portions a transcript fetch needs are modeled: playability,
// video metadata, and the caption track listing.
type PlayerResponse struct {
	PlayabilityStatus PlayabilityStatus `json:"playabilityStatus"`
	VideoDetails      VideoDetails      `json:"videoDetails"`
	Microformat       Microformat       `json:"microformat"`
	Captions          Captions          `json:"captions"`
}

type PlayabilityStatus struct {
	Status            string             `json:"status"`
	Reason            string             `json:"reason"`
	PlayableInEmbed   bool               `json:"playableInEmbed"`
	LiveStreamability *LiveStreamability `json:"liveStreamability"`
}

func (p *PlayabilityStatus) IsOK() bool {
	return p.Status == "OK"
}

func (p *PlayabilityStatus) IsLive() bool {
	return p.LiveStreamability != nil
}

type LiveStreamability struct {
	LiveStreamabilityRenderer LiveStreamabilityRenderer `json:"liveStreamabilityRenderer"`
}

type LiveStreamabilityRenderer struct {
	VideoId     string `json:"videoId"`
	PollDelayMs string `json:"pollDelayMs"`
}

type VideoDetails struct {
	VideoID          string   `json:"videoId"`
	Title            string   `json:"title"`
	LengthSeconds    string   `json:"lengthSeconds"`
	Keywords         []string `json:"keywords"`
	ChannelID        string   `json:"channelId"`
	ShortDescription string   `json:"shortDescription"`
	ViewCount        string   `json:"viewCount"`
	Author           string   `json:"author"`
	IsPrivate        bool     `json:"isPrivate"`
	IsLiveContent    bool     `json:"isLiveContent"`
}

type Microformat struct {
	PlayerMicroformatRenderer PlayerMicroformatRenderer `json:"playerMicroformatRenderer"`
}

type PlayerMicroformatRenderer struct {
	Title              SimpleText `json:"title"`
	Description        SimpleText `json:"description"`
	LengthSeconds      string     `json:"lengthSeconds"`
	ExternalChannelId  string     `json:"externalChannelId"`
	IsFamilySafe       bool       `json:"isFamilySafe"`
	AvailableCountries []string   `json:"availableCountries"`
	IsUnlisted         bool       `json:"isUnlisted"`
	ViewCount          string     `json:"viewCount"`
	Category           string     `json:"category"`
	PublishDate        string     `json:"publishDate"`
	OwnerChannelName   string     `json:"ownerChannelName"`
	UploadDate         string     `json:"uploadDate"`
}

type SimpleText struct {
	SimpleText string `json:"simpleText"`
}

type Captions struct {
	PlayerCaptionsTracklistRenderer PlayerCaptionsTracklistRenderer `json:"playerCaptionsTracklistRenderer"`
}

type PlayerCaptionsTracklistRenderer struct {
	CaptionTracks          []CaptionTrack `json:"captionTracks"`
	AudioTracks            []AudioTrack   `json:"audioTracks"`
	DefaultAudioTrackIndex int            `json:"defaultAudioTrackIndex"`
}

// CaptionTrack is one selectable caption stream. Kind is "asr" for
// auto-generated (speech recognition) tracks and empty for manual ones.
type CaptionTrack struct {
	BaseURL        string   `json:"baseUrl"`
	Name           LangText `json:"name"`
	VssID          string   `json:"vssId"`
	LanguageCode   string   `json:"languageCode"`
	Kind           string   `json:"kind,omitempty"`
	IsTranslatable bool     `json:"isTranslatable"`
}

// IsGenerated reports whether the track is machine generated.
func (t CaptionTrack) IsGenerated() bool {
	return t.Kind == "asr"
}

// DisplayName returns the human readable track name.
func (t CaptionTrack) DisplayName() string {
	return t.Name.Text()
}

type AudioTrack struct {
	CaptionTrackIndices []int `json:"captionTrackIndices"`
}

type LangText struct {
	SimpleText string    `json:"simpleText"`
	Runs       []TextRun `json:"runs"`
}

type TextRun struct {
	Text string `json:"text"`
}

// Text flattens a LangText into a plain string.
func (l LangText) Text() string {
	if l.SimpleText != "" {
		return l.SimpleText
	}
	out := ""
	for _, r := range l.Runs {
		out += r.Text
	}
	return out
}
