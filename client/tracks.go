package client

import (
	"github.com/Stephensmetana/youtube-transcriptor/internal/innertube"
	"github.com/Stephensmetana/youtube-transcriptor/internal/language"
)

func trackFromCaption(ct innertube.CaptionTrack) TranscriptTrack {
	name := ct.DisplayName()
	if name == "" {
		name = language.DisplayName(ct.LanguageCode)
	}
	return TranscriptTrack{
		LanguageCode:   ct.LanguageCode,
		LanguageName:   name,
		IsGenerated:    ct.IsGenerated(),
		IsTranslatable: ct.IsTranslatable,
		baseURL:        ct.BaseURL,
		vssID:          ct.VssID,
	}
}

func tracksFromResponse(resp *innertube.PlayerResponse) []TranscriptTrack {
	if resp == nil {
		return nil
	}
	renderer := resp.Captions.PlayerCaptionsTracklistRenderer
	tracks := make([]TranscriptTrack, 0, len(renderer.CaptionTracks))
	for _, ct := range renderer.CaptionTracks {
		if ct.BaseURL == "" {
			continue
		}
		tracks = append(tracks, trackFromCaption(ct))
	}
	return tracks
}
