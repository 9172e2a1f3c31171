package client

import "github.com/Stephensmetana/youtube-transcriptor/internal/language"

// SelectTranscriptTrack picks one caption track out of the available set.
//
// Preferred language codes are tried in order; within a matching code a
// manually-authored track beats an auto-generated one. When no preference
// matches, English variants are tried the same way. As a last resort the
// first manual track in listing order wins, then the first generated one.
func SelectTranscriptTrack(tracks []TranscriptTrack, preferredLangs []string) (SelectionResult, error) {
	if len(tracks) == 0 {
		return SelectionResult{}, ErrNoTranscript
	}

	for _, pref := range language.NormalizeList(preferredLangs) {
		if track, ok := bestForCode(tracks, pref); ok {
			return resultFor(track), nil
		}
	}

	if track, ok := bestMatching(tracks, func(t TranscriptTrack) bool {
		return language.IsEnglish(t.LanguageCode)
	}); ok {
		return resultFor(track), nil
	}

	track, _ := bestMatching(tracks, func(TranscriptTrack) bool { return true })
	return resultFor(track), nil
}

// bestForCode matches a preference against the track's normalized language
// code. A bare preference like "en" matches regional variants ("en-US");
// a regional preference only matches its exact code.
func bestForCode(tracks []TranscriptTrack, pref string) (TranscriptTrack, bool) {
	return bestMatching(tracks, func(t TranscriptTrack) bool {
		code := language.Normalize(t.LanguageCode)
		if code == pref {
			return true
		}
		return pref == language.Base(pref) && language.Base(code) == pref
	})
}

func bestMatching(tracks []TranscriptTrack, match func(TranscriptTrack) bool) (TranscriptTrack, bool) {
	var generated TranscriptTrack
	var haveGenerated bool
	for _, t := range tracks {
		if !match(t) {
			continue
		}
		if !t.IsGenerated {
			return t, true
		}
		if !haveGenerated {
			generated = t
			haveGenerated = true
		}
	}
	return generated, haveGenerated
}

func resultFor(track TranscriptTrack) SelectionResult {
	return SelectionResult{
		Track:     track,
		IsEnglish: language.IsEnglish(track.LanguageCode),
	}
}
