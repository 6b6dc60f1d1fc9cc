package chat

import "regexp"

// mediaRule maps a media type to the placeholder patterns that identify it.
type mediaRule struct {
	mediaType MediaType
	patterns  []*regexp.Regexp
}

// mediaRules are evaluated top to bottom. A body matching several types is
// assigned the first one, so the order here is part of the output format.
var mediaRules = []mediaRule{
	{MediaPhoto, compileAll(`<Media omessi>`, `<Media omitted>`, `image omitted`, `IMG-`)},
	{MediaVideo, compileAll(`video omitted`, `VID-`, `\.mp4`)},
	{MediaGIF, compileAll(`GIF omitted`, `\.gif`)},
	{MediaSticker, compileAll(`sticker omitted`, `STK-`)},
	{MediaAudio, compileAll(`audio omitted`, `PTT-`, `AUD-`)},
	{MediaDocument, compileAll(`document omitted`, `\.pdf`, `\.docx`)},
}

// ClassifyMedia reports whether body is a media placeholder and, if so, which type.
func ClassifyMedia(body string) (MediaType, bool) {
	for _, rule := range mediaRules {
		for _, re := range rule.patterns {
			if re.MatchString(body) {
				return rule.mediaType, true
			}
		}
	}
	return "", false
}

// MediaTypes returns the media types in classification priority order.
func MediaTypes() []MediaType {
	types := make([]MediaType, len(mediaRules))
	for i, rule := range mediaRules {
		types[i] = rule.mediaType
	}
	return types
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}
