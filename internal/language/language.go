// Package language renders stream language tags for humans.
package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ffprobe reports ISO 639-2/B codes that x/text does not accept directly.
var bibliographicAliases = map[string]string{
	"alb": "sq", "arm": "hy", "baq": "eu", "bur": "my", "chi": "zh",
	"cze": "cs", "dut": "nl", "fre": "fr", "geo": "ka", "ger": "de",
	"gre": "el", "ice": "is", "mac": "mk", "may": "ms", "per": "fa",
	"rum": "ro", "slo": "sk", "tib": "bo", "wel": "cy",
}

// Display returns a human-readable name for a stream language tag: "eng"
// yields "English". Unknown or undetermined tags come back as-is.
func Display(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || tag == "und" {
		return "und"
	}
	if alias, ok := bibliographicAliases[tag]; ok {
		tag = alias
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	name := display.English.Languages().Name(parsed)
	if name == "" {
		return tag
	}
	return name
}
