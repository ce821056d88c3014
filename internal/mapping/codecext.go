package mapping

import (
	"log/slog"
	"regexp"
	"strings"

	"bobbin/internal/logging"
)

type codecExtension struct {
	pattern   *regexp.Regexp
	extension string
}

// Extension lookup for per-stream outputs, checked in declaration order.
var codecExtensions = []codecExtension{
	{pattern: regexp.MustCompile(`subrip`), extension: "srt"},
}

// extensionForCodec maps a codec name to an output extension. When several
// patterns match, the first declared wins; when none match, the codec name
// itself serves as the extension.
func extensionForCodec(codec string, logger *slog.Logger) string {
	var matches []string
	extension := ""
	for _, entry := range codecExtensions {
		if entry.pattern.MatchString(codec) {
			if extension == "" {
				extension = entry.extension
			}
			matches = append(matches, entry.pattern.String())
		}
	}
	if len(matches) > 1 {
		logger.Warn("codec matches several extension patterns",
			logging.String("codec", codec),
			logging.String("patterns", strings.Join(matches, ", ")),
			logging.String("picked", extension))
	}
	if extension == "" {
		logger.Debug("no extension pattern for codec, using codec name",
			logging.String("codec", codec))
		return codec
	}
	return extension
}
