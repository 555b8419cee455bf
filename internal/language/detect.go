package language

// Lang identifies one of the two supported reply languages.
type Lang string

const (
	Arabic  Lang = "ar"
	English Lang = "en"
)

// Detect classifies text as Arabic or English by script. Any rune in an
// Arabic Unicode block wins; everything else (including empty input)
// defaults to English. The result is advisory: it selects phrasing, never
// state transitions.
func Detect(text string) Lang {
	for _, r := range text {
		if isArabicRune(r) {
			return Arabic
		}
	}
	return English
}

func isArabicRune(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF: // Arabic
		return true
	case r >= 0x0750 && r <= 0x077F: // Arabic Supplement
		return true
	case r >= 0x08A0 && r <= 0x08FF: // Arabic Extended-A
		return true
	case r >= 0xFB50 && r <= 0xFDFF: // Presentation Forms-A
		return true
	case r >= 0xFE70 && r <= 0xFEFF: // Presentation Forms-B
		return true
	}
	return false
}
