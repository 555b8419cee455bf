package language

// Text is a bilingual string pair. Every user-facing string in the
// assistant exists in both renderings; In picks one per the detected
// language of the latest user message.
type Text struct {
	AR string
	EN string
}

// In returns the rendering for lang, falling back to English when the
// requested rendering is empty.
func (t Text) In(lang Lang) string {
	if lang == Arabic && t.AR != "" {
		return t.AR
	}
	return t.EN
}
