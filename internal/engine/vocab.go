package engine

import (
	"strings"
	"unicode"

	"github.com/hsalem/barberbook/internal/language"
)

// Service is an entry in the shop's service vocabulary.
type Service struct {
	Key    string
	Name   language.Text
	tokens []string
}

// services is the closed vocabulary the recognizer matches against.
// Order matters: more specific services come first so "beard trim" does
// not fall through to the bare "haircut" tokens.
var services = []Service{
	{
		Key:    "beard-trim",
		Name:   language.Text{AR: "تهذيب اللحية", EN: "beard trim"},
		tokens: []string{"beard", "لحية", "لحيه", "ذقن", "دقن"},
	},
	{
		Key:    "coloring",
		Name:   language.Text{AR: "صبغة الشعر", EN: "hair coloring"},
		tokens: []string{"color", "colour", "dye", "صبغ", "صبغة", "صبغه"},
	},
	{
		Key:    "shave",
		Name:   language.Text{AR: "حلاقة الذقن بالموس", EN: "hot towel shave"},
		tokens: []string{"shave", "موس", "حف"},
	},
	{
		Key:    "haircut",
		Name:   language.Text{AR: "قص الشعر", EN: "haircut"},
		tokens: []string{"haircut", "hair cut", "cut", "trim", "حلاقة", "حلاقه", "قص", "شعر"},
	},
}

// ServiceByKey looks up a vocabulary entry; ok is false for unknown keys.
func ServiceByKey(key string) (Service, bool) {
	for _, s := range services {
		if s.Key == key {
			return s, true
		}
	}
	return Service{}, false
}

var (
	affirmativeTokens = []string{
		"yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "confirmed", "correct",
		"نعم", "اجل", "أجل", "اي", "ايوه", "ايوة", "تمام", "اكيد", "أكيد", "موافق", "اوك",
	}
	negativeTokens = []string{
		"no", "nope", "cancel", "wrong",
		"لا", "لأ", "كلا", "الغاء", "إلغاء", "غلط",
	}
	restartTokens = []string{
		"restart", "start over", "من جديد", "من البداية",
	}
	noReminderTokens = []string{
		"no reminder", "without reminder", "بدون تذكير", "بلا تذكير",
	}
)

// matchService finds the first vocabulary entry whose tokens appear in
// the text, in either language.
func matchService(text string) (Service, bool) {
	norm := normalize(text)
	for _, s := range services {
		if containsAnyToken(norm, s.tokens) {
			return s, true
		}
	}
	return Service{}, false
}

func isAffirmative(text string) bool {
	return containsAnyToken(normalize(text), affirmativeTokens)
}

func isNegative(text string) bool {
	return containsAnyToken(normalize(text), negativeTokens)
}

func wantsRestart(text string) bool {
	return containsAnyToken(normalize(text), restartTokens)
}

func declinesReminder(text string) bool {
	return containsAnyToken(normalize(text), noReminderTokens)
}

// normalize lowercases the text and replaces punctuation with spaces so
// token matching can use word boundaries in both scripts.
func normalize(text string) string {
	lowered := strings.ToLower(text)
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ':' || r == '/' || r == '-' {
			return r
		}
		return ' '
	}, lowered)
	return " " + strings.Join(strings.Fields(cleaned), " ") + " "
}

// containsAnyToken matches whole words against an already-normalized
// string. Multi-word tokens match as phrases.
func containsAnyToken(norm string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(norm, " "+tok+" ") {
			return true
		}
	}
	return false
}
