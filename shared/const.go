package shared

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeFillInTheGap   = "fill_in_the_gap"
	QuestionTypeTrueFalse      = "true_false"

	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Levels lists the supported proficiency levels in difficulty order.
var Levels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}

// LanguageNames maps a supported language code to the display name used in
// generation prompts. Unknown codes fall back to English.
var LanguageNames = map[string]string{
	"english":    "English",
	"russian":    "Russian (Русский)",
	"spanish":    "Spanish (Español)",
	"french":     "French (Français)",
	"german":     "German (Deutsch)",
	"italian":    "Italian (Italiano)",
	"portuguese": "Portuguese (Português)",
	"chinese":    "Chinese (中文)",
	"japanese":   "Japanese (日本語)",
	"korean":     "Korean (한국어)",
	"arabic":     "Arabic (العربية)",
	"hindi":      "Hindi (हिन्दी)",
	"turkish":    "Turkish (Türkçe)",
	"polish":     "Polish (Polski)",
	"dutch":      "Dutch (Nederlands)",
	"swedish":    "Swedish (Svenska)",
	"norwegian":  "Norwegian (Norsk)",
	"danish":     "Danish (Dansk)",
	"finnish":    "Finnish (Suomi)",
	"czech":      "Czech (Čeština)",
}

func IsValidLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

func IsValidLanguage(code string) bool {
	_, ok := LanguageNames[code]
	return ok
}

// LanguageName resolves a language code to its prompt display name.
func LanguageName(code string) string {
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	return "English"
}

func IsValidQuestionType(t string) bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeFillInTheGap, QuestionTypeTrueFalse:
		return true
	}
	return false
}
