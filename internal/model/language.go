package model

import "fmt"

// Language is the output language requested for a submission.
type Language string

const (
	English Language = "en"
	Hindi   Language = "hi"
	Spanish Language = "es"
	Telugu  Language = "te"
)

// Languages lists the supported languages in selector order.
var Languages = []Language{English, Hindi, Spanish, Telugu}

var languageLabels = map[Language]string{
	English: "English",
	Hindi:   "Hindi",
	Spanish: "Spanish",
	Telugu:  "Telugu",
}

// ParseLanguage validates a language code.
func ParseLanguage(code string) (Language, error) {
	l := Language(code)
	if !l.Valid() {
		return "", fmt.Errorf("unsupported language %q", code)
	}
	return l, nil
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	_, ok := languageLabels[l]
	return ok
}

// Label returns the human-readable name, or the raw code for languages
// the client does not know (history may contain them).
func (l Language) Label() string {
	if label, ok := languageLabels[l]; ok {
		return label
	}
	return string(l)
}

// Next returns the language after l in selector order, wrapping around.
func (l Language) Next() Language {
	for i, lang := range Languages {
		if lang == l {
			return Languages[(i+1)%len(Languages)]
		}
	}
	return English
}
