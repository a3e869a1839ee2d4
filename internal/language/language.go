package language

import (
	"strings"

	"golang.org/x/text/language"
)

type entry struct {
	code    string   // BCP 47 base tag
	display string   // English display name, used in prompts
	words   []string // Full word forms (e.g. "korean")
}

var languages = []entry{
	{"en", "English", []string{"english"}},
	{"ko", "Korean", []string{"korean"}},
	{"ja", "Japanese", []string{"japanese"}},
	{"zh", "Chinese", []string{"chinese"}},
	{"es", "Spanish", []string{"spanish"}},
	{"fr", "French", []string{"french"}},
	{"de", "German", []string{"german"}},
	{"it", "Italian", []string{"italian"}},
	{"pt", "Portuguese", []string{"portuguese"}},
	{"id", "Indonesian", []string{"indonesian"}},
	{"vi", "Vietnamese", []string{"vietnamese"}},
	{"th", "Thai", []string{"thai"}},
	{"ru", "Russian", []string{"russian"}},
	{"ar", "Arabic", []string{"arabic"}},
	{"hi", "Hindi", []string{"hindi"}},
	{"nl", "Dutch", []string{"dutch"}},
}

var (
	byCode map[string]*entry
	byWord map[string]*entry
)

func init() {
	byCode = make(map[string]*entry, len(languages))
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode[e.code] = e
		for _, word := range e.words {
			byWord[word] = e
		}
	}
}

// Normalize resolves user input ("ko", "ko-KR", "korean") to a canonical BCP
// 47 base tag. Unrecognized input returns ok=false.
func Normalize(input string) (string, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", false
	}
	if e, ok := byWord[input]; ok {
		return e.code, true
	}
	tag, err := language.Parse(input)
	if err != nil {
		return "", false
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", false
	}
	return base.String(), true
}

// DisplayName renders the English name a prompt uses for the tag. Tags
// outside the known table fall back to the tag itself, which models handle
// well enough.
func DisplayName(tag string) string {
	normalized, ok := Normalize(tag)
	if !ok {
		if tag = strings.TrimSpace(tag); tag != "" {
			return tag
		}
		return "English"
	}
	if e, ok := byCode[normalized]; ok {
		return e.display
	}
	return normalized
}
