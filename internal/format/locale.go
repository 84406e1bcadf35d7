package format

import (
	"golang.org/x/text/language"
)

// localeSymbols are the grouping and decimal separators for one locale.
type localeSymbols struct {
	group   string
	decimal string
}

var supportedLocales = []language.Tag{
	language.English, // first entry is the fallback
	language.German,
	language.French,
	language.Spanish,
	language.BrazilianPortuguese,
	language.Russian,
	language.Turkish,
	language.Korean,
	language.Japanese,
	language.SimplifiedChinese,
}

var localeMatcher = language.NewMatcher(supportedLocales)

var localeSymbolTable = map[language.Tag]localeSymbols{
	language.English:             {group: ",", decimal: "."},
	language.German:              {group: ".", decimal: ","},
	language.French:              {group: " ", decimal: ","},
	language.Spanish:             {group: ".", decimal: ","},
	language.BrazilianPortuguese: {group: ".", decimal: ","},
	language.Russian:             {group: " ", decimal: ","},
	language.Turkish:             {group: ".", decimal: ","},
	language.Korean:              {group: ",", decimal: "."},
	language.Japanese:            {group: ",", decimal: "."},
	language.SimplifiedChinese:   {group: ",", decimal: "."},
}

// resolveLocale maps an arbitrary BCP 47 tag to the closest supported locale.
// Unknown or malformed tags fall back to English.
func resolveLocale(tag string) language.Tag {
	parsed, err := language.Parse(tag)
	if err != nil {
		return supportedLocales[0]
	}
	_, index, _ := localeMatcher.Match(parsed)
	return supportedLocales[index]
}

func symbolsFor(tag language.Tag) localeSymbols {
	if s, ok := localeSymbolTable[tag]; ok {
		return s
	}
	return localeSymbolTable[supportedLocales[0]]
}
