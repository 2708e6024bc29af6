// Package i18n provides the display strings of the chat widget.
// Language resolution order: requested code → "en".
// Translations are compiled into the binary; YAML files may override them at startup.
package i18n

import (
	"slices"

	"golang.org/x/text/language"
)

// Fallback language used when a key or language is not found.
const DefaultLang = "en"

// Widget string keys.
const (
	KeyTitle       = "title"
	KeySubtitle    = "subtitle"
	KeyChangeLang  = "changeLang"
	KeyIntro       = "intro"
	KeyExample1    = "ex1"
	KeyExample2    = "ex2"
	KeyExample3    = "ex3"
	KeyTip         = "tip"
	KeyPlaceholder = "placeholder"
	KeySend        = "send"
	KeyDisclaimer  = "disclaimer"
	KeyThinking    = "thinking"
)

// Keys lists every widget string key in display order.
var Keys = []string{
	KeyTitle, KeySubtitle, KeyChangeLang, KeyIntro,
	KeyExample1, KeyExample2, KeyExample3, KeyTip,
	KeyPlaceholder, KeySend, KeyDisclaimer, KeyThinking,
}

var supported = []string{"en", "fr", "es", "zh"}

// matcher tags are in the same order as supported.
var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.French,
	language.Spanish,
	language.Chinese,
})

// Bundle is the complete set of display strings for one language.
type Bundle struct {
	Lang        string
	Title       string
	Subtitle    string
	ChangeLang  string
	Intro       string
	Example1    string
	Example2    string
	Example3    string
	Tip         string
	Placeholder string
	Send        string
	Disclaimer  string
	Thinking    string
}

// Get returns the string stored under key, or "" for unknown keys.
func (b Bundle) Get(key string) string {
	switch key {
	case KeyTitle:
		return b.Title
	case KeySubtitle:
		return b.Subtitle
	case KeyChangeLang:
		return b.ChangeLang
	case KeyIntro:
		return b.Intro
	case KeyExample1:
		return b.Example1
	case KeyExample2:
		return b.Example2
	case KeyExample3:
		return b.Example3
	case KeyTip:
		return b.Tip
	case KeyPlaceholder:
		return b.Placeholder
	case KeySend:
		return b.Send
	case KeyDisclaimer:
		return b.Disclaimer
	case KeyThinking:
		return b.Thinking
	}
	return ""
}

var std = Default()

// For returns the bundle for lang from the compiled-in table.
// Unsupported codes get the English bundle.
func For(lang string) Bundle {
	return std.For(lang)
}

// Translate returns a localized string for key in lang.
// Falls back to English if lang is unsupported or key is missing.
func Translate(key, lang string) string {
	return std.Translate(key, lang)
}

// Supported returns the supported language codes.
func Supported() []string {
	return slices.Clone(supported)
}

// IsSupported reports whether lang has its own bundle.
func IsSupported(lang string) bool {
	return slices.Contains(supported, lang)
}

// Match picks the supported language closest to an Accept-Language header.
// Headers that match nothing, or fail to parse, give DefaultLang.
func Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	return supported[idx]
}
