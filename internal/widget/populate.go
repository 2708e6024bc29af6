package widget

import "github.com/richxcame/waste-chat/pkg/i18n"

// Page element ids written by Populate.
const (
	IDTitle      = "ui_title"
	IDSubtitle   = "ui_subtitle"
	IDChangeLang = "ui_change_lang"
	IDIntro      = "ui_intro"
	IDExample1   = "ui_ex1"
	IDExample2   = "ui_ex2"
	IDExample3   = "ui_ex3"
	IDTip        = "ui_tip"
	IDSend       = "ui_send"
	IDDisclaimer = "ui_disclaimer"
	IDThinking   = "ui_thinking"
	IDInput      = "userInput"
	IDContainer  = "chatContainer"
)

// Populate writes the bundle's labels into the page. Missing elements are
// skipped. Calling it again with the same bundle changes nothing.
func Populate(doc *Document, b i18n.Bundle) {
	texts := []struct {
		id   string
		text string
	}{
		{IDTitle, b.Title},
		{IDSubtitle, b.Subtitle},
		{IDChangeLang, b.ChangeLang},
		{IDIntro, b.Intro},
		{IDExample1, b.Example1},
		{IDExample2, b.Example2},
		{IDExample3, b.Example3},
		{IDTip, b.Tip},
		{IDSend, b.Send},
		{IDDisclaimer, b.Disclaimer},
		{IDThinking, b.Thinking},
	}
	for _, t := range texts {
		doc.SetText(t.id, t.text)
	}

	doc.SetAttr(IDInput, "placeholder", b.Placeholder)
	if b.Lang != "" {
		doc.SetLang(b.Lang)
	}
}
