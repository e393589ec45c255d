// Package card renders the greeting card that recipients see and that the
// rasterizer captures after acceptance.
package card

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"

	"valentine/internal/theme"
	"valentine/internal/valentine"
)

// Selector is the CSS selector of the card root element.
const Selector = "#card"

const (
	maxYesScale  = 2.5
	yesScaleStep = 0.15
)

//go:embed templates/card.html
var templates embed.FS

var cardTmpl = template.Must(template.ParseFS(templates, "templates/card.html"))

type View struct {
	PageID          string
	Sender          string
	Question        string
	BeggingMessages []string
	BeggingMessage  string
	YesScale        float64
	FinalMessage    string
	SocialLabel     string
	SocialLink      string
	Accepted        bool
	Theme           theme.Theme
	AcceptURL       string
	DownloadURL     string
}

// BeggingMessage returns the escalation message shown after the given number
// of refusals. The last message repeats once the list is exhausted.
func BeggingMessage(msgs []string, refusals int) string {
	if refusals <= 0 || len(msgs) == 0 {
		return ""
	}
	return msgs[min(refusals-1, len(msgs)-1)]
}

// YesScale grows the yes button with every refusal, capped at 2.5x.
func YesScale(refusals int) float64 {
	if refusals < 0 {
		refusals = 0
	}
	return math.Min(1+float64(refusals)*yesScaleStep, maxYesScale)
}

func NewView(p *valentine.Page, refusals int, accepted bool) View {
	v := View{
		PageID:          p.ID,
		Question:        p.Question,
		BeggingMessages: append([]string(nil), p.BeggingMessages...),
		BeggingMessage:  BeggingMessage(p.BeggingMessages, refusals),
		YesScale:        YesScale(refusals),
		FinalMessage:    p.FinalMessage,
		Accepted:        accepted,
		Theme:           theme.Lookup(p.Theme),
		AcceptURL:       fmt.Sprintf("/api/pages/%s/accept", p.ID),
		DownloadURL:     fmt.Sprintf("/api/pages/%s/artifact", p.ID),
	}
	if p.SenderName != nil {
		v.Sender = *p.SenderName
	}
	// The link is only offered when both halves are present.
	if p.SocialLabel != nil && p.SocialLink != nil {
		v.SocialLabel = *p.SocialLabel
		v.SocialLink = *p.SocialLink
	}
	return v
}

func Render(w io.Writer, v View) error {
	return cardTmpl.Execute(w, v)
}
