package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/finai-dev/finai/internal/chat"
)

// Speaker returns the label printed before a bubble.
func Speaker(b chat.Bubble) string {
	if b.Kind == chat.BubbleUser {
		return "You"
	}
	return "AI"
}

// Bubble prints one transcript line.
func (p *Report) Bubble(b chat.Bubble) {
	style := p.value
	switch b.Kind {
	case chat.BubblePending, chat.BubbleGreeting:
		style = p.muted
	case chat.BubbleError:
		style = p.over
	case chat.BubbleUser:
		style = p.r.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	}
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render(Speaker(b)+":"), style.Render(b.Content))
}

// Transcript prints every bubble in order.
func (p *Report) Transcript(bubbles []chat.Bubble) {
	for _, b := range bubbles {
		p.Bubble(b)
	}
}
