package replay

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/AccelByte/extend-doorbell/pkg/host"
	"github.com/charmbracelet/lipgloss"
)

// Terminal renders chat lines and the settings panel to a writer.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	worlds host.WorldNames

	prefixStyle  lipgloss.Style
	messageStyle lipgloss.Style
	linkStyle    lipgloss.Style
	worldStyle   lipgloss.Style
	errorStyle   lipgloss.Style
	panelStyle   lipgloss.Style
	titleStyle   lipgloss.Style
}

// NewTerminal creates a terminal sink. worlds may be nil.
func NewTerminal(w io.Writer, worlds host.WorldNames) *Terminal {
	r := lipgloss.NewRenderer(w)

	return &Terminal{
		w:      w,
		worlds: worlds,
		prefixStyle: r.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		messageStyle: r.NewStyle().
			Foreground(lipgloss.Color("7")),
		linkStyle: r.NewStyle().
			Foreground(lipgloss.Color("12")).
			Underline(true),
		worldStyle: r.NewStyle().
			Foreground(lipgloss.Color("8")),
		errorStyle: r.NewStyle().
			Foreground(lipgloss.Color("9")),
		panelStyle: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		titleStyle: r.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true),
	}
}

// Print renders a chat line.
func (t *Terminal) Print(line host.ChatLine) {
	var b strings.Builder
	for i, seg := range line.Segments {
		if seg.Player != nil {
			b.WriteString(t.renderLink(*seg.Player))
			continue
		}
		text := seg.Text
		if i == 0 && strings.HasPrefix(text, "[") {
			if end := strings.Index(text, "] "); end > 0 {
				b.WriteString(t.prefixStyle.Render(text[:end+1]))
				b.WriteString(" ")
				text = text[end+2:]
			}
		}
		if text != "" {
			b.WriteString(t.messageStyle.Render(text))
		}
	}
	t.writeLine(b.String())
}

// PrintError renders a chat line in the error colour.
func (t *Terminal) PrintError(line host.ChatLine) {
	t.writeLine(t.errorStyle.Render(line.String()))
}

// Panel renders a bordered block with a title.
func (t *Terminal) Panel(title, body string) {
	content := t.titleStyle.Render(title) + "\n" + strings.TrimRight(body, "\n")
	t.writeLine(t.panelStyle.Render(content))
}

func (t *Terminal) renderLink(link host.PlayerLink) string {
	out := t.linkStyle.Render(link.Name)
	if t.worlds != nil {
		if world, ok := t.worlds.WorldName(link.WorldID); ok {
			out += t.worldStyle.Render("@" + world)
		}
	}
	return out
}

func (t *Terminal) writeLine(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, s)
}
