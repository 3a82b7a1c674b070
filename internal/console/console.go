// Package console renders AIBA's banner, menus, panels and status lines and
// reads the user's answers.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	maxWidth     = 100
)

// MenuItem is one numbered menu entry.
type MenuItem struct {
	Key    string
	Label  string
	Accent Accent
	Dim    bool
}

// Console writes styled output to one writer.
type Console struct {
	out   io.Writer
	theme *Theme
	width int
}

// New creates a console writing to out. Colours and width follow the
// terminal when out is one.
func New(out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{out: out, theme: NewTheme(r), width: detectWidth(out)}
}

func detectWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return min(w, maxWidth)
}

// Writer returns the raw output, used for inline progress marks.
func (c *Console) Writer() io.Writer { return c.out }

// Theme returns the console theme.
func (c *Console) Theme() *Theme { return c.theme }

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

// Banner prints the startup banner.
func (c *Console) Banner(title, subtitle string) {
	box := c.theme.Banner.Width(c.width - 2).Render(title)
	c.println(box)
	if subtitle != "" {
		c.println(c.theme.Subtitle.Width(c.width).Align(lipgloss.Right).Render(subtitle))
	}
}

// Panel prints body inside a bordered box headed by title.
func (c *Console) Panel(title, body string, accent Accent) {
	head := c.theme.Title.Foreground(c.theme.Color(accent)).Render(title)
	c.println(c.theme.Panel(accent, c.width-2).Render(head + "\n\n" + strings.TrimSpace(body)))
}

// Menu prints a heading and the numbered entries.
func (c *Console) Menu(heading string, items []MenuItem) {
	c.println("")
	c.println(c.theme.Heading.Render(heading))
	for _, it := range items {
		label := c.theme.Accented(it.Accent).Render(it.Label)
		if it.Dim {
			label = c.theme.Dim.Render(it.Label)
		}
		c.println(it.Key + ". " + label)
	}
}

// Heading prints a bold line in accent a.
func (c *Console) Heading(a Accent, format string, args ...any) {
	c.println(c.theme.Accented(a).Bold(true).Render(fmt.Sprintf(format, args...)))
}

// Print prints an unstyled line.
func (c *Console) Print(format string, args ...any) {
	c.println(fmt.Sprintf(format, args...))
}

// Success prints a check-marked line whose lead is highlighted.
func (c *Console) Success(lead, rest string) {
	line := c.theme.Success.Render("✓ " + lead)
	if rest != "" {
		line += " " + rest
	}
	c.println(line)
}

// Warn prints a yellow line.
func (c *Console) Warn(format string, args ...any) {
	c.println(c.theme.Warning.Render(fmt.Sprintf(format, args...)))
}

// Error prints a red line.
func (c *Console) Error(format string, args ...any) {
	c.println(c.theme.Error.Render(fmt.Sprintf(format, args...)))
}

// Dim prints a faint line.
func (c *Console) Dim(format string, args ...any) {
	c.println(c.theme.Dim.Render(fmt.Sprintf(format, args...)))
}

// Labeled prints an italic label followed by text.
func (c *Console) Labeled(label, text string) {
	c.println(c.theme.Italic.Render(label) + " " + text)
}

// KeyValues formats rows as an aligned two-column block.
func KeyValues(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	var sb strings.Builder
	for i, r := range rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%-*s : %s", width, r[0], r[1])
	}
	return sb.String()
}
