package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Counts are shown the way the admins read them ("1.250").
var numbers = message.NewPrinter(language.Indonesian)

func fmtCount(n int) string {
	return numbers.Sprintf("%d", n)
}

// truncate cuts s to width terminal cells, keeping escape sequences intact.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func yesNo(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}
