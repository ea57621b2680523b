package view

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notifier prints one-line transient notices. A nil writer drops them.
type Notifier struct {
	w io.Writer
}

func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

func (n *Notifier) Notify(level Level, msg string) {
	if n == nil || n.w == nil {
		return
	}
	c, icon := levelStyle(level)
	c.Fprintf(n.w, "%s %s\n", icon, msg)
}

func (n *Notifier) Success(msg string) { n.Notify(LevelSuccess, msg) }
func (n *Notifier) Warning(msg string) { n.Notify(LevelWarning, msg) }
func (n *Notifier) Error(msg string)   { n.Notify(LevelError, msg) }
func (n *Notifier) Info(msg string)    { n.Notify(LevelInfo, msg) }

func levelStyle(level Level) (*color.Color, string) {
	switch level {
	case LevelSuccess:
		return color.New(color.FgGreen), "✓"
	case LevelWarning:
		return color.New(color.FgYellow), "⚠"
	case LevelError:
		return color.New(color.FgRed), "✗"
	default:
		return color.New(color.FgCyan), "ℹ"
	}
}

// CharCount renders the input size the way the editor counter does:
// red above 45000 characters, yellow above 30000.
func CharCount(n int) string {
	label := fmt.Sprintf("%d characters", n)
	switch {
	case n > 45000:
		return color.RedString("%s", label)
	case n > 30000:
		return color.YellowString("%s", label)
	default:
		return color.HiBlackString("%s", label)
	}
}
