package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// Message is a problem report with optional suggestions and help commands
type Message struct {
	Level        Level
	Context      string
	Problem      string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// Format renders the message.
//
// Example output:
//
//	❌ CLASS NOT FOUND: Cantact
//
//	   Did you mean: Contact?
//
//	   → List classes: habanero classdefs
func (m Message) Format() string {
	var b strings.Builder

	var header *color.Color
	var symbol string
	switch m.Level {
	case LevelWarning:
		header, symbol = color.New(color.FgYellow, color.Bold), "⚠️"
	case LevelInfo:
		header, symbol = color.New(color.FgCyan, color.Bold), "ℹ️"
	default:
		header, symbol = color.New(color.FgRed, color.Bold), "❌"
	}
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)
	if m.NoColor {
		header.DisableColor()
		yellow.DisableColor()
		cyan.DisableColor()
	}

	if m.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(m.Context), m.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, m.Problem)
	}

	if len(m.Suggestions) > 0 {
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}

	if len(m.HelpCommands) > 0 {
		b.WriteString("\n")
		for _, cmd := range m.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// Write writes the formatted message
func (m Message) Write(w io.Writer) {
	fmt.Fprint(w, m.Format())
}

// ClassNotFound reports an unknown class name, suggesting close matches from
// the known class names
func ClassNotFound(className string, known []string, noColor bool) Message {
	return Message{
		Level:        LevelError,
		Context:      "class not found",
		Problem:      className,
		Suggestions:  FindSimilar(className, known, nil),
		HelpCommands: []string{"List classes: habanero classdefs"},
		NoColor:      noColor,
	}
}

// Warning creates a warning message
func Warning(problem string, noColor bool) Message {
	return Message{Level: LevelWarning, Problem: problem, NoColor: noColor}
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}
