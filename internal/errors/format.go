package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg   = color.New(color.FgRed).SprintFunc()
	kindFmt    = color.New(color.FgYellow).SprintFunc()
)

// Format renders err for the terminal. Categorized errors get their kind in
// the label; anything else is shown as a plain error.
func Format(err error, useColors bool) string {
	if err == nil {
		return ""
	}

	label := "Error"
	if kind, ok := KindOf(err); ok {
		label = kind.String()
	}

	var sb strings.Builder
	if useColors {
		sb.WriteString(errorLabel("Error"))
		sb.WriteString(" [")
		sb.WriteString(kindFmt(label))
		sb.WriteString("]: ")
		sb.WriteString(errorMsg(err.Error()))
	} else {
		sb.WriteString("Error [")
		sb.WriteString(label)
		sb.WriteString("]: ")
		sb.WriteString(err.Error())
	}
	sb.WriteString("\n")
	return sb.String()
}

// Print writes the formatted error to w, colored unless color.NoColor is set.
func Print(w io.Writer, err error) {
	fmt.Fprint(w, Format(err, !color.NoColor))
}
