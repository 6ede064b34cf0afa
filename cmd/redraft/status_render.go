package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

// tag and ANSI color per kind; info lines stay uncolored so values
// like paths and handles remain copy-paste friendly.
var statusStyles = map[statusKind]struct {
	tag   string
	color string
}{
	statusInfo:  {tag: "info"},
	statusOK:    {tag: "ok", color: "\x1b[32m"},
	statusWarn:  {tag: "warn", color: "\x1b[33m"},
	statusError: {tag: "error", color: "\x1b[31m"},
}

const statusLabelWidth = 20

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[kind]
	tag := "[" + style.tag + "]"
	if colorize && style.color != "" {
		tag = style.color + tag + ansiReset
	}
	if message == "" {
		return fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", tag)
	}
	return fmt.Sprintf("  %-*s %s %s", statusLabelWidth, label+":", tag, message)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
