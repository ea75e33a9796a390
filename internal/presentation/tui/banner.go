package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the fieldform banner followed by the version line.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   __ _      _     _  __", "#34d399"},
		{"  / _(_) ___| | __| |/ _| ___  _ __ _ __ ___", "#2dd4bf"},
		{" | |_| |/ _ \\ |/ _` | |_ / _ \\| '__| '_ ` _ \\", "#22d3ee"},
		{" |  _| |  __/ | (_| |  _| (_) | |  | | | | | |", "#38bdf8"},
		{" |_| |_|\\___|_|\\__,_|_|  \\___/|_|  |_| |_| |_|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(" "+version).Faint())
	fmt.Fprintln(w)
}
