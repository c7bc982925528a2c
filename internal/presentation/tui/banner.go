package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner writes the towerbench ASCII banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _                        _                     _     ", "#818cf8"},
		{" | |_ _____      _____ _ _| |__   ___ _ __   ___| |__  ", "#a78bfa"},
		{" | __/ _ \\ \\ /\\ / / _ \\ '__| '_ \\ / _ \\ '_ \\ / __| '_ \\ ", "#c084fc"},
		{" | || (_) \\ V  V /  __/ |  | |_) |  __/ | | | (__| | | |", "#e879f9"},
		{"  \\__\\___/ \\_/\\_/ \\___|_|  |_.__/ \\___|_| |_|\\___|_| |_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// StatusColor returns the status text colored for the terminal:
// green when solved, yellow while running, red otherwise.
func StatusColor(status domain.Status) string {
	p := termenv.ColorProfile()
	color := "#ef4444"
	switch status {
	case domain.StatusSolved:
		color = "#22c55e"
	case domain.StatusRunning:
		color = "#eab308"
	}
	return termenv.String(string(status)).Foreground(p.Color(color)).Bold().String()
}
