package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Spinner animates msg on stderr until the returned stop function runs.
// When stderr is not a terminal it prints msg once and stop does nothing.
func Spinner(msg string) func() {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintln(os.Stderr, msg)
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	s.Start()

	return func() {
		s.Stop()
		fmt.Fprintln(os.Stderr)
	}
}
