package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chaz8081/gostt-refine/internal/refine"
)

// Commander is the part of Controller the console drives.
type Commander interface {
	StartRecording() bool
	StopRecording() bool
	Toggle() bool
	SelectStyle(s refine.Style) bool
	Snapshot() State
}

const consoleHelp = `commands:
  start | stop | r (toggle)
  <style>     select a style (see "styles")
  styles      list styles
  status      show the current state
  quit
`

// RunConsole reads line commands from in until EOF, "quit" or ctx is done.
// It returns true if the user asked to quit.
func RunConsole(ctx context.Context, in io.Reader, out io.Writer, cmd Commander) bool {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return false
		case line, ok := <-lines:
			if !ok {
				return false
			}
			if quit := handleCommand(strings.TrimSpace(line), out, cmd); quit {
				return true
			}
		}
	}
}

func handleCommand(line string, out io.Writer, cmd Commander) (quit bool) {
	switch strings.ToLower(line) {
	case "":
		return false
	case "quit", "q", "exit":
		return true
	case "start":
		cmd.StartRecording()
	case "stop":
		cmd.StopRecording()
	case "r", "toggle":
		cmd.Toggle()
	case "styles":
		cur := cmd.Snapshot().Style
		for _, si := range refine.Styles() {
			mark := " "
			if si.Style == cur {
				mark = "*"
			}
			fmt.Fprintf(out, " %s %-13s %s\n", mark, si.Style, si.Description)
		}
	case "status":
		fmt.Fprintln(out, DescribeState(cmd.Snapshot()))
	case "help", "?":
		fmt.Fprint(out, consoleHelp)
	default:
		s, err := refine.ParseStyle(line)
		if err != nil {
			fmt.Fprintf(out, "unknown command %q\n%s", line, consoleHelp)
			return false
		}
		cmd.SelectStyle(s)
	}
	return false
}

// DescribeState renders a one-line status for the terminal.
func DescribeState(s State) string {
	var line string
	switch s.Phase {
	case PhaseRecording:
		line = "Recording... (" + string(s.Style) + ")"
	case PhaseProcessing:
		line = "Refining (" + string(s.Style) + ")..."
	case PhaseSucceeded:
		line = "Done."
	case PhaseFailed:
		line = "Error: " + s.Err
	default:
		line = "Ready (" + string(s.Style) + ")"
	}
	if s.MicErr != "" {
		line += " [" + s.MicErr + "]"
	}
	return line
}
