package app

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/chaz8081/gostt-refine/internal/refine"
)

type fakeCommander struct {
	calls []string
	state State
}

func (f *fakeCommander) StartRecording() bool { f.calls = append(f.calls, "start"); return true }
func (f *fakeCommander) StopRecording() bool  { f.calls = append(f.calls, "stop"); return true }
func (f *fakeCommander) Toggle() bool         { f.calls = append(f.calls, "toggle"); return true }
func (f *fakeCommander) SelectStyle(s refine.Style) bool {
	f.calls = append(f.calls, "style:"+string(s))
	return true
}
func (f *fakeCommander) Snapshot() State { return f.state }

func TestRunConsole(t *testing.T) {
	in := strings.NewReader("start\n\nstop\n  R \nFormal\nclient-ready\npirate\nquit\nstart\n")
	var out bytes.Buffer
	fc := &fakeCommander{}

	quit := RunConsole(context.Background(), in, &out, fc)

	if !quit {
		t.Error("RunConsole() = false, want true after quit")
	}
	want := []string{"start", "stop", "toggle", "style:formal", "style:client-ready"}
	if !reflect.DeepEqual(fc.calls, want) {
		t.Errorf("calls = %v, want %v", fc.calls, want)
	}
	if !strings.Contains(out.String(), `unknown command "pirate"`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunConsoleEOF(t *testing.T) {
	fc := &fakeCommander{}
	if RunConsole(context.Background(), strings.NewReader("start"), &bytes.Buffer{}, fc) {
		t.Error("EOF should not count as quit")
	}
	if len(fc.calls) != 1 {
		t.Errorf("calls = %v", fc.calls)
	}
}

func TestConsoleStylesMarksCurrent(t *testing.T) {
	var out bytes.Buffer
	fc := &fakeCommander{state: State{Style: refine.StyleFriendly}}
	RunConsole(context.Background(), strings.NewReader("styles\n"), &out, fc)

	var marked []string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, " *") {
			marked = append(marked, line)
		}
	}
	if len(marked) != 1 || !strings.Contains(marked[0], "friendly") {
		t.Errorf("marked lines = %q", marked)
	}
}

func TestDescribeState(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{State{Phase: PhaseIdle, Style: refine.StyleSimple}, "Ready (simple)"},
		{State{Phase: PhaseRecording, Style: refine.StyleSimple}, "Recording... (simple)"},
		{State{Phase: PhaseProcessing, Style: refine.StyleFormal}, "Refining (formal)..."},
		{State{Phase: PhaseFailed, Err: "boom"}, "Error: boom"},
		{State{Phase: PhaseIdle, Style: refine.StyleSimple, MicErr: "no mic"}, "Ready (simple) [no mic]"},
	}
	for _, tt := range tests {
		if got := DescribeState(tt.state); got != tt.want {
			t.Errorf("DescribeState(%+v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}
