package output

import (
	"fmt"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Injector types or pastes text into the focused application.
type Injector struct {
	method string // "type" or "paste"
}

// NewInjector creates an Injector. method must be "type" (keystroke
// simulation) or "paste" (clipboard plus the paste shortcut).
func NewInjector(method string) *Injector {
	return &Injector{method: method}
}

// Inject sends text to the active application using the configured method.
func (inj *Injector) Inject(text string) error {
	if text == "" {
		return nil
	}
	if inj.method == "paste" {
		return inj.paste(text)
	}
	robotgo.Type(text)
	return nil
}

// paste overwrites the clipboard, sends the paste shortcut and then puts
// the previous clipboard back.
func (inj *Injector) paste(text string) error {
	prev, _ := robotgo.ReadAll()

	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("output: write to clipboard: %w", err)
	}
	if err := robotgo.KeyTap("v", pasteModifier()); err != nil {
		return fmt.Errorf("output: key tap paste: %w", err)
	}

	// best effort
	_ = robotgo.WriteAll(prev)
	return nil
}

func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}

// CopyToClipboard replaces the clipboard contents with text.
func CopyToClipboard(text string) error {
	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("output: write to clipboard: %w", err)
	}
	return nil
}
