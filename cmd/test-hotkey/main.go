// Command test-hotkey is a manual test for the global hotkey listener.
// Run it, then press the hotkey to see the actions it produces.
// Press Ctrl+C to exit.
//
// Usage:
//
//	go run ./cmd/test-hotkey [--mode hold|toggle] [--keys ctrl+shift+r]
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chaz8081/gostt-refine/internal/hotkey"
)

// printTarget logs what the controller would be asked to do.
type printTarget struct{ recording bool }

func (p *printTarget) StartRecording() bool {
	p.recording = true
	fmt.Println(">>> START (recording)")
	return true
}

func (p *printTarget) StopRecording() bool {
	p.recording = false
	fmt.Println("<<< STOP  (refining)")
	return true
}

func (p *printTarget) Toggle() bool {
	if p.recording {
		return p.StopRecording()
	}
	return p.StartRecording()
}

func main() {
	mode := flag.String("mode", "toggle", "hotkey mode: hold or toggle")
	keys := flag.String("keys", "ctrl+shift+r", "key combo, joined with +")
	flag.Parse()

	combo := strings.Split(strings.ToLower(*keys), "+")
	fmt.Printf("Listening for %s in %q mode...\n", *keys, *mode)
	fmt.Println("Press Ctrl+C to exit.")

	listener := hotkey.NewListener(combo, *mode)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("\nShutting down...")
		listener.Stop()
	}()

	go func() {
		hotkey.Forward(listener.Events(), &printTarget{})
		fmt.Println("Event channel closed.")
	}()

	// Blocks until stopped
	listener.Start()
	fmt.Println("Done.")
}
