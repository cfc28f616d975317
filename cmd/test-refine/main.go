// Command test-refine is a manual test for the refinement backend.
// It sends an audio file from disk and prints the result.
//
// Usage:
//
//	go run ./cmd/test-refine --style simple recording.wav
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chaz8081/gostt-refine/internal/config"
	"github.com/chaz8081/gostt-refine/internal/output"
	"github.com/chaz8081/gostt-refine/internal/refine"
)

func main() {
	style := flag.String("style", "professional", "refinement style")
	mimeType := flag.String("mime", "", "audio content type (default: from the file extension)")
	timeout := flag.Duration("timeout", 2*time.Minute, "request timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: test-refine [--style name] [--mime type] <audio-file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	mt := *mimeType
	if mt == "" {
		mt = guessMIME(path)
	}

	cfg := config.Default()
	cfg.ResolveAPIKey()
	client, err := refine.New(&cfg.Refine)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("Refining %s (%s, %d bytes) as %q...\n", path, mt, len(data), *style)
	start := time.Now()
	res, err := client.Refine(ctx, refine.Audio{Data: data, MIMEType: mt}, refine.Style(*style))
	if err != nil {
		var rerr *refine.Error
		if errors.As(err, &rerr) {
			fmt.Printf("Error (%s): %v\n", rerr.Kind, err)
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}

	output.Render(os.Stdout, res)
	fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))
}

var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
}

func guessMIME(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := audioTypes[ext]; ok {
		return mt
	}
	return mime.TypeByExtension(ext)
}
