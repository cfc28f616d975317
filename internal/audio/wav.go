package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// MIMEType is the content type of every finalized capture.
const MIMEType = "audio/wav"

const bitDepth = 16

// EncodeWAV wraps 16-bit PCM samples in a RIFF WAV container. An empty
// sample slice yields a valid header-only file.
func EncodeWAV(samples []int, sampleRate, channels uint32) ([]byte, error) {
	ws := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(ws, int(sampleRate), bitDepth, int(channels), 1)

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: int(channels), SampleRate: int(sampleRate)},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("audio: encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("audio: close wav: %w", err)
	}

	data, err := io.ReadAll(ws.Reader())
	if err != nil {
		return nil, fmt.Errorf("audio: read wav: %w", err)
	}
	return data, nil
}

// pcm16ToInts converts little-endian signed 16-bit PCM bytes to samples.
// A trailing odd byte is ignored.
func pcm16ToInts(data []byte, dst []int) []int {
	for i := 0; i+2 <= len(data); i += 2 {
		dst = append(dst, int(int16(binary.LittleEndian.Uint16(data[i:i+2]))))
	}
	return dst
}
