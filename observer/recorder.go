package observer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/pthm-cable/shoal/game"
)

// FrameRecorder appends frames to a zstd-compressed JSONL file.
type FrameRecorder struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

// NewFrameRecorder creates (or truncates) the recording at path.
func NewFrameRecorder(path string) (*FrameRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating recording dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return &FrameRecorder{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Write appends one frame as a JSON line.
func (r *FrameRecorder) Write(f game.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return fmt.Errorf("recorder closed")
	}
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return err
	}
	r.n++
	return nil
}

// Frames returns how many frames were written.
func (r *FrameRecorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Close flushes the encoder and closes the file.
func (r *FrameRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	if r.w != nil {
		firstErr = r.w.Flush()
		r.w = nil
	}
	if r.enc != nil {
		if err := r.enc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.enc = nil
	}
	if r.f != nil {
		if err := r.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.f = nil
	}
	return firstErr
}

// ReadFrames decodes every frame in a recording.
func ReadFrames(path string) ([]game.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var frames []game.Frame
	for sc.Scan() {
		var fr game.Frame
		if err := json.Unmarshal(sc.Bytes(), &fr); err != nil {
			return nil, fmt.Errorf("decoding frame %d: %w", len(frames), err)
		}
		frames = append(frames, fr)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}
	return frames, nil
}
