package observer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pthm-cable/shoal/game"
)

// Feed fans frames out to the live hub and the frame recorder. Either side
// may be absent; a nil Feed accepts and discards frames.
type Feed struct {
	hub      *Hub
	recorder *FrameRecorder
	cancel   context.CancelFunc
	done     chan struct{}
}

// OpenFeed starts the hub on addr when addr is non-empty and opens a frame
// recording at recordPath when it is non-empty. It returns nil when both are
// empty.
func OpenFeed(ctx context.Context, addr, recordPath string) (*Feed, error) {
	if addr == "" && recordPath == "" {
		return nil, nil
	}

	f := &Feed{}
	if recordPath != "" {
		rec, err := NewFrameRecorder(recordPath)
		if err != nil {
			return nil, err
		}
		f.recorder = rec
	}

	if addr != "" {
		f.hub = NewHub()
		serveCtx, cancel := context.WithCancel(ctx)
		f.cancel = cancel
		f.done = make(chan struct{})
		go func() {
			defer close(f.done)
			if err := f.hub.Serve(serveCtx, addr); err != nil {
				slog.Error("observer stopped", "error", err)
			}
		}()
	}
	return f, nil
}

// Hub returns the live hub, or nil when streaming is off.
func (f *Feed) Hub() *Hub {
	if f == nil {
		return nil
	}
	return f.hub
}

// Publish sends a frame to every configured sink.
func (f *Feed) Publish(frame game.Frame) error {
	if f == nil {
		return nil
	}
	var errs []error
	if f.hub != nil {
		errs = append(errs, f.hub.Publish(frame))
	}
	if f.recorder != nil {
		errs = append(errs, f.recorder.Write(frame))
	}
	return errors.Join(errs...)
}

// Close stops the hub and flushes the recording.
func (f *Feed) Close() error {
	if f == nil {
		return nil
	}
	if f.cancel != nil {
		f.cancel()
		<-f.done
	}
	if f.recorder != nil {
		n := f.recorder.Frames()
		if err := f.recorder.Close(); err != nil {
			return err
		}
		slog.Info("frames recorded", "frames", n)
	}
	return nil
}
