package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames are the braille animation frames, advanced every 80ms.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner renders an animated progress indicator while a slow operation
// runs. It writes to a single writer from a single goroutine; Stop blocks
// until the line is cleared, so callers can print immediately after.
type spinner struct {
	message string
	out     io.Writer
	ctx     context.Context

	started bool
	once    sync.Once
	stop    chan struct{}
	stopped chan struct{}
}

// newSpinner creates a spinner writing to stderr. The animation also ends
// when ctx is cancelled.
func newSpinner(ctx context.Context, message string) *spinner {
	return &spinner{
		message: message,
		out:     os.Stderr,
		ctx:     ctx,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. It must be paired with Stop, Done, or Fail.
func (s *spinner) Start() {
	s.started = true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.stop:
				s.clearLine()
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
			}
		}
	}()
}

// Stop ends the animation and clears the line. Stop before Start is a no-op.
func (s *spinner) Stop() {
	if !s.started {
		return
	}
	s.once.Do(func() { close(s.stop) })
	<-s.stopped
}

// Done stops the spinner and prints a success message.
func (s *spinner) Done(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// Fail stops the spinner and prints an error message.
func (s *spinner) Fail(message string) {
	s.Stop()
	printError("%s", message)
}

func (s *spinner) clearLine() {
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
