package output

import (
	"fmt"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a progress message on the diagnostic writer. It is only
// meant for text mode on a terminal.
type Spinner struct {
	r       *Renderer
	message string

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewSpinner creates a stopped spinner.
func (r *Renderer) NewSpinner(message string) *Spinner {
	return &Spinner{r: r, message: message}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			frame := s.r.styles.Info.Render(spinnerFrames[i%len(spinnerFrames)])
			_, _ = fmt.Fprintf(s.r.errOut, "\r%s %s", frame, s.message)
			select {
			case <-s.stop:
				_, _ = fmt.Fprint(s.r.errOut, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	<-s.done
	s.running = false
}

// Success stops the spinner and prints a success message.
func (s *Spinner) Success(msg string) {
	s.Stop()
	s.r.Success(msg)
}

// Fail stops the spinner and prints an error message.
func (s *Spinner) Fail(msg string) {
	s.Stop()
	s.r.Error(msg)
}
