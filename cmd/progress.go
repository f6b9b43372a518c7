package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spiffcs/ghaudit/internal/log"
	"github.com/spiffcs/ghaudit/internal/service"
	"golang.org/x/term"
)

// progress renders status events. On a terminal the current step is the
// logger's progress line, so log output never lands on the end of it;
// otherwise each step gets its own line on w.
type progress struct {
	w   io.Writer
	tty bool
}

func newProgress(w io.Writer) *progress {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &progress{w: w, tty: tty}
}

// Emit implements service.Emitter.
func (p *progress) Emit(ev service.Event) error {
	switch ev.Name {
	case service.EventStatus:
		st, ok := ev.Data.(service.Status)
		if !ok {
			return nil
		}
		if p.tty {
			log.Progress("%s", st.Message)
			return nil
		}
		_, _ = fmt.Fprintln(p.w, st.Message)
	case service.EventGitHubData:
		log.Debug("github data received")
	default:
		p.Done()
	}
	return nil
}

// Done clears the progress line, if any.
func (p *progress) Done() {
	if p.tty {
		log.ProgressClear()
	}
}
