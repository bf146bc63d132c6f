package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/wordcards/internal/domain"
	"github.com/phrazzld/wordcards/internal/events"
)

// progressPrinter writes one line per finished word.
type progressPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

// HandleEvent implements events.EventHandler.
func (p *progressPrinter) HandleEvent(ctx context.Context, event *events.ProgressEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	switch event.Type {
	case events.EventRunStarted:
		_, err = fmt.Fprintf(p.out, "Generating cards for %d words\n", event.Total)
	case events.EventWordCompleted:
		_, err = fmt.Fprintf(p.out, "[%d/%d] ok     %s (%s)\n", event.Completed, event.Total, event.Word, event.Source)
	case events.EventWordFailed:
		_, err = fmt.Fprintf(p.out, "[%d/%d] failed %s (%s)\n", event.Completed, event.Total, event.Word, event.FailureKind)
	}
	return err
}

func printSummary(out io.Writer, s *domain.RunSummary) {
	fmt.Fprintf(out, "\nRequested %d, succeeded %d (model %d, mock %d), failed %d, cache hits %d\n",
		s.Requested, s.Succeeded, s.SucceededModel, s.SucceededMock, s.Failed, s.CacheHits)
	fmt.Fprintf(out, "Success rate %.1f%% in %s\n", s.SuccessRate()*100, s.Duration().Round(time.Millisecond))
	if s.Partial {
		fmt.Fprintln(out, "The run was interrupted; unfinished words are reported as cancelled")
	}

	kinds := make([]string, 0, len(s.ErrorKinds))
	for kind := range s.ErrorKinds {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(out, "  %s: %d\n", kind, s.ErrorKinds[domain.FailureKind(kind)])
	}
	for _, f := range s.Failures {
		fmt.Fprintf(out, "  - %s (%s): %s\n", f.Word, f.Kind, f.Message)
	}
}
