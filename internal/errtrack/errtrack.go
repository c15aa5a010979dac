package errtrack

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Sink is the error-tracking capability injected into the pipeline entry
// points. It replaces reaching for a global reporter.
type Sink interface {
	Capture(err error, tags map[string]string)
	Flush()
}

// Noop drops every report. Used when no DSN is configured and in tests.
type Noop struct{}

func (Noop) Capture(error, map[string]string) {}
func (Noop) Flush()                           {}

type sentrySink struct {
	hub *sentry.Hub
}

// NewSentry initializes a Sentry-backed sink
func NewSentry(dsn, environment string) (Sink, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return nil, err
	}
	hub := sentry.NewHub(client, sentry.NewScope())
	return &sentrySink{hub: hub}, nil
}

func (s *sentrySink) Capture(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		s.hub.CaptureException(err)
	})
}

func (s *sentrySink) Flush() {
	s.hub.Flush(2 * time.Second)
}
