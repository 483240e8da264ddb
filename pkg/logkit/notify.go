package logkit

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Notifier is the external chat capability the notification sink forwards
// records to. Implementations are expected to verify connectivity at
// construction time (see NotifierFactory).
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// NotifierFactory builds a Notifier from a credential pair. Construction
// should fail fast on malformed credentials or an unreachable service; Setup
// logs that failure and continues without the sink.
type NotifierFactory func(token, channel string) (Notifier, error)

// notifyFloor is the hard minimum severity for notifications, independent of
// the global threshold.
const notifyFloor = zerolog.InfoLevel

const (
	notifyQueueSize   = 256
	notifySendTimeout = 10 * time.Second
	notifyMaxLen      = 3500
)

// notifySink forwards formatted records to a Notifier. Sends run on a single
// worker goroutine behind a bounded queue so a slow or failing chat service
// never blocks or crashes the rest of the pipeline; overflow drops.
type notifySink struct {
	n       Notifier
	f       formatter
	min     zerolog.Level
	limiter *rate.Limiter

	// boot receives send failures so operators still see them locally.
	boot zerolog.Logger

	queue  chan string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newNotifySink(n Notifier, f formatter, cfg Config, boot zerolog.Logger) *notifySink {
	min := ParseLevel(cfg.NotifyMinLevel, notifyFloor)
	if min < notifyFloor {
		min = notifyFloor
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &notifySink{
		n:       n,
		f:       f.noColor(),
		min:     min,
		limiter: rate.NewLimiter(rate.Limit(cfg.NotifyRatePerSec), cfg.NotifyRatePerSec),
		boot:    boot,
		queue:   make(chan string, notifyQueueSize),
		cancel:  cancel,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
	return s
}

func (s *notifySink) Write(p []byte) (int, error) {
	return s.WriteLevel(zerolog.InfoLevel, p)
}

func (s *notifySink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < s.min {
		return len(p), nil
	}
	if !s.limiter.Allow() {
		return len(p), nil
	}
	text := s.render(p)
	if text == "" {
		return len(p), nil
	}
	// Never block record emission.
	select {
	case s.queue <- text:
	default:
		// drop
	}
	return len(p), nil
}

// render applies the sink's bound formatter to one backbone line. Color is
// stripped regardless of the console setting; chat services don't render
// ANSI sequences.
func (s *notifySink) render(p []byte) string {
	if s.f.json {
		return truncate(strings.TrimSpace(string(p)), notifyMaxLen)
	}
	var buf bytes.Buffer
	w := s.f.wrap(&buf)
	if _, err := w.Write(p); err != nil {
		// Unparseable line; forward it raw rather than losing it.
		return truncate(strings.TrimSpace(string(p)), notifyMaxLen)
	}
	return truncate(strings.TrimSpace(buf.String()), notifyMaxLen)
}

func (s *notifySink) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-s.queue:
			sctx, cancel := context.WithTimeout(ctx, notifySendTimeout)
			err := s.n.Send(sctx, "```\n"+text+"\n```")
			cancel()
			if err != nil {
				s.boot.Error().Err(err).Msg("notification send failed; record dropped")
			}
		}
	}
}

func (s *notifySink) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

func truncate(s string, maxN int) string {
	if maxN <= 0 || len(s) <= maxN {
		return s
	}
	if maxN < 10 {
		return s[:maxN]
	}
	return s[:maxN-3] + "..."
}
