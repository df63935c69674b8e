package tcpprobe

import (
	"context"
	"errors"
	"time"

	"github.com/tcpprobe/tcpprobe/option"
	"github.com/tcpprobe/tcpprobe/pingers"
	"github.com/tcpprobe/tcpprobe/printers"
	"github.com/tcpprobe/tcpprobe/statistics"
)

var (
	ErrNoPinger        = errors.New("no pinger configured")
	ErrInvalidInterval = errors.New("interval must be positive")
)

// Prober drives probes at a fixed rate and aggregates their outcomes.
// Iterations run strictly one after another on the calling goroutine.
type Prober struct {
	pinger        Pinger
	printer       Printer
	statsRequests <-chan struct{}
	bounded       bool

	Frequency        float64
	Interval         time.Duration
	Timeout          time.Duration
	ProbeCountLimit  uint
	Quiet            bool
	ShowFailuresOnly bool
	Statistics       *statistics.Statistics
}

type ProberOption = option.Option[Prober]

// WithFrequency configures the probe frequency in Hz. The interval and
// the per-probe timeout are derived from it.
func WithFrequency(freq float64) ProberOption {
	return func(p *Prober) {
		if freq <= 0 {
			freq = DefaultFrequency
		}
		p.Frequency = freq
		p.Interval = IntervalFromFrequency(freq)
		p.Timeout = TimeoutFromInterval(p.Interval)
	}
}

// WithPrinter configures the printer for probe output formatting.
func WithPrinter(printer Printer) ProberOption {
	return func(p *Prober) {
		p.printer = printer
	}
}

// WithProbeCount bounds the run to count probes. A count of 0 sends none.
// Without this option, probing continues until ctx is done.
func WithProbeCount(count uint) ProberOption {
	return func(p *Prober) {
		p.ProbeCountLimit = count
		p.bounded = true
	}
}

// WithQuiet suppresses per-probe output. The summary is still produced.
func WithQuiet(quiet bool) ProberOption {
	return func(p *Prober) {
		p.Quiet = quiet
	}
}

// WithShowFailuresOnly configures the prober to only print failed probes.
func WithShowFailuresOnly(show bool) ProberOption {
	return func(p *Prober) {
		p.ShowFailuresOnly = show
	}
}

// WithStatsRequests makes the prober print interim statistics whenever a
// value arrives on ch while it waits for the next slot.
func WithStatsRequests(ch <-chan struct{}) ProberOption {
	return func(p *Prober) {
		p.statsRequests = ch
	}
}

// NewProber creates a new prober with the given pinger and optional configuration.
func NewProber(p Pinger, opts ...ProberOption) *Prober {
	pr := Prober{
		pinger:  p,
		printer: printers.NewPlainPrinter(),
	}

	WithFrequency(DefaultFrequency)(&pr)
	option.Apply(&pr, opts...)

	if p != nil {
		pr.Statistics = statistics.New(p.Host(), p.Port(), pr.Interval)
	} else {
		pr.Statistics = statistics.New("", 0, pr.Interval)
	}

	pr.Statistics.Frequency = pr.Frequency
	pr.Statistics.Timeout = pr.Timeout

	return &pr
}

// Probe runs the measurement loop until ProbeCountLimit probes were sent
// (when bounded) or ctx is done, and returns the accumulated statistics.
// Cancellation is not an error: the statistics gathered so far are
// returned as they are.
func (p *Prober) Probe(ctx context.Context) (statistics.Statistics, error) {
	s := p.Statistics

	if p.pinger == nil {
		return *s, ErrNoPinger
	}

	if p.Interval <= 0 {
		return *s, ErrInvalidInterval
	}

	s.StartTime = time.Now()
	p.printer.PrintStart(s)

	schedule := NewSchedule(s.StartTime, p.Interval)

	for k := uint(0); !p.bounded || k < p.ProbeCountLimit; k++ {
		if ctx.Err() != nil {
			break
		}

		outcome := p.probeOnce(ctx, k+1)
		if outcome.Cause == statistics.CauseCanceled {
			break
		}

		s.Record(outcome)
		p.report(outcome)

		if !p.waitUntil(ctx, schedule.FireTime(k+1)) {
			break
		}
	}

	s.EndTime = time.Now()

	return *s, nil
}

// probeOnce performs a single attempt and measures it from just before the
// dial until its resolution, timeouts included.
func (p *Prober) probeOnce(ctx context.Context, seq uint) statistics.Outcome {
	pingTime := time.Now()
	err := p.pinger.Ping(ctx)
	rtt := time.Since(pingTime)

	outcome := statistics.Outcome{
		Seq:  seq,
		Time: pingTime,
		RTT:  statistics.NanoToMillisecond(rtt.Nanoseconds()),
	}

	if err == nil {
		outcome.Success = true
		return outcome
	}

	outcome.Cause = pingers.Classify(err)
	outcome.Err = pingers.Underlying(err)

	// the session ended while the attempt was in flight
	if ctx.Err() != nil {
		outcome.Cause = statistics.CauseCanceled
	}

	return outcome
}

// persistentPrinter is implemented by printers that store probes instead
// of displaying them. Quiet and ShowFailuresOnly do not filter them.
type persistentPrinter interface {
	Persistent() bool
}

func (p *Prober) report(o statistics.Outcome) {
	if pp, ok := p.printer.(persistentPrinter); ok && pp.Persistent() {
		if o.Success {
			p.printer.PrintProbeSuccess(p.Statistics, o)
		} else {
			p.printer.PrintProbeFailure(p.Statistics, o)
		}
		return
	}

	if p.Quiet {
		return
	}

	if !o.Success {
		p.printer.PrintProbeFailure(p.Statistics, o)
		return
	}

	if !p.ShowFailuresOnly {
		p.printer.PrintProbeSuccess(p.Statistics, o)
	}
}

// waitUntil sleeps until target and reports whether the loop should go on.
// Interim statistics requests are served while waiting.
func (p *Prober) waitUntil(ctx context.Context, target time.Time) bool {
	for {
		wait := time.Until(target)
		if wait <= 0 {
			return ctx.Err() == nil
		}

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return false

		case <-timer.C:
			return true

		case _, ok := <-p.statsRequests:
			timer.Stop()
			if !ok {
				p.statsRequests = nil
				continue
			}
			p.printer.PrintStatistics(p.Statistics.Summarize())
		}
	}
}
