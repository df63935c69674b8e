// Package printers contains the logic for printing information
package printers

import (
	"fmt"

	"github.com/tcpprobe/tcpprobe/option"
	"github.com/tcpprobe/tcpprobe/statistics"
)

// PlainPrinter is a printer that prints the results in a simple, plain text format.
type PlainPrinter struct {
	opt options
}

type PlainPrinterOption = option.Option[PlainPrinter]

func (p *PlainPrinter) options() *options {
	return &p.opt
}

// NewPlainPrinter creates a new PlainPrinter instance.
func NewPlainPrinter(opts ...PlainPrinterOption) *PlainPrinter {
	p := &PlainPrinter{}
	option.Apply(p, opts...)
	return p
}

// PrintStart prints the start banner with the target and probe rate.
func (p *PlainPrinter) PrintStart(s *statistics.Statistics) {
	fmt.Fprintf(p.opt.out(), "TCPING %s with %.2f probes per second\n", s.Target(), s.Frequency)
}

// PrintProbeSuccess prints the sequence number and rtt of a connected probe.
func (p *PlainPrinter) PrintProbeSuccess(_ *statistics.Statistics, o statistics.Outcome) {
	fmt.Fprintf(p.opt.out(), "%stcp_seq=%d time=%s ms Connected\n",
		p.opt.timestamp(o.Time),
		o.Seq,
		o.RTTStr())
}

// PrintProbeFailure prints the sequence number, elapsed time and OS error of a failed probe.
func (p *PlainPrinter) PrintProbeFailure(_ *statistics.Statistics, o statistics.Outcome) {
	fmt.Fprintf(p.opt.out(), "%stcp_seq=%d time=%s ms Can't Connect (%s)\n",
		p.opt.timestamp(o.Time),
		o.Seq,
		o.RTTStr(),
		o.Reason())
}

// PrintError prints error messages.
func (p *PlainPrinter) PrintError(format string, args ...any) {
	fmt.Fprintf(p.opt.errOut(), format+"\n", args...)
}

// PrintStatistics prints the summary block.
func (p *PlainPrinter) PrintStatistics(s statistics.Summary) {
	w := p.opt.out()

	fmt.Fprintf(w, "\n--- %s tcping statistics ---\n", s.Hostname)
	fmt.Fprintf(w, "%d probes transmitted, %d received, %.0f%% packet loss, time %.0fms\n",
		s.Attempted,
		s.Succeeded,
		s.PacketLoss,
		s.TotalMilliseconds())

	if s.RTT.HasResults {
		fmt.Fprintf(w, "rtt min/avg/max/mdev = %.3f/%.3f/%.3f/%.3f ms\n",
			s.RTT.Min,
			s.RTT.Average,
			s.RTT.Max,
			s.RTT.MeanDeviation)
	}

	fmt.Fprintf(w, "up: %.3fs, down: %.3fs\n", s.UpTime.Seconds(), s.DownTime.Seconds())
}

// Shutdown is a no-op for the plain printer.
func (p *PlainPrinter) Shutdown() error {
	return nil
}
