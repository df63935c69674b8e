package printers

import (
	"io"
	"time"

	"github.com/gookit/color"

	"github.com/tcpprobe/tcpprobe/option"
	"github.com/tcpprobe/tcpprobe/statistics"
)

// Color functions used when printing information
var (
	colorCyan        = color.Cyan.Sprintf
	colorLightCyan   = color.LightCyan.Sprintf
	colorGreen       = color.Green.Sprintf
	colorLightGreen  = color.LightGreen.Sprintf
	colorYellow      = color.Yellow.Sprintf
	colorLightYellow = color.LightYellow.Sprintf
	colorRed         = color.Red.Sprintf
	colorLightBlue   = color.FgLightBlue.Sprintf
)

// ColorPrinter provides functionality for printing messages with color support.
// It optionally includes a timestamp in the output if ShowTimestamp is enabled.
type ColorPrinter struct {
	opt options
}

type ColorPrinterOption = option.Option[ColorPrinter]

func (p *ColorPrinter) options() *options {
	return &p.opt
}

// NewColorPrinter creates a new ColorPrinter instance.
func NewColorPrinter(opts ...ColorPrinterOption) *ColorPrinter {
	p := &ColorPrinter{}
	option.Apply(p, opts...)
	return p
}

func (p *ColorPrinter) print(s string) {
	io.WriteString(p.opt.out(), s)
}

// PrintStart prints a message indicating the start of probing.
// The message is printed in light cyan and includes the target and probe rate.
func (p *ColorPrinter) PrintStart(s *statistics.Statistics) {
	p.print(colorLightCyan("TCPING %s with %.2f probes per second\n", s.Target(), s.Frequency))
}

// PrintProbeSuccess prints a message indicating a successful probe response.
func (p *ColorPrinter) PrintProbeSuccess(_ *statistics.Statistics, o statistics.Outcome) {
	p.print(colorLightGreen("%stcp_seq=%d time=%s ms Connected\n",
		p.opt.timestamp(o.Time),
		o.Seq,
		o.RTTStr()))
}

// PrintProbeFailure prints a message indicating a failed probe attempt.
// Timeouts are shown in yellow, every other failure in red.
func (p *ColorPrinter) PrintProbeFailure(_ *statistics.Statistics, o statistics.Outcome) {
	paint := colorRed
	if o.Cause == statistics.CauseTimeout {
		paint = colorLightYellow
	}

	p.print(paint("%stcp_seq=%d time=%s ms Can't Connect (%s)\n",
		p.opt.timestamp(o.Time),
		o.Seq,
		o.RTTStr(),
		o.Reason()))
}

// PrintError prints an error message in red.
func (p *ColorPrinter) PrintError(format string, args ...any) {
	io.WriteString(p.opt.errOut(), colorRed(format+"\n", args...))
}

// PrintStatistics prints a summary of the session.
// It includes transmitted and received probes, packet loss percentage,
// failure causes, RTT statistics and estimated up/down time.
func (p *ColorPrinter) PrintStatistics(s statistics.Summary) {
	p.print(colorYellow("\n--- %s tcping statistics ---\n", s.Hostname))

	p.print(colorYellow("%d probes transmitted, ", s.Attempted))
	p.print(colorYellow("%d received, ", s.Succeeded))

	switch {
	case s.PacketLoss == 0:
		p.print(colorGreen("%.0f%%", s.PacketLoss))
	case s.PacketLoss > 0 && s.PacketLoss <= 30:
		p.print(colorLightYellow("%.0f%%", s.PacketLoss))
	default:
		p.print(colorRed("%.0f%%", s.PacketLoss))
	}

	p.print(colorYellow(" packet loss, time %.0fms\n", s.TotalMilliseconds()))

	if s.Failed() > 0 {
		p.print(colorYellow("failures: "))
		p.print(colorLightYellow("%d timeout", s.Timeouts))
		p.print(colorYellow(", "))
		p.print(colorRed("%d refused", s.Refused))
		p.print(colorYellow(", "))
		p.print(colorRed("%d unreachable", s.Unreachable))
		p.print(colorYellow(", "))
		p.print(colorRed("%d other\n", s.OtherFailures))
	}

	if s.RTT.HasResults {
		p.print(colorYellow("rtt "))
		p.print(colorGreen("min"))
		p.print(colorYellow("/"))
		p.print(colorCyan("avg"))
		p.print(colorYellow("/"))
		p.print(colorRed("max"))
		p.print(colorYellow("/"))
		p.print(colorLightBlue("mdev"))
		p.print(colorYellow(" = "))
		p.print(colorGreen("%.3f", s.RTT.Min))
		p.print(colorYellow("/"))
		p.print(colorCyan("%.3f", s.RTT.Average))
		p.print(colorYellow("/"))
		p.print(colorRed("%.3f", s.RTT.Max))
		p.print(colorYellow("/"))
		p.print(colorLightBlue("%.3f", s.RTT.MeanDeviation))
		p.print(colorYellow(" ms\n"))
	}

	p.print(colorYellow("up: "))
	p.print(colorGreen("%.3fs", s.UpTime.Seconds()))
	p.print(colorYellow(", down: "))
	p.print(colorRed("%.3fs\n", s.DownTime.Seconds()))

	if !s.LastUnsuccessfulProbe.IsZero() {
		p.print(colorYellow("last unsuccessful probe: "))
		p.print(colorLightBlue("%s\n", s.LastUnsuccessfulProbe.Format(time.DateTime)))
	}

	if s.LongestFailureStreak > 1 {
		p.print(colorYellow("longest failure streak: "))
		p.print(colorRed("%d probes\n", s.LongestFailureStreak))
	}
}

// Shutdown is a no-op for the color printer.
func (p *ColorPrinter) Shutdown() error {
	return nil
}
