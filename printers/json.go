package printers

import (
	"encoding/json"
	"fmt"

	"github.com/tcpprobe/tcpprobe/option"
	"github.com/tcpprobe/tcpprobe/statistics"
)

// JSONEventType is a special type for each method
// in the printer interface so that automatic tools
// can understand what kind of an event they've received.
// For instance, start vs probe vs statistics...
type JSONEventType string

const (
	startEvent      JSONEventType = "start"      // Event type for `PrintStart` method.
	probeEvent      JSONEventType = "probe"      // Event type for both `PrintProbeSuccess` and `PrintProbeFailure`.
	statisticsEvent JSONEventType = "statistics" // Event type for `PrintStatistics` method.
	errorEvent      JSONEventType = "error"      // Event type for `PrintError` method.
)

// JSONData contains all possible fields for JSON output.
// Because one event usually contains only a subset of fields,
// other fields will be omitted in the output.
type JSONData struct {
	Type JSONEventType `json:"type"` // Specifies type of a message/event.
	// Success is a special field from probe messages, containing information
	// whether request was successful or not.
	// It's a pointer on purpose, otherwise success=false will be omitted,
	// but we still need to omit it for non-probe messages.
	Success   *bool   `json:"success,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
	Message   string  `json:"message"` // Message contains a message similar to other plain and colored printers.
	Hostname  string  `json:"hostname,omitempty"`
	Port      uint16  `json:"port,omitempty"`
	Frequency float64 `json:"frequency,omitempty"`

	Seq     uint    `json:"seq,omitempty"`
	Rtt     string  `json:"time,omitempty"`    // Rtt is the stringified 3 decimal places elapsed time of a probe.
	Latency float64 `json:"latency,omitempty"` // Latency in ms for successful probe messages.
	Cause   string  `json:"cause,omitempty"`
	Error   string  `json:"error,omitempty"`

	TotalPackets    uint   `json:"totalPackets,omitempty"`
	Successful      uint   `json:"successfulProbes,omitempty"`
	Unsuccessful    uint   `json:"unsuccessfulProbes,omitempty"`
	TotalPacketLoss string `json:"totalPacketLoss,omitempty"` // TotalPacketLoss in percent, 2 decimal places.
	Timeouts        uint   `json:"timeouts,omitempty"`
	Refused         uint   `json:"refused,omitempty"`
	Unreachable     uint   `json:"unreachable,omitempty"`
	OtherFailures   uint   `json:"otherFailures,omitempty"`
	LatencyMin      string `json:"latencyMin,omitempty"`  // LatencyMin is a stringified 3 decimal places min latency for the stats event.
	LatencyAvg      string `json:"latencyAvg,omitempty"`  // LatencyAvg is a stringified 3 decimal places avg latency for the stats event.
	LatencyMax      string `json:"latencyMax,omitempty"`  // LatencyMax is a stringified 3 decimal places max latency for the stats event.
	LatencyMdev     string `json:"latencyMdev,omitempty"` // LatencyMdev is the mean absolute deviation, 3 decimal places.

	StartTimestamp string  `json:"startTimestamp,omitempty"`
	EndTimestamp   string  `json:"endTimestamp,omitempty"`
	TotalDuration  string  `json:"totalDuration,omitempty"` // TotalDuration is the measured run time in milliseconds.
	TotalUptime    float64 `json:"totalUptime,omitempty"`   // TotalUptime in seconds.
	TotalDowntime  float64 `json:"totalDowntime,omitempty"` // TotalDowntime in seconds.
}

// JSONPrinter is a struct that holds a JSON encoder to print structured JSON output.
type JSONPrinter struct {
	encoder *json.Encoder
	opt     options
	pretty  bool
}

type JSONPrinterOption = option.Option[JSONPrinter]

func (p *JSONPrinter) options() *options {
	return &p.opt
}

// WithPrettyJSON indents the JSON output.
func WithPrettyJSON() JSONPrinterOption {
	return func(p *JSONPrinter) {
		p.pretty = true
	}
}

// NewJSONPrinter creates a new JSONPrinter instance.
func NewJSONPrinter(opts ...JSONPrinterOption) *JSONPrinter {
	p := &JSONPrinter{}
	option.Apply(p, opts...)

	p.encoder = json.NewEncoder(p.opt.out())
	if p.pretty {
		p.encoder.SetIndent("", "\t")
	}

	return p
}

// PrintStart prints the initial message before doing probes.
func (p *JSONPrinter) PrintStart(s *statistics.Statistics) {
	p.encoder.Encode(JSONData{
		Type:      startEvent,
		Message:   fmt.Sprintf("TCPING %s with %.2f probes per second", s.Target(), s.Frequency),
		Hostname:  s.Hostname,
		Port:      s.Port,
		Frequency: s.Frequency,
	})
}

func (p *JSONPrinter) probeData(s *statistics.Statistics, o statistics.Outcome) JSONData {
	success := o.Success

	data := JSONData{
		Type:     probeEvent,
		Success:  &success,
		Hostname: s.Hostname,
		Port:     s.Port,
		Seq:      o.Seq,
		Rtt:      o.RTTStr(),
	}

	if p.opt.ShowTimestamp {
		data.Timestamp = o.TimeFormatted()
	}

	return data
}

// PrintProbeSuccess prints successful TCP probe replies in JSON format.
func (p *JSONPrinter) PrintProbeSuccess(s *statistics.Statistics, o statistics.Outcome) {
	data := p.probeData(s, o)
	data.Latency = o.RTT
	data.Message = fmt.Sprintf("tcp_seq=%d time=%s ms Connected", o.Seq, o.RTTStr())

	p.encoder.Encode(data)
}

// PrintProbeFailure prints a JSON message when a TCP probe fails.
func (p *JSONPrinter) PrintProbeFailure(s *statistics.Statistics, o statistics.Outcome) {
	data := p.probeData(s, o)
	data.Cause = o.Cause.String()
	data.Error = o.Reason()
	data.Message = fmt.Sprintf("tcp_seq=%d time=%s ms Can't Connect (%s)", o.Seq, o.RTTStr(), o.Reason())

	p.encoder.Encode(data)
}

// PrintError prints an error event.
func (p *JSONPrinter) PrintError(format string, args ...any) {
	p.encoder.Encode(JSONData{
		Type:    errorEvent,
		Message: fmt.Sprintf(format, args...),
	})
}

// PrintStatistics prints the summary as one statistics event.
func (p *JSONPrinter) PrintStatistics(s statistics.Summary) {
	data := JSONData{
		Type:     statisticsEvent,
		Message:  fmt.Sprintf("stats for %s:%d", s.Hostname, s.Port),
		Hostname: s.Hostname,
		Port:     s.Port,

		TotalPackets:    s.Attempted,
		Successful:      s.Succeeded,
		Unsuccessful:    s.Failed(),
		TotalPacketLoss: fmt.Sprintf("%.2f", s.PacketLoss),
		Timeouts:        s.Timeouts,
		Refused:         s.Refused,
		Unreachable:     s.Unreachable,
		OtherFailures:   s.OtherFailures,

		TotalDuration: fmt.Sprintf("%.0f", s.TotalMilliseconds()),
		TotalUptime:   s.UpTime.Seconds(),
		TotalDowntime: s.DownTime.Seconds(),
	}

	if !s.StartTime.IsZero() {
		data.StartTimestamp = s.StartTime.Format(statistics.TimeFormat)
	}

	if !s.EndTime.IsZero() {
		data.EndTimestamp = s.EndTime.Format(statistics.TimeFormat)
	}

	if s.RTT.HasResults {
		data.LatencyMin = fmt.Sprintf("%.3f", s.RTT.Min)
		data.LatencyAvg = fmt.Sprintf("%.3f", s.RTT.Average)
		data.LatencyMax = fmt.Sprintf("%.3f", s.RTT.Max)
		data.LatencyMdev = fmt.Sprintf("%.3f", s.RTT.MeanDeviation)
	}

	p.encoder.Encode(data)
}

// Shutdown is a no-op for the JSON printer.
func (p *JSONPrinter) Shutdown() error {
	return nil
}
