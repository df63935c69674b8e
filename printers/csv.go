package printers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tcpprobe/tcpprobe/option"
	"github.com/tcpprobe/tcpprobe/statistics"
)

const (
	colTimestamp string = "Timestamp"
	colStatus    string = "Status"
	colHostname  string = "Hostname"
	colPort      string = "Port"
	colSeq       string = "Seq"
	colLatency   string = "Latency(ms)"
	colCause     string = "Cause"
	colError     string = "Error"
)

const (
	filePermission os.FileMode = 0644
	fileFlag       int         = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
)

// CSVPrinter is responsible for writing probe results and statistics to CSV files.
type CSVPrinter struct {
	ProbeWriter *csv.Writer
	StatsWriter *csv.Writer
	ProbeFile   *os.File
	StatsFile   *os.File
	opt         options
}

type CSVPrinterOption = option.Option[CSVPrinter]

func (p *CSVPrinter) options() *options {
	return &p.opt
}

// NewCSVPrinter initializes a CSVPrinter instance with the given filename and settings.
// Probes go to filePath and the statistics to a sibling file with a "_stats" suffix.
func NewCSVPrinter(filePath string, opts ...CSVPrinterOption) (*CSVPrinter, error) {
	probeFilename := addCSVExtension(filePath, false)

	probeFile, err := os.OpenFile(probeFilename, fileFlag, filePermission)
	if err != nil {
		return nil, fmt.Errorf("create probe CSV file %s: %w", probeFilename, err)
	}

	statsFilename := addCSVExtension(filePath, true)

	statsFile, err := os.OpenFile(statsFilename, fileFlag, filePermission)
	if err != nil {
		probeFile.Close()
		return nil, fmt.Errorf("create stats CSV file %s: %w", statsFilename, err)
	}

	p := &CSVPrinter{
		ProbeWriter: csv.NewWriter(probeFile),
		StatsWriter: csv.NewWriter(statsFile),
		ProbeFile:   probeFile,
		StatsFile:   statsFile,
	}

	option.Apply(p, opts...)

	return p, nil
}

func addCSVExtension(filename string, withStatsExt bool) string {
	if withStatsExt {
		// Remove .csv extension if present, then add _stats.csv
		base := strings.TrimSuffix(filename, ".csv")
		return base + "_stats.csv"
	}

	if strings.HasSuffix(filename, ".csv") {
		return filename
	}

	return filename + ".csv"
}

// Done flushes the buffer of writers and closes the probe and stats file
func (p *CSVPrinter) Done() error {
	var errs []error

	if p.ProbeWriter != nil {
		p.ProbeWriter.Flush()
		errs = append(errs, p.ProbeWriter.Error())
	}

	if p.ProbeFile != nil {
		errs = append(errs, p.ProbeFile.Close())
	}

	if p.StatsWriter != nil {
		p.StatsWriter.Flush()
		errs = append(errs, p.StatsWriter.Error())
	}

	if p.StatsFile != nil {
		errs = append(errs, p.StatsFile.Close())
	}

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("close CSV output: %w", err)
		}
	}

	return nil
}

// Shutdown flushes and closes both files.
func (p *CSVPrinter) Shutdown() error {
	return p.Done()
}

// Persistent reports that every probe is written, quiet or not.
func (p *CSVPrinter) Persistent() bool {
	return true
}

func (p *CSVPrinter) writeProbeHeader() error {
	headers := []string{}

	if p.opt.ShowTimestamp {
		headers = append(headers, colTimestamp)
	}

	headers = append(headers, colStatus, colHostname, colPort, colSeq, colLatency, colCause, colError)

	if err := p.ProbeWriter.Write(headers); err != nil {
		return fmt.Errorf("write probe headers: %w", err)
	}

	p.ProbeWriter.Flush()

	return p.ProbeWriter.Error()
}

// PrintStart writes the probe header and announces where results are saved.
func (p *CSVPrinter) PrintStart(s *statistics.Statistics) {
	if err := p.writeProbeHeader(); err != nil {
		p.PrintError("%s", err)
	}

	fmt.Fprintf(p.opt.out(), "TCPING %s with %.2f probes per second - saving the results to: %s\n",
		s.Target(), s.Frequency, p.ProbeFile.Name())
}

func (p *CSVPrinter) writeProbe(s *statistics.Statistics, o statistics.Outcome, status string) {
	record := []string{}

	if p.opt.ShowTimestamp {
		record = append(record, o.TimeFormatted())
	}

	cause := ""
	if !o.Success {
		cause = o.Cause.String()
	}

	record = append(
		record,
		status,
		s.Hostname,
		strconv.FormatUint(uint64(s.Port), 10),
		strconv.FormatUint(uint64(o.Seq), 10),
		o.RTTStr(),
		cause,
		o.Reason(),
	)

	if err := p.ProbeWriter.Write(record); err != nil {
		p.PrintError("Failed to write probe record: %v", err)
	}

	p.ProbeWriter.Flush()
}

// PrintProbeSuccess logs a successful probe to the CSV file.
func (p *CSVPrinter) PrintProbeSuccess(s *statistics.Statistics, o statistics.Outcome) {
	p.writeProbe(s, o, "Connected")
}

// PrintProbeFailure logs a failed probe attempt to the CSV file.
func (p *CSVPrinter) PrintProbeFailure(s *statistics.Statistics, o statistics.Outcome) {
	p.writeProbe(s, o, "Failed")
}

// PrintError logs an error message to stderr.
func (p *CSVPrinter) PrintError(format string, args ...any) {
	fmt.Fprintf(p.opt.errOut(), "CSV Error: "+format+"\n", args...)
}

func formatInstant(t time.Time, never string) string {
	if t.IsZero() {
		return never
	}

	return t.Format(time.DateTime)
}

func statsRecords(s statistics.Summary) [][]string {
	stats := [][]string{
		{"Metric", "Value"},
		{"Timestamp", time.Now().Format(time.DateTime)},
		{"Hostname", s.Hostname},
		{"Port", strconv.FormatUint(uint64(s.Port), 10)},
		{"Total Duration", fmt.Sprintf("%.0f", s.TotalMilliseconds())},
		{"Total Uptime", statistics.DurationToString(s.UpTime)},
		{"Total Downtime", statistics.DurationToString(s.DownTime)},
		{"Total Packets", fmt.Sprint(s.Attempted)},
		{"Total Successful Packets", fmt.Sprint(s.Succeeded)},
		{"Total Unsuccessful Packets", fmt.Sprint(s.Failed())},
		{"Total Packet Loss Percentage", fmt.Sprintf("%.2f", s.PacketLoss)},
		{"Timeouts", fmt.Sprint(s.Timeouts)},
		{"Refused", fmt.Sprint(s.Refused)},
		{"Unreachable", fmt.Sprint(s.Unreachable)},
		{"Other Failures", fmt.Sprint(s.OtherFailures)},
		{"Longest Success Streak", fmt.Sprint(s.LongestSuccessStreak)},
		{"Longest Failure Streak", fmt.Sprint(s.LongestFailureStreak)},
		{"Last Successful Probe", formatInstant(s.LastSuccessfulProbe, "Never succeeded")},
		{"Last Unsuccessful Probe", formatInstant(s.LastUnsuccessfulProbe, "Never failed")},
	}

	if s.RTT.HasResults {
		stats = append(stats,
			[]string{"Latency Min", fmt.Sprintf("%.3f", s.RTT.Min)},
			[]string{"Latency Avg", fmt.Sprintf("%.3f", s.RTT.Average)},
			[]string{"Latency Max", fmt.Sprintf("%.3f", s.RTT.Max)},
			[]string{"Latency Mdev", fmt.Sprintf("%.3f", s.RTT.MeanDeviation)},
		)
	} else {
		stats = append(stats,
			[]string{"Latency Min", "N/A"},
			[]string{"Latency Avg", "N/A"},
			[]string{"Latency Max", "N/A"},
			[]string{"Latency Mdev", "N/A"},
		)
	}

	stats = append(stats,
		[]string{"Start Timestamp", formatInstant(s.StartTime, "Not started")},
		[]string{"End Timestamp", formatInstant(s.EndTime, "In progress")},
	)

	return stats
}

// PrintStatistics replaces the content of the stats file with the
// given summary, so interim requests leave only the latest snapshot.
func (p *CSVPrinter) PrintStatistics(s statistics.Summary) {
	if err := p.StatsFile.Truncate(0); err != nil {
		p.PrintError("Failed to truncate statistics file: %v", err)
		return
	}

	if _, err := p.StatsFile.Seek(0, io.SeekStart); err != nil {
		p.PrintError("Failed to rewind statistics file: %v", err)
		return
	}

	for _, record := range statsRecords(s) {
		if err := p.StatsWriter.Write(record); err != nil {
			p.PrintError("Failed to write statistics record: %v", err)
			return
		}
	}

	p.StatsWriter.Flush()
	if err := p.StatsWriter.Error(); err != nil {
		p.PrintError("Failed to flush statistics: %v", err)
		return
	}

	fmt.Fprintf(p.opt.out(), "\nStatistics have been saved to: %s\n", p.StatsFile.Name())
}
