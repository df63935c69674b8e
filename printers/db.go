package printers

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/tcpprobe/tcpprobe/option"
	"github.com/tcpprobe/tcpprobe/statistics"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const (
	eventTypeProbe      = "probe"
	eventTypeStatistics = "statistics"
)

const (
	dataTableSchema = `CREATE TABLE %s (
    id INTEGER PRIMARY KEY,
    event_type TEXT NOT NULL, -- probe or statistics
    timestamp DATETIME,
    hostname TEXT,
    port INTEGER,

    seq INTEGER,
    success INTEGER,
    latency REAL,
    cause TEXT,
    error TEXT,

    latency_min REAL,
    latency_avg REAL,
    latency_max REAL,
    latency_mdev REAL,

    total_duration REAL, -- milliseconds
    start_time DATETIME,
    end_time DATETIME,

    never_succeed_probe INTEGER, -- value will be 1 if a probe never succeeded
    never_failed_probe INTEGER, -- value will be 1 if a probe never failed
    last_successful_probe DATETIME,
    last_unsuccessful_probe DATETIME,

    longest_success_streak INTEGER,
    longest_failure_streak INTEGER,

    total_packets INTEGER,
    total_packet_loss REAL,
    total_successful_probes INTEGER,
    total_unsuccessful_probes INTEGER,
    timeouts INTEGER,
    refused INTEGER,
    unreachable INTEGER,
    other_failures INTEGER,

    total_uptime REAL, -- seconds
    total_downtime REAL -- seconds
	);`

	probeSaveSchema = `INSERT INTO %s (
	event_type,
	timestamp,
	hostname,
	port,
	seq,
	success,
	latency,
	cause,
	error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	// SQL statement for inserting statistics into the table
	statSaveSchema = `INSERT INTO %s (
	event_type,
	timestamp,
	hostname,
	port,
	total_successful_probes,
	total_unsuccessful_probes,
	never_succeed_probe,
	never_failed_probe,
	last_successful_probe,
	last_unsuccessful_probe,
	total_packets,
	total_packet_loss,
	timeouts,
	refused,
	unreachable,
	other_failures,
	total_uptime,
	total_downtime,
	longest_success_streak,
	longest_failure_streak,
	latency_min,
	latency_avg,
	latency_max,
	latency_mdev,
	start_time,
	end_time,
	total_duration) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
)

// DatabasePrinter represents a SQLite database connection for storing probe results.
type DatabasePrinter struct {
	Conn      *sqlite.Conn
	DbPath    string
	TableName string
	opt       options
}

type DatabasePrinterOption = option.Option[DatabasePrinter]

func (p *DatabasePrinter) options() *options {
	return &p.opt
}

// NewDatabasePrinter opens (or creates) the sqlite3 database at path and
// creates a fresh data table named after the target and the current time.
func NewDatabasePrinter(hostname string, port uint16, path string, opts ...DatabasePrinterOption) (*DatabasePrinter, error) {
	filename := addDbExtension(path)

	conn, err := sqlite.OpenConn(filename, sqlite.OpenCreate, sqlite.OpenReadWrite)
	if err != nil {
		return nil, fmt.Errorf("create database %q: %w", filename, err)
	}

	tableName := sanitizeTableName(hostname, port, time.Now())
	tableSchema := fmt.Sprintf(dataTableSchema, tableName)

	if err := sqlitex.Execute(conn, tableSchema, &sqlitex.ExecOptions{}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create data table %s: %w", tableName, err)
	}

	p := &DatabasePrinter{
		Conn:      conn,
		DbPath:    filename,
		TableName: tableName,
	}

	option.Apply(p, opts...)

	return p, nil
}

func addDbExtension(filename string) string {
	if strings.HasSuffix(filename, ".db") {
		return filename
	}

	return filename + ".db"
}

// sanitizeTableName will return the sanitized and correctly formatted table name
// formatting the table name as "example_com_port__year_month_day_hour_minute_sec"
// table name can't have '.','-',':' and can't start with numbers
func sanitizeTableName(hostname string, port uint16, now time.Time) string {
	sanitizedHost := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, hostname)

	sanitizedTime := strings.NewReplacer("-", "_", ":", "_", " ", "_").
		Replace(now.Format(time.DateTime))

	tableName := fmt.Sprintf("%s_%d__%s",
		sanitizedHost,
		port,
		sanitizedTime,
	)

	if unicode.IsNumber(rune(tableName[0])) {
		tableName = "_" + tableName
	}

	return tableName
}

// PrintStart prints a message indicating where the results are saved.
func (p *DatabasePrinter) PrintStart(s *statistics.Statistics) {
	fmt.Fprintf(p.opt.out(), "TCPING %s with %.2f probes per second - saving results to: %s\n",
		s.Target(), s.Frequency, p.DbPath)
}

func (p *DatabasePrinter) saveProbe(s *statistics.Statistics, o statistics.Outcome) error {
	cause := ""
	if !o.Success {
		cause = o.Cause.String()
	}

	args := []any{
		eventTypeProbe,
		o.TimeFormatted(),
		s.Hostname,
		s.Port,
		o.Seq,
		o.Success,
		o.RTT,
		cause,
		o.Reason(),
	}

	return sqlitex.Execute(
		p.Conn,
		fmt.Sprintf(probeSaveSchema, p.TableName),
		&sqlitex.ExecOptions{Args: args},
	)
}

// PrintProbeSuccess stores a successful probe row.
func (p *DatabasePrinter) PrintProbeSuccess(s *statistics.Statistics, o statistics.Outcome) {
	if err := p.saveProbe(s, o); err != nil {
		p.PrintError("Error while writing probe %d to the database %q: %s", o.Seq, p.DbPath, err)
	}
}

// PrintProbeFailure stores a failed probe row.
func (p *DatabasePrinter) PrintProbeFailure(s *statistics.Statistics, o statistics.Outcome) {
	if err := p.saveProbe(s, o); err != nil {
		p.PrintError("Error while writing probe %d to the database %q: %s", o.Seq, p.DbPath, err)
	}
}

// saveStats saves stats to the database with proper formatting
func (p *DatabasePrinter) saveStats(s statistics.Summary) error {
	// If the time is zero, that means it never happened.
	// In this case, the column should be left empty instead of "0001-01-01 00:00:00".
	var neverSucceedProbe, neverFailedProbe bool

	lastSuccessfulProbe := s.LastSuccessfulProbe.Format(statistics.TimeFormat)
	if s.LastSuccessfulProbe.IsZero() {
		lastSuccessfulProbe = ""
		neverSucceedProbe = true
	}

	lastUnsuccessfulProbe := s.LastUnsuccessfulProbe.Format(statistics.TimeFormat)
	if s.LastUnsuccessfulProbe.IsZero() {
		lastUnsuccessfulProbe = ""
		neverFailedProbe = true
	}

	var endTime string
	if !s.EndTime.IsZero() {
		endTime = s.EndTime.Format(statistics.TimeFormat)
	}

	var latencyMin, latencyAvg, latencyMax, latencyMdev any
	if s.RTT.HasResults {
		latencyMin = s.RTT.Min
		latencyAvg = s.RTT.Average
		latencyMax = s.RTT.Max
		latencyMdev = s.RTT.MeanDeviation
	}

	args := []any{
		eventTypeStatistics,
		time.Now().Format(statistics.TimeFormat),
		s.Hostname,
		s.Port,
		s.Succeeded,
		s.Failed(),
		neverSucceedProbe,
		neverFailedProbe,
		lastSuccessfulProbe,
		lastUnsuccessfulProbe,
		s.Attempted,
		s.PacketLoss,
		s.Timeouts,
		s.Refused,
		s.Unreachable,
		s.OtherFailures,
		s.UpTime.Seconds(),
		s.DownTime.Seconds(),
		s.LongestSuccessStreak,
		s.LongestFailureStreak,
		latencyMin,
		latencyAvg,
		latencyMax,
		latencyMdev,
		s.StartTime.Format(statistics.TimeFormat),
		endTime,
		s.TotalMilliseconds(),
	}

	return sqlitex.Execute(
		p.Conn,
		fmt.Sprintf(statSaveSchema, p.TableName),
		&sqlitex.ExecOptions{Args: args},
	)
}

// PrintStatistics saves the summary to the database.
func (p *DatabasePrinter) PrintStatistics(s statistics.Summary) {
	if err := p.saveStats(s); err != nil {
		p.PrintError("Error while writing stats to the database %q: %s", p.DbPath, err)
		return
	}

	fmt.Fprintf(p.opt.out(), "\nStatistics for %q have been saved to %q in the table %q\n", s.Hostname, p.DbPath, p.TableName)
}

// PrintError prints an error message to stderr.
func (p *DatabasePrinter) PrintError(format string, args ...any) {
	fmt.Fprintf(p.opt.errOut(), format+"\n", args...)
}

// Persistent reports that every probe is stored, quiet or not.
func (p *DatabasePrinter) Persistent() bool {
	return true
}

// Shutdown closes the database connection.
func (p *DatabasePrinter) Shutdown() error {
	if p.Conn == nil {
		return nil
	}

	if err := p.Conn.Close(); err != nil {
		return fmt.Errorf("close database %q: %w", p.DbPath, err)
	}

	return nil
}
