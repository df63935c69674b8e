package app

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tcpprobe/tcpprobe"
	"github.com/tcpprobe/tcpprobe/internal/config"
)

var (
	// ErrUsageRequested indicates the command line could not be used and
	// usage should be printed
	ErrUsageRequested = errors.New("usage requested")

	// ErrHelpRequested indicates -h/--help was given
	ErrHelpRequested = errors.New("help requested")

	// ErrVersionRequested indicates version display was requested
	ErrVersionRequested = errors.New("version requested")

	// ErrUpdateCheckRequested indicates update check was requested
	ErrUpdateCheckRequested = errors.New("update check requested")

	ErrMissingHost     = errors.New("missing target host")
	ErrInvalidPort     = errors.New("port should be in 1..65535 range")
	ErrInvalidDuration = errors.New("duration should be a non-negative number of seconds")

	// ErrResource marks failures to acquire output files, databases or charts
	ErrResource = errors.New("resource error")
)

// DefaultPort is probed when no port is given.
const DefaultPort uint16 = 443

// ProberConfig contains all configuration needed to create and run a prober.
// It is built once by ProcessUserInput and not changed afterwards.
type ProberConfig struct {
	// Target configuration
	Hostname string
	Port     uint16

	// Timing options
	Frequency float64
	Interval  time.Duration
	Timeout   time.Duration
	Duration  uint

	// Probe control. ProbeCountLimit applies only when Bounded.
	Bounded          bool
	ProbeCountLimit  uint
	Quiet            bool
	ShowFailuresOnly bool

	// Output options
	PrinterConfig tcpprobe.PrinterConfig
	ChartPath     string

	// Runtime options
	NonInteractive bool
}

type options struct {
	port             uint16 // from the config file
	frequency        float64
	duration         string
	quiet            bool
	showTimestamp    bool
	outputJSON       bool
	prettyJSON       bool
	noColor          bool
	saveToCSV        string
	saveToDB         string
	saveChart        string
	showFailuresOnly bool
	nonInteractive   bool
	configFile       string
	showVer          bool
	checkUpdates     bool
}

const (
	flagFrequency        = "freq"
	flagDuration         = "duration"
	flagQuiet            = "quiet"
	flagTimestamp        = "timestamp"
	flagJSON             = "json"
	flagPretty           = "pretty"
	flagNoColor          = "no-color"
	flagCSV              = "csv"
	flagDB               = "db"
	flagChart            = "chart"
	flagShowFailuresOnly = "show-failures-only"
	flagNonInteractive   = "non-interactive"
	flagConfig           = "config"
	flagVersion          = "version"
	flagUpdate           = "update"
)

func registerFlags(fs *pflag.FlagSet, opts *options) {
	fs.Float64VarP(&opts.frequency, flagFrequency, "f", tcpprobe.DefaultFrequency,
		"probes per second. Real number allowed; non-positive values fall back to the default.")
	fs.StringVarP(&opts.duration, flagDuration, "d", "",
		"stop after <seconds>. By default, probing continues until interrupted.")
	fs.BoolVarP(&opts.quiet, flagQuiet, "q", false, "do not print a line per probe, only the summary.")
	fs.BoolVarP(&opts.showTimestamp, flagTimestamp, "D", false, "show timestamp for each probe in the output.")
	fs.BoolVarP(&opts.outputJSON, flagJSON, "j", false, "output in JSON format.")
	fs.BoolVar(&opts.prettyJSON, flagPretty, false,
		"use indentation when using json output format. No effect without the '-j' flag.")
	fs.BoolVar(&opts.noColor, flagNoColor, false, "do not colorize output.")
	fs.StringVar(&opts.saveToCSV, flagCSV, "",
		"path and file name to store output to a CSV file. The stats will be saved with the same name and `_stats` suffix.")
	fs.StringVar(&opts.saveToDB, flagDB, "", "path and file name to store output to a sqlite3 database.")
	fs.StringVar(&opts.saveChart, flagChart, "", "path of a PNG file to draw the latency chart into when the run ends.")
	fs.BoolVar(&opts.showFailuresOnly, flagShowFailuresOnly, false, "Show only the failed probes.")
	fs.BoolVar(&opts.nonInteractive, flagNonInteractive, false,
		"do not read stdin, for instance when running in the background using nohup or disown.")
	fs.StringVarP(&opts.configFile, flagConfig, "c", "", "YAML file with default settings. Flags take precedence.")
	fs.BoolVarP(&opts.showVer, flagVersion, "v", false, "show version and exit.")
	fs.BoolVarP(&opts.checkUpdates, flagUpdate, "u", false, "check for updates and exit.")
	fs.BoolP("help", "h", false, "show this help and exit.")
}

// newCommand builds the root command. parsed receives the positional
// arguments once flags have been parsed successfully.
func newCommand(opts *options, parsed *[]string, helped *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tcpprobe <host> [port]",
		Short:         "Measure TCP connect latency of a host:port",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			*parsed = args
			return nil
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.Flags().SortFlags = false
	registerFlags(cmd.Flags(), opts)

	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		*helped = true
	})

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsageRequested, err)
	})

	return cmd
}

// ProcessUserInput parses command-line arguments into a ProberConfig.
// Returns ErrHelpRequested, ErrVersionRequested, or ErrUpdateCheckRequested
// for special control flow. Errors wrapping ErrUsageRequested mean the
// usage should be shown.
func ProcessUserInput(args []string) (ProberConfig, error) {
	var (
		opts       options
		positional []string
		helped     bool
	)

	// cobra falls back to os.Args on nil
	if args == nil {
		args = []string{}
	}

	cmd := newCommand(&opts, &positional, &helped)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err != nil {
		return ProberConfig{}, err
	}

	if helped {
		return ProberConfig{}, ErrHelpRequested
	}

	if opts.showVer {
		return ProberConfig{}, ErrVersionRequested
	}

	if opts.checkUpdates {
		return ProberConfig{}, ErrUpdateCheckRequested
	}

	if len(positional) == 0 {
		return ProberConfig{}, fmt.Errorf("%w: %w", ErrUsageRequested, ErrMissingHost)
	}

	if len(positional) > 2 {
		return ProberConfig{}, fmt.Errorf("%w: too many arguments", ErrUsageRequested)
	}

	if opts.configFile != "" {
		file, err := config.Load(opts.configFile)
		if err != nil {
			return ProberConfig{}, err
		}
		applyConfigFile(cmd.Flags(), &opts, file)
	}

	return buildConfig(positional, opts)
}

// applyConfigFile copies the values of file into opts for every flag that
// was not given explicitly.
func applyConfigFile(fs *pflag.FlagSet, opts *options, file config.File) {
	unset := func(name string) bool {
		return !fs.Changed(name)
	}

	opts.port = uint16(file.Port)

	if unset(flagFrequency) && file.Frequency != 0 {
		opts.frequency = file.Frequency
	}
	if unset(flagDuration) && file.Duration != 0 {
		opts.duration = strconv.FormatUint(uint64(file.Duration), 10)
	}
	if unset(flagQuiet) {
		opts.quiet = opts.quiet || file.Quiet
	}
	if unset(flagTimestamp) {
		opts.showTimestamp = opts.showTimestamp || file.Timestamp
	}
	if unset(flagShowFailuresOnly) {
		opts.showFailuresOnly = opts.showFailuresOnly || file.ShowFailuresOnly
	}
	if unset(flagNoColor) {
		opts.noColor = opts.noColor || file.NoColor
	}
	if unset(flagNonInteractive) {
		opts.nonInteractive = opts.nonInteractive || file.NonInteractive
	}
	if unset(flagJSON) {
		opts.outputJSON = opts.outputJSON || file.JSON
	}
	if unset(flagPretty) {
		opts.prettyJSON = opts.prettyJSON || file.Pretty
	}
	if unset(flagCSV) && file.CSV != "" {
		opts.saveToCSV = file.CSV
	}
	if unset(flagDB) && file.DB != "" {
		opts.saveToDB = file.DB
	}
	if unset(flagChart) && file.Chart != "" {
		opts.saveChart = file.Chart
	}
}

// convertAndValidatePort validates and returns the TCP port
func convertAndValidatePort(portStr string) (uint16, error) {
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
	}

	return uint16(port), nil
}

func convertAndValidateDuration(durationStr string) (uint, error) {
	if durationStr == "" {
		return 0, nil
	}

	duration, err := strconv.ParseUint(durationStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, durationStr)
	}

	return uint(duration), nil
}

func buildConfig(positional []string, opts options) (ProberConfig, error) {
	port := DefaultPort
	if opts.port != 0 {
		port = opts.port
	}

	if len(positional) == 2 {
		p, err := convertAndValidatePort(positional[1])
		if err != nil {
			return ProberConfig{}, err
		}
		port = p
	}

	duration, err := convertAndValidateDuration(opts.duration)
	if err != nil {
		return ProberConfig{}, err
	}

	frequency := opts.frequency
	if frequency <= 0 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		frequency = tcpprobe.DefaultFrequency
	}

	interval := tcpprobe.IntervalFromFrequency(frequency)
	hostname := positional[0]

	return ProberConfig{
		Hostname:         hostname,
		Port:             port,
		Frequency:        frequency,
		Interval:         interval,
		Timeout:          tcpprobe.TimeoutFromInterval(interval),
		Duration:         duration,
		Bounded:          duration > 0,
		ProbeCountLimit:  tcpprobe.ProbeCount(duration, frequency),
		Quiet:            opts.quiet,
		ShowFailuresOnly: opts.showFailuresOnly,
		ChartPath:        opts.saveChart,
		NonInteractive:   opts.nonInteractive,
		PrinterConfig: tcpprobe.PrinterConfig{
			OutputJSON:    opts.outputJSON,
			PrettyJSON:    opts.prettyJSON,
			NoColor:       opts.noColor,
			WithTimestamp: opts.showTimestamp,
			OutputDBPath:  opts.saveToDB,
			OutputCSVPath: opts.saveToCSV,
			Target:        hostname,
			Port:          port,
		},
	}, nil
}
