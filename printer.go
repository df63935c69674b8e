package tcpprobe

import (
	"errors"
	"io"

	"github.com/tcpprobe/tcpprobe/printers"
	"github.com/tcpprobe/tcpprobe/statistics"
)

var (
	_ Printer = (*printers.ColorPrinter)(nil)
	_ Printer = (*printers.JSONPrinter)(nil)
	_ Printer = (*printers.CSVPrinter)(nil)
	_ Printer = (*printers.DatabasePrinter)(nil)
	_ Printer = (*printers.PlainPrinter)(nil)
)

var ErrPrettyWithoutJSON = errors.New("--pretty has no effect without the -j flag")

// Printer defines a set of methods that any printer implementation must provide.
// Printers are responsible for outputting information, but should not modify data or perform calculations.
type Printer interface {
	// PrintStart prints the first message to indicate the target's address and port.
	// This message is printed only once, at the very beginning.
	PrintStart(s *statistics.Statistics)

	// PrintProbeSuccess should print a message after each successful probe.
	PrintProbeSuccess(s *statistics.Statistics, o statistics.Outcome)

	// PrintProbeFailure should print a message after each failed probe.
	PrintProbeFailure(s *statistics.Statistics, o statistics.Outcome)

	// PrintStatistics should print the summary block.
	//
	// This is being called on exit and when user hits "Enter".
	PrintStatistics(s statistics.Summary)

	// PrintError should print an error message.
	// Printer should also apply \n to the given string, if needed.
	PrintError(format string, args ...any)

	// Shutdown flushes and releases whatever the printer holds.
	Shutdown() error
}

// NewPrinter creates and returns an appropriate printer based on configuration
func NewPrinter(cfg PrinterConfig) (Printer, error) {
	if cfg.PrettyJSON && !cfg.OutputJSON {
		return nil, ErrPrettyWithoutJSON
	}

	switch {
	case cfg.OutputJSON:
		opts := []printers.JSONPrinterOption{
			printers.WithOutput[*printers.JSONPrinter](cfg.Output),
			printers.WithErrorOutput[*printers.JSONPrinter](cfg.ErrOutput),
		}
		if cfg.PrettyJSON {
			opts = append(opts, printers.WithPrettyJSON())
		}
		if cfg.WithTimestamp {
			opts = append(opts, printers.WithTimestamp[*printers.JSONPrinter]())
		}
		return printers.NewJSONPrinter(opts...), nil

	case cfg.OutputDBPath != "":
		return printers.NewDatabasePrinter(cfg.Target, cfg.Port, cfg.OutputDBPath,
			printers.WithOutput[*printers.DatabasePrinter](cfg.Output),
			printers.WithErrorOutput[*printers.DatabasePrinter](cfg.ErrOutput))

	case cfg.OutputCSVPath != "":
		opts := []printers.CSVPrinterOption{
			printers.WithOutput[*printers.CSVPrinter](cfg.Output),
			printers.WithErrorOutput[*printers.CSVPrinter](cfg.ErrOutput),
		}
		if cfg.WithTimestamp {
			opts = append(opts, printers.WithTimestamp[*printers.CSVPrinter]())
		}
		return printers.NewCSVPrinter(cfg.OutputCSVPath, opts...)

	case cfg.NoColor:
		opts := []printers.PlainPrinterOption{
			printers.WithOutput[*printers.PlainPrinter](cfg.Output),
			printers.WithErrorOutput[*printers.PlainPrinter](cfg.ErrOutput),
		}
		if cfg.WithTimestamp {
			opts = append(opts, printers.WithTimestamp[*printers.PlainPrinter]())
		}
		return printers.NewPlainPrinter(opts...), nil

	default:
		opts := []printers.ColorPrinterOption{
			printers.WithOutput[*printers.ColorPrinter](cfg.Output),
			printers.WithErrorOutput[*printers.ColorPrinter](cfg.ErrOutput),
		}
		if cfg.WithTimestamp {
			opts = append(opts, printers.WithTimestamp[*printers.ColorPrinter]())
		}
		return printers.NewColorPrinter(opts...), nil
	}
}

// PrinterConfig holds all configuration options for Printer creation
type PrinterConfig struct {
	OutputJSON    bool
	PrettyJSON    bool
	NoColor       bool
	WithTimestamp bool
	OutputDBPath  string
	OutputCSVPath string
	Target        string
	Port          uint16
	Output        io.Writer // nil means os.Stdout
	ErrOutput     io.Writer // nil means os.Stderr
}
