// Package app wires the command line to the prober.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/tcpprobe/tcpprobe"
	"github.com/tcpprobe/tcpprobe/charts"
	"github.com/tcpprobe/tcpprobe/internal/dns"
	"github.com/tcpprobe/tcpprobe/pingers"
)

const (
	exitOK       = 0
	exitConfig   = 1
	exitResource = 2
)

// resolver looks up a hostname target once per run.
var resolver dns.Resolver = net.DefaultResolver

// streams are the standard file handles of one invocation.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// Run executes the tcpprobe application and returns an exit code
func Run() int {
	ctx := setupSignalHandler(context.Background())

	return run(ctx, filepath.Base(os.Args[0]), os.Args[1:], streams{
		in:  os.Stdin,
		out: os.Stdout,
		err: os.Stderr,
	})
}

func run(ctx context.Context, executableName string, args []string, std streams) int {
	config, err := ProcessUserInput(args)
	if err != nil {
		return handleError(ctx, err, executableName, std)
	}

	ip, err := dns.ResolveHostname(ctx, resolver, config.Hostname)
	if err != nil {
		return handleError(ctx, err, executableName, std)
	}

	printerConfig := config.PrinterConfig
	printerConfig.Output = std.out
	printerConfig.ErrOutput = std.err
	printerConfig.NoColor = printerConfig.NoColor || !isTerminal(std.out)

	printer, err := tcpprobe.NewPrinter(printerConfig)
	if err != nil {
		if errors.Is(err, tcpprobe.ErrPrettyWithoutJSON) {
			return handleError(ctx, err, executableName, std)
		}
		return handleError(ctx, fmt.Errorf("%w: %w", ErrResource, err), executableName, std)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pinger := pingers.NewTCPPinger(ip, config.Port,
		pingers.WithHostname(config.Hostname),
		pingers.WithTimeout(config.Timeout))
	prober := buildProber(ctx, pinger, printer, config, std.in)

	stats, err := prober.Probe(ctx)
	if err != nil {
		printer.PrintError("%v", err)
		printer.Shutdown()
		return exitConfig
	}

	printer.PrintStatistics(stats.Summarize())

	code := exitOK

	if config.ChartPath != "" {
		err := charts.WriteLatencyChart(config.ChartPath, &stats)
		switch {
		case errors.Is(err, charts.ErrNotEnoughSamples):
			printer.PrintError("chart not written: %v", err)
		case err != nil:
			printer.PrintError("%v", err)
			code = exitResource
		}
	}

	if err := printer.Shutdown(); err != nil {
		fmt.Fprintf(std.err, "error: %v\n", err)
		code = exitResource
	}

	return code
}

func buildProber(ctx context.Context, pinger *pingers.TCPPinger, printer tcpprobe.Printer, config ProberConfig, stdin io.Reader) *tcpprobe.Prober {
	opts := []tcpprobe.ProberOption{
		tcpprobe.WithPrinter(printer),
		tcpprobe.WithFrequency(config.Frequency),
		tcpprobe.WithQuiet(config.Quiet),
		tcpprobe.WithShowFailuresOnly(config.ShowFailuresOnly),
	}

	if config.Bounded {
		opts = append(opts, tcpprobe.WithProbeCount(config.ProbeCountLimit))
	}

	if !config.NonInteractive && stdin != nil {
		requests := make(chan struct{})
		go monitorSTDIN(ctx, stdin, requests)
		opts = append(opts, tcpprobe.WithStatsRequests(requests))
	}

	return tcpprobe.NewProber(pinger, opts...)
}

func setupSignalHandler(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func handleError(ctx context.Context, err error, executableName string, std streams) int {
	if err == nil {
		return exitOK
	}

	switch {
	case errors.Is(err, ErrHelpRequested):
		PrintUsage(std.out, executableName)
		return exitOK

	case errors.Is(err, ErrVersionRequested):
		PrintVersion(std.out)
		return exitOK

	case errors.Is(err, ErrUpdateCheckRequested):
		msg, checkErr := CheckForUpdates(ctx)
		if checkErr != nil {
			fmt.Fprintf(std.err, "error: %v\n", checkErr)
			return exitConfig
		}
		fmt.Fprintln(std.out, msg)
		return exitOK

	case errors.Is(err, ErrUsageRequested):
		msg := strings.TrimPrefix(err.Error(), ErrUsageRequested.Error()+": ")
		fmt.Fprintf(std.err, "error: %s\n", msg)
		PrintUsage(std.err, executableName)
		return exitConfig

	case errors.Is(err, ErrResource):
		fmt.Fprintf(std.err, "error: %v\n", err)
		return exitResource
	}

	fmt.Fprintf(std.err, "error: %v\n", err)
	return exitConfig
}
