package tcpprobe_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcpprobe/tcpprobe"
	"github.com/tcpprobe/tcpprobe/printers"
)

func TestNewPrinter(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		cfg   tcpprobe.PrinterConfig
		check func(t *testing.T, p tcpprobe.Printer)
	}{
		{
			name: "color by default",
			cfg:  tcpprobe.PrinterConfig{},
			check: func(t *testing.T, p tcpprobe.Printer) {
				assert.IsType(t, &printers.ColorPrinter{}, p)
			},
		},
		{
			name: "plain without color",
			cfg:  tcpprobe.PrinterConfig{NoColor: true},
			check: func(t *testing.T, p tcpprobe.Printer) {
				assert.IsType(t, &printers.PlainPrinter{}, p)
			},
		},
		{
			name: "json wins over files",
			cfg:  tcpprobe.PrinterConfig{OutputJSON: true, PrettyJSON: true, OutputCSVPath: filepath.Join(dir, "a")},
			check: func(t *testing.T, p tcpprobe.Printer) {
				assert.IsType(t, &printers.JSONPrinter{}, p)
			},
		},
		{
			name: "database",
			cfg:  tcpprobe.PrinterConfig{OutputDBPath: filepath.Join(dir, "b"), Target: "127.0.0.1", Port: 80},
			check: func(t *testing.T, p tcpprobe.Printer) {
				assert.IsType(t, &printers.DatabasePrinter{}, p)
			},
		},
		{
			name: "csv",
			cfg:  tcpprobe.PrinterConfig{OutputCSVPath: filepath.Join(dir, "c"), WithTimestamp: true},
			check: func(t *testing.T, p tcpprobe.Printer) {
				assert.IsType(t, &printers.CSVPrinter{}, p)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Output = &bytes.Buffer{}

			p, err := tcpprobe.NewPrinter(tt.cfg)
			require.NoError(t, err)
			tt.check(t, p)
			assert.NoError(t, p.Shutdown())
		})
	}
}

func TestNewPrinter_Errors(t *testing.T) {
	_, err := tcpprobe.NewPrinter(tcpprobe.PrinterConfig{PrettyJSON: true})
	assert.ErrorIs(t, err, tcpprobe.ErrPrettyWithoutJSON)

	_, err = tcpprobe.NewPrinter(tcpprobe.PrinterConfig{OutputCSVPath: filepath.Join(t.TempDir(), "no", "such", "dir")})
	assert.Error(t, err)
}

func TestNewPrinter_WritesToOutput(t *testing.T) {
	var out bytes.Buffer

	p, err := tcpprobe.NewPrinter(tcpprobe.PrinterConfig{NoColor: true, Output: &out})
	require.NoError(t, err)

	prober := tcpprobe.NewProber(&mockPinger{host: "127.0.0.1", port: 9},
		tcpprobe.WithPrinter(p),
		tcpprobe.WithFrequency(100),
		tcpprobe.WithProbeCount(2))

	stats, err := prober.Probe(t.Context())
	require.NoError(t, err)
	p.PrintStatistics(stats.Summarize())

	assert.Contains(t, out.String(), "TCPING 127.0.0.1:9 with 100.00 probes per second\n")
	assert.Contains(t, out.String(), "tcp_seq=2 time=")
	assert.Contains(t, out.String(), "2 probes transmitted, 2 received, 0% packet loss")
}
