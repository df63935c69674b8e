package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcpprobe/tcpprobe/internal/app"
)

func TestProcessUserInput_Defaults(t *testing.T) {
	config, err := app.ProcessUserInput([]string{"192.0.2.1"})
	require.NoError(t, err)

	assert.Equal(t, "192.0.2.1", config.Hostname)
	assert.Equal(t, app.DefaultPort, config.Port)
	assert.Equal(t, 1.0, config.Frequency)
	assert.Equal(t, time.Second, config.Interval)
	assert.Equal(t, 800*time.Millisecond, config.Timeout)
	assert.False(t, config.Bounded)
	assert.Zero(t, config.ProbeCountLimit)
	assert.False(t, config.Quiet)
	assert.Equal(t, "192.0.2.1", config.PrinterConfig.Target)
	assert.Equal(t, app.DefaultPort, config.PrinterConfig.Port)
}

func TestProcessUserInput_Flags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, c app.ProberConfig)
	}{
		{
			name: "short flags",
			args: []string{"10.0.0.1", "22", "-f", "2", "-d", "3", "-q"},
			check: func(t *testing.T, c app.ProberConfig) {
				assert.Equal(t, uint16(22), c.Port)
				assert.Equal(t, 500*time.Millisecond, c.Interval)
				assert.Equal(t, 400*time.Millisecond, c.Timeout)
				assert.True(t, c.Bounded)
				assert.Equal(t, uint(6), c.ProbeCountLimit)
				assert.True(t, c.Quiet)
			},
		},
		{
			name: "bounded run shorter than one interval",
			args: []string{"10.0.0.1", "-f", "0.4", "-d", "1"},
			check: func(t *testing.T, c app.ProberConfig) {
				assert.True(t, c.Bounded)
				assert.Zero(t, c.ProbeCountLimit)
			},
		},
		{
			name: "long flags interspersed",
			args: []string{"--freq", "0.5", "10.0.0.1", "--duration", "5", "8080", "--quiet"},
			check: func(t *testing.T, c app.ProberConfig) {
				assert.Equal(t, uint16(8080), c.Port)
				assert.Equal(t, 2*time.Second, c.Interval)
				assert.Equal(t, uint(3), c.ProbeCountLimit) // round(2.5)
				assert.True(t, c.Quiet)
			},
		},
		{
			name: "non-positive frequency falls back to default",
			args: []string{"10.0.0.1", "-f", "-3"},
			check: func(t *testing.T, c app.ProberConfig) {
				assert.Equal(t, 1.0, c.Frequency)
				assert.Equal(t, time.Second, c.Interval)
			},
		},
		{
			name: "high frequency clamps the timeout",
			args: []string{"10.0.0.1", "-f", "1000"},
			check: func(t *testing.T, c app.ProberConfig) {
				assert.Equal(t, time.Millisecond, c.Interval)
				assert.Equal(t, 100*time.Millisecond, c.Timeout)
			},
		},
		{
			name: "output options",
			args: []string{"10.0.0.1", "-D", "-j", "--pretty", "--no-color", "--csv", "a.csv", "--db", "b.db",
				"--chart", "c.png", "--show-failures-only", "--non-interactive"},
			check: func(t *testing.T, c app.ProberConfig) {
				assert.True(t, c.PrinterConfig.WithTimestamp)
				assert.True(t, c.PrinterConfig.OutputJSON)
				assert.True(t, c.PrinterConfig.PrettyJSON)
				assert.True(t, c.PrinterConfig.NoColor)
				assert.Equal(t, "a.csv", c.PrinterConfig.OutputCSVPath)
				assert.Equal(t, "b.db", c.PrinterConfig.OutputDBPath)
				assert.Equal(t, "c.png", c.ChartPath)
				assert.True(t, c.ShowFailuresOnly)
				assert.True(t, c.NonInteractive)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := app.ProcessUserInput(tt.args)
			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

func TestProcessUserInput_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr []error
	}{
		{name: "no arguments", args: nil, wantErr: []error{app.ErrUsageRequested, app.ErrMissingHost}},
		{name: "only flags", args: []string{"-q"}, wantErr: []error{app.ErrUsageRequested, app.ErrMissingHost}},
		{name: "too many arguments", args: []string{"a", "1", "b"}, wantErr: []error{app.ErrUsageRequested}},
		{name: "port not a number", args: []string{"a", "https"}, wantErr: []error{app.ErrInvalidPort}},
		{name: "port zero", args: []string{"a", "0"}, wantErr: []error{app.ErrInvalidPort}},
		{name: "port too large", args: []string{"a", "65536"}, wantErr: []error{app.ErrInvalidPort}},
		{name: "negative duration", args: []string{"a", "-d", "-1"}, wantErr: []error{app.ErrInvalidDuration}},
		{name: "fractional duration", args: []string{"a", "-d", "1.5"}, wantErr: []error{app.ErrInvalidDuration}},
		{name: "frequency not a number", args: []string{"a", "-f", "fast"}, wantErr: []error{app.ErrUsageRequested}},
		{name: "unknown flag", args: []string{"a", "--bogus"}, wantErr: []error{app.ErrUsageRequested}},
		{name: "help", args: []string{"-h"}, wantErr: []error{app.ErrHelpRequested}},
		{name: "long help with host", args: []string{"a", "--help"}, wantErr: []error{app.ErrHelpRequested}},
		{name: "version", args: []string{"-v"}, wantErr: []error{app.ErrVersionRequested}},
		{name: "update", args: []string{"--update"}, wantErr: []error{app.ErrUpdateCheckRequested}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.ProcessUserInput(tt.args)

			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestProcessUserInput_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tcpprobe.yml")
	content := "port: 8443\nfrequency: 4\nduration: 2\nquiet: true\ncsv: from-file.csv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Run("file supplies defaults", func(t *testing.T) {
		config, err := app.ProcessUserInput([]string{"10.0.0.1", "-c", path})
		require.NoError(t, err)

		assert.Equal(t, uint16(8443), config.Port)
		assert.Equal(t, 4.0, config.Frequency)
		assert.Equal(t, uint(8), config.ProbeCountLimit)
		assert.True(t, config.Quiet)
		assert.Equal(t, "from-file.csv", config.PrinterConfig.OutputCSVPath)
	})

	t.Run("flags and positional port win", func(t *testing.T) {
		config, err := app.ProcessUserInput([]string{"10.0.0.1", "22", "--config", path, "-f", "1", "--csv", "flag.csv"})
		require.NoError(t, err)

		assert.Equal(t, uint16(22), config.Port)
		assert.Equal(t, 1.0, config.Frequency)
		assert.Equal(t, uint(2), config.ProbeCountLimit)
		assert.Equal(t, "flag.csv", config.PrinterConfig.OutputCSVPath)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := app.ProcessUserInput([]string{"10.0.0.1", "-c", filepath.Join(t.TempDir(), "nope.yml")})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
