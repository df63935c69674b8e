// Package main enables tcpprobe to execute as a CLI tool
package main

import (
	"os"

	"github.com/tcpprobe/tcpprobe/internal/app"
)

func main() {
	os.Exit(app.Run())
}
