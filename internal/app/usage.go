package app

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/go-github/v45/github"
)

// Version is set at compile time
var Version = "0.1.0"

const (
	Owner = "tcpprobe"
	Repo  = "tcpprobe"
)

// PrintUsage prints how tcpprobe should be run
func PrintUsage(w io.Writer, executableName string) {
	var helped bool
	cmd := newCommand(&options{}, new([]string), &helped)

	fmt.Fprintf(w, "\nTCPPROBE version %s\n\n", Version)
	fmt.Fprintf(w, "Try running %s like:\n", executableName)
	fmt.Fprintf(w, "%s <hostname/ip> [port number]. For example:\n", executableName)
	fmt.Fprintf(w, "%s 192.0.2.10 443 -f 2 -d 10\n", executableName)
	fmt.Fprintf(w, "\n[optional flags]\n")
	fmt.Fprint(w, cmd.Flags().FlagUsages())
}

func compareVersions(v1, v2 string) int {
	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")

	for i := range min(len(parts1), len(parts2)) {
		n1, _ := strconv.Atoi(parts1[i])
		n2, _ := strconv.Atoi(parts2[i])

		if n1 < n2 {
			return -1
		}
		if n1 > n2 {
			return 1
		}
	}

	// for cases in which version numbers differ in length
	if len(parts1) < len(parts2) {
		return -1
	}

	if len(parts1) > len(parts2) {
		return 1
	}

	return 0
}

// PrintVersion displays the version
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "TCPPROBE version %s\n", Version)
}

var releaseTag = regexp.MustCompile(`^v?(\d+\.\d+\.\d+)$`)

// updateMessage compares the running version with the latest release tag.
func updateMessage(latestTagName string) (string, error) {
	latestVersion := releaseTag.FindStringSubmatch(latestTagName)
	if len(latestVersion) == 0 {
		return "", fmt.Errorf("version name does not match expected format: %s", latestTagName)
	}

	switch compareVersions(Version, latestVersion[1]) {
	case -1:
		return fmt.Sprintf("Found newer version %s\nPlease update TCPPROBE from the URL below:\nhttps://github.com/%s/%s/releases/tag/%s",
			latestVersion[1], Owner, Repo, latestTagName), nil
	case 1:
		return fmt.Sprintf("Current version %s is newer than the latest release %s",
			Version, latestVersion[1]), nil
	default:
		return fmt.Sprintf("TCPPROBE is on the latest version: %s", Version), nil
	}
}

// CheckForUpdates checks for newer versions of tcpprobe and returns update message
func CheckForUpdates(ctx context.Context) (string, error) {
	c := github.NewClient(nil)

	// unauthenticated requests from the same IP are limited to 60 per hour
	latestRelease, _, err := c.Repositories.GetLatestRelease(ctx, Owner, Repo)
	if err != nil {
		return "", fmt.Errorf("check for updates: %w", err)
	}

	return updateMessage(latestRelease.GetTagName())
}
