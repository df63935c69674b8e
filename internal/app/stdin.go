package app

import (
	"bufio"
	"context"
	"io"
)

// monitorSTDIN sends a request on requests whenever an empty line ('Enter')
// is read from r. requests is closed once r is exhausted.
func monitorSTDIN(ctx context.Context, r io.Reader, requests chan<- struct{}) {
	defer close(requests)

	reader := bufio.NewReader(r)
	for {
		input, err := reader.ReadString('\n')

		if input == "\n" || input == "\r" || input == "\r\n" {
			select {
			case requests <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}

		if err != nil {
			return
		}
	}
}
