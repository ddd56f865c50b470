package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := newRootCommand().Execute()
	if err == nil {
		return 0
	}
	// An interrupt already ends the daemon loop cleanly; exit quietly.
	if errors.Is(err, context.Canceled) {
		return 1
	}
	fmt.Fprintln(os.Stderr, "importarr:", err)
	return 1
}
