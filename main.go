package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := NewDebateBoard().Run(os.Args[1:]); err != nil {
		slog.Error("debateboard stopped", "err", err)
		os.Exit(1)
	}
}
