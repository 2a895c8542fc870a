package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		slog.Error("exiting", slog.Any("err", err))
		os.Exit(1)
	}
}
