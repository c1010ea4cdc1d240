package main

import (
	"os"

	"github.com/danmuck/ccview/internal/observability"
)

func main() {
	observability.InitLogger("ccview")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
