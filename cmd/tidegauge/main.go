package main

import (
	"fmt"
	"os"

	"github.com/chrissnell/tidegauge/internal/cli"
	"github.com/chrissnell/tidegauge/internal/log"
)

func main() {
	defer log.Sync()

	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Sync()
		os.Exit(1)
	}
}
