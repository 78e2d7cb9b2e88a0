// Command pricecalc prices line items from the terminal with the same engine
// the API uses.
package main

import (
	"os"

	"autoshop_backend/platform/logger"
)

func main() {
	log := logger.New(os.Getenv("APP_ENV")).WithComponent("pricecalc")
	if err := newRootCmd().Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
