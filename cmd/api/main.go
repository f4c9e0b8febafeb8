package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
)

// @title Invoice Reimbursement API
// @version 1.0
// @description Upload invoices, annotate them for reimbursement, link supporting documents and export the report.
// @BasePath /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
