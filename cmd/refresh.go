package cmd

import (
	"log"
	"os"

	"github.com/jjenkins/rulescout/internal/config"
	"github.com/jjenkins/rulescout/internal/notion"
	"github.com/jjenkins/rulescout/internal/regsgov"
	"github.com/jjenkins/rulescout/internal/service"
	"github.com/jjenkins/rulescout/internal/store"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-check active rules for docket and comment period changes",
	Long: `Refresh selects recorded rules whose comment period reaches into the
trailing window (or that have no comment end date yet), re-fetches their
Regulations.gov cross-references, and updates only the fields that
actually changed: docket documents, dockets, keywords, RINs, and the
comment end date. The old and new values are printed before each write.

Meant to run on a schedule, e.g. from cron. Configuration comes from the
environment; set REFRESH_DOCKET_METADATA=true to recompute docket
keywords and RINs on every pass.`,
	Run: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	regsGov := regsgov.NewClient(cfg.RegulationsGovAPIKey, cfg.RegsGovRequestInterval)
	rules := store.NewRuleStore(notion.NewClient(cfg.NotionAPIKey), cfg.NotionRuleDatabase)

	audit, closeAudit := openAudit(ctx, cfg.DatabaseURL)
	defer closeAudit()

	refresher := service.NewRefresher(regsGov, rules, audit, cfg.RefreshWindow, cfg.RefreshDocketMetadata)

	stats, err := refresher.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Refresh cancelled")
			os.Exit(1)
		}
		log.Fatalf("Refresh failed: %v", err)
	}
	refresher.PrintSummary(stats)

	if stats.Failed > 0 {
		os.Exit(1)
	}
}
