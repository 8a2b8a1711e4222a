package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jjenkins/rulescout/internal/config"
	"github.com/jjenkins/rulescout/internal/fedreg"
	"github.com/jjenkins/rulescout/internal/notion"
	"github.com/jjenkins/rulescout/internal/regsgov"
	"github.com/jjenkins/rulescout/internal/service"
	"github.com/jjenkins/rulescout/internal/store"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find newly published proposed rules and create records for them",
	Long: `Discover scans the Federal Register for proposed rules published in the
trailing window, skips rules already recorded (and correction filings),
attaches their Regulations.gov documents and dockets, and creates one
Notion record per new rule.

Meant to run on a schedule, e.g. from cron. Configuration comes from the
environment (NOTION_API_KEY, NOTION_RULE_DATABASE, REGULATIONS_GOV_API_KEY,
optional DATABASE_URL for the audit trail).`,
	Run: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	register := fedreg.NewClient()
	regsGov := regsgov.NewClient(cfg.RegulationsGovAPIKey, cfg.RegsGovRequestInterval)
	rules := store.NewRuleStore(notion.NewClient(cfg.NotionAPIKey), cfg.NotionRuleDatabase)

	audit, closeAudit := openAudit(ctx, cfg.DatabaseURL)
	defer closeAudit()

	discoverer := service.NewDiscoverer(register, regsGov, rules, audit, cfg.DiscoveryWindow)

	stats, err := discoverer.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Discovery cancelled")
			os.Exit(1)
		}
		log.Fatalf("Discovery failed: %v", err)
	}
	discoverer.PrintSummary(stats)

	if stats.Failed > 0 {
		os.Exit(1)
	}
}

// signalContext returns a context cancelled by SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	return ctx, cancel
}

// openAudit connects the optional Postgres audit store. An empty dsn
// disables auditing.
func openAudit(ctx context.Context, dsn string) (*store.AuditStore, func()) {
	if dsn == "" {
		return nil, func() {}
	}

	db, err := store.NewDB(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to audit database: %v", err)
	}

	audit := store.NewAuditStore(db)
	if err := audit.EnsureSchema(ctx); err != nil {
		db.Close()
		log.Fatalf("Failed to prepare audit schema: %v", err)
	}

	return audit, func() { db.Close() }
}
