package cmd

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/jjenkins/rulescout/internal/config"
	"github.com/jjenkins/rulescout/internal/handlers"
	"github.com/jjenkins/rulescout/internal/store"
	"github.com/spf13/cobra"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sync audit trail over HTTP",
	Long: `Serve exposes the recorded sync runs and per-rule change history as JSON.
Requires DATABASE_URL to point at the audit database written by the
discover and refresh jobs.`,
	Run: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()

		// Use PORT env var if set, otherwise use flag value
		if envPort := os.Getenv("PORT"); envPort != "" && port == "8080" {
			port = envPort
		}

		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL environment variable is required")
		}

		db, err := store.NewDB(dsn)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		audit := store.NewAuditStore(db)
		if err := audit.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare audit schema: %v", err)
		}

		app := fiber.New(fiber.Config{
			AppName: "Rule Scout",
		})

		app.Use(logger.New())

		app.Get("/runs", handlers.RunsHandler(audit))
		app.Get("/runs/:id/changes", handlers.RunChangesHandler(audit))
		app.Get("/rules/:number/changes", handlers.RuleChangesHandler(audit))

		log.Printf("Starting server on :%s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
}
