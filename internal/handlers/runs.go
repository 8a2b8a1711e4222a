package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/rulescout/internal/model"
	"github.com/jjenkins/rulescout/internal/store"
)

// RunsHandler lists recent sync runs, newest first
func RunsHandler(audit *store.AuditStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 500 {
			limit = 50
		}

		runs, err := audit.ListRuns(ctx, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading runs")
		}
		if runs == nil {
			runs = []model.SyncRun{}
		}

		return c.JSON(runs)
	}
}

// RunChangesHandler lists the field changes recorded during one run
func RunChangesHandler(audit *store.AuditStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		runID, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid run id")
		}

		changes, err := audit.RunChanges(ctx, runID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading changes")
		}
		if changes == nil {
			changes = []model.FieldChange{}
		}

		return c.JSON(changes)
	}
}

// RuleChangesHandler lists the change history of one rule across runs
func RuleChangesHandler(audit *store.AuditStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		number := c.Params("number")
		if number == "" {
			return c.Status(fiber.StatusBadRequest).SendString("Missing document number")
		}

		changes, err := audit.RuleChanges(ctx, number)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading changes")
		}
		if changes == nil {
			changes = []model.FieldChange{}
		}

		return c.JSON(changes)
	}
}
