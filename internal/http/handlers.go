package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sensorgrid/telemetry/internal/domain"
	"github.com/sensorgrid/telemetry/internal/service"
)

func Register(app *fiber.App, svcs *service.Services) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"service":   "telemetry-api",
			"timestamp": time.Now().UTC(),
		})
	})

	g := app.Group("/api/telemetry")
	g.Post("/", func(c *fiber.Ctx) error { return ingest(c, svcs) })
	g.Get("/", func(c *fiber.Ctx) error { return query(c, svcs) })
	g.Get("/:id", func(c *fiber.Ctx) error { return getByID(c, svcs) })
}

func ingest(c *fiber.Ctx, svcs *service.Services) error {
	var rd domain.TelemetryReading
	if err := c.BodyParser(&rd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	out, err := svcs.Telemetry.Ingest(c.Context(), &rd)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": vErr.Violations})
		}
		var dup *domain.DuplicateError
		if errors.As(err, &dup) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": dup.Error()})
		}
		return internalError(c)
	}

	c.Set("Location", "/api/telemetry/"+strconv.FormatInt(out.ID, 10))
	return c.Status(fiber.StatusCreated).JSON(out)
}

func query(c *fiber.Ctx, svcs *service.Services) error {
	filter := domain.ReadingFilter{
		DeviceID: c.Query("deviceId"),
		Type:     c.Query("type"),
	}

	start, err := parseDate(c.Query("startDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid startDate"})
	}
	end, err := parseDate(c.Query("endDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid endDate"})
	}
	filter.Start, filter.End = start, end

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 10)

	result, err := svcs.Telemetry.Query(c.Context(), filter, page, pageSize)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(result)
}

func getByID(c *fiber.Ctx, svcs *service.Services) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	rd, err := svcs.Telemetry.GetByID(c.Context(), id)
	if err != nil {
		return internalError(c)
	}
	if rd == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.JSON(rd)
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "an unexpected error occurred"})
}
