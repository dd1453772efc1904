package handlers

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/kractero/cardex/cardex/services"
)

// OriginHeader carries the caller's self-declared origin label, used only
// for observability tagging on cache events.
const OriginHeader = "X-Origin"

type App struct {
	Cards   *services.CardService
	Version string
}

// Health is the liveness probe.
func Health() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// CardsQuery serves GET /api: the clause-filtered, cached, status-overlaid
// card query.
func CardsQuery(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := services.QueryRequest{
			Select:  c.Query("select"),
			From:    c.Query("from"),
			Clauses: c.Query("clauses"),
			Limit:   c.QueryInt("limit", services.DefaultPageSize),
			Page:    c.QueryInt("page", 1),
			Origin:  c.Get(OriginHeader),
		}

		result, err := app.Cards.Query(c.Context(), req)
		if err != nil {
			slog.Error("Card query failed",
				slog.String("type", "req"),
				slog.String("clauses", req.Clauses),
				slog.String("from", req.From),
				slog.String("select", req.Select),
				slog.String("origin", req.Origin),
				slog.Any("error", err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to execute query",
			})
		}

		return c.JSON(result)
	}
}

// CardStatus serves POST /api/cte: bulk status lookup for a single id or an
// array of ids. Ids absent from the snapshot come back false.
func CardStatus(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var raw interface{}
		if err := json.Unmarshal(c.Body(), &raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "body must be an id or an array of ids",
			})
		}

		ids := collectIDs(raw)
		statuses, err := app.Cards.StatusFor(c.Context(), ids, c.Get(OriginHeader))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to resolve statuses",
			})
		}

		return c.JSON(statuses)
	}
}

func collectIDs(raw interface{}) []string {
	values, ok := raw.([]interface{})
	if !ok {
		values = []interface{}{raw}
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		switch id := v.(type) {
		case string:
			ids = append(ids, id)
		case float64:
			ids = append(ids, strconv.FormatInt(int64(id), 10))
		}
	}
	return ids
}
