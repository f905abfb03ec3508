// Package http exposes the admin and export API next to the bot:
// health, metrics, aggregate stats and per-user journey export.
package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// StatsHandler reports row counts of the core tables.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not configured")
		}

		var users, stations, segments, journeys, userJourneys int64
		err := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM users),
				(SELECT count(*) FROM stations),
				(SELECT count(*) FROM segments),
				(SELECT count(*) FROM journeys),
				(SELECT count(*) FROM user_journeys)
		`).Scan(&users, &stations, &segments, &journeys, &userJourneys)
		if err != nil {
			return errInternal(c, "stats query failed")
		}

		return c.JSON(fiber.Map{
			"users":         users,
			"stations":      stations,
			"segments":      segments,
			"journeys":      journeys,
			"user_journeys": userJourneys,
		})
	}
}

// UserJourneysHandler exports a user's journey history, paginated.
func UserJourneysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Params("username")
		if username == "" {
			return errBadRequest(c, "username is required")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", defaultLimit)
		if offset < 0 {
			return errBadRequest(c, "offset must be >= 0")
		}
		if limit <= 0 || limit > maxLimit {
			limit = defaultLimit
		}

		summaries, err := deps.Listings.ListByUsername(c.Context(), username)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return errNotFound(c, "unknown user")
			}
			return errInternal(c, "listing failed")
		}

		total := len(summaries)
		if offset > total {
			offset = total
		}
		end := offset + limit
		if end > total {
			end = total
		}
		page := summaries[offset:end]

		p := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, p)
		return c.JSON(PaginatedResponse{Data: page, Pagination: p})
	}
}
