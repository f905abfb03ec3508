package http

import (
	natsadapter "github.com/tiuub/RailwayHistoryTelegramBot/internal/adapters/nats"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/adapters/postgres"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/adapters/valkey"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Listings *usecases.ListingService
	DB       *postgres.DB
	NATS     *natsadapter.Publisher
	Cache    *valkey.Cache
}
