package usecases_test

import (
	"context"
	"errors"
	"time"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
)

var errCacheMiss = errors.New("cache miss")

// --- Mock StationRepository ---

type mockStationRepo struct {
	getOrCreateFn func(ctx context.Context, st *domain.Station) (*domain.Station, error)
	getByEVAFn    func(ctx context.Context, eva string) (*domain.Station, error)
}

func (m *mockStationRepo) GetOrCreate(ctx context.Context, st *domain.Station) (*domain.Station, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, st)
	}
	return st, nil
}

func (m *mockStationRepo) GetByEVA(ctx context.Context, eva string) (*domain.Station, error) {
	if m.getByEVAFn != nil {
		return m.getByEVAFn(ctx, eva)
	}
	return nil, nil
}

// --- Mock SegmentRepository ---

type mockSegmentRepo struct {
	getOrCreateFn func(ctx context.Context, seg *domain.Segment) (*domain.Segment, error)
}

func (m *mockSegmentRepo) GetOrCreate(ctx context.Context, seg *domain.Segment) (*domain.Segment, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, seg)
	}
	return seg, nil
}

func (m *mockSegmentRepo) GetBySegmentID(ctx context.Context, segmentID string) (*domain.Segment, error) {
	return nil, nil
}

// --- Mock JourneyRepository ---

type mockJourneyRepo struct {
	getOrCreateFn func(ctx context.Context, j *domain.Journey) (*domain.Journey, error)
	getByIDFn     func(ctx context.Context, id int64) (*domain.Journey, error)
}

func (m *mockJourneyRepo) GetOrCreate(ctx context.Context, j *domain.Journey) (*domain.Journey, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, j)
	}
	return j, nil
}

func (m *mockJourneyRepo) GetByJourneyID(ctx context.Context, journeyID string) (*domain.Journey, error) {
	return nil, nil
}

func (m *mockJourneyRepo) GetByID(ctx context.Context, id int64) (*domain.Journey, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrJourneyNotFound
}

// --- Mock UserRepository ---

type mockUserRepo struct {
	getOrCreateFn    func(ctx context.Context, userID string) (*domain.User, error)
	getByUsernameFn  func(ctx context.Context, username string) (*domain.User, error)
	updateUsernameFn func(ctx context.Context, id int64, username string) error
}

func (m *mockUserRepo) GetOrCreate(ctx context.Context, userID string) (*domain.User, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, userID)
	}
	return &domain.User{ID: 1, UserID: userID, Username: userID}, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) UpdateUsername(ctx context.Context, id int64, username string) error {
	if m.updateUsernameFn != nil {
		return m.updateUsernameFn(ctx, id, username)
	}
	return nil
}

// --- Mock TagRepository ---

type mockTagRepo struct {
	getOrCreateFn func(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
}

func (m *mockTagRepo) GetOrCreate(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, tag)
	}
	created := *tag
	created.ID = 1
	return &created, nil
}

// --- Mock UserJourneyRepository ---

type mockUserJourneyRepo struct {
	getOrCreateFn func(ctx context.Context, uj *domain.UserJourney) (*domain.UserJourney, error)
	findFn        func(ctx context.Context, userID, messageID int64) (*domain.UserJourney, error)
	deleteFn      func(ctx context.Context, userID, journeyID int64) error
	setPriceFn    func(ctx context.Context, userID, journeyID int64, priceCents *int64) error
	setCategoryFn func(ctx context.Context, userID, journeyID int64, tagID *int64) error
	setPurposeFn  func(ctx context.Context, userID, journeyID int64, tagID *int64) error
	listFn        func(ctx context.Context, userID int64) ([]domain.JourneySummary, error)
}

func (m *mockUserJourneyRepo) GetOrCreate(ctx context.Context, uj *domain.UserJourney) (*domain.UserJourney, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, uj)
	}
	return uj, nil
}

func (m *mockUserJourneyRepo) FindByUserAndMessage(ctx context.Context, userID, messageID int64) (*domain.UserJourney, error) {
	if m.findFn != nil {
		return m.findFn(ctx, userID, messageID)
	}
	return nil, domain.ErrJourneyNotFound
}

func (m *mockUserJourneyRepo) Delete(ctx context.Context, userID, journeyID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, journeyID)
	}
	return nil
}

func (m *mockUserJourneyRepo) SetPrice(ctx context.Context, userID, journeyID int64, priceCents *int64) error {
	if m.setPriceFn != nil {
		return m.setPriceFn(ctx, userID, journeyID, priceCents)
	}
	return nil
}

func (m *mockUserJourneyRepo) SetCategory(ctx context.Context, userID, journeyID int64, tagID *int64) error {
	if m.setCategoryFn != nil {
		return m.setCategoryFn(ctx, userID, journeyID, tagID)
	}
	return nil
}

func (m *mockUserJourneyRepo) SetPurpose(ctx context.Context, userID, journeyID int64, tagID *int64) error {
	if m.setPurposeFn != nil {
		return m.setPurposeFn(ctx, userID, journeyID, tagID)
	}
	return nil
}

func (m *mockUserJourneyRepo) ListByUser(ctx context.Context, userID int64) ([]domain.JourneySummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

// --- Mock JourneyProvider ---

type mockProvider struct {
	locationsFn func(ctx context.Context, query string, limit int) ([]domain.ProviderStop, error)
	journeysFn  func(ctx context.Context, fromEVA, toEVA string, departure time.Time, maxTransfers int) ([]domain.ProviderJourney, error)
}

func (m *mockProvider) Locations(ctx context.Context, query string, limit int) ([]domain.ProviderStop, error) {
	if m.locationsFn != nil {
		return m.locationsFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockProvider) Journeys(ctx context.Context, fromEVA, toEVA string, departure time.Time, maxTransfers int) ([]domain.ProviderJourney, error) {
	if m.journeysFn != nil {
		return m.journeysFn(ctx, fromEVA, toEVA, departure, maxTransfers)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	savedFn   func(ctx context.Context, ev *domain.JourneyEvent) error
	deletedFn func(ctx context.Context, ev *domain.JourneyEvent) error
}

func (m *mockPublisher) PublishJourneySaved(ctx context.Context, ev *domain.JourneyEvent) error {
	if m.savedFn != nil {
		return m.savedFn(ctx, ev)
	}
	return nil
}

func (m *mockPublisher) PublishJourneyDeleted(ctx context.Context, ev *domain.JourneyEvent) error {
	if m.deletedFn != nil {
		return m.deletedFn(ctx, ev)
	}
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	setFn    func(ctx context.Context, key string, value []byte, ttlSeconds int) error
	deleteFn func(ctx context.Context, key string) error
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttlSeconds)
	}
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}
