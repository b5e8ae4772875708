package station

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"evcharge/internal/domain"
)

type MockStationRepository struct {
	mock.Mock
}

func (m *MockStationRepository) List(ctx context.Context) ([]domain.Station, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Station), args.Error(1)
}

func (m *MockStationRepository) GetByID(ctx context.Context, id int64) (*domain.Station, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Station), args.Error(1)
}

func (m *MockStationRepository) CountBusyChargers(ctx context.Context, stationID int64, at time.Time) (int, error) {
	args := m.Called(ctx, stationID, at)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetStations(ctx context.Context) ([]domain.Station, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Station), args.Error(1)
}

func (m *MockCache) SetStations(ctx context.Context, stations []domain.Station) error {
	args := m.Called(ctx, stations)
	return args.Error(0)
}

func (m *MockCache) GetRecommendations(ctx context.Context, key string) ([]domain.StationRecommendation, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StationRecommendation), args.Error(1)
}

func (m *MockCache) SetRecommendations(ctx context.Context, key string, recs []domain.StationRecommendation) error {
	args := m.Called(ctx, key, recs)
	return args.Error(0)
}

// Chennai-area fixtures; the query point sits on the first station.
func chennaiStations() []domain.Station {
	return []domain.Station{
		{
			ID: 1, Name: "Mambakkam Central Charge", Latitude: 12.8355, Longitude: 80.2244,
			Chargers: []domain.Charger{
				{ID: 10, Status: domain.ChargerStatusAvailable},
				{ID: 11, Status: domain.ChargerStatusAvailable},
			},
		},
		{
			ID: 2, Name: "Kelambakkam SuperCharger", Latitude: 12.8194, Longitude: 80.2280,
			Chargers: []domain.Charger{
				{ID: 20, Status: domain.ChargerStatusAvailable},
				{ID: 21, Status: domain.ChargerStatusOutOfOrder},
			},
		},
		{
			ID: 3, Name: "Far North Hub", Latitude: 13.9, Longitude: 80.3,
			Chargers: []domain.Charger{
				{ID: 30, Status: domain.ChargerStatusAvailable},
			},
		},
	}
}

func TestStationService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockStationRepository{}
	mockCache := &MockCache{}
	service := NewStationService(mockRepo, mockCache, zap.NewNop())

	ctx := context.Background()
	stations := chennaiStations()

	mockCache.On("GetStations", ctx).Return(nil, nil).Once()
	mockRepo.On("List", ctx).Return(stations, nil).Once()
	mockCache.On("SetStations", ctx, stations).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, stations, result)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestStationService_List_CacheHit(t *testing.T) {
	mockRepo := &MockStationRepository{}
	mockCache := &MockCache{}
	service := NewStationService(mockRepo, mockCache, zap.NewNop())

	ctx := context.Background()
	stations := chennaiStations()

	mockCache.On("GetStations", ctx).Return(stations, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, stations, result)
	mockRepo.AssertNotCalled(t, "List")
}

func TestStationService_Recommend_FiltersByRange(t *testing.T) {
	mockRepo := &MockStationRepository{}
	service := NewStationService(mockRepo, nil, zap.NewNop())

	ctx := context.Background()
	mockRepo.On("List", ctx).Return(chennaiStations(), nil).Once()
	mockRepo.On("CountBusyChargers", ctx, int64(1), mock.AnythingOfType("time.Time")).Return(0, nil).Once()
	mockRepo.On("CountBusyChargers", ctx, int64(2), mock.AnythingOfType("time.Time")).Return(0, nil).Once()

	recs, err := service.Recommend(ctx, 12.8355, 80.2244, 10)

	assert.NoError(t, err)
	// Station 3 is over 100km away and must not appear.
	assert.Len(t, recs, 2)
	assert.Equal(t, int64(1), recs[0].Station.ID)
	assert.Equal(t, int64(2), recs[1].Station.ID)
	// Closest first, distances rounded to one decimal.
	assert.LessOrEqual(t, recs[0].DistanceKM, recs[1].DistanceKM)
	assert.Equal(t, 0.0, recs[0].DistanceKM)
}

func TestStationService_Recommend_CountsAvailableChargers(t *testing.T) {
	mockRepo := &MockStationRepository{}
	service := NewStationService(mockRepo, nil, zap.NewNop())

	ctx := context.Background()
	mockRepo.On("List", ctx).Return(chennaiStations(), nil).Once()
	// Station 1: both chargers busy. Station 2: one operational, none busy.
	mockRepo.On("CountBusyChargers", ctx, int64(1), mock.AnythingOfType("time.Time")).Return(2, nil).Once()
	mockRepo.On("CountBusyChargers", ctx, int64(2), mock.AnythingOfType("time.Time")).Return(0, nil).Once()

	recs, err := service.Recommend(ctx, 12.8355, 80.2244, 10)

	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, int64(2), recs[0].Station.ID)
	// Out-of-order charger is excluded from the available count.
	assert.Equal(t, 1, recs[0].AvailableChargers)
}

func TestStationService_Recommend_Validation(t *testing.T) {
	service := NewStationService(&MockStationRepository{}, nil, zap.NewNop())

	ctx := context.Background()

	testCases := []struct {
		name            string
		lat, lon, rng   float64
	}{
		{name: "zero range", lat: 12.8, lon: 80.2, rng: 0},
		{name: "negative range", lat: 12.8, lon: 80.2, rng: -5},
		{name: "latitude out of bounds", lat: 95, lon: 80.2, rng: 10},
		{name: "longitude out of bounds", lat: 12.8, lon: 190, rng: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := service.Recommend(ctx, tc.lat, tc.lon, tc.rng)
			assert.Nil(t, recs)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestStationService_Recommend_CacheHit(t *testing.T) {
	mockRepo := &MockStationRepository{}
	mockCache := &MockCache{}
	service := NewStationService(mockRepo, mockCache, zap.NewNop())

	ctx := context.Background()
	cached := []domain.StationRecommendation{
		{Station: domain.Station{ID: 1}, DistanceKM: 1.2, AvailableChargers: 2},
	}
	mockCache.On("GetRecommendations", ctx, mock.AnythingOfType("string")).Return(cached, nil).Once()

	recs, err := service.Recommend(ctx, 12.8355, 80.2244, 10)

	assert.NoError(t, err)
	assert.Equal(t, cached, recs)
	mockRepo.AssertNotCalled(t, "List")
}

func TestRecommendKey_StableWithinGeohashCell(t *testing.T) {
	// Points a few meters apart share a precision-5 cell and hence a key.
	a := recommendKey(12.8355, 80.2244, 10)
	b := recommendKey(12.8356, 80.2245, 10)
	assert.Equal(t, a, b)

	// Changing the range changes the key.
	c := recommendKey(12.8355, 80.2244, 20)
	assert.NotEqual(t, a, c)
}
