package station

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmcloughlin/geohash"
	"go.uber.org/zap"

	"evcharge/internal/domain"
	"evcharge/internal/geo"
	"evcharge/internal/repository"
)

// Recommendation results are cached per geohash cell; precision 5 is a
// roughly 5km x 5km box.
const recommendGeohashPrecision = 5

type StationUseCase interface {
	List(ctx context.Context) ([]domain.Station, error)
	GetByID(ctx context.Context, id int64) (*domain.Station, error)
	Recommend(ctx context.Context, lat, lon, carRangeKM float64) ([]domain.StationRecommendation, error)
}

type Cache interface {
	GetStations(ctx context.Context) ([]domain.Station, error)
	SetStations(ctx context.Context, stations []domain.Station) error
	GetRecommendations(ctx context.Context, key string) ([]domain.StationRecommendation, error)
	SetRecommendations(ctx context.Context, key string, recs []domain.StationRecommendation) error
}

type StationService struct {
	repo   repository.StationRepository
	cache  Cache
	logger *zap.Logger
}

func NewStationService(repo repository.StationRepository, cache Cache, logger *zap.Logger) *StationService {
	return &StationService{repo: repo, cache: cache, logger: logger}
}

func (s *StationService) List(ctx context.Context) ([]domain.Station, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetStations(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	stations, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetStations(ctx, stations); err != nil {
			s.logger.Warn("failed to cache stations", zap.Error(err))
		}
	}
	return stations, nil
}

func (s *StationService) GetByID(ctx context.Context, id int64) (*domain.Station, error) {
	return s.repo.GetByID(ctx, id)
}

// Recommend returns stations within carRangeKM of the point that have at
// least one charger free right now, closest first. Distance is haversine
// rounded to one decimal.
func (s *StationService) Recommend(ctx context.Context, lat, lon, carRangeKM float64) ([]domain.StationRecommendation, error) {
	if carRangeKM <= 0 {
		return nil, fmt.Errorf("%w: car range must be positive", domain.ErrValidation)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: invalid coordinates", domain.ErrValidation)
	}

	key := recommendKey(lat, lon, carRangeKM)
	if s.cache != nil {
		if cached, err := s.cache.GetRecommendations(ctx, key); err == nil && cached != nil {
			return cached, nil
		}
	}

	stations, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	origin := geo.Point{Latitude: lat, Longitude: lon}
	now := time.Now().UTC()
	recs := make([]domain.StationRecommendation, 0)
	for _, st := range stations {
		distance := geo.Distance(origin, geo.Point{Latitude: st.Latitude, Longitude: st.Longitude})
		if distance > carRangeKM {
			continue
		}

		operational := 0
		for _, c := range st.Chargers {
			if c.Status != domain.ChargerStatusOutOfOrder {
				operational++
			}
		}
		busy, err := s.repo.CountBusyChargers(ctx, st.ID, now)
		if err != nil {
			return nil, err
		}
		available := operational - busy
		if available <= 0 {
			continue
		}

		recs = append(recs, domain.StationRecommendation{
			Station:           st,
			DistanceKM:        geo.RoundKM(distance),
			AvailableChargers: available,
		})
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].DistanceKM < recs[j].DistanceKM })

	if s.cache != nil {
		if err := s.cache.SetRecommendations(ctx, key, recs); err != nil {
			s.logger.Warn("failed to cache recommendations", zap.Error(err))
		}
	}
	return recs, nil
}

func recommendKey(lat, lon, carRangeKM float64) string {
	cell := geohash.EncodeWithPrecision(lat, lon, recommendGeohashPrecision)
	return fmt.Sprintf("cache:recommendations:%s:%d", cell, int(carRangeKM))
}

var _ StationUseCase = (*StationService)(nil)
