package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"evcharge/internal/domain"
)

type StationRepository interface {
	List(ctx context.Context) ([]domain.Station, error)
	GetByID(ctx context.Context, id int64) (*domain.Station, error)
	CountBusyChargers(ctx context.Context, stationID int64, at time.Time) (int, error)
}

type PGStationRepository struct {
	db *pgxpool.Pool
}

func NewStationRepository(db *pgxpool.Pool) StationRepository {
	return &PGStationRepository{db: db}
}

func (r *PGStationRepository) List(ctx context.Context) ([]domain.Station, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, address, longitude, latitude, created_at FROM stations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := make([]domain.Station, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Longitude, &s.Latitude, &s.CreatedAt); err != nil {
			return nil, err
		}
		index[s.ID] = len(stations)
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chargerRows, err := r.db.Query(ctx, `SELECT id, station_id, connector_type, power_kw, status FROM chargers ORDER BY station_id, id`)
	if err != nil {
		return nil, err
	}
	defer chargerRows.Close()

	for chargerRows.Next() {
		var c domain.Charger
		if err := chargerRows.Scan(&c.ID, &c.StationID, &c.ConnectorType, &c.PowerKW, &c.Status); err != nil {
			return nil, err
		}
		if i, ok := index[c.StationID]; ok {
			stations[i].Chargers = append(stations[i].Chargers, c)
		}
	}
	return stations, chargerRows.Err()
}

func (r *PGStationRepository) GetByID(ctx context.Context, id int64) (*domain.Station, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, address, longitude, latitude, created_at FROM stations WHERE id=$1`, id)
	var s domain.Station
	if err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Longitude, &s.Latitude, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, station_id, connector_type, power_kw, status FROM chargers WHERE station_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Charger
		if err := rows.Scan(&c.ID, &c.StationID, &c.ConnectorType, &c.PowerKW, &c.Status); err != nil {
			return nil, err
		}
		s.Chargers = append(s.Chargers, c)
	}
	return &s, rows.Err()
}

// CountBusyChargers counts distinct chargers at the station held by a
// confirmed booking covering the given instant.
func (r *PGStationRepository) CountBusyChargers(ctx context.Context, stationID int64, at time.Time) (int, error) {
	var busy int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT charger_id)
		FROM bookings
		WHERE station_id=$1 AND status=$2 AND start_time <= $3 AND end_time > $3
	`, stationID, domain.BookingStatusConfirmed, at).Scan(&busy)
	return busy, err
}

var _ StationRepository = (*PGStationRepository)(nil)
