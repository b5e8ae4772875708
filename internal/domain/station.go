package domain

import "time"

type ConnectorType string

const (
	ConnectorType2       ConnectorType = "Type 2"
	ConnectorTypeCCS     ConnectorType = "CCS"
	ConnectorTypeCHAdeMO ConnectorType = "CHAdeMO"
	ConnectorTypeTesla   ConnectorType = "Tesla"
)

type ChargerStatus string

const (
	ChargerStatusAvailable  ChargerStatus = "available"
	ChargerStatusOccupied   ChargerStatus = "occupied"
	ChargerStatusOutOfOrder ChargerStatus = "out-of-order"
)

// Charger is an individually bookable charging point owned by a station.
// Its status field is informational; real-time availability is derived
// from confirmed bookings.
type Charger struct {
	ID            int64
	StationID     int64
	ConnectorType ConnectorType
	PowerKW       float64
	Status        ChargerStatus
}

// Station coordinates are stored as longitude/latitude, in that order.
type Station struct {
	ID        int64
	Name      string
	Address   string
	Longitude float64
	Latitude  float64
	Chargers  []Charger
	CreatedAt time.Time
}

// Charger returns the charger with the given id if it belongs to the station.
func (s *Station) Charger(id int64) (*Charger, bool) {
	for i := range s.Chargers {
		if s.Chargers[i].ID == id {
			return &s.Chargers[i], true
		}
	}
	return nil, false
}

// StationRecommendation is a station annotated with its haversine distance
// from the query point and the number of chargers free right now.
type StationRecommendation struct {
	Station           Station
	DistanceKM        float64
	AvailableChargers int
}
