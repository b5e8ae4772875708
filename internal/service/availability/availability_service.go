package availability

import (
	"context"
	"time"

	"evcharge/internal/domain"
	"evcharge/internal/repository"
)

type AvailabilityUseCase interface {
	StationSlots(ctx context.Context, stationID int64, date time.Time) (map[int64]ChargerSlots, error)
	AvailableSlots(ctx context.Context, stationID int64, date time.Time) ([]Slot, error)
	BookedSlots(ctx context.Context, stationID int64, date time.Time) ([]BookedSlot, error)
}

// ChargerSlots lists the free slot starts for one charger on a day.
type ChargerSlots struct {
	PowerKW        float64              `json:"powerKW"`
	ConnectorType  domain.ConnectorType `json:"connectorType"`
	AvailableTimes []time.Time          `json:"availableTimes"`
}

// Slot is a flat available-slot descriptor with a display-formatted time.
type Slot struct {
	ChargerID     int64                `json:"chargerId"`
	ConnectorType domain.ConnectorType `json:"connectorType"`
	PowerKW       float64              `json:"powerKW"`
	Time          time.Time            `json:"time"`
	Hour          int                  `json:"hour"`
	DisplayTime   string               `json:"displayTime"`
}

type BookedSlot struct {
	ChargerID int64                `json:"chargerId"`
	StartTime time.Time            `json:"startTime"`
	EndTime   time.Time            `json:"endTime"`
	Status    domain.BookingStatus `json:"status"`
}

// AvailabilityService derives free hourly slots per charger by subtracting
// confirmed bookings from the operating-hours grid. All dates are UTC days.
type AvailabilityService struct {
	stations  repository.StationRepository
	bookings  repository.BookingRepository
	startHour int
	endHour   int
}

func NewAvailabilityService(stations repository.StationRepository, bookings repository.BookingRepository, startHour, endHour int) *AvailabilityService {
	if endHour <= startHour {
		startHour, endHour = 0, 24
	}
	return &AvailabilityService{
		stations:  stations,
		bookings:  bookings,
		startHour: startHour,
		endHour:   endHour,
	}
}

func (s *AvailabilityService) StationSlots(ctx context.Context, stationID int64, date time.Time) (map[int64]ChargerSlots, error) {
	station, bookings, err := s.load(ctx, stationID, date)
	if err != nil {
		return nil, err
	}

	dayStart := DayStart(date)
	slots := make(map[int64]ChargerSlots, len(station.Chargers))
	for _, charger := range station.Chargers {
		if charger.Status == domain.ChargerStatusOutOfOrder {
			continue
		}
		entry := ChargerSlots{
			PowerKW:        charger.PowerKW,
			ConnectorType:  charger.ConnectorType,
			AvailableTimes: make([]time.Time, 0, s.endHour-s.startHour),
		}
		for hour := s.startHour; hour < s.endHour; hour++ {
			slotStart := dayStart.Add(time.Duration(hour) * time.Hour)
			if !s.slotBooked(bookings, charger.ID, slotStart) {
				entry.AvailableTimes = append(entry.AvailableTimes, slotStart)
			}
		}
		slots[charger.ID] = entry
	}
	return slots, nil
}

func (s *AvailabilityService) AvailableSlots(ctx context.Context, stationID int64, date time.Time) ([]Slot, error) {
	station, bookings, err := s.load(ctx, stationID, date)
	if err != nil {
		return nil, err
	}

	dayStart := DayStart(date)
	slots := make([]Slot, 0)
	for hour := s.startHour; hour < s.endHour; hour++ {
		slotStart := dayStart.Add(time.Duration(hour) * time.Hour)
		for _, charger := range station.Chargers {
			if charger.Status == domain.ChargerStatusOutOfOrder {
				continue
			}
			if s.slotBooked(bookings, charger.ID, slotStart) {
				continue
			}
			slots = append(slots, Slot{
				ChargerID:     charger.ID,
				ConnectorType: charger.ConnectorType,
				PowerKW:       charger.PowerKW,
				Time:          slotStart,
				Hour:          hour,
				DisplayTime:   slotStart.Format("03:04 PM"),
			})
		}
	}
	return slots, nil
}

func (s *AvailabilityService) BookedSlots(ctx context.Context, stationID int64, date time.Time) ([]BookedSlot, error) {
	_, bookings, err := s.load(ctx, stationID, date)
	if err != nil {
		return nil, err
	}

	booked := make([]BookedSlot, 0, len(bookings))
	for _, b := range bookings {
		booked = append(booked, BookedSlot{
			ChargerID: b.ChargerID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Status:    b.Status,
		})
	}
	return booked, nil
}

func (s *AvailabilityService) load(ctx context.Context, stationID int64, date time.Time) (*domain.Station, []domain.Booking, error) {
	station, err := s.stations.GetByID(ctx, stationID)
	if err != nil {
		return nil, nil, err
	}
	dayStart := DayStart(date)
	bookings, err := s.bookings.ListConfirmedForStationDay(ctx, stationID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, nil, err
	}
	return station, bookings, nil
}

func (s *AvailabilityService) slotBooked(bookings []domain.Booking, chargerID int64, slotStart time.Time) bool {
	slotEnd := slotStart.Add(time.Hour)
	for _, b := range bookings {
		if b.ChargerID != chargerID {
			continue
		}
		if domain.Overlaps(slotStart, slotEnd, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}

// DayStart normalizes a timestamp to its UTC midnight.
func DayStart(date time.Time) time.Time {
	d := date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

var _ AvailabilityUseCase = (*AvailabilityService)(nil)
