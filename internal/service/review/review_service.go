package review

import (
	"context"
	"errors"
	"fmt"

	"evcharge/internal/domain"
	"evcharge/internal/repository"
)

type ReviewUseCase interface {
	CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error)
	ListStationReviews(ctx context.Context, stationID int64) ([]domain.Review, error)
}

type CreateReviewInput struct {
	UserID    int64
	BookingID int64
	Rating    int
	Comment   string
}

type ReviewService struct {
	reviews  repository.ReviewRepository
	bookings repository.BookingRepository
}

func NewReviewService(reviews repository.ReviewRepository, bookings repository.BookingRepository) *ReviewService {
	return &ReviewService{reviews: reviews, bookings: bookings}
}

// CreateReview accepts one review per completed booking, from its owner only.
func (s *ReviewService) CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != input.UserID {
		return nil, domain.ErrForbidden
	}
	if booking.Status != domain.BookingStatusCompleted {
		return nil, fmt.Errorf("%w: cannot review a booking that is not completed", domain.ErrValidation)
	}

	if _, err := s.reviews.GetByBookingID(ctx, input.BookingID); err == nil {
		return nil, domain.ErrReviewExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	review := &domain.Review{
		UserID:    input.UserID,
		StationID: booking.StationID,
		BookingID: input.BookingID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) ListStationReviews(ctx context.Context, stationID int64) ([]domain.Review, error) {
	return s.reviews.ListByStation(ctx, stationID)
}

var _ ReviewUseCase = (*ReviewService)(nil)
