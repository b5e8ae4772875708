package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"evcharge/internal/domain"
)

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Review, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByStation(ctx context.Context, stationID int64) ([]domain.Review, error) {
	args := m.Called(ctx, stationID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) SetPaymentStatus(ctx context.Context, id int64, state domain.PaymentState) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *MockBookingRepository) ListConfirmedForStationDay(ctx context.Context, stationID int64, dayStart, dayEnd time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, stationID, dayStart, dayEnd)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListUpcomingForUser(ctx context.Context, userID int64, from time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, from)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CompleteEndedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func TestReviewService_CreateReview_Success(t *testing.T) {
	mockReviews := &MockReviewRepository{}
	mockBookings := &MockBookingRepository{}
	service := NewReviewService(mockReviews, mockBookings)

	ctx := context.Background()
	booking := &domain.Booking{ID: 3, UserID: 7, StationID: 1, Status: domain.BookingStatusCompleted}

	mockBookings.On("GetByID", ctx, int64(3)).Return(booking, nil).Once()
	mockReviews.On("GetByBookingID", ctx, int64(3)).Return(nil, domain.ErrNotFound).Once()
	mockReviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil).Once()

	review, err := service.CreateReview(ctx, CreateReviewInput{
		UserID:    7,
		BookingID: 3,
		Rating:    4,
		Comment:   "fast charger, easy access",
	})

	assert.NoError(t, err)
	assert.NotNil(t, review)
	assert.Equal(t, int64(1), review.StationID)
	assert.Equal(t, 4, review.Rating)
	mockReviews.AssertExpectations(t)
	mockBookings.AssertExpectations(t)
}

func TestReviewService_CreateReview_InvalidRating(t *testing.T) {
	service := NewReviewService(&MockReviewRepository{}, &MockBookingRepository{})

	ctx := context.Background()
	for _, rating := range []int{0, -1, 6} {
		review, err := service.CreateReview(ctx, CreateReviewInput{UserID: 7, BookingID: 3, Rating: rating})
		assert.Nil(t, review)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestReviewService_CreateReview_NotOwner(t *testing.T) {
	mockReviews := &MockReviewRepository{}
	mockBookings := &MockBookingRepository{}
	service := NewReviewService(mockReviews, mockBookings)

	ctx := context.Background()
	booking := &domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusCompleted}
	mockBookings.On("GetByID", ctx, int64(3)).Return(booking, nil).Once()

	review, err := service.CreateReview(ctx, CreateReviewInput{UserID: 99, BookingID: 3, Rating: 5})

	assert.Nil(t, review)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	mockReviews.AssertNotCalled(t, "Create")
}

func TestReviewService_CreateReview_BookingNotCompleted(t *testing.T) {
	mockReviews := &MockReviewRepository{}
	mockBookings := &MockBookingRepository{}
	service := NewReviewService(mockReviews, mockBookings)

	ctx := context.Background()
	booking := &domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusConfirmed}
	mockBookings.On("GetByID", ctx, int64(3)).Return(booking, nil).Once()

	review, err := service.CreateReview(ctx, CreateReviewInput{UserID: 7, BookingID: 3, Rating: 5})

	assert.Nil(t, review)
	assert.ErrorIs(t, err, domain.ErrValidation)
	mockReviews.AssertNotCalled(t, "Create")
}

func TestReviewService_CreateReview_Duplicate(t *testing.T) {
	mockReviews := &MockReviewRepository{}
	mockBookings := &MockBookingRepository{}
	service := NewReviewService(mockReviews, mockBookings)

	ctx := context.Background()
	booking := &domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusCompleted}
	existing := &domain.Review{ID: 1, BookingID: 3}

	mockBookings.On("GetByID", ctx, int64(3)).Return(booking, nil).Once()
	mockReviews.On("GetByBookingID", ctx, int64(3)).Return(existing, nil).Once()

	review, err := service.CreateReview(ctx, CreateReviewInput{UserID: 7, BookingID: 3, Rating: 5})

	assert.Nil(t, review)
	assert.ErrorIs(t, err, domain.ErrReviewExists)
	mockReviews.AssertNotCalled(t, "Create")
}

func TestReviewService_ListStationReviews(t *testing.T) {
	mockReviews := &MockReviewRepository{}
	service := NewReviewService(mockReviews, &MockBookingRepository{})

	ctx := context.Background()
	reviews := []domain.Review{{ID: 1, StationID: 2, Rating: 5}}
	mockReviews.On("ListByStation", ctx, int64(2)).Return(reviews, nil).Once()

	result, err := service.ListStationReviews(ctx, 2)

	assert.NoError(t, err)
	assert.Equal(t, reviews, result)
}
