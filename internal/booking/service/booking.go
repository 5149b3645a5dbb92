package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	availabilityservice "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/service"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/availability/timeslot"
	bookingerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/booking/repository"
	notificationservice "github.com/azmiruddin-143/Local-Guide-Server/internal/notification/service"
	paymentrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/payment/repository"
	tourservice "github.com/azmiruddin-143/Local-Guide-Server/internal/tour/service"
	walletservice "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/service"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/money"
)

// Actor identifies who is acting on a booking and with which role.
type Actor struct {
	UserID string
	Role   model.Role
}

type BookingService interface {
	Create(ctx context.Context, touristID string, input *model.BookingCreate) (*model.Booking, error)
	GetByID(ctx context.Context, actor Actor, id string) (*model.Booking, error)
	List(ctx context.Context, actor Actor, status model.BookingStatus, limit, offset int) ([]*model.Booking, int64, []model.StatusCount, error)
	Confirm(ctx context.Context, actor Actor, id string) error
	Decline(ctx context.Context, actor Actor, id, reason string) error
	Cancel(ctx context.Context, actor Actor, id, reason string) error
	Complete(ctx context.Context, actor Actor, id string) error
}

type bookingService struct {
	repo         repository.BookingRepository
	availability availabilityservice.AvailabilityService
	tours        tourservice.TourService
	wallets      walletservice.WalletService
	payments     paymentrepo.PaymentRepository
	notify       notificationservice.NotificationService
	validate     *validator.Validate
	cfg          *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	availability availabilityservice.AvailabilityService,
	tours tourservice.TourService,
	wallets walletservice.WalletService,
	payments paymentrepo.PaymentRepository,
	notify notificationservice.NotificationService,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		availability: availability,
		tours:        tours,
		wallets:      wallets,
		payments:     payments,
		notify:       notify,
		validate:     validator.New(),
		cfg:          cfg,
	}
}

// Create records a PENDING booking. Capacity is only checked here; the
// seats are actually taken when the payment succeeds.
func (s *bookingService) Create(ctx context.Context, touristID string, input *model.BookingCreate) (*model.Booking, error) {
	if err := s.validate.Struct(input); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "tourist_id", touristID, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	tour, err := s.tours.GetByID(ctx, input.TourID)
	if err != nil {
		return nil, err
	}
	if !tour.IsActive {
		return nil, apperrors.InvalidInput("This tour is not accepting bookings")
	}
	if tour.GuideID == touristID {
		return nil, apperrors.InvalidInput("You cannot book your own tour")
	}

	slot, err := s.availability.GetByID(ctx, input.AvailabilityID)
	if err != nil {
		return nil, err
	}
	if slot.GuideID != tour.GuideID {
		return nil, apperrors.InvalidInput("This slot does not belong to the tour's guide")
	}
	if !slot.IsAvailable {
		return nil, apperrors.InvalidInput("This slot is no longer available")
	}
	if slot.Booking.TourID != "" && slot.Booking.TourID != tour.ID {
		return nil, apperrors.Conflict("This slot is already booked for a different tour")
	}
	if remaining := slot.Booking.Remaining(); remaining < input.NumGuests {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Only %d spot(s) remaining for this slot.", remaining))
	}

	startAt := slotStart(slot.SpecificDate, slot.StartTime)
	if startAt.Before(time.Now().UTC()) {
		return nil, apperrors.InvalidInput("This slot has already started")
	}

	booking := &model.Booking{
		TourID:          tour.ID,
		TouristID:       touristID,
		GuideID:         tour.GuideID,
		AvailabilityID:  slot.ID,
		StartAt:         startAt,
		EndAt:           startAt.Add(time.Duration(slot.DurationMins) * time.Minute),
		NumGuests:       input.NumGuests,
		AmountTotal:     money.Round2(slot.PricePerPerson * float64(input.NumGuests)),
		Currency:        "BDT",
		Status:          model.BookingPending,
		PaymentStatus:   model.PaymentStatePending,
		SpecialRequests: input.SpecialRequests,
		SlotRef: model.SlotRef{
			Date:      slot.SpecificDate,
			StartTime: slot.StartTime,
		},
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "tourist_id", touristID, "tour_id", tour.ID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            booking.GuideID,
		Type:              model.NotifyBookingCreated,
		Title:             "New booking request",
		Message:           fmt.Sprintf("A tourist requested %d spot(s) on %q.", booking.NumGuests, tour.Title),
		Priority:          model.PriorityHigh,
		RelatedEntityID:   booking.ID,
		RelatedEntityType: "booking",
	})

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"tour_id", tour.ID,
		"tourist_id", touristID,
		"guide_id", booking.GuideID,
		"num_guests", booking.NumGuests,
		"amount", booking.AmountTotal,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor Actor, id string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, booking) {
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}
	return booking, nil
}

// List returns the caller's bookings plus a per-status tally. Statuses
// with no bookings still appear in the tally with a zero count.
func (s *bookingService) List(ctx context.Context, actor Actor, status model.BookingStatus, limit, offset int) ([]*model.Booking, int64, []model.StatusCount, error) {
	filter := repository.BookingFilter{Status: status}
	switch actor.Role {
	case model.RoleTourist:
		filter.TouristID = actor.UserID
	case model.RoleGuide:
		filter.GuideID = actor.UserID
	case model.RoleAdmin:
	default:
		return nil, 0, nil, apperrors.Forbidden("You do not have access to bookings")
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var bookings []*model.Booking
	var tallies []model.StatusCount
	var errCount, errFind, errTally error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindAll(sharedCtx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", err)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		tallies, err = s.repo.CountByStatus(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to tally booking statuses", "error", err)
			errTally = apperrors.Internal("Failed to tally bookings", err)
		}
	}()

	wg.Wait()
	for _, err := range []error{errCount, errFind, errTally} {
		if err != nil {
			return nil, 0, nil, err
		}
	}
	return bookings, count, fillStatusCounts(tallies), nil
}

func (s *bookingService) Confirm(ctx context.Context, actor Actor, id string) error {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, booking) {
		return apperrors.Forbidden("Only the guide can confirm this booking")
	}
	if !booking.Status.CanTransitionTo(model.BookingConfirmed) {
		return apperrors.Conflict(fmt.Sprintf("Cannot confirm a %s booking", booking.Status))
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	err = s.repo.UpdateStatusGuarded(ctx, id, []model.BookingStatus{model.BookingPending}, bson.M{
		"status":       model.BookingConfirmed,
		"confirmed_at": now,
	})
	if err != nil {
		return s.translateGuardError(err, id, "confirm")
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            booking.TouristID,
		Type:              model.NotifyBookingConfirmed,
		Title:             "Booking confirmed",
		Message:           "Your booking has been confirmed by the guide.",
		Priority:          model.PriorityHigh,
		RelatedEntityID:   booking.ID,
		RelatedEntityType: "booking",
	})

	s.cfg.Log.Info("Booking confirmed", "id", id, "guide_id", booking.GuideID)
	return nil
}

func (s *bookingService) Decline(ctx context.Context, actor Actor, id, reason string) error {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, booking) {
		return apperrors.Forbidden("Only the guide can decline this booking")
	}
	if !booking.Status.CanTransitionTo(model.BookingDeclined) {
		return apperrors.Conflict(fmt.Sprintf("Cannot decline a %s booking", booking.Status))
	}

	updates := bson.M{
		"status":              model.BookingDeclined,
		"cancellation_reason": reason,
		"cancelled_by":        actor.UserID,
	}
	paid := booking.PaymentStatus == model.PaymentStateSucceeded
	if paid {
		updates["payment_status"] = model.PaymentStateRefundPending
		updates["refund_reason"] = "Booking declined by guide"
	}

	err = s.repo.UpdateStatusGuarded(ctx, id, []model.BookingStatus{model.BookingPending}, updates)
	if err != nil {
		return s.translateGuardError(err, id, "decline")
	}

	if paid {
		s.reconcilePaidCancellation(ctx, booking, "Booking declined by guide")
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            booking.TouristID,
		Type:              model.NotifyBookingDeclined,
		Title:             "Booking declined",
		Message:           "Your booking request was declined by the guide.",
		Priority:          model.PriorityHigh,
		RelatedEntityID:   booking.ID,
		RelatedEntityType: "booking",
	})

	s.cfg.Log.Info("Booking declined", "id", id, "guide_id", booking.GuideID, "was_paid", paid)
	return nil
}

func (s *bookingService) Cancel(ctx context.Context, actor Actor, id, reason string) error {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return err
	}
	if !canView(actor, booking) {
		return apperrors.Forbidden("You do not have access to this booking")
	}
	if !booking.Status.CanTransitionTo(model.BookingCancelled) {
		return apperrors.Conflict(fmt.Sprintf("Cannot cancel a %s booking", booking.Status))
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	updates := bson.M{
		"status":              model.BookingCancelled,
		"cancellation_reason": reason,
		"cancelled_by":        actor.UserID,
		"cancelled_at":        now,
	}
	paid := booking.PaymentStatus == model.PaymentStateSucceeded
	if paid {
		updates["payment_status"] = model.PaymentStateRefundPending
		updates["refund_reason"] = reason
	}

	err = s.repo.UpdateStatusGuarded(ctx, id,
		[]model.BookingStatus{model.BookingPending, model.BookingConfirmed}, updates)
	if err != nil {
		return s.translateGuardError(err, id, "cancel")
	}

	if paid {
		s.reconcilePaidCancellation(ctx, booking, reason)
	}

	counterpart := booking.GuideID
	if actor.UserID == booking.GuideID {
		counterpart = booking.TouristID
	}
	s.notify.Notify(ctx, &model.Notification{
		UserID:            counterpart,
		Type:              model.NotifyBookingCancelled,
		Title:             "Booking cancelled",
		Message:           "A booking you are part of has been cancelled.",
		Priority:          model.PriorityHigh,
		RelatedEntityID:   booking.ID,
		RelatedEntityType: "booking",
	})

	s.cfg.Log.Info("Booking cancelled",
		"id", id,
		"cancelled_by", actor.UserID,
		"was_paid", paid,
	)
	return nil
}

// reconcilePaidCancellation releases the reserved seats, claws the full
// amount back from the guide's wallet and flags the payment for refund.
// Each step is best-effort: the cancellation itself already committed.
func (s *bookingService) reconcilePaidCancellation(ctx context.Context, booking *model.Booking, reason string) {
	if err := s.availability.Release(ctx, booking.GuideID, booking.SlotRef.Date, booking.SlotRef.StartTime, booking.NumGuests); err != nil {
		s.cfg.Log.Error("Failed to release slot after cancellation", "booking_id", booking.ID, "error", err)
	}
	if err := s.wallets.DebitForCancellation(ctx, booking.GuideID, booking.AmountTotal); err != nil {
		s.cfg.Log.Error("Failed to claw back funds after cancellation", "booking_id", booking.ID, "error", err)
	}
	if err := s.payments.MarkRefundPendingByBooking(ctx, booking.ID, reason); err != nil {
		s.cfg.Log.Error("Failed to flag payment for refund", "booking_id", booking.ID, "error", err)
	}
}

// Complete finishes a tour and releases the earnings for withdrawal. The
// status flip and the payable credit commit together or not at all.
func (s *bookingService) Complete(ctx context.Context, actor Actor, id string) error {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, booking) {
		return apperrors.Forbidden("Only the guide can complete this booking")
	}
	if !booking.Status.CanTransitionTo(model.BookingCompleted) {
		return apperrors.Conflict(fmt.Sprintf("Cannot complete a %s booking", booking.Status))
	}
	if booking.PaymentStatus != model.PaymentStateSucceeded {
		return apperrors.InvalidInput("Cannot complete an unpaid booking")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatusGuarded(sessCtx, id, []model.BookingStatus{model.BookingConfirmed}, bson.M{
			"status":       model.BookingCompleted,
			"completed_at": now,
		}); err != nil {
			return s.translateGuardError(err, id, "complete")
		}
		return s.wallets.CreditPayable(sessCtx, booking.GuideID, booking.AmountTotal)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to complete booking", "id", id, "error", err)
		return err
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            booking.TouristID,
		Type:              model.NotifyBookingCompleted,
		Title:             "Tour completed",
		Message:           "Your tour has been completed. You can now leave a review.",
		Priority:          model.PriorityMedium,
		RelatedEntityID:   booking.ID,
		RelatedEntityType: "booking",
	})

	s.cfg.Log.Info("Booking completed",
		"id", id,
		"guide_id", booking.GuideID,
		"amount", booking.AmountTotal,
	)
	return nil
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) translateGuardError(err error, id, action string) error {
	if errors.Is(err, bookingerrors.ErrStaleStatus) {
		return apperrors.Conflict(fmt.Sprintf("Booking status changed, cannot %s", action))
	}
	if errors.Is(err, bookingerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	s.cfg.Log.Error("Failed to update booking status", "id", id, "action", action, "error", err)
	return apperrors.Internal("Failed to update booking", err)
}

func canView(actor Actor, booking *model.Booking) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	return actor.UserID == booking.TouristID || actor.UserID == booking.GuideID
}

func canManage(actor Actor, booking *model.Booking) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	return actor.UserID == booking.GuideID
}

// fillStatusCounts pads the aggregation result so every status shows up.
func fillStatusCounts(tallies []model.StatusCount) []model.StatusCount {
	all := model.AllBookingStatuses()

	byStatus := make(map[model.BookingStatus]int64, len(tallies))
	for _, t := range tallies {
		byStatus[t.Status] = t.Count
	}

	out := make([]model.StatusCount, 0, len(all))
	for _, status := range all {
		out = append(out, model.StatusCount{Status: status, Count: byStatus[status]})
	}
	return out
}

func slotStart(date time.Time, startTime string) time.Time {
	mins, err := timeslot.Parse(startTime)
	if err != nil {
		return date.UTC().Truncate(24 * time.Hour)
	}
	return date.UTC().Truncate(24 * time.Hour).Add(time.Duration(mins) * time.Minute)
}
