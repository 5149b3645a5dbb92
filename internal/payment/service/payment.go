package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	availabilityservice "github.com/azmiruddin-143/Local-Guide-Server/internal/availability/service"
	bookingerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/errors"
	bookingrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/repository"
	notificationservice "github.com/azmiruddin-143/Local-Guide-Server/internal/notification/service"
	paymenterrors "github.com/azmiruddin-143/Local-Guide-Server/internal/payment/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/payment/gateway"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/payment/repository"
	userservice "github.com/azmiruddin-143/Local-Guide-Server/internal/user/service"
	walletservice "github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/service"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

const providerName = "sslcommerz"

// InitiateResult carries the hosted checkout URL back to the tourist.
type InitiateResult struct {
	Payment       *model.Payment `json:"payment"`
	PaymentURL    string         `json:"paymentUrl"`
	TransactionID string         `json:"transactionId"`
}

type RefundInput struct {
	RefundReason string  `json:"refundReason"`
	RefundAmount float64 `json:"refundAmount"`
	AdminNotes   string  `json:"adminNotes,omitempty"`
}

type PaymentService interface {
	Initiate(ctx context.Context, touristID, bookingID string) (*InitiateResult, error)
	Retry(ctx context.Context, touristID, bookingID string) (*InitiateResult, error)

	// Gateway callback handlers, correlated by transaction ID.
	HandleSuccess(ctx context.Context, transactionID, valID string) (string, error)
	HandleFail(ctx context.Context, transactionID string, meta map[string]any) error
	HandleCancel(ctx context.Context, transactionID string, meta map[string]any) error

	GetByBooking(ctx context.Context, userID string, isAdmin bool, bookingID string) (*model.Payment, error)
	GetHistory(ctx context.Context, customerID string, limit, offset int) ([]*model.Payment, int64, error)
	Refund(ctx context.Context, paymentID string, input *RefundInput) (*model.Payment, error)
}

type paymentService struct {
	repo         repository.PaymentRepository
	bookings     bookingrepo.BookingRepository
	availability availabilityservice.AvailabilityService
	wallets      walletservice.WalletService
	users        userservice.UserService
	notify       notificationservice.NotificationService
	gw           gateway.Gateway
	cfg          *config.Config
}

func NewPaymentService(
	repo repository.PaymentRepository,
	bookings bookingrepo.BookingRepository,
	availability availabilityservice.AvailabilityService,
	wallets walletservice.WalletService,
	users userservice.UserService,
	notify notificationservice.NotificationService,
	gw gateway.Gateway,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:         repo,
		bookings:     bookings,
		availability: availability,
		wallets:      wallets,
		users:        users,
		notify:       notify,
		gw:           gw,
		cfg:          cfg,
	}
}

func newTransactionID() string {
	return "TXN_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Initiate opens a gateway checkout session for a pending booking. The
// payment document and the booking flip commit together; the outbound
// gateway call happens after, with compensation on failure.
func (s *paymentService) Initiate(ctx context.Context, touristID, bookingID string) (*InitiateResult, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.TouristID != touristID {
		return nil, apperrors.Forbidden("You can only pay for your own bookings")
	}
	if booking.PaymentStatus != model.PaymentStatePending {
		return nil, apperrors.InvalidInput("Payment already processed for this booking")
	}

	check, err := s.availability.CheckSlot(ctx, booking.AvailabilityID, booking.NumGuests)
	if err != nil {
		return nil, err
	}
	if !check.Available {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Cannot proceed with payment: %s Please select a different slot.", check.Reason))
	}

	transactionID := newTransactionID()
	payment := &model.Payment{
		BookingID:     booking.ID,
		CustomerID:    booking.TouristID,
		TransactionID: transactionID,
		Amount:        booking.AmountTotal,
		Currency:      booking.Currency,
		Provider:      providerName,
		Status:        model.PaymentInitiated,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, payment); err != nil {
			return apperrors.Internal("Failed to create payment", err)
		}
		_, err := s.bookings.Update(sessCtx, booking.ID, bson.M{
			"payment_status": model.PaymentStateInitiated,
			"payment_id":     payment.ID,
		})
		if err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Payment initiation transaction failed", "booking_id", bookingID, "error", err)
		return nil, err
	}

	return s.openSession(ctx, booking, payment)
}

// Retry reissues the transaction ID on an existing failed or cancelled
// payment and opens a fresh checkout session.
func (s *paymentService) Retry(ctx context.Context, touristID, bookingID string) (*InitiateResult, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.TouristID != touristID {
		return nil, apperrors.Forbidden("You can only retry payment for your own bookings")
	}

	payment, err := s.repo.FindByID(ctx, booking.PaymentID)
	if err != nil {
		if errors.Is(err, paymenterrors.ErrNotFound) || errors.Is(err, paymenterrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Payment", booking.PaymentID)
		}
		s.cfg.Log.Error("Failed to load payment for retry", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}
	if payment.Status == model.PaymentPaid {
		return nil, apperrors.InvalidInput("Payment already completed")
	}

	transactionID := newTransactionID()
	if _, err := s.repo.Update(ctx, payment.ID, bson.M{
		"transaction_id": transactionID,
		"status":         model.PaymentInitiated,
	}); err != nil {
		s.cfg.Log.Error("Failed to reissue transaction ID", "payment_id", payment.ID, "error", err)
		return nil, apperrors.Internal("Failed to retry payment", err)
	}
	payment.TransactionID = transactionID
	payment.Status = model.PaymentInitiated

	return s.openSession(ctx, booking, payment)
}

func (s *paymentService) openSession(ctx context.Context, booking *model.Booking, payment *model.Payment) (*InitiateResult, error) {
	tourist, err := s.users.GetByID(ctx, booking.TouristID)
	if err != nil {
		return nil, err
	}

	address := tourist.Location
	if address == "" {
		address = "Bangladesh"
	}
	phone := tourist.PhoneNumber
	if phone == "" {
		phone = "01700000000"
	}

	session, err := s.gw.InitSession(ctx, &gateway.SessionRequest{
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		CustomerName:  tourist.Name,
		CustomerEmail: tourist.Email,
		CustomerPhone: phone,
		CustomerAddr:  address,
		ProductName:   "Tour booking " + booking.ID,
	})
	if err != nil {
		s.cfg.Log.Error("Gateway session init failed", "transaction_id", payment.TransactionID, "error", err)
		if _, markErr := s.repo.Update(ctx, payment.ID, bson.M{"status": model.PaymentFailed}); markErr != nil {
			s.cfg.Log.Error("Failed to mark payment failed after gateway error", "payment_id", payment.ID, "error", markErr)
		}
		if _, markErr := s.bookings.Update(ctx, booking.ID, bson.M{"payment_status": model.PaymentStatePending}); markErr != nil {
			s.cfg.Log.Error("Failed to reset booking payment status after gateway error", "booking_id", booking.ID, "error", markErr)
		}
		return nil, apperrors.Internal("Failed to start payment session", err)
	}

	s.cfg.Log.Info("Payment session opened",
		"booking_id", booking.ID,
		"payment_id", payment.ID,
		"transaction_id", payment.TransactionID,
		"amount", payment.Amount,
	)
	return &InitiateResult{
		Payment:       payment,
		PaymentURL:    session.GatewayPageURL,
		TransactionID: payment.TransactionID,
	}, nil
}

// HandleSuccess finishes a paid session. The payment and booking flips
// commit in one transaction; seat reservation and the wallet credit run
// after commit and are best-effort (the money already arrived).
func (s *paymentService) HandleSuccess(ctx context.Context, transactionID, valID string) (string, error) {
	validation, err := s.gw.Validate(ctx, valID)
	if err != nil {
		s.cfg.Log.Error("Gateway validation call failed", "transaction_id", transactionID, "error", err)
		return "", apperrors.Internal("Payment validation failed", err)
	}
	if !validation.IsValid() {
		s.cfg.Log.Warn("Gateway reported invalid payment", "transaction_id", transactionID, "status", validation.Status)
		return "", apperrors.InvalidInput("Payment could not be verified")
	}

	payment, err := s.findByTransactionID(ctx, transactionID)
	if err != nil {
		return "", err
	}

	booking, err := s.findBooking(ctx, payment.BookingID)
	if err != nil {
		return "", err
	}

	gatewayData := bson.M{
		"val_id":       validation.ValID,
		"status":       validation.Status,
		"amount":       validation.Amount,
		"currency":     validation.Currency,
		"card_type":    validation.CardType,
		"bank_tran_id": validation.BankTranID,
		"tran_date":    validation.TranDate,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.repo.Update(sessCtx, payment.ID, bson.M{
			"status":               model.PaymentPaid,
			"payment_gateway_data": gatewayData,
		}); err != nil {
			return apperrors.Internal("Failed to update payment", err)
		}
		if _, err := s.bookings.Update(sessCtx, booking.ID, bson.M{
			"payment_status": model.PaymentStateSucceeded,
		}); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Payment success transaction failed", "transaction_id", transactionID, "error", err)
		return "", err
	}

	if err := s.availability.Reserve(ctx, booking.AvailabilityID, booking.TourID, booking.NumGuests); err != nil {
		s.cfg.Log.Warn("Failed to reserve slot after payment, booking proceeds without reservation",
			"booking_id", booking.ID, "error", err)
	}
	if err := s.wallets.Credit(ctx, booking.GuideID, booking.AmountTotal, payment.ID); err != nil {
		s.cfg.Log.Error("Failed to credit guide wallet after payment", "booking_id", booking.ID, "error", err)
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            booking.TouristID,
		Type:              model.NotifyPaymentSuccess,
		Title:             "Payment successful",
		Message:           "Your payment was received. The guide will confirm your booking shortly.",
		Priority:          model.PriorityHigh,
		RelatedEntityID:   booking.ID,
		RelatedEntityType: "booking",
	})
	s.notify.Notify(ctx, &model.Notification{
		UserID:            booking.GuideID,
		Type:              model.NotifyPaymentSuccess,
		Title:             "Booking paid",
		Message:           "A booking has been paid and is awaiting your confirmation.",
		Priority:          model.PriorityHigh,
		RelatedEntityID:   booking.ID,
		RelatedEntityType: "booking",
	})

	s.cfg.Log.Info("Payment completed",
		"transaction_id", transactionID,
		"booking_id", booking.ID,
		"amount", payment.Amount,
	)
	return booking.ID, nil
}

func (s *paymentService) HandleFail(ctx context.Context, transactionID string, meta map[string]any) error {
	payment, err := s.findByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.repo.Update(sessCtx, payment.ID, bson.M{
			"status":   model.PaymentFailed,
			"metadata": meta,
		}); err != nil {
			return apperrors.Internal("Failed to update payment", err)
		}
		if _, err := s.bookings.Update(sessCtx, payment.BookingID, bson.M{
			"payment_status": model.PaymentStateFailed,
		}); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Payment failure transaction failed", "transaction_id", transactionID, "error", err)
		return err
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            payment.CustomerID,
		Type:              model.NotifyPaymentFailed,
		Title:             "Payment failed",
		Message:           "Your payment could not be processed. You can retry from your bookings.",
		Priority:          model.PriorityHigh,
		RelatedEntityID:   payment.BookingID,
		RelatedEntityType: "booking",
	})

	s.cfg.Log.Info("Payment marked failed", "transaction_id", transactionID)
	return nil
}

// HandleCancel resets the booking to PENDING so the tourist can retry.
func (s *paymentService) HandleCancel(ctx context.Context, transactionID string, meta map[string]any) error {
	payment, err := s.findByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.repo.Update(sessCtx, payment.ID, bson.M{
			"status":   model.PaymentCancelled,
			"metadata": meta,
		}); err != nil {
			return apperrors.Internal("Failed to update payment", err)
		}
		if _, err := s.bookings.Update(sessCtx, payment.BookingID, bson.M{
			"payment_status": model.PaymentStatePending,
		}); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Payment cancel transaction failed", "transaction_id", transactionID, "error", err)
		return err
	}

	s.cfg.Log.Info("Payment cancelled by user", "transaction_id", transactionID)
	return nil
}

func (s *paymentService) GetByBooking(ctx context.Context, userID string, isAdmin bool, bookingID string) (*model.Payment, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && userID != booking.TouristID && userID != booking.GuideID {
		return nil, apperrors.Forbidden("You are not authorized to view this payment")
	}
	if booking.PaymentID == "" {
		return nil, apperrors.NotFoundWithID("Payment for booking", bookingID)
	}

	payment, err := s.repo.FindByID(ctx, booking.PaymentID)
	if err != nil {
		if errors.Is(err, paymenterrors.ErrNotFound) || errors.Is(err, paymenterrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Payment", booking.PaymentID)
		}
		s.cfg.Log.Error("Failed to get payment", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}
	return payment, nil
}

func (s *paymentService) GetHistory(ctx context.Context, customerID string, limit, offset int) ([]*model.Payment, int64, error) {
	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var payments []*model.Payment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByCustomer(sharedCtx, customerID)
		if err != nil {
			s.cfg.Log.Error("Failed to count payments", "customer_id", customerID, "error", err)
			errCount = apperrors.Internal("Failed to count payments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		payments, err = s.repo.FindByCustomer(sharedCtx, customerID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list payments", "customer_id", customerID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve payments", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return payments, count, nil
}

// Refund closes out a REFUND_PENDING payment. The guide's wallet was
// already debited when the booking was cancelled, so only the payment
// and booking documents change here.
func (s *paymentService) Refund(ctx context.Context, paymentID string, input *RefundInput) (*model.Payment, error) {
	if input == nil || strings.TrimSpace(input.RefundReason) == "" {
		return nil, apperrors.InvalidInput("Refund reason is required")
	}

	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, paymenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payment", paymentID)
		}
		if errors.Is(err, paymenterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid payment ID format")
		}
		s.cfg.Log.Error("Failed to get payment for refund", "id", paymentID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}
	if payment.Status != model.PaymentRefundPending {
		return nil, apperrors.InvalidInput("Only refund pending payments can be refunded")
	}
	if input.RefundAmount <= 0 || input.RefundAmount > payment.Amount {
		return nil, apperrors.InvalidInput("Invalid refund amount")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.repo.Update(sessCtx, payment.ID, bson.M{
			"status":        model.PaymentRefunded,
			"refund_reason": input.RefundReason,
			"refunded_at":   now,
			"metadata": bson.M{
				"refundAmount": input.RefundAmount,
				"adminNotes":   input.AdminNotes,
			},
		}); err != nil {
			return apperrors.Internal("Failed to update payment", err)
		}
		if _, err := s.bookings.Update(sessCtx, payment.BookingID, bson.M{
			"payment_status": model.PaymentStateRefunded,
			"refund_reason":  input.RefundReason,
		}); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Refund transaction failed", "payment_id", paymentID, "error", err)
		return nil, err
	}

	s.notify.Notify(ctx, &model.Notification{
		UserID:            payment.CustomerID,
		Type:              model.NotifyPaymentRefunded,
		Title:             "Refund processed",
		Message:           fmt.Sprintf("Your refund of %.2f %s has been processed.", input.RefundAmount, payment.Currency),
		Priority:          model.PriorityHigh,
		RelatedEntityID:   payment.BookingID,
		RelatedEntityType: "booking",
	})

	payment.Status = model.PaymentRefunded
	payment.RefundReason = input.RefundReason
	payment.RefundedAt = &now

	s.cfg.Log.Info("Payment refunded",
		"payment_id", paymentID,
		"amount", input.RefundAmount,
		"booking_id", payment.BookingID,
	)
	return payment, nil
}

func (s *paymentService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *paymentService) findByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	if transactionID == "" {
		return nil, apperrors.InvalidInput("Transaction ID cannot be empty")
	}

	payment, err := s.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, paymenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payment", transactionID)
		}
		s.cfg.Log.Error("Failed to find payment by transaction ID", "transaction_id", transactionID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}
	return payment, nil
}
