package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/errors"
	bookingrepo "github.com/azmiruddin-143/Local-Guide-Server/internal/booking/repository"
	paymenterrors "github.com/azmiruddin-143/Local-Guide-Server/internal/payment/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/payment/gateway"
	userservice "github.com/azmiruddin-143/Local-Guide-Server/internal/user/service"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	mongotx "github.com/azmiruddin-143/Local-Guide-Server/pkg/db/mongo"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type mockPaymentRepository struct {
	createFunc     func(ctx context.Context, payment *model.Payment) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Payment, error)
	findByTranFunc func(ctx context.Context, transactionID string) (*model.Payment, error)
	updateFunc     func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error)
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, payment)
	}
	payment.ID = testPaymentID
	return nil
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, paymenterrors.ErrNotFound
}

func (m *mockPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	if m.findByTranFunc != nil {
		return m.findByTranFunc(ctx, transactionID)
	}
	return nil, paymenterrors.ErrNotFound
}

func (m *mockPaymentRepository) FindByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*model.Payment, error) {
	return nil, nil
}

func (m *mockPaymentRepository) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	return 0, nil
}

func (m *mockPaymentRepository) Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockPaymentRepository) MarkRefundPendingByBooking(ctx context.Context, bookingID, reason string) error {
	return nil
}

func (m *mockPaymentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockBookingRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
	updateFunc   func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingerrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, filter bookingrepo.BookingFilter, limit, offset int) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter bookingrepo.BookingFilter) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) CountByStatus(ctx context.Context, filter bookingrepo.BookingFilter) ([]model.StatusCount, error) {
	return nil, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockBookingRepository) UpdateStatusGuarded(ctx context.Context, id string, from []model.BookingStatus, updates bson.M) error {
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockAvailabilityService struct {
	checkSlotFunc func(ctx context.Context, id string, guests int) (*model.SlotCheck, error)
	reserveFunc   func(ctx context.Context, availabilityID, tourID string, guests int) error
}

func (m *mockAvailabilityService) Create(ctx context.Context, guideID string, av *model.Availability) error {
	return nil
}

func (m *mockAvailabilityService) GetByID(ctx context.Context, id string) (*model.Availability, error) {
	return nil, nil
}

func (m *mockAvailabilityService) GetByGuide(ctx context.Context, guideID string, limit, offset int) ([]*model.Availability, int64, error) {
	return nil, 0, nil
}

func (m *mockAvailabilityService) BrowseOpen(ctx context.Context, limit, offset int) ([]*model.Availability, int64, error) {
	return nil, 0, nil
}

func (m *mockAvailabilityService) CheckSlot(ctx context.Context, id string, guests int) (*model.SlotCheck, error) {
	if m.checkSlotFunc != nil {
		return m.checkSlotFunc(ctx, id, guests)
	}
	return &model.SlotCheck{Available: true}, nil
}

func (m *mockAvailabilityService) Update(ctx context.Context, guideID, id string, updates *model.AvailabilityUpdate) error {
	return nil
}

func (m *mockAvailabilityService) Delete(ctx context.Context, guideID, id string) error {
	return nil
}

func (m *mockAvailabilityService) Reserve(ctx context.Context, availabilityID, tourID string, guests int) error {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, availabilityID, tourID, guests)
	}
	return nil
}

func (m *mockAvailabilityService) Release(ctx context.Context, guideID string, date time.Time, startTime string, guests int) error {
	return nil
}

func (m *mockAvailabilityService) Cleanup(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockWalletService struct {
	creditFunc func(ctx context.Context, guideID string, amount float64, paymentID string) error
}

func (m *mockWalletService) GetBalance(ctx context.Context, guideID string) (*model.Wallet, error) {
	return &model.Wallet{GuideID: guideID}, nil
}

func (m *mockWalletService) Credit(ctx context.Context, guideID string, amount float64, paymentID string) error {
	if m.creditFunc != nil {
		return m.creditFunc(ctx, guideID, amount, paymentID)
	}
	return nil
}

func (m *mockWalletService) DebitForCancellation(ctx context.Context, guideID string, amount float64) error {
	return nil
}

func (m *mockWalletService) MoveToPending(ctx context.Context, guideID string, amount float64) error {
	return nil
}

func (m *mockWalletService) SettlePayout(ctx context.Context, guideID string, amount, fee float64) error {
	return nil
}

func (m *mockWalletService) ReversePayout(ctx context.Context, guideID string, amount float64, restorePayable bool) error {
	return nil
}

func (m *mockWalletService) CreditPayable(ctx context.Context, guideID string, amount float64) error {
	return nil
}

type mockUserService struct {
	getByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserService) Register(ctx context.Context, input *userservice.RegisterInput) (*model.User, error) {
	return nil, nil
}

func (m *mockUserService) Login(ctx context.Context, input *userservice.LoginInput) (*userservice.TokenPair, error) {
	return nil, nil
}

func (m *mockUserService) Refresh(ctx context.Context, refreshToken string) (*userservice.TokenPair, error) {
	return nil, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.User{ID: id, Name: "Test Tourist", Email: "tourist@example.com"}, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id string, updates *model.UserUpdate) error {
	return nil
}

func (m *mockUserService) GetAll(ctx context.Context, role model.Role, limit, offset int) ([]*model.User, int64, error) {
	return nil, 0, nil
}

func (m *mockUserService) SetActive(ctx context.Context, id string, active bool) error {
	return nil
}

type mockNotificationService struct {
	notified []*model.Notification
}

func (m *mockNotificationService) Notify(ctx context.Context, n *model.Notification) {
	m.notified = append(m.notified, n)
}

func (m *mockNotificationService) GetForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*model.Notification, int64, error) {
	return nil, 0, nil
}

func (m *mockNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return nil
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

type mockGateway struct {
	initFunc     func(ctx context.Context, req *gateway.SessionRequest) (*gateway.SessionResponse, error)
	validateFunc func(ctx context.Context, valID string) (*gateway.ValidationResult, error)
}

func (m *mockGateway) InitSession(ctx context.Context, req *gateway.SessionRequest) (*gateway.SessionResponse, error) {
	if m.initFunc != nil {
		return m.initFunc(ctx, req)
	}
	return &gateway.SessionResponse{Status: "SUCCESS", GatewayPageURL: "https://gateway.example/pay"}, nil
}

func (m *mockGateway) Validate(ctx context.Context, valID string) (*gateway.ValidationResult, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, valID)
	}
	return &gateway.ValidationResult{Status: "VALID"}, nil
}

const (
	testTouristID   = "64f1b2c3d4e5f6a7b8c9d0b1"
	testGuideID     = "64f1b2c3d4e5f6a7b8c9d0b2"
	testTourID      = "64f1b2c3d4e5f6a7b8c9d0b3"
	testSlotID      = "64f1b2c3d4e5f6a7b8c9d0b4"
	testBookingID   = "64f1b2c3d4e5f6a7b8c9d0b5"
	testPaymentID   = "64f1b2c3d4e5f6a7b8c9d0b6"
	testTranID      = "TXN_abc123"
	testGatewayVal  = "VAL_xyz789"
	testRefundAmout = 150.0
)

type testDeps struct {
	repo         *mockPaymentRepository
	bookings     *mockBookingRepository
	availability *mockAvailabilityService
	wallets      *mockWalletService
	users        *mockUserService
	notify       *mockNotificationService
	gw           *mockGateway
}

func newTestService(deps testDeps) PaymentService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	if deps.repo == nil {
		deps.repo = &mockPaymentRepository{}
	}
	if deps.bookings == nil {
		deps.bookings = &mockBookingRepository{}
	}
	if deps.availability == nil {
		deps.availability = &mockAvailabilityService{}
	}
	if deps.wallets == nil {
		deps.wallets = &mockWalletService{}
	}
	if deps.users == nil {
		deps.users = &mockUserService{}
	}
	if deps.notify == nil {
		deps.notify = &mockNotificationService{}
	}
	if deps.gw == nil {
		deps.gw = &mockGateway{}
	}

	return NewPaymentService(deps.repo, deps.bookings, deps.availability, deps.wallets, deps.users, deps.notify, deps.gw, &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	})
}

func pendingBooking() *model.Booking {
	return &model.Booking{
		ID:             testBookingID,
		TourID:         testTourID,
		TouristID:      testTouristID,
		GuideID:        testGuideID,
		AvailabilityID: testSlotID,
		NumGuests:      3,
		AmountTotal:    150,
		Currency:       "BDT",
		Status:         model.BookingPending,
		PaymentStatus:  model.PaymentStatePending,
	}
}

func TestNewTransactionID_Format(t *testing.T) {
	id := newTransactionID()
	assert.True(t, strings.HasPrefix(id, "TXN_"))
	assert.Len(t, id, 4+32)
	assert.NotEqual(t, id, newTransactionID())
}

func TestInitiate_CreatesPaymentAndOpensSession(t *testing.T) {
	var createdPayment *model.Payment
	var bookingUpdates bson.M
	deps := testDeps{
		repo: &mockPaymentRepository{
			createFunc: func(ctx context.Context, payment *model.Payment) error {
				payment.ID = testPaymentID
				createdPayment = payment
				return nil
			},
		},
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return pendingBooking(), nil
			},
			updateFunc: func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
				bookingUpdates = updates
				return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			},
		},
	}
	svc := newTestService(deps)

	result, err := svc.Initiate(context.Background(), testTouristID, testBookingID)
	require.NoError(t, err)
	require.NotNil(t, createdPayment)

	assert.Equal(t, "https://gateway.example/pay", result.PaymentURL)
	assert.True(t, strings.HasPrefix(result.TransactionID, "TXN_"))
	assert.Equal(t, model.PaymentInitiated, createdPayment.Status)
	assert.Equal(t, 150.0, createdPayment.Amount)
	assert.Equal(t, testTouristID, createdPayment.CustomerID)
	assert.Equal(t, model.PaymentStateInitiated, bookingUpdates["payment_status"])
	assert.Equal(t, testPaymentID, bookingUpdates["payment_id"])
}

func TestInitiate_RejectsForeignBooking(t *testing.T) {
	svc := newTestService(testDeps{
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return pendingBooking(), nil
			},
		},
	})

	_, err := svc.Initiate(context.Background(), testGuideID, testBookingID)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestInitiate_RejectsAlreadyPaidBooking(t *testing.T) {
	booking := pendingBooking()
	booking.PaymentStatus = model.PaymentStateSucceeded

	svc := newTestService(testDeps{
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return booking, nil
			},
		},
	})

	_, err := svc.Initiate(context.Background(), testTouristID, testBookingID)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestInitiate_RejectsFullSlot(t *testing.T) {
	svc := newTestService(testDeps{
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return pendingBooking(), nil
			},
		},
		availability: &mockAvailabilityService{
			checkSlotFunc: func(ctx context.Context, id string, guests int) (*model.SlotCheck, error) {
				return &model.SlotCheck{Available: false, Reason: "Only 1 spot(s) remaining for this slot."}, nil
			},
		},
	})

	_, err := svc.Initiate(context.Background(), testTouristID, testBookingID)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
	assert.Contains(t, appErr.Message, "Only 1 spot(s) remaining")
}

func TestInitiate_GatewayFailureRollsBack(t *testing.T) {
	var paymentStatus, bookingStatus any
	svc := newTestService(testDeps{
		repo: &mockPaymentRepository{
			updateFunc: func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
				paymentStatus = updates["status"]
				return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			},
		},
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return pendingBooking(), nil
			},
			updateFunc: func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
				if status, ok := updates["payment_status"]; ok {
					bookingStatus = status
				}
				return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			},
		},
		gw: &mockGateway{
			initFunc: func(ctx context.Context, req *gateway.SessionRequest) (*gateway.SessionResponse, error) {
				return nil, assert.AnError
			},
		},
	})

	_, err := svc.Initiate(context.Background(), testTouristID, testBookingID)
	require.Error(t, err)
	assert.Equal(t, model.PaymentFailed, paymentStatus)
	assert.Equal(t, model.PaymentStatePending, bookingStatus)
}

func TestHandleSuccess_FlipsPaymentAndBooking(t *testing.T) {
	var paymentUpdates, bookingUpdates bson.M
	var reserved bool
	var creditedAmount float64
	deps := testDeps{
		repo: &mockPaymentRepository{
			findByTranFunc: func(ctx context.Context, transactionID string) (*model.Payment, error) {
				return &model.Payment{
					ID:            testPaymentID,
					BookingID:     testBookingID,
					CustomerID:    testTouristID,
					TransactionID: testTranID,
					Amount:        150,
					Status:        model.PaymentInitiated,
				}, nil
			},
			updateFunc: func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
				paymentUpdates = updates
				return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			},
		},
		bookings: &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				booking := pendingBooking()
				booking.PaymentStatus = model.PaymentStateInitiated
				return booking, nil
			},
			updateFunc: func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
				bookingUpdates = updates
				return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			},
		},
		availability: &mockAvailabilityService{
			reserveFunc: func(ctx context.Context, availabilityID, tourID string, guests int) error {
				reserved = true
				assert.Equal(t, testSlotID, availabilityID)
				assert.Equal(t, testTourID, tourID)
				assert.Equal(t, 3, guests)
				return nil
			},
		},
		wallets: &mockWalletService{
			creditFunc: func(ctx context.Context, guideID string, amount float64, paymentID string) error {
				creditedAmount = amount
				assert.Equal(t, testGuideID, guideID)
				assert.Equal(t, testPaymentID, paymentID)
				return nil
			},
		},
		notify: &mockNotificationService{},
	}
	svc := newTestService(deps)

	bookingID, err := svc.HandleSuccess(context.Background(), testTranID, testGatewayVal)
	require.NoError(t, err)

	assert.Equal(t, testBookingID, bookingID)
	assert.Equal(t, model.PaymentPaid, paymentUpdates["status"])
	assert.Equal(t, model.PaymentStateSucceeded, bookingUpdates["payment_status"])
	assert.True(t, reserved)
	assert.Equal(t, 150.0, creditedAmount)
	assert.Len(t, deps.notify.notified, 2)
}

func TestHandleSuccess_RejectsInvalidValidation(t *testing.T) {
	svc := newTestService(testDeps{
		gw: &mockGateway{
			validateFunc: func(ctx context.Context, valID string) (*gateway.ValidationResult, error) {
				return &gateway.ValidationResult{Status: "INVALID_TRANSACTION"}, nil
			},
		},
	})

	_, err := svc.HandleSuccess(context.Background(), testTranID, testGatewayVal)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestHandleCancel_ResetsBookingToPending(t *testing.T) {
	var bookingUpdates bson.M
	svc := newTestService(testDeps{
		repo: &mockPaymentRepository{
			findByTranFunc: func(ctx context.Context, transactionID string) (*model.Payment, error) {
				return &model.Payment{ID: testPaymentID, BookingID: testBookingID, TransactionID: testTranID}, nil
			},
		},
		bookings: &mockBookingRepository{
			updateFunc: func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
				bookingUpdates = updates
				return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			},
		},
	})

	err := svc.HandleCancel(context.Background(), testTranID, map[string]any{"tran_id": testTranID})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatePending, bookingUpdates["payment_status"])
}

func TestRefund_RequiresRefundPendingStatus(t *testing.T) {
	svc := newTestService(testDeps{
		repo: &mockPaymentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Payment, error) {
				return &model.Payment{ID: testPaymentID, BookingID: testBookingID, Amount: testRefundAmout, Status: model.PaymentPaid}, nil
			},
		},
	})

	_, err := svc.Refund(context.Background(), testPaymentID, &RefundInput{
		RefundReason: "duplicate charge",
		RefundAmount: 50,
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestRefund_CompletesRefundPendingPayment(t *testing.T) {
	var paymentUpdates, bookingUpdates bson.M
	deps := testDeps{
		repo: &mockPaymentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Payment, error) {
				return &model.Payment{
					ID:         testPaymentID,
					BookingID:  testBookingID,
					CustomerID: testTouristID,
					Amount:     testRefundAmout,
					Currency:   "BDT",
					Status:     model.PaymentRefundPending,
				}, nil
			},
			updateFunc: func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
				paymentUpdates = updates
				return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			},
		},
		bookings: &mockBookingRepository{
			updateFunc: func(ctx context.Context, id string, updates bson.M) (*mongo.UpdateResult, error) {
				bookingUpdates = updates
				return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			},
		},
		notify: &mockNotificationService{},
	}
	svc := newTestService(deps)

	payment, err := svc.Refund(context.Background(), testPaymentID, &RefundInput{
		RefundReason: "booking cancelled",
		RefundAmount: testRefundAmout,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentRefunded, payment.Status)
	assert.Equal(t, model.PaymentRefunded, paymentUpdates["status"])
	assert.Equal(t, model.PaymentStateRefunded, bookingUpdates["payment_status"])
	assert.Equal(t, "booking cancelled", bookingUpdates["refund_reason"])

	require.Len(t, deps.notify.notified, 1)
	assert.Equal(t, model.NotifyPaymentRefunded, deps.notify.notified[0].Type)
}

func TestRefund_RejectsExcessiveAmount(t *testing.T) {
	svc := newTestService(testDeps{
		repo: &mockPaymentRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Payment, error) {
				return &model.Payment{ID: testPaymentID, Amount: 100, Status: model.PaymentRefundPending}, nil
			},
		},
	})

	_, err := svc.Refund(context.Background(), testPaymentID, &RefundInput{
		RefundReason: "overcharge",
		RefundAmount: 200,
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}
