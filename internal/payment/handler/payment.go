package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/payment/service"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	httputil "github.com/azmiruddin-143/Local-Guide-Server/pkg/http"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/middleware"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type PaymentHandler struct {
	service    service.PaymentService
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, jwtService *jwt.Service, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:    service,
		jwtService: jwtService,
		log:        log,
	}
}

type initiateRequest struct {
	BookingID string `json:"bookingId"`
}

func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Initiate", "error", writeErr)
		}
		return
	}

	result, err := h.service.Initiate(r.Context(), claims.UserID, req.BookingID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Initiate", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payment session created successfully", result); err != nil {
		h.log.Error("failed to write success response", "handler", "Initiate", "error", err)
	}
}

func (h *PaymentHandler) Retry(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Retry", "error", writeErr)
		}
		return
	}

	result, err := h.service.Retry(r.Context(), claims.UserID, req.BookingID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Retry", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payment session created successfully", result); err != nil {
		h.log.Error("failed to write success response", "handler", "Retry", "error", err)
	}
}

// Success handles the gateway's form-encoded success callback. tran_id
// rides on the query string we handed the gateway at session init;
// val_id arrives in the POST body.
func (h *PaymentHandler) Success(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid callback payload")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Success", "error", writeErr)
		}
		return
	}

	transactionID := r.URL.Query().Get("tran_id")
	if transactionID == "" {
		transactionID = r.PostFormValue("tran_id")
	}
	valID := r.PostFormValue("val_id")

	bookingID, err := h.service.HandleSuccess(r.Context(), transactionID, valID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Success", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payment completed successfully", map[string]string{"bookingId": bookingID}); err != nil {
		h.log.Error("failed to write success response", "handler", "Success", "error", err)
	}
}

func (h *PaymentHandler) Fail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	transactionID, meta := callbackMeta(r)

	if err := h.service.HandleFail(r.Context(), transactionID, meta); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Fail", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payment failure recorded", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Fail", "error", err)
	}
}

func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	transactionID, meta := callbackMeta(r)

	if err := h.service.HandleCancel(r.Context(), transactionID, meta); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payment cancellation recorded", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func callbackMeta(r *http.Request) (string, map[string]any) {
	_ = r.ParseForm()

	transactionID := r.URL.Query().Get("tran_id")
	if transactionID == "" {
		transactionID = r.PostFormValue("tran_id")
	}

	meta := make(map[string]any, len(r.Form))
	for key, values := range r.Form {
		if len(values) > 0 {
			meta[key] = values[0]
		}
	}
	return transactionID, meta
}

func (h *PaymentHandler) GetByBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())
	isAdmin := model.Role(claims.Role) == model.RoleAdmin

	payment, err := h.service.GetByBooking(r.Context(), claims.UserID, isAdmin, ps.ByName("bookingId"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByBooking", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payment retrieved successfully", payment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByBooking", "error", err)
	}
}

func (h *PaymentHandler) GetHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetHistory", "error", writeErr)
		}
		return
	}

	payments, total, err := h.service.GetHistory(r.Context(), claims.UserID, limit, int(httputil.Offset(page, limit)))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetHistory", "error", writeErr)
		}
		return
	}

	meta := httputil.NewMeta(page, limit, total)
	if err := httputil.WritePaginated(w, "Payments retrieved successfully", payments, meta); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetHistory", "error", err)
	}
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var input service.RefundInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Refund", "error", writeErr)
		}
		return
	}

	payment, err := h.service.Refund(r.Context(), ps.ByName("id"), &input)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Refund", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payment refunded successfully", payment); err != nil {
		h.log.Error("failed to write success response", "handler", "Refund", "error", err)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	authOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleTourist, model.RoleGuide, model.RoleAdmin)
	touristOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleTourist)
	adminOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleAdmin)

	router.POST("/api/v1/payments/initiate", touristOnly(h.Initiate))
	router.POST("/api/v1/payments/retry", touristOnly(h.Retry))
	router.GET("/api/v1/payments/my-history", touristOnly(h.GetHistory))
	router.GET("/api/v1/payments/booking/:bookingId", authOnly(h.GetByBooking))

	// Gateway callbacks, unauthenticated and form-encoded.
	router.POST("/api/v1/payments/success", h.Success)
	router.POST("/api/v1/payments/fail", h.Fail)
	router.POST("/api/v1/payments/cancel", h.Cancel)

	router.POST("/api/v1/admin/payments/id/:id/refund", adminOnly(h.Refund))
}
