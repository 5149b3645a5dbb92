package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/payout/service"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	httputil "github.com/azmiruddin-143/Local-Guide-Server/pkg/http"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/middleware"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type PayoutHandler struct {
	service    service.PayoutService
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewPayoutHandler(service service.PayoutService, jwtService *jwt.Service, log *logger.Logger) *PayoutHandler {
	return &PayoutHandler{
		service:    service,
		jwtService: jwtService,
		log:        log,
	}
}

func (h *PayoutHandler) Request(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	var input model.PayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Request", "error", writeErr)
		}
		return
	}

	payout, err := h.service.Request(r.Context(), claims.UserID, &input)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Request", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, "Payout requested successfully", payout); err != nil {
		h.log.Error("failed to write created response", "handler", "Request", "error", err)
	}
}

func (h *PayoutHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())
	isAdmin := model.Role(claims.Role) == model.RoleAdmin

	payout, err := h.service.GetByID(r.Context(), claims.UserID, isAdmin, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payout retrieved successfully", payout); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *PayoutHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMine", "error", writeErr)
		}
		return
	}

	status := payoutStatus(r)
	payouts, total, err := h.service.GetByGuide(r.Context(), claims.UserID, status, limit, int(httputil.Offset(page, limit)))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMine", "error", writeErr)
		}
		return
	}

	meta := httputil.NewMeta(page, limit, total)
	if err := httputil.WritePaginated(w, "Payouts retrieved successfully", payouts, meta); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetMine", "error", err)
	}
}

func (h *PayoutHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListAll", "error", writeErr)
		}
		return
	}

	status := payoutStatus(r)
	payouts, total, stats, err := h.service.ListAll(r.Context(), status, limit, int(httputil.Offset(page, limit)))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListAll", "error", writeErr)
		}
		return
	}

	meta := httputil.NewMeta(page, limit, total).WithStats(stats)
	if err := httputil.WritePaginated(w, "Payouts retrieved successfully", payouts, meta); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListAll", "error", err)
	}
}

func (h *PayoutHandler) MarkProcessing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.MarkProcessing(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MarkProcessing", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payout moved to processing", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkProcessing", "error", err)
	}
}

type sendRequest struct {
	ProviderPayoutID string `json:"providerPayoutId"`
}

func (h *PayoutHandler) MarkSent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req sendRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.service.MarkSent(r.Context(), ps.ByName("id"), req.ProviderPayoutID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MarkSent", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payout sent successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkSent", "error", err)
	}
}

type failRequest struct {
	Reason string `json:"reason"`
}

func (h *PayoutHandler) MarkFailed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req failRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.service.MarkFailed(r.Context(), ps.ByName("id"), req.Reason); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MarkFailed", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payout marked as failed", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkFailed", "error", err)
	}
}

func (h *PayoutHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	if err := h.service.Cancel(r.Context(), claims.UserID, ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Payout cancelled successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func payoutStatus(r *http.Request) model.PayoutStatus {
	return model.PayoutStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
}

func (h *PayoutHandler) RegisterRoutes(router *httprouter.Router) {
	guideOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleGuide)
	adminOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleAdmin)
	guideOrAdmin := middleware.RequireRoles(h.jwtService, h.log, model.RoleGuide, model.RoleAdmin)

	router.POST("/api/v1/payouts", guideOnly(h.Request))
	router.GET("/api/v1/payouts", guideOnly(h.GetMine))
	router.GET("/api/v1/payouts/id/:id", guideOrAdmin(h.GetByID))
	router.PATCH("/api/v1/payouts/id/:id/cancel", guideOnly(h.Cancel))

	router.GET("/api/v1/admin/payouts", adminOnly(h.ListAll))
	router.PATCH("/api/v1/admin/payouts/id/:id/process", adminOnly(h.MarkProcessing))
	router.PATCH("/api/v1/admin/payouts/id/:id/send", adminOnly(h.MarkSent))
	router.PATCH("/api/v1/admin/payouts/id/:id/fail", adminOnly(h.MarkFailed))
}
