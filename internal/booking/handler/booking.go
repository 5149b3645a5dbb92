package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/booking/service"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	httputil "github.com/azmiruddin-143/Local-Guide-Server/pkg/http"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/middleware"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type BookingHandler struct {
	service    service.BookingService
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewBookingHandler(service service.BookingService, jwtService *jwt.Service, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:    service,
		jwtService: jwtService,
		log:        log,
	}
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func actorFromRequest(r *http.Request) service.Actor {
	claims := middleware.ClaimsFromContext(r.Context())
	return service.Actor{UserID: claims.UserID, Role: model.Role(claims.Role)}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	var input model.BookingCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Create(r.Context(), claims.UserID, &input)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, "Booking created successfully", booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), actorFromRequest(r), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Booking retrieved successfully", booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	status := model.BookingStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))

	bookings, total, stats, err := h.service.List(r.Context(), actorFromRequest(r), status, limit, int(httputil.Offset(page, limit)))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	meta := httputil.NewMeta(page, limit, total).WithStats(stats)
	if err := httputil.WritePaginated(w, "Bookings retrieved successfully", bookings, meta); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Confirm(r.Context(), actorFromRequest(r), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Confirm", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Booking confirmed successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "error", err)
	}
}

func (h *BookingHandler) Decline(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req reasonRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.service.Decline(r.Context(), actorFromRequest(r), ps.ByName("id"), req.Reason); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Decline", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Booking declined successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Decline", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req reasonRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.service.Cancel(r.Context(), actorFromRequest(r), ps.ByName("id"), req.Reason); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Booking cancelled successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Complete(r.Context(), actorFromRequest(r), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Complete", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Booking completed successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Complete", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	authOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleTourist, model.RoleGuide, model.RoleAdmin)
	touristOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleTourist)
	guideOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleGuide, model.RoleAdmin)

	router.POST("/api/v1/bookings", touristOnly(h.Create))
	router.GET("/api/v1/bookings", authOnly(h.List))
	router.GET("/api/v1/bookings/id/:id", authOnly(h.GetByID))
	router.PATCH("/api/v1/bookings/id/:id/confirm", guideOnly(h.Confirm))
	router.PATCH("/api/v1/bookings/id/:id/decline", guideOnly(h.Decline))
	router.PATCH("/api/v1/bookings/id/:id/cancel", authOnly(h.Cancel))
	router.PATCH("/api/v1/bookings/id/:id/complete", guideOnly(h.Complete))
}
