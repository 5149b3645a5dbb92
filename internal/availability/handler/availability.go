package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/availability/service"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	httputil "github.com/azmiruddin-143/Local-Guide-Server/pkg/http"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/middleware"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type AvailabilityHandler struct {
	service    service.AvailabilityService
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, jwtService *jwt.Service, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:    service,
		jwtService: jwtService,
		log:        log,
	}
}

func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	var av model.Availability
	if err := json.NewDecoder(r.Body).Decode(&av); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), claims.UserID, &av); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, "Availability created successfully", av); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *AvailabilityHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	av, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Availability retrieved successfully", av); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *AvailabilityHandler) Browse(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Browse", "error", writeErr)
		}
		return
	}

	availabilities, total, err := h.service.BrowseOpen(r.Context(), limit, int(httputil.Offset(page, limit)))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Browse", "error", writeErr)
		}
		return
	}

	meta := httputil.NewMeta(page, limit, total)
	if err := httputil.WritePaginated(w, "Availabilities retrieved successfully", availabilities, meta); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Browse", "error", err)
	}
}

func (h *AvailabilityHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMine", "error", writeErr)
		}
		return
	}

	availabilities, total, err := h.service.GetByGuide(r.Context(), claims.UserID, limit, int(httputil.Offset(page, limit)))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMine", "error", writeErr)
		}
		return
	}

	meta := httputil.NewMeta(page, limit, total)
	if err := httputil.WritePaginated(w, "Availabilities retrieved successfully", availabilities, meta); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetMine", "error", err)
	}
}

func (h *AvailabilityHandler) CheckSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	guests := 1
	if s := r.URL.Query().Get("guests"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid guests parameter: "+s)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "CheckSlot", "error", writeErr)
			}
			return
		}
		guests = v
	}

	check, err := h.service.CheckSlot(r.Context(), ps.ByName("id"), guests)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckSlot", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Slot availability checked", check); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckSlot", "error", err)
	}
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	var updates model.AvailabilityUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), claims.UserID, ps.ByName("id"), &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Availability updated successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	if err := h.service.Delete(r.Context(), claims.UserID, ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Availability deleted successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	guideOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleGuide, model.RoleAdmin)

	router.POST("/api/v1/availabilities", guideOnly(h.Create))
	router.GET("/api/v1/availabilities", h.Browse)
	router.GET("/api/v1/availabilities/mine", guideOnly(h.GetMine))
	router.GET("/api/v1/availabilities/id/:id", h.GetByID)
	router.GET("/api/v1/availabilities/id/:id/check", h.CheckSlot)
	router.PATCH("/api/v1/availabilities/id/:id", guideOnly(h.Update))
	router.DELETE("/api/v1/availabilities/id/:id", guideOnly(h.Delete))
}
