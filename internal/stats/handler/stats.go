package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/stats/service"
	httputil "github.com/azmiruddin-143/Local-Guide-Server/pkg/http"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/middleware"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type StatsHandler struct {
	service    service.StatsService
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewStatsHandler(service service.StatsService, jwtService *jwt.Service, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		service:    service,
		jwtService: jwtService,
		log:        log,
	}
}

func (h *StatsHandler) AdminDashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	dashboard, err := h.service.AdminDashboard(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AdminDashboard", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Dashboard retrieved successfully", dashboard); err != nil {
		h.log.Error("failed to write success response", "handler", "AdminDashboard", "error", err)
	}
}

func (h *StatsHandler) GuideDashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	dashboard, err := h.service.GuideDashboard(r.Context(), claims.UserID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GuideDashboard", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Dashboard retrieved successfully", dashboard); err != nil {
		h.log.Error("failed to write success response", "handler", "GuideDashboard", "error", err)
	}
}

func (h *StatsHandler) TouristDashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	dashboard, err := h.service.TouristDashboard(r.Context(), claims.UserID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "TouristDashboard", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Dashboard retrieved successfully", dashboard); err != nil {
		h.log.Error("failed to write success response", "handler", "TouristDashboard", "error", err)
	}
}

func (h *StatsHandler) RegisterRoutes(router *httprouter.Router) {
	adminOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleAdmin)
	guideOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleGuide)
	touristOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleTourist)

	router.GET("/api/v1/admin/stats", adminOnly(h.AdminDashboard))
	router.GET("/api/v1/stats/guide", guideOnly(h.GuideDashboard))
	router.GET("/api/v1/stats/me", touristOnly(h.TouristDashboard))
}
