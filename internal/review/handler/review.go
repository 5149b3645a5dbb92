package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/review/service"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	httputil "github.com/azmiruddin-143/Local-Guide-Server/pkg/http"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/middleware"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type ReviewHandler struct {
	service    service.ReviewService
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewReviewHandler(service service.ReviewService, jwtService *jwt.Service, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:    service,
		jwtService: jwtService,
		log:        log,
	}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	var input model.ReviewCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	review, err := h.service.Create(r.Context(), claims.UserID, &input)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, "Review created successfully", review); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ReviewHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	review, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Review retrieved successfully", review); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ReviewHandler) GetForTour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeList(w, r, "GetForTour", func(limit, offset int) ([]*model.Review, int64, error) {
		return h.service.GetForTour(r.Context(), ps.ByName("tourId"), limit, offset)
	})
}

func (h *ReviewHandler) GetForGuide(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeList(w, r, "GetForGuide", func(limit, offset int) ([]*model.Review, int64, error) {
		return h.service.GetForGuide(r.Context(), ps.ByName("guideId"), limit, offset)
	})
}

func (h *ReviewHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())
	h.writeList(w, r, "GetMine", func(limit, offset int) ([]*model.Review, int64, error) {
		return h.service.GetByAuthor(r.Context(), claims.UserID, limit, offset)
	})
}

func (h *ReviewHandler) writeList(w http.ResponseWriter, r *http.Request, handler string, fetch func(limit, offset int) ([]*model.Review, int64, error)) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
		}
		return
	}

	reviews, total, err := fetch(limit, int(httputil.Offset(page, limit)))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
		}
		return
	}

	meta := httputil.NewMeta(page, limit, total)
	if err := httputil.WritePaginated(w, "Reviews retrieved successfully", reviews, meta); err != nil {
		h.log.Error("failed to write paginated response", "handler", handler, "error", err)
	}
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	var updates model.ReviewUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	review, err := h.service.Update(r.Context(), claims.UserID, ps.ByName("id"), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Review updated successfully", review); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())
	isAdmin := model.Role(claims.Role) == model.RoleAdmin

	if err := h.service.Delete(r.Context(), claims.UserID, isAdmin, ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Review deleted successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	touristOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleTourist)
	touristOrAdmin := middleware.RequireRoles(h.jwtService, h.log, model.RoleTourist, model.RoleAdmin)

	router.POST("/api/v1/reviews", touristOnly(h.Create))
	router.GET("/api/v1/reviews/mine", touristOnly(h.GetMine))
	router.GET("/api/v1/reviews/id/:id", h.GetByID)
	router.PATCH("/api/v1/reviews/id/:id", touristOnly(h.Update))
	router.DELETE("/api/v1/reviews/id/:id", touristOrAdmin(h.Delete))

	router.GET("/api/v1/reviews/tour/:tourId", h.GetForTour)
	router.GET("/api/v1/reviews/guide/:guideId", h.GetForGuide)
}
