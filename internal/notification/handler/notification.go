package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/notification/service"
	httputil "github.com/azmiruddin-143/Local-Guide-Server/pkg/http"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/middleware"
)

type NotificationHandler struct {
	service    service.NotificationService
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewNotificationHandler(service service.NotificationService, jwtService *jwt.Service, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		service:    service,
		jwtService: jwtService,
		log:        log,
	}
}

func (h *NotificationHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMine", "error", writeErr)
		}
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, total, err := h.service.GetForUser(r.Context(), claims.UserID, unreadOnly, limit, int(httputil.Offset(page, limit)))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMine", "error", writeErr)
		}
		return
	}

	meta := httputil.NewMeta(page, limit, total)
	if err := httputil.WritePaginated(w, "Notifications retrieved successfully", notifications, meta); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetMine", "error", err)
	}
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	count, err := h.service.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UnreadCount", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Unread count retrieved", map[string]int64{"unread": count}); err != nil {
		h.log.Error("failed to write success response", "handler", "UnreadCount", "error", err)
	}
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	if err := h.service.MarkRead(r.Context(), claims.UserID, ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MarkRead", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Notification marked as read", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkRead", "error", err)
	}
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	updated, err := h.service.MarkAllRead(r.Context(), claims.UserID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MarkAllRead", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "All notifications marked as read", map[string]int64{"updated": updated}); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkAllRead", "error", err)
	}
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	authOnly := middleware.RequireRoles(h.jwtService, h.log)

	router.GET("/api/v1/notifications", authOnly(h.GetMine))
	router.GET("/api/v1/notifications/unread-count", authOnly(h.UnreadCount))
	router.PATCH("/api/v1/notifications/id/:id/read", authOnly(h.MarkRead))
	router.PATCH("/api/v1/notifications/read-all", authOnly(h.MarkAllRead))
}
