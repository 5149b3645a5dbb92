package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/user/service"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	httputil "github.com/azmiruddin-143/Local-Guide-Server/pkg/http"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/middleware"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type UserHandler struct {
	service    service.UserService
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewUserHandler(service service.UserService, jwtService *jwt.Service, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service:    service,
		jwtService: jwtService,
		log:        log,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "error", writeErr)
		}
		return
	}

	user, err := h.service.Register(r.Context(), &input)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, "Account created successfully", user); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "error", err)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "error", writeErr)
		}
		return
	}

	pair, err := h.service.Login(r.Context(), &input)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "error", writeErr)
		}
		return
	}

	h.setAuthCookie(w, r, pair.AccessToken)
	if err := httputil.WriteSuccess(w, "Logged in successfully", pair); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "error", err)
	}
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Refresh", "error", writeErr)
		}
		return
	}

	pair, err := h.service.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Refresh", "error", writeErr)
		}
		return
	}

	h.setAuthCookie(w, r, pair.AccessToken)
	if err := httputil.WriteSuccess(w, "Token refreshed successfully", pair); err != nil {
		h.log.Error("failed to write success response", "handler", "Refresh", "error", err)
	}
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	if err := httputil.WriteSuccess(w, "Logged out successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Logout", "error", err)
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	user, err := h.service.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMe", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Profile retrieved successfully", user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMe", "error", err)
	}
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	var updates model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateMe", "error", writeErr)
		}
		return
	}

	if err := h.service.UpdateProfile(r.Context(), claims.UserID, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateMe", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Profile updated successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateMe", "error", err)
	}
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "User retrieved successfully", user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	role := model.Role(r.URL.Query().Get("role"))
	users, total, err := h.service.GetAll(r.Context(), role, limit, int(httputil.Offset(page, limit)))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	meta := httputil.NewMeta(page, limit, total)
	if err := httputil.WritePaginated(w, "Users retrieved successfully", users, meta); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var payload struct {
		IsActive *bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.IsActive == nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Request body must include isActive")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetActive", "error", writeErr)
		}
		return
	}

	if err := h.service.SetActive(r.Context(), ps.ByName("id"), *payload.IsActive); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetActive", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Account status updated", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "SetActive", "error", err)
	}
}

func (h *UserHandler) setAuthCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	authOnly := middleware.RequireRoles(h.jwtService, h.log)
	adminOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleAdmin)

	router.POST("/api/v1/auth/register", h.Register)
	router.POST("/api/v1/auth/login", h.Login)
	router.POST("/api/v1/auth/refresh", h.Refresh)
	router.POST("/api/v1/auth/logout", h.Logout)

	router.GET("/api/v1/users/me", authOnly(h.GetMe))
	router.PATCH("/api/v1/users/me", authOnly(h.UpdateMe))
	router.GET("/api/v1/users/id/:id", authOnly(h.GetByID))

	router.GET("/api/v1/admin/users", adminOnly(h.GetAll))
	router.PATCH("/api/v1/admin/users/id/:id/status", adminOnly(h.SetActive))
}
