package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/wallet/service"
	httputil "github.com/azmiruddin-143/Local-Guide-Server/pkg/http"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/middleware"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type WalletHandler struct {
	service    service.WalletService
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewWalletHandler(service service.WalletService, jwtService *jwt.Service, log *logger.Logger) *WalletHandler {
	return &WalletHandler{
		service:    service,
		jwtService: jwtService,
		log:        log,
	}
}

func (h *WalletHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	wallet, err := h.service.GetBalance(r.Context(), claims.UserID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMine", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Wallet retrieved successfully", wallet); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMine", "error", err)
	}
}

func (h *WalletHandler) GetByGuide(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	wallet, err := h.service.GetBalance(r.Context(), ps.ByName("guideId"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByGuide", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, "Wallet retrieved successfully", wallet); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByGuide", "error", err)
	}
}

func (h *WalletHandler) RegisterRoutes(router *httprouter.Router) {
	guideOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleGuide)
	adminOnly := middleware.RequireRoles(h.jwtService, h.log, model.RoleAdmin)

	router.GET("/api/v1/wallet", guideOnly(h.GetMine))
	router.GET("/api/v1/admin/wallets/id/:guideId", adminOnly(h.GetByGuide))
}
