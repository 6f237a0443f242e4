package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles user account and wallet-lifecycle endpoints.
type UserHandler struct {
	authSvc   ports.AuthService
	walletSvc ports.WalletService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authSvc ports.AuthService, walletSvc ports.WalletService) *UserHandler {
	return &UserHandler{authSvc: authSvc, walletSvc: walletSvc}
}

// Register handles POST /api/v1/users.
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.authSvc.Register(c.Request.Context(), ports.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.Role(req.Role),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewUserResponse(user))
}

// Me handles GET /api/v1/users/me. The profile carries the user's wallets
// with their derived funds.
func (h *UserHandler) Me(c *gin.Context) {
	userID := authedUserID(c)

	user, err := h.authSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	views, err := h.walletSvc.ListUserWallets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	wallets := make([]dto.WalletResponse, 0, len(views))
	for _, v := range views {
		wallets = append(wallets, dto.NewWalletResponse(v))
	}

	response.OK(c, gin.H{
		"user":    dto.NewUserResponse(user),
		"wallets": wallets,
	})
}

// CreateWallet handles POST /api/v1/users/:id/wallets. A user can only
// create wallets for their own account.
func (h *UserHandler) CreateWallet(c *gin.Context) {
	pathID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}
	if pathID != authedUserID(c) {
		response.Error(c, apperror.ErrNotFound("user"))
		return
	}

	wallet, err := h.walletSvc.CreateWallet(c.Request.Context(), pathID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewWalletResponse(ports.WalletView{Wallet: *wallet}))
}

// authedUserID extracts the authenticated user ID set by the JWT middleware.
func authedUserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(middleware.CtxUserID)
	userID, _ := id.(uuid.UUID)
	return userID
}
