package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet and ledger endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
	ledgerSvc ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, ledgerSvc ports.LedgerService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, ledgerSvc: ledgerSvc}
}

// GetWallet handles GET /api/v1/wallets/:id.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	view, err := h.walletSvc.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(*view))
}

// ListTransactions handles GET /api/v1/wallets/:id/transactions. The history
// includes rejected attempts.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	txs, err := h.ledgerSvc.ListTransactions(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txs))
	for _, t := range txs {
		items = append(items, dto.NewTransactionResponse(t))
	}

	response.OK(c, items)
}

// AddFunds handles POST /api/v1/wallets/:id/funds.
func (h *WalletHandler) AddFunds(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	var req dto.AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	if err := h.ledgerSvc.AddFunds(c.Request.Context(), walletID, req.Amount); err != nil {
		response.Error(c, err)
		return
	}

	funds, err := h.ledgerSvc.Funds(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"funds": funds})
}

// Charge handles POST /api/v1/wallets/:id/charge.
func (h *WalletHandler) Charge(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	var req dto.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	sourceID, err := uuid.Parse(req.SourceWallet)
	if err != nil {
		response.Error(c, apperror.Validation("invalid source wallet id"))
		return
	}

	if err := h.ledgerSvc.Charge(c.Request.Context(), ports.ChargeRequest{
		WalletID:     walletID,
		SourceWallet: sourceID,
		Amount:       req.Amount,
		Invoice:      req.Invoice,
	}); err != nil {
		response.Error(c, err)
		return
	}

	funds, err := h.ledgerSvc.Funds(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"funds": funds})
}
