package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- User Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewUserHandler(mockAuth, mockWallet)

	userID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
		Role:     domain.RoleCustomer,
	}).Return(&domain.User{
		ID:       userID,
		Username: "testuser",
		Email:    "test@example.com",
		Role:     domain.RoleCustomer,
	}, nil)

	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
		Role:     "customer",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, userID.String(), data["id"])
	assert.Equal(t, "testuser", data["username"])
	assert.Equal(t, "customer", data["role"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewUserHandler(mockAuth, mockWallet)

	// Empty body => binding error
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_UsernameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewUserHandler(mockAuth, mockWallet)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrUsernameExists())

	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "taken",
		Email:    "taken@example.com",
		Password: "password123",
		Role:     "merchant",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewUserHandler(mockAuth, mockWallet)

	userID := uuid.New()
	walletID := uuid.New()
	mockWallet.EXPECT().CreateWallet(gomock.Any(), userID).Return(&domain.Wallet{
		ID:     walletID,
		UserID: userID,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}
	c.Set(middleware.CtxUserID, userID)

	h.CreateWallet(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, walletID.String(), data["id"])
}

func TestCreateWallet_OtherUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewUserHandler(mockAuth, mockWallet)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
	c.Set(middleware.CtxUserID, uuid.New())

	h.CreateWallet(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateWallet_MerchantLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewUserHandler(mockAuth, mockWallet)

	userID := uuid.New()
	mockWallet.EXPECT().CreateWallet(gomock.Any(), userID).Return(nil, apperror.ErrMerchantWalletLimit())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}
	c.Set(middleware.CtxUserID, userID)

	h.CreateWallet(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewUserHandler(mockAuth, mockWallet)

	userID := uuid.New()
	walletID := uuid.New()
	mockAuth.EXPECT().GetProfile(gomock.Any(), userID).Return(&domain.User{
		ID:       userID,
		Username: "testuser",
		Role:     domain.RoleCustomer,
	}, nil)
	mockWallet.EXPECT().ListUserWallets(gomock.Any(), userID).Return([]ports.WalletView{
		{Wallet: domain.Wallet{ID: walletID, UserID: userID}, Funds: decimal.NewFromInt(42)},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxUserID, userID)

	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "testuser", user["username"])
	wallets := data["wallets"].([]interface{})
	require.Len(t, wallets, 1)
}

// --- Auth Handler Tests ---

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "testuser", "password123").Return("jwt-token-123", expiry, nil)

	body, _ := json.Marshal(dto.LoginRequest{
		Username: "testuser",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token-123", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "bad", "badpassword").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{
		Username: "bad",
		Password: "badpassword",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Wallet Handler Tests ---

func TestGetWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockWallet, mockLedger)

	walletID := uuid.New()
	userID := uuid.New()
	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).Return(&ports.WalletView{
		Wallet: domain.Wallet{ID: walletID, UserID: userID},
		Funds:  decimal.RequireFromString("99.50"),
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.GetWallet(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, walletID.String(), data["id"])
	assert.Equal(t, "99.5", data["funds"])
}

func TestGetWallet_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockWallet, mockLedger)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetWallet(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetWallet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockWallet, mockLedger)

	walletID := uuid.New()
	mockWallet.EXPECT().GetWallet(gomock.Any(), walletID).Return(nil, apperror.ErrNotFound("wallet"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.GetWallet(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddFunds_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockWallet, mockLedger)

	walletID := uuid.New()
	amount := decimal.RequireFromString("100.00")
	mockLedger.EXPECT().AddFunds(gomock.Any(), walletID, amount).Return(nil)
	mockLedger.EXPECT().Funds(gomock.Any(), walletID).Return(decimal.NewFromInt(100), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"amount": "100.00"}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.AddFunds(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "100", data["funds"])
}

func TestAddFunds_InvalidAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockWallet, mockLedger)

	walletID := uuid.New()
	mockLedger.EXPECT().AddFunds(gomock.Any(), walletID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, amount decimal.Decimal) error {
			assert.True(t, amount.IsZero())
			return apperror.ErrInvalidAmount()
		})

	// Absent amount decodes to zero and is rejected by the service.
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.AddFunds(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_001", resp["error_code"])
	assert.Equal(t, "amount", resp["field"])
}

func TestCharge_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockWallet, mockLedger)

	walletID := uuid.New()
	sourceID := uuid.New()
	mockLedger.EXPECT().Charge(gomock.Any(), ports.ChargeRequest{
		WalletID:     walletID,
		SourceWallet: sourceID,
		Amount:       decimal.RequireFromString("50.00"),
		Invoice:      "inv-1",
	}).Return(nil)
	mockLedger.EXPECT().Funds(gomock.Any(), walletID).Return(decimal.NewFromInt(50), nil)

	body := fmt.Sprintf(`{"amount": "50.00", "invoice": "inv-1", "source_wallet": %q}`, sourceID)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.Charge(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCharge_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockWallet, mockLedger)

	walletID := uuid.New()
	sourceID := uuid.New()
	mockLedger.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(apperror.ErrInsufficientFunds())

	body := fmt.Sprintf(`{"amount": "1000.00", "invoice": "inv-2", "source_wallet": %q}`, sourceID)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.Charge(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_003", resp["error_code"])
}

func TestCharge_DuplicateInvoice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockWallet, mockLedger)

	walletID := uuid.New()
	sourceID := uuid.New()
	mockLedger.EXPECT().Charge(gomock.Any(), gomock.Any()).Return(apperror.ErrDuplicateInvoice())

	body := fmt.Sprintf(`{"amount": "50.00", "invoice": "inv-1", "source_wallet": %q}`, sourceID)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.Charge(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_004", resp["error_code"])
}

func TestCharge_BadSourceWallet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockWallet, mockLedger)

	walletID := uuid.New()
	body := `{"amount": "50.00", "invoice": "inv-1", "source_wallet": "nope"}`

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.Charge(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTransactions_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockWallet, mockLedger)

	walletID := uuid.New()
	sourceID := uuid.New()
	comment := domain.CommentInsufficientFunds
	mockLedger.EXPECT().ListTransactions(gomock.Any(), walletID).Return([]domain.Transaction{
		{ID: 1, WalletTo: walletID, Amount: decimal.NewFromInt(100), Accepted: true, CreatedAt: time.Now()},
		{ID: 2, WalletTo: walletID, WalletFrom: &sourceID, Amount: decimal.NewFromInt(-1000), Accepted: false, Comment: &comment, CreatedAt: time.Now()},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].([]interface{})
	require.Len(t, items, 2)
	rejected := items[1].(map[string]interface{})
	assert.Equal(t, false, rejected["accepted"])
	assert.Equal(t, domain.CommentInsufficientFunds, rejected["comment"])
}
