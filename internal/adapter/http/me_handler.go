package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"cryptoboost/internal/adapter/middleware"
	domainFunding "cryptoboost/internal/domain/funding"
	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/usecase/funding"
	"cryptoboost/internal/usecase/portfolio"
	"cryptoboost/internal/usecase/projection"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// MeHandler serves the signed-in user's own dashboard.
type MeHandler struct {
	projection *projection.Usecase
	portfolio  *portfolio.Usecase
	funding    *funding.Usecase
	now        func() time.Time
}

func NewMeHandler(proj *projection.Usecase, pf *portfolio.Usecase, fd *funding.Usecase) *MeHandler {
	return &MeHandler{
		projection: proj,
		portfolio:  pf,
		funding:    fd,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type createInvestmentReq struct {
	Plan   string `json:"plan"   validate:"required,plan"`
	Amount string `json:"amount" validate:"required,posdec"`
}

type depositReq struct {
	Amount     string `json:"amount"      validate:"required,posdec"`
	CryptoType string `json:"crypto_type" validate:"required,crypto"`
}

// Amount is optional: empty withdraws the whole balance.
type withdrawalReq struct {
	Address    string `json:"address"     validate:"required,max=128"`
	CryptoType string `json:"crypto_type" validate:"required,crypto"`
	Amount     string `json:"amount"      validate:"omitempty,posdec"`
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
}

func (h *MeHandler) Balance(c echo.Context) error {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthenticated(c)
	}
	p, err := h.projection.ProjectForUser(c.Request().Context(), who.ID, h.now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *MeHandler) Investments(c echo.Context) error {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthenticated(c)
	}
	list, err := h.portfolio.ListInvestments(c.Request().Context(), who.ID, h.now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *MeHandler) CreateInvestment(c echo.Context) error {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthenticated(c)
	}
	var req createInvestmentReq
	if code, bad := decode(c, &req); bad != nil {
		return c.JSON(code, bad)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return respondError(c, investment.ErrInvalidAmount)
	}
	dto, err := h.portfolio.CreateInvestment(c.Request().Context(), portfolio.CreateInvestmentInput{
		UserID: who.ID,
		Plan:   req.Plan,
		Amount: amount,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *MeHandler) Transactions(c echo.Context) error {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthenticated(c)
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = n
	}
	list, err := h.portfolio.ListTransactions(c.Request().Context(), who.ID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *MeHandler) Deposits(c echo.Context) error {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthenticated(c)
	}
	list, err := h.funding.ListDeposits(c.Request().Context(), who.ID, domainFunding.Status(c.QueryParam("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *MeHandler) CreateDeposit(c echo.Context) error {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthenticated(c)
	}
	var req depositReq
	if code, bad := decode(c, &req); bad != nil {
		return c.JSON(code, bad)
	}
	receipt, err := h.funding.RequestDeposit(c.Request().Context(), funding.DepositInput{
		UserID:     who.ID,
		Amount:     req.Amount,
		CryptoType: req.CryptoType,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, receipt)
}

func (h *MeHandler) Withdrawals(c echo.Context) error {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthenticated(c)
	}
	list, err := h.funding.ListWithdrawals(c.Request().Context(), who.ID, domainFunding.Status(c.QueryParam("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// WithdrawalQuote previews amount, tax and total for ?amount= (or the whole balance).
func (h *MeHandler) WithdrawalQuote(c echo.Context) error {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthenticated(c)
	}
	q, err := h.funding.QuoteWithdrawal(c.Request().Context(), who.ID, c.QueryParam("amount"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *MeHandler) CreateWithdrawal(c echo.Context) error {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthenticated(c)
	}
	var req withdrawalReq
	if code, bad := decode(c, &req); bad != nil {
		return c.JSON(code, bad)
	}
	w, err := h.funding.RequestWithdrawal(c.Request().Context(), funding.WithdrawalInput{
		UserID:     who.ID,
		Address:    req.Address,
		CryptoType: req.CryptoType,
		Amount:     req.Amount,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, w)
}

// Plans is public: the catalogue shown before sign-up.
func Plans(c echo.Context) error {
	return c.JSON(http.StatusOK, investment.Plans())
}
