package http

import (
	"context"
	"net/http"
	"time"

	domainFunding "cryptoboost/internal/domain/funding"
	"cryptoboost/internal/usecase/funding"
	"cryptoboost/internal/usecase/identity"
	"cryptoboost/internal/usecase/portfolio"
	"cryptoboost/internal/usecase/settlement"

	"github.com/labstack/echo/v4"
)

// AdminHandler is the approval side of every pending request plus the manual
// settlement trigger.
type AdminHandler struct {
	portfolio  *portfolio.Usecase
	funding    *funding.Usecase
	settlement *settlement.Usecase
	identity   *identity.Usecase
	now        func() time.Time
}

func NewAdminHandler(pf *portfolio.Usecase, fd *funding.Usecase, st *settlement.Usecase, id *identity.Usecase) *AdminHandler {
	return &AdminHandler{
		portfolio:  pf,
		funding:    fd,
		settlement: st,
		identity:   id,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type statusResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type fundingTransition func(ctx context.Context, id string, now time.Time) error

func (h *AdminHandler) fundingAction(c echo.Context, fn fundingTransition, status domainFunding.Status) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param"})
	}
	if err := fn(c.Request().Context(), id, h.now()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, statusResp{ID: id, Status: string(status)})
}

func (h *AdminHandler) ApproveDeposit(c echo.Context) error {
	return h.fundingAction(c, h.funding.ApproveDeposit, domainFunding.StatusApproved)
}

func (h *AdminHandler) RejectDeposit(c echo.Context) error {
	return h.fundingAction(c, h.funding.RejectDeposit, domainFunding.StatusRejected)
}

func (h *AdminHandler) ApproveWithdrawal(c echo.Context) error {
	return h.fundingAction(c, h.funding.ApproveWithdrawal, domainFunding.StatusApproved)
}

func (h *AdminHandler) RejectWithdrawal(c echo.Context) error {
	return h.fundingAction(c, h.funding.RejectWithdrawal, domainFunding.StatusRejected)
}

// PendingDeposits / PendingWithdrawals list requests across users; ?status= overrides pending.
func (h *AdminHandler) PendingDeposits(c echo.Context) error {
	list, err := h.funding.ListDeposits(c.Request().Context(), "", statusParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) PendingWithdrawals(c echo.Context) error {
	list, err := h.funding.ListWithdrawals(c.Request().Context(), "", statusParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func statusParam(c echo.Context) domainFunding.Status {
	if s := c.QueryParam("status"); s != "" {
		return domainFunding.Status(s)
	}
	return domainFunding.StatusPending
}

func (h *AdminHandler) ApproveInvestment(c echo.Context) error {
	dto, err := h.portfolio.ApproveInvestment(c.Request().Context(), c.Param("id"), h.now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) RejectInvestment(c echo.Context) error {
	id := c.Param("id")
	if err := h.portfolio.RejectInvestment(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, statusResp{ID: id, Status: "rejected"})
}

func (h *AdminHandler) StopInvestment(c echo.Context) error {
	id := c.Param("id")
	if err := h.portfolio.StopInvestment(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, statusResp{ID: id, Status: "stopped"})
}

// RunSettlement runs one pass; also mounted for the external cron trigger.
func (h *AdminHandler) RunSettlement(c echo.Context) error {
	rep, err := h.settlement.RunPass(c.Request().Context(), h.now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *AdminHandler) Reconcile(c echo.Context) error {
	rep, err := h.settlement.Reconcile(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *AdminHandler) Stats(c echo.Context) error {
	st, err := h.portfolio.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *AdminHandler) SuspendUser(c echo.Context) error { return h.setActive(c, false) }

func (h *AdminHandler) ActivateUser(c echo.Context) error { return h.setActive(c, true) }

func (h *AdminHandler) setActive(c echo.Context, active bool) error {
	id := c.Param("id")
	if err := h.identity.SetActive(c.Request().Context(), id, active); err != nil {
		return respondError(c, err)
	}
	status := "suspended"
	if active {
		status = "active"
	}
	return c.JSON(http.StatusOK, statusResp{ID: id, Status: status})
}
