package http

import (
	"net/http"

	"cryptoboost/internal/adapter/middleware"
	"cryptoboost/internal/usecase/identity"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct{ uc *identity.Usecase }

func NewAuthHandler(uc *identity.Usecase) *AuthHandler { return &AuthHandler{uc: uc} }

// email and password rules live in the identity usecase
type credentialsReq struct {
	Email    string `json:"email"    validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req credentialsReq
	if code, bad := decode(c, &req); bad != nil {
		return c.JSON(code, bad)
	}
	s, err := h.uc.SignUp(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var req credentialsReq
	if code, bad := decode(c, &req); bad != nil {
		return c.JSON(code, bad)
	}
	s, err := h.uc.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.uc.SignOut(c.Request().Context(), middleware.BearerToken(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Session(c echo.Context) error {
	s, err := h.uc.GetSession(c.Request().Context(), middleware.BearerToken(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
