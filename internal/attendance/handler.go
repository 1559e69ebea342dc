package attendance

import (
	"net/http"

	"eduledger/internal/api"
	"eduledger/internal/apperr"
	"eduledger/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Settle records attendance on behalf of a student. Admin only.
func (h *Handler) Settle(c *gin.Context) {
	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	a, err := h.svc.Settle(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusCreated, a)
}

func (h *Handler) MyHistory(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	list, err := h.svc.History(c.Request.Context(), userID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.NewList(list))
}

func (h *Handler) Bank(c *gin.Context) {
	var id Identity
	if err := c.ShouldBindQuery(&id); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	state, err := h.svc.Bank(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, state)
}
