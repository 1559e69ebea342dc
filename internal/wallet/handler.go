package wallet

import (
	"net/http"
	"strconv"

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

func (h *Handler) GetWallet(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	w, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, w)
}

func (h *Handler) GetLecturerBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	lecturerID, err := strconv.ParseInt(c.Param("lecturerID"), 10, 64)
	if err != nil || lecturerID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid lecturer id"})
		return
	}

	points, err := h.svc.Balance(c.Request.Context(), userID, lecturerID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, LecturerBalance{LecturerID: lecturerID, Points: points})
}
