package code

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

func (h *Handler) Issue(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}
	if adminID, ok := auth.GetUserID(c); ok {
		req.IssuedBy = adminID
	}

	codes, err := h.svc.Issue(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusCreated, api.NewList(codes))
}

func (h *Handler) List(c *gin.Context) {
	var f Filter
	if raw := c.Query("redeemed"); raw != "" {
		redeemed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid redeemed"})
			return
		}
		f.Redeemed = &redeemed
	}

	lecturerID, err := api.QueryID(c, "lecturer_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}
	f.LecturerID = lecturerID
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))

	codes, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.NewList(codes))
}

func (h *Handler) Revoke(c *gin.Context) {
	if err := h.svc.Revoke(c.Request.Context(), c.Param("token")); err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "code revoked"})
}
