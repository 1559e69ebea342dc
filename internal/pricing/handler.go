package pricing

import (
	"net/http"

	"eduledger/internal/api"
	"eduledger/internal/apperr"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(c *gin.Context) {
	var f Filter
	var err error
	if f.LecturerID, err = api.QueryID(c, "lecturer_id"); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}
	if f.SubjectID, err = api.QueryID(c, "subject_id"); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}
	if f.LevelID, err = api.QueryID(c, "level_id"); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	rules, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.NewList(rules))
}

func (h *Handler) Resolve(c *gin.Context) {
	var key Key
	if err := c.ShouldBindQuery(&key); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	rule, err := h.svc.Resolve(c.Request.Context(), key)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	rule, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusCreated, rule)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := api.PathID(c, "ruleID")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	rule, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := api.PathID(c, "ruleID")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.Status(http.StatusNoContent)
}
