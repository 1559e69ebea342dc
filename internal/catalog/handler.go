package catalog

import (
	"net/http"

	"eduledger/internal/api"
	"eduledger/internal/apperr"

	"github.com/gin-gonic/gin"
)

type AttachChildRequest struct {
	ChildID int64 `json:"child_id" binding:"required,gt=0"`
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) GetContainer(c *gin.Context) {
	id, err := api.PathID(c, "containerID")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	container, err := h.svc.GetContainer(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, container)
}

func (h *Handler) ListChildren(c *gin.Context) {
	id, err := api.PathID(c, "containerID")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	children, err := h.svc.Children(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.NewList(children))
}

// Ancestors lists the containers above containerID, nearest first.
func (h *Handler) Ancestors(c *gin.Context) {
	id, err := api.PathID(c, "containerID")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	chain, err := h.svc.ParentChain(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.NewList(chain))
}

func (h *Handler) AttachChild(c *gin.Context) {
	parentID, err := api.PathID(c, "containerID")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	var req AttachChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	if err := h.svc.AttachChild(c.Request.Context(), parentID, req.ChildID); err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "container attached"})
}

func (h *Handler) Detach(c *gin.Context) {
	id, err := api.PathID(c, "containerID")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	if err := h.svc.Detach(c.Request.Context(), id); err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "container detached"})
}
