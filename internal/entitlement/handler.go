package entitlement

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

func (h *Handler) ContainerAccess(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	containerID, err := api.PathID(c, "containerID")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	granted, err := h.svc.HasAccess(c.Request.Context(), userID, containerID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.AccessResponse{Granted: granted})
}

func (h *Handler) LectureAccess(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	lectureID, err := api.PathID(c, "lectureID")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	granted, err := h.svc.HasLectureAccess(c.Request.Context(), userID, lectureID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.AccessResponse{Granted: granted})
}
