package purchase

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

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
}

func (h *Handler) RedeemCode(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	var req RedeemCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	redeemed, err := h.svc.RedeemCode(c.Request.Context(), userID, req.Token)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, redeemed)
}

func (h *Handler) BuyLecture(c *gin.Context) {
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

	var req LecturePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	p, err := h.svc.SpendLecturerPoints(c.Request.Context(), userID, req.LecturerID, lectureID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) BuyContainer(c *gin.Context) {
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

	p, err := h.svc.SpendOnContainer(c.Request.Context(), userID, containerID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) BuyPackage(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	packageID, err := api.PathID(c, "packageID")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	p, err := h.svc.SpendOnPackage(c.Request.Context(), userID, packageID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	purchases, err := h.svc.ListForStudent(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewList(purchases))
}
