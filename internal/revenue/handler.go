package revenue

import (
	"net/http"
	"time"

	"eduledger/internal/api"
	"eduledger/internal/apperr"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Summarize expects from and to as YYYY-MM-DD; to is inclusive.
func (h *Handler) Summarize(c *gin.Context) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from must be a date (YYYY-MM-DD)"})
		return
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to must be a date (YYYY-MM-DD)"})
		return
	}

	f := Filter{From: from, To: to.AddDate(0, 0, 1)}
	if f.LecturerID, err = api.QueryID(c, "lecturer_id"); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}
	if f.CenterID, err = api.QueryID(c, "center_id"); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.RequestError(err)})
		return
	}

	sum, err := h.svc.Summarize(c.Request.Context(), f)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, sum)
}
