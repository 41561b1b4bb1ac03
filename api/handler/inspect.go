package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/footyscrape/inspect"
	"github.com/use-agent/footyscrape/models"
)

// InspectResponse is the response for POST /api/v1/inspect.
type InspectResponse struct {
	Success bool              `json:"success"`
	Report  *inspect.Report   `json:"report"`
	Timing  models.TimingInfo `json:"timing"`
}

// Inspect returns a handler for POST /api/v1/inspect.
func Inspect(in *inspect.Inspector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.InspectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeInvalidInput, err.Error()))
			return
		}
		if req.Timeout == 0 {
			req.Timeout = 60
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(req.Timeout)*time.Second)
		defer cancel()

		report, err := in.Inspect(ctx, req.URL, req.Stealth)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, InspectResponse{
			Success: true,
			Report:  report,
			Timing:  models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
		})
	}
}
