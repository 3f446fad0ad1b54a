package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ozzus/prime-checker/internal/api/http/middleware"
	"ozzus/prime-checker/internal/domain"
)

type primeChecker interface {
	Check(ctx context.Context, req domain.CheckRequest) (domain.CheckResult, error)
}

type PrimeController struct {
	checker primeChecker
}

func NewPrimeController(checker primeChecker) *PrimeController {
	return &PrimeController{checker: checker}
}

// Check handles POST /check.
func (p *PrimeController) Check(c *gin.Context) {
	var body checkRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, MessageBadBody)
		return
	}

	result, err := p.checker.Check(c.Request.Context(), domain.CheckRequest{
		ID:     middleware.GetRequestID(c),
		Number: body.Number,
	})

	c.JSON(statusFor(result.Verdict), newCheckResponse(result, err == nil))
}
