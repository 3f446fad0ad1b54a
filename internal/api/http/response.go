package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ozzus/prime-checker/internal/domain"
)

const (
	MessageBadBody  = "request body must be a JSON object"
	MessageInternal = "internal server error, please try again later"
)

type CheckResponse struct {
	Success bool   `json:"success"`
	IsPrime *bool  `json:"is_prime,omitempty"`
	Message string `json:"message"`
	Number  *int64 `json:"number,omitempty"`
}

// statusFor maps a verdict to the HTTP status of its response.
func statusFor(v domain.Verdict) int {
	if v == domain.VerdictInvalid {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

func newCheckResponse(result domain.CheckResult, parsed bool) CheckResponse {
	resp := CheckResponse{
		Success: result.Completed(),
		Message: result.Message,
	}

	if resp.Success {
		isPrime := result.IsPrime()
		resp.IsPrime = &isPrime
	}
	if parsed {
		n := result.Number
		resp.Number = &n
	}

	return resp
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, CheckResponse{Message: message})
}
