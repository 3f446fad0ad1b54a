package http

import "ozzus/prime-checker/internal/domain"

type checkRequest struct {
	Number domain.NumberText `json:"number"`
}
