package echoapi

import (
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	RefreshRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	LogoutRequest struct {
		RefreshToken string `json:"refresh_token"`
	}

	LinkStudentsRequest struct {
		StudentIDs []string `json:"student_ids" validate:"required,min=1"`
	}

	UnsubscribeRequest struct {
		Endpoint string `json:"endpoint" validate:"required"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (r *LoginRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

func (r *RefreshRequest) Validate() error {
	return core.Validate.Struct(r)
}

func (r *LinkStudentsRequest) Validate() error {
	return core.Validate.Struct(r)
}

func (r *UnsubscribeRequest) Validate() error {
	return core.Validate.Struct(r)
}
