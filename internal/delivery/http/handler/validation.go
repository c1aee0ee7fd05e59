package handler

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
)

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("profile_status", validProfileStatus); err != nil {
		return fmt.Errorf("failed to register profile_status: %w", err)
	}
	return nil
}

func validProfileStatus(fl validator.FieldLevel) bool {
	_, err := domain.ParseStatus(fl.Field().String())
	return err == nil
}
