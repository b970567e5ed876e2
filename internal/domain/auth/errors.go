package auth

import (
	"errors"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"
)

var (
	ErrInvalidToken = errors.New("invalid or missing token")
	ErrTokenExpired = errors.New("token expired")

	ErrManagerAccessRequired = apperror.Forbidden("manager or admin role required")
)
