package employee

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"

var ErrProfileNotFound = apperror.NotFound("employee profile not found")
