package service

import (
	"fmt"

	apperrors "github.com/yourusername/randomizer-api/internal/pkg/errors"
)

// Ошибки валидации сервисов каталога
var (
	ErrEmptyQuestion        = fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	ErrEmptyCategoryValue   = fmt.Errorf("%w: category value is required", apperrors.ErrValidation)
	ErrEmptyQualification   = fmt.Errorf("%w: qualification value is required", apperrors.ErrValidation)
	ErrUnknownCategory      = fmt.Errorf("%w: category does not exist", apperrors.ErrValidation)
	ErrUnknownQualification = fmt.Errorf("%w: qualification does not exist", apperrors.ErrValidation)
)
