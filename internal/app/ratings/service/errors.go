package service

import "errors"

// Таксономия ошибок бизнес-логики для обработки в handlers:
// NotFound, AccessDenied, Conflict, Validation.
// Инфраструктурные сбои (БД, Kafka) пробрасываются обернутыми без спец-обработки.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrStoreNotFound  = errors.New("store not found")
	ErrRatingNotFound = errors.New("rating not found")

	ErrAccessDenied = errors.New("access denied")

	ErrUserExists        = errors.New("user with this email already exists")
	ErrStoreEmailExists  = errors.New("store with this email already exists")
	ErrRatingExists      = errors.New("rating for this store already exists")
	ErrStoreLimitReached = errors.New("owner already has the maximum number of stores")

	ErrValidation = errors.New("validation error")
)
