package domain

import "errors"

// Repository sentinel errors. Repositories wrap these; usecases translate them to apperror kinds.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("resource already exists")
	ErrStateChanged = errors.New("resource state no longer matches")
)
