package repository

import "errors"

var (
	ErrNotFound              = errors.New("record not found")
	ErrSlugTaken             = errors.New("slug already exists")
	ErrSecretAlreadyAssigned = errors.New("secret already assigned to an order")
	ErrNoFreeSecret          = errors.New("no unassigned secret left for product")
)
