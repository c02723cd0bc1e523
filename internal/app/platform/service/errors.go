package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrOrderNotFound      = errors.New("order not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrInvalidOrderStatus = errors.New("invalid order status value")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrOrderConflict      = errors.New("order was modified concurrently")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidIdentifier  = errors.New("malformed identifier")
	ErrOrderNotReviewable = errors.New("order is not reviewable")
)
