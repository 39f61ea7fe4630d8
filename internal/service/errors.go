package service

import (
	"errors"

	"buybizz/internal/apperror"

	"gorm.io/gorm"
)

var (
	ErrUnauthorized       = apperror.Unauthenticated("Unauthorized")
	ErrEmptyCart          = apperror.Conflict("EmptyCart", "cart is empty")
	ErrProductUnavailable = apperror.Conflict("ProductUnavailable", "some agents in your cart are no longer available")
	ErrCartChanged        = apperror.Conflict("CartChanged", "cart changed during checkout, please retry")
	ErrAlreadyReviewed    = apperror.Conflict("AlreadyReviewed", "application has already been reviewed")
)

// notFound converts a missing row into a NotFound error and passes anything
// else through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(what)
	}
	return err
}
