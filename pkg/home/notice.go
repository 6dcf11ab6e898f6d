package home

import (
	sferrors "github.com/jennychem/storefront/pkg/errors"
)

// FailureHint explains a failed section load in shopper terms, based on the
// error code. It returns "" when the code says nothing useful.
func FailureHint(err error) string {
	switch sferrors.GetCode(err) {
	case sferrors.ErrCodeUnauthorized, sferrors.ErrCodeForbidden:
		return "The shop rejected the storefront access token."
	case sferrors.ErrCodeRateLimited:
		return "The shop is busy right now."
	case sferrors.ErrCodeTimeout:
		return "The shop took too long to answer."
	case sferrors.ErrCodeNetwork:
		return "The shop could not be reached."
	case sferrors.ErrCodeNotFound:
		return "This section is not set up in the shop."
	default:
		return ""
	}
}
