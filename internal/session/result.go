package session

import (
	"errors"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// Result is what screens get back from SignUp and SignIn. Message is empty on
// success; Err keeps the underlying cause for errors.Is checks and logs.
type Result struct {
	Success bool
	Message string
	Err     error
}

func ok() Result { return Result{Success: true} }

func failed(err error) Result {
	return Result{Message: messageFor(err), Err: err}
}

// messageFor returns the user-facing text for err. Storage faults share one
// generic retry message; the credential message never says which part was
// wrong.
func messageFor(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return "Please fill in all required fields."
	case errors.Is(err, common.ErrEmailAlreadyRegistered):
		return "An account with this email already exists."
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, common.ErrStorageUnavailable),
		errors.Is(err, common.ErrStorageWriteFailed):
		return "Something went wrong while saving your data. Please try again later."
	default:
		return "Unexpected error. Please try again later."
	}
}
