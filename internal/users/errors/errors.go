package errors

import (
	"errors"
	"fmt"
	"net/http"
	mongotx "parkbook/pkg/db/mongo"
	apperrors "parkbook/pkg/errors"
)

const (
	CodeLoginTaken         = "LOGIN_TAKEN"
	CodePhoneTaken         = "PHONE_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

var (
	ErrNotFound = fmt.Errorf("user %w", mongotx.ErrNotFound)

	ErrInvalidID = fmt.Errorf("%w for user", mongotx.ErrInvalidID)

	ErrLoginTaken         = errors.New("login already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func LoginTaken() *apperrors.AppError {
	return apperrors.Wrap(ErrLoginTaken, CodeLoginTaken, "Login is already registered", http.StatusConflict)
}

func PhoneTaken() *apperrors.AppError {
	return apperrors.Wrap(ErrPhoneTaken, CodePhoneTaken, "Phone is already registered", http.StatusConflict)
}

// InvalidCredentials is returned for both unknown logins and wrong passwords.
func InvalidCredentials() *apperrors.AppError {
	return apperrors.Wrap(ErrInvalidCredentials, CodeInvalidCredentials, "Invalid login or password", http.StatusUnauthorized)
}
