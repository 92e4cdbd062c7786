package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domerrors "github.com/AliiiBenn/mini-auth/internal/domain/errors"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr sends JSON { "error": message, "code": <default for status> }.
func writeErr(w http.ResponseWriter, code int, message string) {
	writeErrCode(w, code, defaultErrCode(code), message)
}

func writeErrCode(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}

// writeDomainErr maps a domain sentinel to its HTTP status and stable error
// code. Anything unmapped is treated as unexpected and reported as a bare
// 500 so internals do not leak.
func writeDomainErr(w http.ResponseWriter, err error) {
	code, errCode := domainStatus(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal error"
	}
	writeErrCode(w, code, errCode, message)
}

func domainStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domerrors.ErrWeakPassword),
		errors.Is(err, domerrors.ErrPasswordMismatch),
		errors.Is(err, domerrors.ErrSamePassword),
		errors.Is(err, domerrors.ErrInvalidRole):
		return http.StatusBadRequest, ErrCodeInvalidRequest
	case errors.Is(err, domerrors.ErrInvalidCredentials),
		errors.Is(err, domerrors.ErrInactiveUser):
		return http.StatusUnauthorized, ErrCodeInvalidCredentials
	case errors.Is(err, domerrors.ErrInvalidToken),
		errors.Is(err, domerrors.ErrWrongTokenType),
		errors.Is(err, domerrors.ErrTokenScopeMismatch):
		return http.StatusUnauthorized, ErrCodeInvalidToken
	case errors.Is(err, domerrors.ErrInvalidAPIKey):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, domerrors.ErrNotProjectOwner),
		errors.Is(err, domerrors.ErrNotProjectMember),
		errors.Is(err, domerrors.ErrOwnerImmutable):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, domerrors.ErrUserNotFound),
		errors.Is(err, domerrors.ErrProjectNotFound),
		errors.Is(err, domerrors.ErrMemberNotFound),
		errors.Is(err, domerrors.ErrAPIKeyNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domerrors.ErrEmailTaken),
		errors.Is(err, domerrors.ErrMemberExists):
		return http.StatusConflict, ErrCodeConflict
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusInternalServerError:
		return ErrCodeInternal
	default:
		return ErrCodeInternal
	}
}
