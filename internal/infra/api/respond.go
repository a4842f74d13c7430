package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]interface{}{"error": msg})
}

// respondDomainError maps the error taxonomy onto status codes. Forbidden is
// deliberately opaque: the response never distinguishes a wrong token from a
// wrong subscriber.
func respondDomainError(w http.ResponseWriter, err error) {
	var payErr *domain.PaymentStateError
	var cfgErr *domain.ConfigError

	switch {
	case errors.As(err, &payErr):
		respondJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"error":  "payment not completed",
			"status": payErr.Status,
		})
	case errors.Is(err, domain.ErrEmailAlreadyRegistered):
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":         "email already registered",
			"alreadyExists": true,
		})
	case errors.Is(err, domain.ErrTokenNotFound):
		respondError(w, http.StatusNotFound, "activation token not found")
	case errors.Is(err, domain.ErrTokenAlreadyUsed):
		respondError(w, http.StatusConflict, "activation token already used")
	case errors.Is(err, domain.ErrWrongPurchaseVariant):
		respondError(w, http.StatusBadRequest, "wrong purchase variant")
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrLocked):
		respondError(w, http.StatusConflict, "verification already in progress")
	case errors.Is(err, domain.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, "invalid request")
	case errors.As(err, &cfgErr):
		respondError(w, http.StatusInternalServerError, "service misconfigured")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
