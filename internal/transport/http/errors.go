package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"hardcore-quiz-service/internal/domain"
	"hardcore-quiz-service/internal/logger"
)

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

// StatusFor maps an error kind to the HTTP status clients see.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound, domain.KindUserNotFound:
		return http.StatusNotFound
	case domain.KindAttemptLimitExceeded, domain.KindQuestionAlreadyAnswered, domain.KindAlreadyUnlocked:
		return http.StatusConflict
	case domain.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case domain.KindInvalidPowerCardType, domain.KindInvalidRequest:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// toPayload hides internal details behind a generic message.
func toPayload(err error) errorPayload {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		return errorPayload{Kind: kind, Message: "internal error"}
	}
	var de *domain.Error
	if errors.As(err, &de) && de.Message != "" {
		return errorPayload{Kind: kind, Message: de.Message}
	}
	return errorPayload{Kind: kind, Message: err.Error()}
}

func writeError(w http.ResponseWriter, r *http.Request, fallback *logger.Logger, err error) {
	log := logger.FromContext(r.Context(), fallback)
	payload := toPayload(err)
	status := StatusFor(payload.Kind)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	} else {
		log.Debug("request rejected", "kind", payload.Kind, "error", err)
	}
	writeJSON(w, status, errorBody{Error: payload})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
