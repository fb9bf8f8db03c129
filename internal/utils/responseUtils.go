package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
)

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Error marshalling JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// SendJSONError writes {"detail": message}.
func SendJSONError(w http.ResponseWriter, message string, code int) {
	RespondWithJSON(w, code, map[string]string{"detail": message})
}

// WriteError maps err to its status code and writes it as a JSON error.
func WriteError(w http.ResponseWriter, err error) {
	code := apperrors.StatusCode(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Unhandled error")
	}
	SendJSONError(w, apperrors.Message(err), code)
}
