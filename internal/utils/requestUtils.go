package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
)

// GetIDFromVars extracts a path parameter from mux.Vars.
func GetIDFromVars(w http.ResponseWriter, r *http.Request, paramName string) (string, error) {
	id := mux.Vars(r)[paramName]
	if id == "" {
		SendJSONError(w, "Missing ID parameter", http.StatusBadRequest)
		return "", errors.New("missing ID parameter")
	}
	return id, nil
}

// DecodeJSONBody decodes the request body into dst. A missing or malformed
// body is a validation error. With strict set, unknown fields are rejected.
func DecodeJSONBody(r *http.Request, dst interface{}, strict bool) error {
	decoder := json.NewDecoder(r.Body)
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("request body is required")
		}
		return apperrors.Validation("invalid JSON payload: %s", err.Error())
	}
	return nil
}

// QueryInt parses an optional integer query parameter; absent means 0.
func QueryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation("invalid %s: %s", name, raw)
	}
	return v, nil
}

// QueryTime parses an optional RFC3339 query parameter; absent means the zero time.
func QueryTime(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid %s: use RFC3339", name)
	}
	return v, nil
}
