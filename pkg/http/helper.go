package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "dentabook/pkg/errors"
)

// DecodeJSON reads a single JSON object from the request body into dst.
// Unknown fields and trailing data are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("Request body is required")
		}
		return apperrors.InvalidInput(fmt.Sprintf("Invalid request body: %v", err))
	}
	if dec.More() {
		return apperrors.InvalidInput("Request body must contain a single JSON object")
	}
	return nil
}

// RequiredQuery returns the trimmed query parameter or an InvalidInput error
// naming it.
func RequiredQuery(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return "", apperrors.InvalidInput(fmt.Sprintf("'%s' query parameter is required", name))
	}
	return value, nil
}

func OptionalQuery(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
