package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// MaxBodyBytes caps request bodies. Workflows are small; anything larger is
// a client error.
const MaxBodyBytes = 1 << 20

// DecodeJSONBody decodes a request body, rejecting unknown fields, trailing
// data and bodies over MaxBodyBytes. An empty body decodes to the zero value.
func DecodeJSONBody[T any](r *http.Request) (T, error) {
	var data T
	if r.Body == nil {
		return data, nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes+1))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return data, nil
		}
		var zero T
		return zero, fmt.Errorf("json unmarshal error: %w", err)
	}
	if dec.More() {
		var zero T
		return zero, errors.New("json unmarshal error: trailing data after object")
	}
	if dec.InputOffset() > MaxBodyBytes {
		var zero T
		return zero, fmt.Errorf("read body error: body exceeds %d bytes", MaxBodyBytes)
	}
	return data, nil
}

func DecodeJSONBodyResponse[T any](r *http.Response) (T, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read body error: %w", err)
	}
	defer r.Body.Close()

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		var zero T
		return zero, fmt.Errorf("json unmarshal error (status %d): %w", r.StatusCode, err)
	}
	return data, nil
}

func WriteJSONResponse[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
