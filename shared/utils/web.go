package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	internal_errors "github.com/itchan-dev/askanon/shared/errors"
	"github.com/itchan-dev/askanon/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// maxBodyBytes caps JSON request bodies. Texts are at most a few kilobytes.
const maxBodyBytes = 64 << 10

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	// default error is 500
	logger.Log.Error("internal error", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// WriteJSON writes body as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return internal_errors.BadRequest("Required fields missing")
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	defer r.Close()
	if err := json.NewDecoder(io.LimitReader(r, maxBodyBytes)).Decode(body); err != nil {
		logger.Log.Debug("request body is not valid json", "error", err)
		return internal_errors.BadRequest("Body is invalid json")
	}
	return nil
}
