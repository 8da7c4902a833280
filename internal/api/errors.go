package api

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/nex/internal/nexstore"
	"github.com/samcharles93/nex/pkg/nex"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string { return e.msg }

func (e invalidRequestError) Unwrap() error { return ErrInvalidRequest }

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeJSON(c *echo.Context, status int, v any) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res.WriteHeader(status)
	return json.NewEncoder(res).Encode(v)
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return writeJSON(c, status, map[string]any{
		"error": ResponseError{Message: msg, Type: errType},
	})
}

// writeStoreError maps codec and store failures onto HTTP statuses.
func writeStoreError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, nex.ErrIndexOutOfRange):
		return writeBadRequest(c, err.Error())
	case errors.Is(err, fs.ErrNotExist):
		return writeError(c, http.StatusNotFound, "not_found_error", "file not found")
	case errors.Is(err, nexstore.ErrIntervalNotFound):
		return writeError(c, http.StatusNotFound, "not_found_error", err.Error())
	case errors.Is(err, nex.ErrBadMagic), errors.Is(err, nex.ErrTruncated),
		errors.Is(err, nex.ErrCorruptHeader), errors.Is(err, nex.ErrInvalidFrequency):
		return writeError(c, http.StatusUnprocessableEntity, "invalid_file_error", err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}
