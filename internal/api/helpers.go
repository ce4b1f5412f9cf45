package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/lmeval/internal/eval"
)

// ErrInvalidRequest marks request validation failures; they map to 400.
var ErrInvalidRequest = errors.New("invalid request")

type requestError struct {
	msg string
}

func (e requestError) Error() string { return e.msg }

func (e requestError) Unwrap() error { return ErrInvalidRequest }

func invalidRequest(msg string) error {
	return requestError{msg: msg}
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

// writeRequestError reports err with the status its kind maps to.
func writeRequestError(c *echo.Context, err error) error {
	status, errType := errorStatus(err)
	return writeError(c, status, errType, err.Error())
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, eval.ErrEmptyCorpus):
		return http.StatusBadRequest, "invalid_request_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
