// Package errresponse holds the error payload renderers shared by every
// HTTP surface of the service.
package errresponse

import (
	"net/http"

	"github.com/go-chi/render"
)

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string            `json:"status"`           // user-level status message
	ErrorText  string            `json:"error,omitempty"`  // application-level error message
	Fields     map[string]string `json:"fields,omitempty"` // per-field validation errors
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// ErrValidation reports per-field form errors without an upstream call
// having been made.
func ErrValidation(fields map[string]string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Validation failed.",
		Fields:         fields,
	}
}

// ErrUnauthorized carries the authentication failure message for display.
func ErrUnauthorized(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized.",
		ErrorText:      err.Error(),
	}
}

// ErrUpstream reports a failed round-trip to the upstream articles API.
func ErrUpstream(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadGateway,
		StatusText:     "Upstream request failed.",
		ErrorText:      err.Error(),
	}
}

// ErrStorage reports a failed key-value storage operation.
func ErrStorage(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Storage error.",
		ErrorText:      err.Error(),
	}
}

func ErrConflict(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		ErrorText:      err.Error(),
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

var (
	ErrNotFound  = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
	ErrForbidden = &ErrResponse{HTTPStatusCode: http.StatusForbidden, StatusText: "Admin access required."}
)
