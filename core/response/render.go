package response

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dmitrymomot/leaderboard/core/handler"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

// JSON renders v with 200 OK.
func JSON(v any) handler.Response {
	return JSONWithStatus(v, http.StatusOK)
}

// JSONWithStatus renders v with status. A zero status becomes 204 for a nil
// value and 200 otherwise.
func JSONWithStatus(v any, status int) handler.Response {
	if status == 0 {
		status = http.StatusOK
		if v == nil {
			status = http.StatusNoContent
		}
	}
	return body(status, contentTypeJSON, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(v)
	})
}

// String renders s as text/plain with 200 OK.
func String(s string) handler.Response {
	return StringWithStatus(s, http.StatusOK)
}

// StringWithStatus renders s as text/plain. A zero status becomes 200.
func StringWithStatus(s string, status int) handler.Response {
	if status == 0 {
		status = http.StatusOK
	}
	return body(status, contentTypeText, func(w io.Writer) error {
		if s == "" {
			return nil
		}
		_, err := io.WriteString(w, s)
		return err
	})
}

// NoContent writes 204 with no body.
func NoContent() handler.Response {
	return func(w http.ResponseWriter, _ *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// Error hands err to the router's error handler without writing anything.
func Error(err error) handler.Response {
	return func(http.ResponseWriter, *http.Request) error {
		return err
	}
}

func body(status int, contentType string, encode func(io.Writer) error) handler.Response {
	return func(w http.ResponseWriter, _ *http.Request) error {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		if status == http.StatusNoContent || status == http.StatusNotModified {
			return nil
		}
		return encode(w)
	}
}
