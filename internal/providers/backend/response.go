package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/ragchat/internal/core"
)

const maxErrorBody = 64 << 10

// checkStatus turns a non-2xx response into a StatusError. 401 and 403 are
// always auth failures; everything else is attributed to kind.
func checkStatus(resp *http.Response, kind core.ErrorKind) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = core.KindAuth
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &core.StatusError{
		Kind:    kind,
		Status:  resp.StatusCode,
		Message: errorMessage(data),
	}
}

// errorMessage extracts the server's explanation from FastAPI-style
// {"detail": ...} bodies, {"message": ...}/{"error": ...} bodies, or plain text.
func errorMessage(data []byte) string {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return ""
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return text
	}

	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := body[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		// validation errors come back as structured detail
		return string(raw)
	}
	return text
}

func decodeJSON(resp *http.Response, v any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", classify(err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
