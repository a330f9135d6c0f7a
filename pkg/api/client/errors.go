package client

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/rzbill/nocodb-cli/pkg/types"
)

// classifyResponse maps a non-2xx response to a typed APIError. The remote
// error message is pulled from the usual payload fields when present.
func classifyResponse(status int, body []byte) *types.APIError {
	message := extractMessage(body)
	if message == "" {
		message = http.StatusText(status)
	}

	var code string
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = types.CodeAuth
	case status == http.StatusNotFound:
		code = types.CodeNotFound
	case status == http.StatusConflict:
		code = types.CodeConflict
	case status >= 400 && status < 500:
		code = types.CodeValidation
	default:
		code = types.CodeNetwork
	}
	return types.NewAPIError(code, status, "%s", message)
}

// extractMessage pulls a human-readable message out of an error payload.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	for _, field := range []string{"message", "msg", "error"} {
		if v := gjson.GetBytes(body, field); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 200 {
		trimmed = trimmed[:200] + "..."
	}
	return trimmed
}
