package registry

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrThrottled is returned when the registry refuses a request because of rate limiting.
var ErrThrottled = errors.New("registry rate limited")

func isRateLimited(resp *http.Response, body []byte) bool {
	if resp == nil {
		return false
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if strings.TrimSpace(resp.Header.Get("Retry-After")) != "" {
		return true
	}
	if strings.EqualFold(resp.Header.Get("X-RateLimit-Remaining"), "0") {
		return true
	}
	var j map[string]any
	if len(body) > 0 && json.Unmarshal(body, &j) == nil {
		if errObj, ok := j["error"].(map[string]any); ok {
			if s, ok := errObj["message"].(string); ok && looksLikeRL(s) {
				return true
			}
		}
		if s, ok := j["message"].(string); ok && looksLikeRL(s) {
			return true
		}
	}
	return false
}

func looksLikeRL(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "rate limit") ||
		strings.Contains(s, "too many request")
}
