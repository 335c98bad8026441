package llm

import (
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"
)

// IsRateLimited reports whether err is the provider telling us to back
// off (HTTP 429), as opposed to any other transport or API failure.
func IsRateLimited(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
