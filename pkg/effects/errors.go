package effects

import (
	"github.com/go-go-golems/pickem/pkg/transport"
	"github.com/pkg/errors"
)

// ExtractErrorMessage turns anything a handler can fail with into the string
// stored in a slice's error field:
//
//   - a backend error body with a message: that message
//   - a transport failure with no response: fallback, since its text carries
//     the request URL and query
//   - any other error with a non-empty text: the text
//   - everything else (nil, bare HTTP statuses, non-error panics): fallback
func ExtractErrorMessage(v any, fallback string) (msg string) {
	defer func() {
		if recover() != nil {
			msg = fallback
		}
	}()

	err, ok := v.(error)
	if !ok || err == nil {
		return fallback
	}

	var he *transport.HTTPError
	if errors.As(err, &he) {
		if he != nil && he.Body.Message != "" {
			return he.Body.Message
		}
		return fallback
	}

	var ne *transport.NetworkError
	if errors.As(err, &ne) {
		return fallback
	}

	if text := err.Error(); text != "" {
		return text
	}
	return fallback
}
