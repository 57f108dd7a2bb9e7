package effects

import (
	"net/url"
	"testing"

	"github.com/go-go-golems/pickem/pkg/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestExtractErrorMessage(t *testing.T) {
	const fallback = "Group Fetching Failed"

	var nilHTTP *transport.HTTPError
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"structured", &transport.HTTPError{Status: 400, Body: transport.ErrorBody{Message: "name taken"}}, "name taken"},
		{"wrapped structured", errors.Wrap(&transport.HTTPError{Status: 409, Body: transport.ErrorBody{Message: "conflict"}}, "create"), "conflict"},
		{"status only", &transport.HTTPError{Status: 500}, fallback},
		{"network", &transport.NetworkError{Err: errors.New("dial tcp: refused")}, fallback},
		{"network with url", &transport.NetworkError{Method: "DELETE", Path: "/groups/g1", Err: &url.Error{
			Op:  "Delete",
			URL: "http://127.0.0.1:42455/api/groups/g1?otp=123456",
			Err: errors.New("dial tcp 127.0.0.1:42455: connect: connection refused"),
		}}, fallback},
		{"wrapped network", errors.Wrap(&transport.NetworkError{Err: errors.New("timeout")}, "fetch"), fallback},
		{"network without cause", &transport.NetworkError{}, fallback},
		{"plain error", errors.New("network down"), "network down"},
		{"empty error", emptyError{}, fallback},
		{"nil", nil, fallback},
		{"typed nil in interface", nilHTTP, fallback},
		{"string", "boom", fallback},
		{"int", 42, fallback},
		{"struct", struct{ Message string }{"x"}, fallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.Equal(t, tc.want, ExtractErrorMessage(tc.in, fallback))
			})
		})
	}
}
