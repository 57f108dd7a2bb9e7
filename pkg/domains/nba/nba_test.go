package nba

import (
	"net/http"
	"testing"

	"github.com/go-go-golems/pickem/pkg/effects/effectstest"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/go-go-golems/pickem/pkg/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFetchOdds(t *testing.T) {
	h := effectstest.New(t, []store.Domain{Slice().Domain()}, Saga())
	h.Fake.Respond(http.MethodGet, "/odds/nba", 200, `{"data":{"games":[{"id":"n1","home_team":"BOS","away_team":"NYK","odds":{"home_moneyline":"-180"}}]}}`)

	effectstest.Run(t, h, FetchNbaOdds, OddsParams{})

	st := effectstest.State[State](t, h, Name)
	require.Len(t, st.Games, 1)
	require.Equal(t, "-180", st.Games[0].Odds.HomeMoneyline)
	require.Nil(t, h.Fake.Calls()[0].Params)
}

func TestNetworkFailureUsesFallback(t *testing.T) {
	h := effectstest.New(t, []store.Domain{Slice().Domain()}, Saga())
	h.Fake.Fail(http.MethodGet, "/odds/nba", &transport.NetworkError{
		Method: http.MethodGet,
		Path:   "/odds/nba",
		Err:    errors.New("dial tcp 127.0.0.1:9: connect: connection refused"),
	})

	effectstest.Run(t, h, FetchNbaOdds, OddsParams{Date: "2026-10-19"})

	st := effectstest.State[State](t, h, Name)
	require.Equal(t, "NBA Odds Fetching Failed", st.Error)
	require.Nil(t, st.Games)
}
