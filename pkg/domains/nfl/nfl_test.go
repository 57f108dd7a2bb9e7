package nfl

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-go-golems/pickem/pkg/effects/effectstest"
	"github.com/go-go-golems/pickem/pkg/models"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/stretchr/testify/require"
)

func TestOddsSelectsNestedData(t *testing.T) {
	h := effectstest.New(t, []store.Domain{Slice().Domain()}, Saga())
	h.Fake.Respond(http.MethodGet, "/odds/nfl", 200,
		`{"data":{"data":[{"id":"g1","home_team":"KC","away_team":"BUF","start_time":"2026-10-25T20:25:00Z","odds":{"spread":"-2.5","spread_odds":"-110"}}]}}`)

	succ := effectstest.Run(t, h, FetchNflOdds, OddsParams{Week: 8})
	require.Equal(t, FetchNflOdds.SuccessType(), succ.Type)

	st := effectstest.State[State](t, h, Name)
	require.Len(t, st.Games, 1)
	require.Equal(t, "KC", st.Games[0].HomeTeam)
	require.Equal(t, "-2.5", st.Games[0].Odds.Spread)
	require.Equal(t, "8", h.Fake.Calls()[0].Params["week"])
}

func TestOddsMissingNestedDataKeepsGames(t *testing.T) {
	sl := Slice()
	prev := State{Games: []models.Game{{ID: "g0"}}, Loading: true}
	s := sl.Reduce(prev, FetchNflOdds.Success(json.RawMessage(`null`)))
	require.Equal(t, prev.Games, s.Games)
	require.False(t, s.Loading)
}

func TestWeeks(t *testing.T) {
	h := effectstest.New(t, []store.Domain{Slice().Domain()}, Saga())
	h.Fake.Respond(http.MethodGet, "/odds/nfl/weeks", 200, `{"data":{"weeks":[{"number":1,"start":"2026-09-08","end":"2026-09-15"}]}}`)

	effectstest.Run(t, h, FetchNflWeeks, NoParams{})

	st := effectstest.State[State](t, h, Name)
	require.Equal(t, []models.Week{{Number: 1, Start: "2026-09-08", End: "2026-09-15"}}, st.Weeks)
}
