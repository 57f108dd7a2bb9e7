package leaderboard

import (
	"net/http"
	"testing"

	"github.com/go-go-golems/pickem/pkg/effects/effectstest"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/stretchr/testify/require"
)

func newHarness(t *testing.T) *effectstest.Harness {
	return effectstest.New(t, []store.Domain{Slice().Domain()}, Saga())
}

func TestFetchLeaderboardByID(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodGet, "/leaderboards/lb1", 200,
		`{"data":{"leaderboard":{"id":"lb1","name":"Season","entries":[{"user_id":"u1","username":"ann","rank":1,"points":250.5}]}}}`)

	effectstest.Run(t, h, FetchLeaderboardByID, IDParams{LeaderboardID: "lb1"})

	st := effectstest.State[State](t, h, Name)
	require.Equal(t, "Season", st.Leaderboard.Name)
	require.Len(t, st.Leaderboard.Entries, 1)
	require.InDelta(t, 250.5, st.Leaderboard.Entries[0].Points, 0.001)
}

func TestCreateRefetchesList(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodPost, "/leaderboards", 201, `{"data":{"leaderboard":{"id":"lb2","name":"Playoffs"}},"message":"Leaderboard created"}`)
	h.Fake.Respond(http.MethodGet, "/leaderboards", 200, `{"data":{"leaderboards":[{"id":"lb1"},{"id":"lb2"}]}}`)

	h.Store.Dispatch(CreateLeaderboard.Request(CreateParams{GroupID: "g1", Name: "Playoffs"}))
	effectstest.Settled(t, h, FetchLeaderboards)

	st := effectstest.State[State](t, h, Name)
	require.Equal(t, "lb2", st.Leaderboard.ID)
	require.Len(t, st.Leaderboards, 2)
	require.Equal(t, "Leaderboard created", st.Message)
	require.Equal(t, "g1", h.Fake.Calls()[1].Params["group_id"])
}

func TestFetchFailureWithoutMessageUsesFallback(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodGet, "/leaderboards", 500, `{}`)

	effectstest.Run(t, h, FetchLeaderboards, ListParams{})

	st := effectstest.State[State](t, h, Name)
	require.Equal(t, "Leaderboard Fetching Failed", st.Error)
	require.False(t, st.Loading)
}
