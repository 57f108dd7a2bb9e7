package slip

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-go-golems/pickem/pkg/effects/effectstest"
	"github.com/go-go-golems/pickem/pkg/models"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/stretchr/testify/require"
)

func newHarness(t *testing.T) *effectstest.Harness {
	return effectstest.New(t, []store.Domain{Slice().Domain()}, Saga())
}

func TestFetchSlipByIDStoresWholeData(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodGet, "/slips/s1", 200, `{"data":{"id":"s1","name":"Week 1","picks":[{"id":"p1","odds":"+120"}]}}`)

	effectstest.Run(t, h, FetchSlipByID, IDParams{SlipID: "s1"})

	st := effectstest.State[State](t, h, Name)
	require.NotNil(t, st.Slip)
	require.Equal(t, "Week 1", st.Slip.Name)
	require.Len(t, st.Slip.Picks, 1)
}

func TestRenameRefetches(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodPatch, "/slips/s1", 200, `{"message":"Renamed"}`)
	h.Fake.Respond(http.MethodGet, "/slips/s1", 200, `{"data":{"id":"s1","name":"Sharp"}}`)

	h.Store.Dispatch(UpdateSlipName.Request(RenameParams{SlipID: "s1", Name: "Sharp"}))
	effectstest.Settled(t, h, FetchSlipByID)

	st := effectstest.State[State](t, h, Name)
	require.Equal(t, "Sharp", st.Slip.Name)
	require.Equal(t, "Renamed", st.Message)
	require.Equal(t, map[string]string{"name": "Sharp"}, h.Fake.Calls()[0].Body)
}

func TestDeleteSlipRefetchesGroupSlips(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodDelete, "/slips/s1", 200, `{"data":{"slip_id":"s1"},"message":"Slip deleted"}`)
	h.Fake.Respond(http.MethodGet, "/slips", 200, `{"data":{"slips":[{"id":"s2","group_id":"g1"}]}}`)

	h.Store.Dispatch(DeleteSlip.Request(DeleteParams{SlipID: "s1", GroupID: "g1"}))
	effectstest.Settled(t, h, FetchSlips)

	st := effectstest.State[State](t, h, Name)
	require.Equal(t, "Slip deleted", st.DeleteMessage)
	require.Equal(t, []models.Slip{{ID: "s2", GroupID: "g1"}}, st.Slips)

	calls := h.Fake.Calls()
	require.Equal(t, "g1", calls[1].Params["group_id"])
	require.Equal(t, "10", calls[1].Params["limit"])
}

func TestFinalizeFailureKeepsSlip(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodGet, "/slips/s1", 200, `{"data":{"id":"s1"}}`)
	h.Fake.Respond(http.MethodPost, "/slips/s1/finalize", 409, `{"message":"Slip is locked"}`)

	effectstest.Run(t, h, FetchSlipByID, IDParams{SlipID: "s1"})
	effectstest.Run(t, h, FinalizeSlip, IDParams{SlipID: "s1"})

	st := effectstest.State[State](t, h, Name)
	require.Equal(t, "Slip is locked", st.Error)
	require.Equal(t, "s1", st.Slip.ID)
}

func TestCreateSlipIgnoresMalformedBody(t *testing.T) {
	sl := Slice()
	prev := &models.Slip{ID: "old"}
	s := sl.Reduce(State{Slip: prev, Loading: true}, CreateSlip.Success(json.RawMessage(`{"data":"oops"}`)))
	require.False(t, s.Loading)
	require.Same(t, prev, s.Slip)
}
