package group

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-go-golems/pickem/pkg/effects/effectstest"
	"github.com/go-go-golems/pickem/pkg/models"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/go-go-golems/pickem/pkg/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newHarness(t *testing.T) *effectstest.Harness {
	return effectstest.New(t, []store.Domain{Slice().Domain()}, Saga())
}

func groupState(t *testing.T, h *effectstest.Harness) State {
	return effectstest.State[State](t, h, Name)
}

func TestCreateGroup(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodPost, "/groups", 201, `{"data":{"group":{"id":"g1","name":"Dynasty"}},"message":"Created"}`)

	effectstest.Run(t, h, CreateGroup, CreateParams{Name: "Dynasty"})

	st := groupState(t, h)
	require.NotNil(t, st.Group)
	require.Equal(t, "g1", st.Group.ID)
	require.Equal(t, "Dynasty", st.Group.Name)
	require.Equal(t, "Created", st.Message)
	require.False(t, st.Loading)

	calls := h.Fake.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, CreateParams{Name: "Dynasty"}, calls[0].Body)
}

func TestDeleteFlowUsesSeparateMessages(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodPost, "/groups/g1/delete-request", 200, `{"message":"OTP sent"}`)
	h.Fake.Respond(http.MethodDelete, "/groups/g1", 200, `{"message":"Deleted"}`)

	effectstest.Run(t, h, InitialGroupDelete, IDParams{GroupID: "g1"})
	st := groupState(t, h)
	require.Equal(t, "OTP sent", st.Message)
	require.False(t, st.DeleteLoading)

	effectstest.Run(t, h, ConfirmDeleteGroup, ConfirmDeleteParams{GroupID: "g1", OTP: "123456"})
	st = groupState(t, h)
	require.Equal(t, "Deleted", st.DeleteMessage)
	require.Equal(t, "OTP sent", st.Message)

	calls := h.Fake.Calls()
	require.Equal(t, "123456", calls[1].Params["otp"])
}

func TestConfirmDeleteDropsGroup(t *testing.T) {
	sl := Slice()
	s := State{
		Group:  &models.Group{ID: "g1"},
		Groups: []models.Group{{ID: "g1"}, {ID: "g2"}},
	}
	s = sl.Reduce(s, ConfirmDeleteGroup.Success(json.RawMessage(`{"data":{"group_id":"g1"},"message":"Deleted"}`)))
	require.Nil(t, s.Group)
	require.Equal(t, []models.Group{{ID: "g2"}}, s.Groups)
}

func TestConfirmDeleteNetworkFailureHidesOTP(t *testing.T) {
	h := newHarness(t)
	h.Fake.Fail(http.MethodDelete, "/groups/g1", &transport.NetworkError{
		Method: http.MethodDelete,
		Path:   "/groups/g1",
		Err: &url.Error{
			Op:  "Delete",
			URL: "http://127.0.0.1:42455/api/groups/g1?otp=123456",
			Err: errors.New("dial tcp 127.0.0.1:42455: connect: connection refused"),
		},
	})

	effectstest.Run(t, h, ConfirmDeleteGroup, ConfirmDeleteParams{GroupID: "g1", OTP: "123456"})

	st := groupState(t, h)
	require.Equal(t, "Group Deletion Failed", st.Error)
	require.NotContains(t, st.Error, "123456")
	require.Equal(t, "123456", h.Fake.Calls()[0].Params["otp"])
}

func TestGroupIDIsOneSegment(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodGet, "/groups/g1%2Fmembers%3Fx=1", 200, `{"data":{"group":{"id":"g1/members?x=1"}}}`)

	effectstest.Run(t, h, FetchGroupByID, IDParams{GroupID: "g1/members?x=1"})

	require.Equal(t, "g1/members?x=1", groupState(t, h).Group.ID)
	require.Equal(t, 0, h.Fake.CallCount(http.MethodGet, "/groups/g1/members"))
}

func TestFetchAllGroupsFailureFallback(t *testing.T) {
	h := newHarness(t)

	h.Fake.Fail(http.MethodGet, "/groups", errors.New("network down"))
	effectstest.Run(t, h, FetchAllGroups, ListParams{})
	require.Equal(t, "network down", groupState(t, h).Error)

	h.Fake.Respond(http.MethodGet, "/groups", 500, ``)
	effectstest.Run(t, h, FetchAllGroups, ListParams{})
	require.Equal(t, "Group Fetching Failed", groupState(t, h).Error)
}

func TestFetchAllGroupsDefaults(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodGet, "/groups", 200, `{"data":{"groups":[{"id":"g1"},{"id":"g2"}]}}`)

	effectstest.Run(t, h, FetchAllGroups, ListParams{})

	require.Len(t, groupState(t, h).Groups, 2)
	params := h.Fake.Calls()[0].Params
	require.Equal(t, "0", params["page"])
	require.Equal(t, "10", params["limit"])
	require.Equal(t, "created_at", params["sort_by"])
	_, ok := params["search"]
	require.False(t, ok)
}

func TestUpdateGroupRefetches(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodPut, "/groups/g1", 200, `{"message":"Updated"}`)
	h.Fake.Respond(http.MethodGet, "/groups/g1", 200, `{"data":{"group":{"id":"g1","name":"Renamed"}}}`)

	h.Store.Dispatch(UpdateGroup.Request(UpdateParams{GroupID: "g1", Name: "Renamed"}))
	effectstest.Settled(t, h, FetchGroupByID)

	st := groupState(t, h)
	require.Equal(t, "Updated", st.Message)
	require.Equal(t, "Renamed", st.Group.Name)
}

func TestLeaveGroupRefetchesList(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodPost, "/groups/g1/leave", 200, `{"data":{"group_id":"g1"},"message":"Left"}`)
	h.Fake.Respond(http.MethodGet, "/groups", 200, `{"data":{"groups":[{"id":"g2"}]}}`)

	h.Store.Dispatch(LeaveGroup.Request(IDParams{GroupID: "g1"}))
	effectstest.Settled(t, h, FetchAllGroups)

	st := groupState(t, h)
	require.Equal(t, "Left", st.LeaveMessage)
	require.False(t, st.LeaveLoading)
	require.Equal(t, []models.Group{{ID: "g2"}}, st.Groups)
}

func TestAssignLeaderboard(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodPatch, "/groups/g1/leaderboard", 200, `{"message":"Assigned"}`)
	h.Fake.Respond(http.MethodGet, "/groups/g1", 200, `{"data":{"group":{"id":"g1","leaderboard_id":"lb1"}}}`)

	h.Store.Dispatch(AssignLeaderboard.Request(AssignLeaderboardParams{GroupID: "g1", LeaderboardID: "lb1"}))
	effectstest.Settled(t, h, FetchGroupByID)

	st := groupState(t, h)
	require.Equal(t, "lb1", st.Group.LeaderboardID)
	require.Equal(t, "Assigned", st.Message)
}

func TestClearMessageLeavesOtherClasses(t *testing.T) {
	sl := Slice()
	s := State{Error: "e", Message: "m", DeleteMessage: "d", LeaveMessage: "l", Loading: true}

	s = sl.Reduce(s, CreateGroup.ClearMessage())
	require.Equal(t, "", s.Error)
	require.Equal(t, "", s.Message)
	require.Equal(t, "d", s.DeleteMessage)
	require.True(t, s.Loading)

	s = sl.Reduce(s, ConfirmDeleteGroup.ClearMessage())
	require.Equal(t, "", s.DeleteMessage)
	require.Equal(t, "l", s.LeaveMessage)
}

func TestMembers(t *testing.T) {
	h := newHarness(t)
	h.Fake.Respond(http.MethodGet, "/groups/g1/members", 200, `{"data":{"members":[{"user_id":"u1","username":"ann","role":"owner"}]}}`)

	effectstest.Run(t, h, FetchGroupMembers, IDParams{GroupID: "g1"})

	st := groupState(t, h)
	require.Len(t, st.Members, 1)
	require.Equal(t, "owner", st.Members[0].Role)
	require.False(t, st.MembersLoading)
}
