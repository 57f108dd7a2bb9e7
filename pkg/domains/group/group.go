// Package group is the group domain: creating, browsing, editing, joining and
// leaving groups, the two-step (OTP-confirmed) delete flow, members, and the
// leaderboard a group ranks against.
package group

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/adapt"
	"github.com/go-go-golems/pickem/pkg/effects"
	"github.com/go-go-golems/pickem/pkg/models"
	"github.com/go-go-golems/pickem/pkg/reducer"
	"github.com/go-go-golems/pickem/pkg/transport"
)

const Name = "group"

type CreateParams struct {
	UserID      string `json:"user_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PickLimit   int    `json:"pick_limit,omitempty"`
}

type ListParams struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	SortBy string `json:"sort_by,omitempty"`
	Search string `json:"search,omitempty"`
}

type IDParams struct {
	GroupID string `json:"group_id"`
}

type UpdateParams struct {
	GroupID     string `json:"group_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	PickLimit   int    `json:"pick_limit,omitempty"`
}

type ConfirmDeleteParams struct {
	GroupID string `json:"group_id"`
	OTP     string `json:"otp"`
}

type JoinParams struct {
	UserID     string `json:"user_id,omitempty"`
	InviteCode string `json:"invite_code"`
}

type AssignLeaderboardParams struct {
	GroupID       string `json:"group_id"`
	LeaderboardID string `json:"leaderboard_id"`
}

var (
	CreateGroup        = action.NewOp[CreateParams](Name, "createGroup")
	FetchAllGroups     = action.NewOp[ListParams](Name, "fetchAllGroups")
	FetchGroupByID     = action.NewOp[IDParams](Name, "fetchGroupById")
	UpdateGroup        = action.NewOp[UpdateParams](Name, "updateGroup")
	InitialGroupDelete = action.NewOp[IDParams](Name, "initialGroupDelete")
	ConfirmDeleteGroup = action.NewOp[ConfirmDeleteParams](Name, "confirmDeleteGroup")
	JoinGroup          = action.NewOp[JoinParams](Name, "joinGroup")
	LeaveGroup         = action.NewOp[IDParams](Name, "leaveGroup")
	FetchGroupMembers  = action.NewOp[IDParams](Name, "fetchGroupMembers")
	AssignLeaderboard  = action.NewOp[AssignLeaderboardParams](Name, "assignLeaderboard")
)

// Ops lists every operation of the domain.
func Ops() []action.Descriptor {
	return []action.Descriptor{
		CreateGroup.Describe(),
		FetchAllGroups.Describe(),
		FetchGroupByID.Describe(),
		UpdateGroup.Describe(),
		InitialGroupDelete.Describe(),
		ConfirmDeleteGroup.Describe(),
		JoinGroup.Describe(),
		LeaveGroup.Describe(),
		FetchGroupMembers.Describe(),
		AssignLeaderboard.Describe(),
	}
}

type State struct {
	Group   *models.Group   `json:"group"`
	Groups  []models.Group  `json:"groups"`
	Members []models.Member `json:"members"`

	Loading        bool `json:"loading"`
	DeleteLoading  bool `json:"deleteLoading"`
	LeaveLoading   bool `json:"leaveLoading"`
	MembersLoading bool `json:"membersLoading"`

	Error         string `json:"error,omitempty"`
	Message       string `json:"message,omitempty"`
	DeleteMessage string `json:"deleteMessage,omitempty"`
	LeaveMessage  string `json:"leaveMessage,omitempty"`
}

func Initial() State {
	return State{}
}

func errorField(s *State) *string { return &s.Error }

var (
	mainClass = reducer.Class[State]{
		Name:    "loading",
		Loading: func(s *State) *bool { return &s.Loading },
		Error:   errorField,
		Message: func(s *State) *string { return &s.Message },
	}
	// deleteRequestClass shares the delete flag but reports through Message:
	// the OTP notice is shown where the group page shows its other notices.
	deleteRequestClass = reducer.Class[State]{
		Name:    "deleteLoading",
		Loading: func(s *State) *bool { return &s.DeleteLoading },
		Error:   errorField,
		Message: func(s *State) *string { return &s.Message },
	}
	deleteClass = reducer.Class[State]{
		Name:    "deleteLoading",
		Loading: func(s *State) *bool { return &s.DeleteLoading },
		Error:   errorField,
		Message: func(s *State) *string { return &s.DeleteMessage },
	}
	leaveClass = reducer.Class[State]{
		Name:    "leaveLoading",
		Loading: func(s *State) *bool { return &s.LeaveLoading },
		Error:   errorField,
		Message: func(s *State) *string { return &s.LeaveMessage },
	}
	membersClass = reducer.Class[State]{
		Name:    "membersLoading",
		Loading: func(s *State) *bool { return &s.MembersLoading },
		Error:   errorField,
	}
)

var (
	groupAt   = adapt.Path[models.Group]("data.group")
	groupsAt  = adapt.Path[[]models.Group]("data.groups")
	membersAt = adapt.Path[[]models.Member]("data.members")
)

func storeGroup(s *State, body json.RawMessage) {
	if g := groupAt.Ptr(body); g != nil {
		s.Group = g
	}
}

func storeGroups(s *State, body json.RawMessage) {
	if gs, ok := groupsAt.Get(body); ok {
		s.Groups = gs
	}
}

func storeMembers(s *State, body json.RawMessage) {
	if ms, ok := membersAt.Get(body); ok {
		s.Members = ms
	}
}

// dropGroup forgets the group named by data.group_id after a delete or leave.
func dropGroup(s *State, body json.RawMessage) {
	id := adapt.String(body, "data.group_id")
	if id == "" {
		return
	}
	if s.Group != nil && s.Group.ID == id {
		s.Group = nil
		s.Members = nil
	}
	kept := make([]models.Group, 0, len(s.Groups))
	for _, g := range s.Groups {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	s.Groups = kept
}

func Slice() *reducer.Slice[State] {
	return reducer.New(Name, Initial(), mainClass, deleteClass, leaveClass, membersClass).Arms(
		reducer.On(CreateGroup, mainClass).Store(storeGroup).WithMessage(),
		reducer.On(FetchAllGroups, mainClass).Store(storeGroups),
		reducer.On(FetchGroupByID, mainClass).Store(storeGroup),
		reducer.On(UpdateGroup, mainClass).WithMessage(),
		reducer.On(InitialGroupDelete, deleteRequestClass).WithMessage(),
		reducer.On(ConfirmDeleteGroup, deleteClass).Store(dropGroup).WithMessage(),
		reducer.On(JoinGroup, mainClass).Store(storeGroup).WithMessage(),
		reducer.On(LeaveGroup, leaveClass).Store(dropGroup).WithMessage(),
		reducer.On(FetchGroupMembers, membersClass).Store(storeMembers),
		reducer.On(AssignLeaderboard, mainClass).WithMessage(),
	)
}

func listParams(p ListParams) map[string]string {
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	out := map[string]string{
		"page":    strconv.Itoa(p.Page),
		"limit":   strconv.Itoa(limit),
		"sort_by": sortBy,
	}
	if p.Search != "" {
		out["search"] = p.Search
	}
	return out
}

func Saga() effects.Saga {
	return effects.NewSaga(Name,
		effects.Call(CreateGroup, "Group Creation Failed", func(p CreateParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/groups", Body: p}
		}),
		effects.Call(FetchAllGroups, "Group Fetching Failed", func(p ListParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: "/groups", Params: listParams(p)}
		}),
		effects.Call(FetchGroupByID, "Group Fetching Failed", func(p IDParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: transport.Path("groups", p.GroupID)}
		}),
		effects.Call(UpdateGroup, "Group Update Failed", func(p UpdateParams) transport.Request {
			return transport.Request{Method: http.MethodPut, Path: transport.Path("groups", p.GroupID), Body: p}
		}).Then(refetchAfterUpdate),
		effects.Call(InitialGroupDelete, "Group Deletion Failed", func(p IDParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: transport.Path("groups", p.GroupID, "delete-request")}
		}),
		effects.Call(ConfirmDeleteGroup, "Group Deletion Failed", func(p ConfirmDeleteParams) transport.Request {
			return transport.Request{Method: http.MethodDelete, Path: transport.Path("groups", p.GroupID), Params: map[string]string{"otp": p.OTP}}
		}),
		effects.Call(JoinGroup, "Joining Group Failed", func(p JoinParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/groups/join", Body: p}
		}),
		effects.Call(LeaveGroup, "Leaving Group Failed", func(p IDParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: transport.Path("groups", p.GroupID, "leave")}
		}).Then(refetchAfterLeave),
		effects.Call(FetchGroupMembers, "Member Fetching Failed", func(p IDParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: transport.Path("groups", p.GroupID, "members")}
		}),
		effects.Call(AssignLeaderboard, "Leaderboard Assignment Failed", func(p AssignLeaderboardParams) transport.Request {
			return transport.Request{
				Method: http.MethodPatch,
				Path:   transport.Path("groups", p.GroupID, "leaderboard"),
				Body:   map[string]string{"leaderboard_id": p.LeaderboardID},
			}
		}).Then(refetchAfterAssign),
	)
}

func refetchAfterUpdate(p UpdateParams, _ json.RawMessage) []action.Action {
	return []action.Action{FetchGroupByID.Request(IDParams{GroupID: p.GroupID})}
}

func refetchAfterAssign(p AssignLeaderboardParams, _ json.RawMessage) []action.Action {
	return []action.Action{FetchGroupByID.Request(IDParams{GroupID: p.GroupID})}
}

func refetchAfterLeave(IDParams, json.RawMessage) []action.Action {
	return []action.Action{FetchAllGroups.Request(ListParams{})}
}
