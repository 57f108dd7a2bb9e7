// Package leaderboard is the leaderboard domain.
package leaderboard

import (
	"encoding/json"
	"net/http"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/adapt"
	"github.com/go-go-golems/pickem/pkg/effects"
	"github.com/go-go-golems/pickem/pkg/models"
	"github.com/go-go-golems/pickem/pkg/reducer"
	"github.com/go-go-golems/pickem/pkg/transport"
)

const Name = "leaderboard"

type ListParams struct {
	GroupID string `json:"group_id,omitempty"`
}

type IDParams struct {
	LeaderboardID string `json:"leaderboard_id"`
}

type CreateParams struct {
	GroupID   string `json:"group_id,omitempty"`
	Name      string `json:"name"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

var (
	FetchLeaderboards    = action.NewOp[ListParams](Name, "fetchLeaderboards")
	FetchLeaderboardByID = action.NewOp[IDParams](Name, "fetchLeaderboardById")
	CreateLeaderboard    = action.NewOp[CreateParams](Name, "createLeaderboard")
)

func Ops() []action.Descriptor {
	return []action.Descriptor{
		FetchLeaderboards.Describe(),
		FetchLeaderboardByID.Describe(),
		CreateLeaderboard.Describe(),
	}
}

type State struct {
	Leaderboard  *models.Leaderboard  `json:"leaderboard"`
	Leaderboards []models.Leaderboard `json:"leaderboards"`

	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func Initial() State {
	return State{}
}

var mainClass = reducer.Class[State]{
	Name:    "loading",
	Loading: func(s *State) *bool { return &s.Loading },
	Error:   func(s *State) *string { return &s.Error },
	Message: func(s *State) *string { return &s.Message },
}

var (
	leaderboardAt  = adapt.Path[models.Leaderboard]("data.leaderboard")
	leaderboardsAt = adapt.Path[[]models.Leaderboard]("data.leaderboards")
)

func storeLeaderboard(s *State, body json.RawMessage) {
	if lb := leaderboardAt.Ptr(body); lb != nil {
		s.Leaderboard = lb
	}
}

func storeLeaderboards(s *State, body json.RawMessage) {
	if lbs, ok := leaderboardsAt.Get(body); ok {
		s.Leaderboards = lbs
	}
}

func Slice() *reducer.Slice[State] {
	return reducer.New(Name, Initial(), mainClass).Arms(
		reducer.On(FetchLeaderboards, mainClass).Store(storeLeaderboards),
		reducer.On(FetchLeaderboardByID, mainClass).Store(storeLeaderboard),
		reducer.On(CreateLeaderboard, mainClass).Store(storeLeaderboard).WithMessage(),
	)
}

func listQuery(p ListParams) map[string]string {
	if p.GroupID == "" {
		return nil
	}
	return map[string]string{"group_id": p.GroupID}
}

func Saga() effects.Saga {
	return effects.NewSaga(Name,
		effects.Call(FetchLeaderboards, "Leaderboard Fetching Failed", func(p ListParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: "/leaderboards", Params: listQuery(p)}
		}),
		effects.Call(FetchLeaderboardByID, "Leaderboard Fetching Failed", func(p IDParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: transport.Path("leaderboards", p.LeaderboardID)}
		}),
		effects.Call(CreateLeaderboard, "Leaderboard Creation Failed", func(p CreateParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/leaderboards", Body: p}
		}).Then(func(p CreateParams, _ json.RawMessage) []action.Action {
			return []action.Action{FetchLeaderboards.Request(ListParams{GroupID: p.GroupID})}
		}),
	)
}
