// Package nfl holds NFL odds and the week calendar. The odds endpoint wraps
// its list one level deeper than the others, so the effect selects
// "data.data" and the reducer stores the payload as-is.
package nfl

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

const Name = "nfl"

type OddsParams struct {
	Week int `json:"week,omitempty"`
}

type NoParams struct{}

var (
	FetchNflOdds  = action.NewOp[OddsParams](Name, "fetchNflOdds")
	FetchNflWeeks = action.NewOp[NoParams](Name, "fetchNflWeeks")
)

func Ops() []action.Descriptor {
	return []action.Descriptor{FetchNflOdds.Describe(), FetchNflWeeks.Describe()}
}

type State struct {
	Games []models.Game `json:"games"`
	Weeks []models.Week `json:"weeks"`

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
	gamesAt = adapt.Path[[]models.Game]("")
	weeksAt = adapt.Path[[]models.Week]("data.weeks")
)

func Slice() *reducer.Slice[State] {
	return reducer.New(Name, Initial(), mainClass).Arms(
		reducer.On(FetchNflOdds, mainClass).Store(func(s *State, body json.RawMessage) {
			if games, ok := gamesAt.Get(body); ok {
				s.Games = games
			}
		}),
		reducer.On(FetchNflWeeks, mainClass).Store(func(s *State, body json.RawMessage) {
			if weeks, ok := weeksAt.Get(body); ok {
				s.Weeks = weeks
			}
		}),
	)
}

func Saga() effects.Saga {
	return effects.NewSaga(Name,
		effects.Call(FetchNflOdds, "NFL Odds Fetching Failed", func(p OddsParams) transport.Request {
			req := transport.Request{Method: http.MethodGet, Path: "/odds/nfl"}
			if p.Week > 0 {
				req.Params = map[string]string{"week": strconv.Itoa(p.Week)}
			}
			return req
		}).Select("data.data"),
		effects.Call(FetchNflWeeks, "NFL Weeks Fetching Failed", func(NoParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: "/odds/nfl/weeks"}
		}),
	)
}
