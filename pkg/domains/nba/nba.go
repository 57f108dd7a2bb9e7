// Package nba holds NBA odds.
package nba

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

const Name = "nba"

type OddsParams struct {
	Date string `json:"date,omitempty"`
}

var FetchNbaOdds = action.NewOp[OddsParams](Name, "fetchNbaOdds")

func Ops() []action.Descriptor {
	return []action.Descriptor{FetchNbaOdds.Describe()}
}

type State struct {
	Games []models.Game `json:"games"`

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

var gamesAt = adapt.Path[[]models.Game]("data.games")

func Slice() *reducer.Slice[State] {
	return reducer.New(Name, Initial(), mainClass).Arms(
		reducer.On(FetchNbaOdds, mainClass).Store(func(s *State, body json.RawMessage) {
			if games, ok := gamesAt.Get(body); ok {
				s.Games = games
			}
		}),
	)
}

func Saga() effects.Saga {
	return effects.NewSaga(Name,
		effects.Call(FetchNbaOdds, "NBA Odds Fetching Failed", func(p OddsParams) transport.Request {
			req := transport.Request{Method: http.MethodGet, Path: "/odds/nba"}
			if p.Date != "" {
				req.Params = map[string]string{"date": p.Date}
			}
			return req
		}),
	)
}
