// Package pick is the pick domain. Adding or removing a pick changes the
// owning slip, so both re-dispatch the slip fetch as a follow-up intent.
package pick

import (
	"encoding/json"
	"net/http"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/adapt"
	"github.com/go-go-golems/pickem/pkg/domains/slip"
	"github.com/go-go-golems/pickem/pkg/effects"
	"github.com/go-go-golems/pickem/pkg/models"
	"github.com/go-go-golems/pickem/pkg/reducer"
	"github.com/go-go-golems/pickem/pkg/transport"
)

const Name = "pick"

type AddParams struct {
	SlipID    string `json:"slip_id"`
	GameID    string `json:"game_id"`
	League    string `json:"league,omitempty"`
	Market    string `json:"market"`
	Selection string `json:"selection"`
	Odds      string `json:"odds"`
	Line      string `json:"line,omitempty"`
}

type RemoveParams struct {
	PickID string `json:"pick_id"`
	SlipID string `json:"slip_id"`
}

type SlipParams struct {
	SlipID string `json:"slip_id"`
}

type GradeParams struct {
	PickID string `json:"pick_id"`
	Result string `json:"result"`
}

var (
	FetchPicks = action.NewOp[SlipParams](Name, "fetchPicks")
	AddPick    = action.NewOp[AddParams](Name, "addPick")
	RemovePick = action.NewOp[RemoveParams](Name, "removePick")
	GradePick  = action.NewOp[GradeParams](Name, "gradePick")
)

func Ops() []action.Descriptor {
	return []action.Descriptor{
		FetchPicks.Describe(),
		AddPick.Describe(),
		RemovePick.Describe(),
		GradePick.Describe(),
	}
}

type State struct {
	Pick  *models.Pick  `json:"pick"`
	Picks []models.Pick `json:"picks"`

	Loading       bool   `json:"loading"`
	DeleteLoading bool   `json:"deleteLoading"`
	Error         string `json:"error,omitempty"`
	Message       string `json:"message,omitempty"`
	DeleteMessage string `json:"deleteMessage,omitempty"`
}

func Initial() State {
	return State{}
}

var (
	mainClass = reducer.Class[State]{
		Name:    "loading",
		Loading: func(s *State) *bool { return &s.Loading },
		Error:   func(s *State) *string { return &s.Error },
		Message: func(s *State) *string { return &s.Message },
	}
	deleteClass = reducer.Class[State]{
		Name:    "deleteLoading",
		Loading: func(s *State) *bool { return &s.DeleteLoading },
		Error:   func(s *State) *string { return &s.Error },
		Message: func(s *State) *string { return &s.DeleteMessage },
	}
)

var (
	pickAt  = adapt.Path[models.Pick]("data.pick")
	picksAt = adapt.Path[[]models.Pick]("data.picks")
)

func storePick(s *State, body json.RawMessage) {
	p := pickAt.Ptr(body)
	if p == nil {
		return
	}
	s.Pick = p
	for i, existing := range s.Picks {
		if existing.ID == p.ID {
			picks := append([]models.Pick{}, s.Picks...)
			picks[i] = *p
			s.Picks = picks
			return
		}
	}
}

func storePicks(s *State, body json.RawMessage) {
	if ps, ok := picksAt.Get(body); ok {
		s.Picks = ps
	}
}

func dropPick(s *State, body json.RawMessage) {
	id := adapt.String(body, "data.pick_id")
	if id == "" {
		return
	}
	if s.Pick != nil && s.Pick.ID == id {
		s.Pick = nil
	}
	kept := make([]models.Pick, 0, len(s.Picks))
	for _, p := range s.Picks {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.Picks = kept
}

func Slice() *reducer.Slice[State] {
	return reducer.New(Name, Initial(), mainClass, deleteClass).Arms(
		reducer.On(FetchPicks, mainClass).Store(storePicks),
		reducer.On(AddPick, mainClass).Store(storePick).WithMessage(),
		reducer.On(RemovePick, deleteClass).Store(dropPick).WithMessage(),
		reducer.On(GradePick, mainClass).Store(storePick).WithMessage(),
	)
}

func refetchSlip(slipID string) []action.Action {
	if slipID == "" {
		return nil
	}
	return []action.Action{slip.FetchSlipByID.Request(slip.IDParams{SlipID: slipID})}
}

func Saga() effects.Saga {
	return effects.NewSaga(Name,
		effects.Call(FetchPicks, "Pick Fetching Failed", func(p SlipParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: transport.Path("slips", p.SlipID, "picks")}
		}),
		effects.Call(AddPick, "Pick Creation Failed", func(p AddParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/picks", Body: p}
		}).Then(func(p AddParams, _ json.RawMessage) []action.Action {
			return refetchSlip(p.SlipID)
		}),
		effects.Call(RemovePick, "Pick Removal Failed", func(p RemoveParams) transport.Request {
			return transport.Request{Method: http.MethodDelete, Path: transport.Path("picks", p.PickID)}
		}).Then(func(p RemoveParams, _ json.RawMessage) []action.Action {
			return refetchSlip(p.SlipID)
		}),
		effects.Call(GradePick, "Pick Grading Failed", func(p GradeParams) transport.Request {
			return transport.Request{
				Method: http.MethodPatch,
				Path:   transport.Path("picks", p.PickID, "grade"),
				Body:   map[string]string{"result": p.Result},
			}
		}),
	)
}
