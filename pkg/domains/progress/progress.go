// Package progress holds a user's level and graded slip history.
package progress

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

const Name = "progress"

type UserParams struct {
	UserID string `json:"user_id"`
}

var (
	FetchProgress = action.NewOp[UserParams](Name, "fetchProgress")
	FetchHistory  = action.NewOp[UserParams](Name, "fetchHistory")
)

func Ops() []action.Descriptor {
	return []action.Descriptor{FetchProgress.Describe(), FetchHistory.Describe()}
}

type State struct {
	Progress *models.Progress     `json:"progress"`
	History  []models.HistoryEntry `json:"history"`

	Loading        bool   `json:"loading"`
	HistoryLoading bool   `json:"historyLoading"`
	Error          string `json:"error,omitempty"`
	Message        string `json:"message,omitempty"`
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
	// history shares the message field; only the loading flag is separate.
	historyClass = reducer.Class[State]{
		Name:    "historyLoading",
		Loading: func(s *State) *bool { return &s.HistoryLoading },
		Error:   func(s *State) *string { return &s.Error },
		Message: func(s *State) *string { return &s.Message },
	}
)

var (
	progressAt = adapt.Path[models.Progress]("data.progress")
	historyAt  = adapt.Path[[]models.HistoryEntry]("data.history")
)

func Slice() *reducer.Slice[State] {
	return reducer.New(Name, Initial(), mainClass, historyClass).Arms(
		reducer.On(FetchProgress, mainClass).Store(func(s *State, body json.RawMessage) {
			if p := progressAt.Ptr(body); p != nil {
				s.Progress = p
			}
		}),
		reducer.On(FetchHistory, historyClass).Store(func(s *State, body json.RawMessage) {
			if h, ok := historyAt.Get(body); ok {
				s.History = h
			}
		}),
	)
}

func Saga() effects.Saga {
	return effects.NewSaga(Name,
		effects.Call(FetchProgress, "Progress Fetching Failed", func(p UserParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: transport.Path("progress", p.UserID)}
		}),
		effects.Call(FetchHistory, "History Fetching Failed", func(p UserParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: transport.Path("progress", p.UserID, "history")}
		}),
	)
}
