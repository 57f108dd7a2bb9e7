// Package slip is the slip domain. A slip is one member's set of picks inside
// a group for a betting window.
package slip

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

const Name = "slip"

type CreateParams struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id,omitempty"`
	Name    string `json:"name"`
}

type ListParams struct {
	GroupID string `json:"group_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Page    int    `json:"page,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type IDParams struct {
	SlipID string `json:"slip_id"`
}

type RenameParams struct {
	SlipID string `json:"slip_id"`
	Name   string `json:"name"`
}

type DeleteParams struct {
	SlipID  string `json:"slip_id"`
	GroupID string `json:"group_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
}

var (
	CreateSlip     = action.NewOp[CreateParams](Name, "createSlip")
	FetchSlips     = action.NewOp[ListParams](Name, "fetchSlips")
	FetchSlipByID  = action.NewOp[IDParams](Name, "fetchSlipById")
	UpdateSlipName = action.NewOp[RenameParams](Name, "updateSlipName")
	FinalizeSlip   = action.NewOp[IDParams](Name, "finalizeSlip")
	DeleteSlip     = action.NewOp[DeleteParams](Name, "deleteSlip")
)

func Ops() []action.Descriptor {
	return []action.Descriptor{
		CreateSlip.Describe(),
		FetchSlips.Describe(),
		FetchSlipByID.Describe(),
		UpdateSlipName.Describe(),
		FinalizeSlip.Describe(),
		DeleteSlip.Describe(),
	}
}

type State struct {
	Slip  *models.Slip  `json:"slip"`
	Slips []models.Slip `json:"slips"`

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
	slipAt  = adapt.Path[models.Slip]("data.slip")
	slipsAt = adapt.Path[[]models.Slip]("data.slips")
	// The single-slip endpoint returns the slip itself under data.
	slipDataAt = adapt.Path[models.Slip]("data")
)

func storeSlip(s *State, body json.RawMessage) {
	if sl := slipAt.Ptr(body); sl != nil {
		s.Slip = sl
	}
}

func storeSlipData(s *State, body json.RawMessage) {
	if sl := slipDataAt.Ptr(body); sl != nil {
		s.Slip = sl
	}
}

func storeSlips(s *State, body json.RawMessage) {
	if sls, ok := slipsAt.Get(body); ok {
		s.Slips = sls
	}
}

func dropSlip(s *State, body json.RawMessage) {
	id := adapt.String(body, "data.slip_id")
	if id == "" {
		return
	}
	if s.Slip != nil && s.Slip.ID == id {
		s.Slip = nil
	}
	kept := make([]models.Slip, 0, len(s.Slips))
	for _, sl := range s.Slips {
		if sl.ID != id {
			kept = append(kept, sl)
		}
	}
	s.Slips = kept
}

func Slice() *reducer.Slice[State] {
	return reducer.New(Name, Initial(), mainClass, deleteClass).Arms(
		reducer.On(CreateSlip, mainClass).Store(storeSlip).WithMessage(),
		reducer.On(FetchSlips, mainClass).Store(storeSlips),
		reducer.On(FetchSlipByID, mainClass).Store(storeSlipData),
		reducer.On(UpdateSlipName, mainClass).WithMessage(),
		reducer.On(FinalizeSlip, mainClass).Store(storeSlip).WithMessage(),
		reducer.On(DeleteSlip, deleteClass).Store(dropSlip).WithMessage(),
	)
}

func Saga() effects.Saga {
	return effects.NewSaga(Name,
		effects.Call(CreateSlip, "Slip Creation Failed", func(p CreateParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/slips", Body: p}
		}),
		effects.Call(FetchSlips, "Slip Fetching Failed", func(p ListParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: "/slips", Params: listParams(p)}
		}),
		effects.Call(FetchSlipByID, "Slip Fetching Failed", func(p IDParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: transport.Path("slips", p.SlipID)}
		}),
		effects.Call(UpdateSlipName, "Slip Update Failed", func(p RenameParams) transport.Request {
			return transport.Request{Method: http.MethodPatch, Path: transport.Path("slips", p.SlipID), Body: map[string]string{"name": p.Name}}
		}).Then(func(p RenameParams, _ json.RawMessage) []action.Action {
			return []action.Action{FetchSlipByID.Request(IDParams{SlipID: p.SlipID})}
		}),
		effects.Call(FinalizeSlip, "Slip Finalization Failed", func(p IDParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: transport.Path("slips", p.SlipID, "finalize")}
		}),
		effects.Call(DeleteSlip, "Slip Deletion Failed", func(p DeleteParams) transport.Request {
			return transport.Request{Method: http.MethodDelete, Path: transport.Path("slips", p.SlipID)}
		}).Then(func(p DeleteParams, _ json.RawMessage) []action.Action {
			return []action.Action{FetchSlips.Request(ListParams{GroupID: p.GroupID, UserID: p.UserID})}
		}),
	)
}

func listParams(p ListParams) map[string]string {
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}
	out := map[string]string{
		"page":  strconv.Itoa(p.Page),
		"limit": strconv.Itoa(limit),
	}
	if p.GroupID != "" {
		out["group_id"] = p.GroupID
	}
	if p.UserID != "" {
		out["user_id"] = p.UserID
	}
	if p.Status != "" {
		out["status"] = p.Status
	}
	return out
}
