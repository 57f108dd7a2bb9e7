// Package feed is the social feed domain.
package feed

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

const Name = "feed"

type ListParams struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	SortBy string `json:"sort_by,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

type PostParams struct {
	Content string `json:"content"`
	Kind    string `json:"kind,omitempty"`
	SlipID  string `json:"slip_id,omitempty"`
}

var (
	FetchFeed  = action.NewOp[ListParams](Name, "fetchFeed")
	CreatePost = action.NewOp[PostParams](Name, "createPost")
)

func Ops() []action.Descriptor {
	return []action.Descriptor{FetchFeed.Describe(), CreatePost.Describe()}
}

type State struct {
	Items []models.FeedItem `json:"items"`

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

var itemsAt = adapt.Path[[]models.FeedItem]("data.items")

func Slice() *reducer.Slice[State] {
	return reducer.New(Name, Initial(), mainClass).Arms(
		reducer.On(FetchFeed, mainClass).Store(func(s *State, body json.RawMessage) {
			if items, ok := itemsAt.Get(body); ok {
				s.Items = items
			}
		}),
		reducer.On(CreatePost, mainClass).WithMessage(),
	)
}

func query(p ListParams) map[string]string {
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	q := map[string]string{
		"page":    strconv.Itoa(p.Page),
		"limit":   strconv.Itoa(limit),
		"sort_by": sortBy,
	}
	if p.UserID != "" {
		q["user_id"] = p.UserID
	}
	return q
}

func Saga() effects.Saga {
	return effects.NewSaga(Name,
		effects.Call(FetchFeed, "Feed Fetching Failed", func(p ListParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: "/feed", Params: query(p)}
		}),
		effects.Call(CreatePost, "Post Creation Failed", func(p PostParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/feed", Body: p}
		}).Then(func(PostParams, json.RawMessage) []action.Action {
			return []action.Action{FetchFeed.Request(ListParams{})}
		}),
	)
}
