// Package auth is the auth domain: login, registration with OTP validation,
// the current user, and the follow graph. Logout is a plain intent that
// resets the slice.
package auth

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

const Name = "auth"

type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ValidateParams struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ProfileParams struct {
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type FollowParams struct {
	// UserID is the signed-in user; TargetID is followed or unfollowed.
	UserID   string `json:"user_id"`
	TargetID string `json:"target_id"`
}

type UserParams struct {
	UserID string `json:"user_id"`
}

type NoParams struct{}

var (
	Login              = action.NewOp[LoginParams](Name, "login")
	Register           = action.NewOp[RegisterParams](Name, "register")
	ValidateOTP        = action.NewOp[ValidateParams](Name, "validateOtp")
	FetchCurrentUser   = action.NewOp[NoParams](Name, "fetchCurrentUser")
	UpdateProfile      = action.NewOp[ProfileParams](Name, "updateProfile")
	FollowUnfollowUser = action.NewOp[FollowParams](Name, "followUnfollowUser")
	FetchFollowingList = action.NewOp[UserParams](Name, "fetchFollowingList")
)

// LogoutType resets the slice to its initial state.
const LogoutType action.Type = Name + "/logout"

func Logout() action.Action {
	return action.Plain(LogoutType)
}

// RestoreType seeds the slice from a persisted session.
const RestoreType action.Type = Name + "/restoreSession"

type RestoreParams struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

func Restore(p RestoreParams) action.Action {
	return action.Action{Type: RestoreType, Payload: p}
}

func restore(s State, a action.Action) State {
	p, ok := action.PayloadAs[RestoreParams](a)
	if !ok || p.Token == "" {
		return s
	}
	next := Initial()
	next.Token = p.Token
	next.User = p.User
	return next
}

func Ops() []action.Descriptor {
	return []action.Descriptor{
		Login.Describe(),
		Register.Describe(),
		ValidateOTP.Describe(),
		FetchCurrentUser.Describe(),
		UpdateProfile.Describe(),
		FollowUnfollowUser.Describe(),
		FetchFollowingList.Describe(),
	}
}

type State struct {
	User      *models.User  `json:"user"`
	Token     string        `json:"token,omitempty"`
	Following []models.User `json:"following"`

	Loading         bool `json:"loading"`
	ValidateLoading bool `json:"validateLoading"`
	FollowLoading   bool `json:"followLoading"`

	Error           string `json:"error,omitempty"`
	Message         string `json:"message,omitempty"`
	ValidateMessage string `json:"validateMessage,omitempty"`
	FollowMessage   string `json:"followMessage,omitempty"`
}

func Initial() State {
	return State{}
}

// Authenticated reports whether a session token is held.
func (s State) Authenticated() bool {
	return s.Token != ""
}

var (
	mainClass = reducer.Class[State]{
		Name:    "loading",
		Loading: func(s *State) *bool { return &s.Loading },
		Error:   func(s *State) *string { return &s.Error },
		Message: func(s *State) *string { return &s.Message },
	}
	validateClass = reducer.Class[State]{
		Name:    "validateLoading",
		Loading: func(s *State) *bool { return &s.ValidateLoading },
		Error:   func(s *State) *string { return &s.Error },
		Message: func(s *State) *string { return &s.ValidateMessage },
	}
	followClass = reducer.Class[State]{
		Name:    "followLoading",
		Loading: func(s *State) *bool { return &s.FollowLoading },
		Error:   func(s *State) *string { return &s.Error },
		Message: func(s *State) *string { return &s.FollowMessage },
	}
)

var (
	userAt      = adapt.Path[models.User]("data.user")
	followingAt = adapt.Path[[]models.User]("data.following")
)

func storeSession(s *State, body json.RawMessage) {
	if u := userAt.Ptr(body); u != nil {
		s.User = u
	}
	if tok := adapt.String(body, "data.token"); tok != "" {
		s.Token = tok
	}
}

func storeUser(s *State, body json.RawMessage) {
	if u := userAt.Ptr(body); u != nil {
		s.User = u
	}
}

func storeFollowing(s *State, body json.RawMessage) {
	if f, ok := followingAt.Get(body); ok {
		s.Following = f
	}
}

func Slice() *reducer.Slice[State] {
	return reducer.New(Name, Initial(), mainClass, validateClass, followClass).
		Arms(
			reducer.On(Login, mainClass).Store(storeSession).WithMessage(),
			reducer.On(Register, mainClass).WithMessage(),
			reducer.On(ValidateOTP, validateClass).Store(storeSession).WithMessage(),
			reducer.On(FetchCurrentUser, mainClass).Store(storeUser),
			reducer.On(UpdateProfile, mainClass).Store(storeUser).WithMessage(),
			reducer.On(FollowUnfollowUser, followClass).WithMessage(),
			reducer.On(FetchFollowingList, followClass).Store(storeFollowing),
		).
		Handle(LogoutType, func(State, action.Action) State { return Initial() }).
		Handle(RestoreType, restore)
}

func Saga() effects.Saga {
	return effects.NewSaga(Name,
		effects.Call(Login, "Login Failed", func(p LoginParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/auth/login", Body: p}
		}),
		effects.Call(Register, "Registration Failed", func(p RegisterParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/auth/register", Body: p}
		}),
		effects.Call(ValidateOTP, "Validation Failed", func(p ValidateParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: "/auth/validate", Body: p}
		}),
		effects.Call(FetchCurrentUser, "User Fetching Failed", func(NoParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: "/auth/me"}
		}),
		effects.Call(UpdateProfile, "Profile Update Failed", func(p ProfileParams) transport.Request {
			return transport.Request{Method: http.MethodPut, Path: "/users/me", Body: p}
		}),
		effects.Call(FollowUnfollowUser, "Follow Action Failed", func(p FollowParams) transport.Request {
			return transport.Request{Method: http.MethodPost, Path: transport.Path("users", p.TargetID, "follow")}
		}).Then(func(p FollowParams, _ json.RawMessage) []action.Action {
			return []action.Action{FetchFollowingList.Request(UserParams{UserID: p.UserID})}
		}),
		effects.Call(FetchFollowingList, "Following List Fetching Failed", func(p UserParams) transport.Request {
			return transport.Request{Method: http.MethodGet, Path: transport.Path("users", p.UserID, "following")}
		}),
	)
}
