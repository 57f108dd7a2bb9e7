package reducer

import (
	"encoding/json"
	"testing"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/adapt"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string `json:"id"`
}

type testState struct {
	Item          *item
	Loading       bool
	DeleteLoading bool
	Error         string
	Message       string
	DeleteMessage string
}

type noParams struct{}

var (
	fetchOp  = action.NewOp[noParams]("test", "fetchItem")
	deleteOp = action.NewOp[noParams]("test", "deleteItem")
	logoutT  = action.Type("test/logout")

	mainClass = Class[testState]{
		Name:    "loading",
		Loading: func(s *testState) *bool { return &s.Loading },
		Error:   func(s *testState) *string { return &s.Error },
		Message: func(s *testState) *string { return &s.Message },
	}
	deleteClass = Class[testState]{
		Name:    "deleteLoading",
		Loading: func(s *testState) *bool { return &s.DeleteLoading },
		Error:   func(s *testState) *string { return &s.Error },
		Message: func(s *testState) *string { return &s.DeleteMessage },
	}
)

func newTestSlice() *Slice[testState] {
	return New("test", testState{}, mainClass, deleteClass).
		Arms(
			On(fetchOp, mainClass).Store(func(s *testState, body json.RawMessage) {
				s.Item = adapt.Path[item]("data.item").Ptr(body)
			}).WithMessage(),
			On(deleteOp, deleteClass).Store(func(s *testState, body json.RawMessage) {
				s.Item = nil
			}).WithMessage(),
		).
		Handle(logoutT, func(testState, action.Action) testState { return testState{} })
}

func TestSlice_Lifecycle(t *testing.T) {
	sl := newTestSlice()
	s := sl.Initial

	s = sl.Reduce(s, fetchOp.Request(noParams{}))
	require.True(t, s.Loading)
	require.False(t, s.DeleteLoading)

	s = sl.Reduce(s, fetchOp.Success(json.RawMessage(`{"data":{"item":{"id":"i1"}},"message":"ok"}`)))
	require.False(t, s.Loading)
	require.Equal(t, "i1", s.Item.ID)
	require.Equal(t, "ok", s.Message)

	s = sl.Reduce(s, deleteOp.Request(noParams{}))
	require.True(t, s.DeleteLoading)
	require.False(t, s.Loading)
	require.NotNil(t, s.Item)

	s = sl.Reduce(s, deleteOp.Failure("nope"))
	require.False(t, s.DeleteLoading)
	require.Equal(t, "nope", s.Error)
	require.Equal(t, "i1", s.Item.ID)

	s = sl.Reduce(s, deleteOp.ClearMessage())
	require.Equal(t, "", s.Error)
	require.Equal(t, "ok", s.Message, "clearing the delete class keeps the main message")
}

func TestSlice_RequestClearsError(t *testing.T) {
	sl := newTestSlice()
	s := sl.Reduce(sl.Initial, fetchOp.Failure("boom"))
	require.Equal(t, "boom", s.Error)

	s = sl.Reduce(s, fetchOp.Request(noParams{}))
	require.Equal(t, "", s.Error)
	require.True(t, s.Loading)
}

func TestSlice_UnknownActionIsIdentity(t *testing.T) {
	sl := newTestSlice()
	s := testState{Item: &item{ID: "x"}, Message: "m"}
	require.Equal(t, s, sl.Reduce(s, action.Plain("other/thing")))
}

func TestSlice_PanickingAdapterStillClearsLoading(t *testing.T) {
	sl := New("test", testState{}, mainClass).Arms(
		On(fetchOp, mainClass).Store(func(s *testState, body json.RawMessage) {
			s.Item = &item{ID: "partial"}
			panic("bad adapter")
		}),
	)
	s := sl.Reduce(testState{Loading: true, Item: &item{ID: "old"}}, fetchOp.Success(nil))
	require.False(t, s.Loading)
	require.Equal(t, "old", s.Item.ID)
}

func TestSlice_PlainHandler(t *testing.T) {
	sl := newTestSlice()
	s := sl.Reduce(testState{Item: &item{ID: "x"}, Loading: true}, action.Plain(logoutT))
	require.Equal(t, testState{}, s)
}

func TestSlice_StatusAndDomain(t *testing.T) {
	sl := newTestSlice()
	d := sl.Domain()
	require.Equal(t, "test", d.Name)

	next := d.Reduce(d.Initial, deleteOp.Request(noParams{}))
	st := d.Status(next)
	require.True(t, st.Busy())
	require.True(t, st.Loading["deleteLoading"])
	require.False(t, st.Loading["loading"])

	next = d.Reduce(next, deleteOp.Success(json.RawMessage(`{"message":"Deleted"}`)))
	st = d.Status(next)
	require.False(t, st.Busy())
	require.Equal(t, "Deleted", st.Messages["deleteLoading"])

	require.Len(t, sl.Types(), 9)
}
