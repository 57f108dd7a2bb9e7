package reducer

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genState(id, errText, msg string, loading, deleteLoading bool) testState {
	s := testState{Loading: loading, DeleteLoading: deleteLoading, Error: errText, Message: msg}
	if id != "" {
		s.Item = &item{ID: id}
	}
	return s
}

func TestSliceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	sl := newTestSlice()

	properties.Property("clear message is idempotent", prop.ForAll(
		func(id, errText, msg string, loading, deleteLoading bool) bool {
			s := genState(id, errText, msg, loading, deleteLoading)
			once := sl.Reduce(s, fetchOp.ClearMessage())
			twice := sl.Reduce(once, fetchOp.ClearMessage())
			return once == twice && once.Error == "" && once.Message == "" &&
				once.Loading == s.Loading && once.Item == s.Item
		},
		gen.AlphaString(), gen.AlphaString(), gen.AlphaString(), gen.Bool(), gen.Bool(),
	))

	properties.Property("request keeps data and sets loading", prop.ForAll(
		func(id, errText, msg string, deleteLoading bool) bool {
			s := genState(id, errText, msg, false, deleteLoading)
			next := sl.Reduce(s, fetchOp.Request(noParams{}))
			return next.Item == s.Item && next.Loading && next.DeleteLoading == s.DeleteLoading
		},
		gen.AlphaString(), gen.AlphaString(), gen.AlphaString(), gen.Bool(),
	))

	properties.Property("failure keeps data", prop.ForAll(
		func(id, failure string, loading bool) bool {
			s := genState(id, "", "", loading, false)
			next := sl.Reduce(s, fetchOp.Failure(failure))
			return next.Item == s.Item && next.Error == failure && !next.Loading
		},
		gen.AlphaString(), gen.AlphaString(), gen.Bool(),
	))

	properties.Property("success always clears loading", prop.ForAll(
		func(raw string, id string) bool {
			s := genState(id, "", "", true, true)
			a := sl.Reduce(s, fetchOp.Success(json.RawMessage(raw)))
			b := sl.Reduce(s, deleteOp.Success(json.RawMessage(raw)))
			return !a.Loading && !b.DeleteLoading
		},
		gen.OneGenOf(
			gen.AnyString(),
			gen.Const(`{"data":{"item":{"id":"i1"}}}`),
			gen.Const(`{"data":{"item":null}}`),
			gen.Const(`{"data":[]}`),
			gen.Const(`null`),
		),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
