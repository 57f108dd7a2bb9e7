package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type createParams struct {
	GroupID     string `json:"group_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func TestOp_Types(t *testing.T) {
	op := NewOp[createParams]("slip", "createSlip")

	require.Equal(t, Type("slip/createSlipRequest"), op.RequestType())
	require.Equal(t, Type("slip/createSlipSuccess"), op.SuccessType())
	require.Equal(t, Type("slip/createSlipFailure"), op.FailureType())
	require.Equal(t, Type("slip/createSlipClearMessage"), op.ClearMessageType())
	require.Len(t, op.Types(), 4)
}

func TestOp_Creators(t *testing.T) {
	op := NewOp[createParams]("group", "createGroup")

	req := op.Request(createParams{Name: "Dynasty"})
	p, ok := PayloadAs[createParams](req)
	require.True(t, ok)
	require.Equal(t, "Dynasty", p.Name)

	ok2 := op.Success(json.RawMessage(`{"message":"Created"}`))
	require.JSONEq(t, `{"message":"Created"}`, string(Body(ok2)))

	fail := op.Failure("boom")
	require.Equal(t, "boom", Message(fail))
	require.Nil(t, Body(Action{Type: "x", Payload: 42}))

	clr := op.ClearMessage()
	require.Nil(t, clr.Payload)
}

func TestPayloadAs_Pointer(t *testing.T) {
	a := Action{Type: "x", Payload: &createParams{Name: "p"}}
	p, ok := PayloadAs[createParams](a)
	require.True(t, ok)
	require.Equal(t, "p", p.Name)

	var nilPtr *createParams
	_, ok = PayloadAs[createParams](Action{Type: "x", Payload: nilPtr})
	require.False(t, ok)

	_, ok = PayloadAs[createParams](Action{Type: "x", Payload: "nope"})
	require.False(t, ok)
}

func TestDecodeRequest(t *testing.T) {
	op := NewOp[createParams]("group", "createGroup")

	a, err := op.DecodeRequest([]byte(`{"name":"Dynasty","group_id":"g1"}`))
	require.NoError(t, err)
	require.Equal(t, op.RequestType(), a.Type)
	p, ok := PayloadAs[createParams](a)
	require.True(t, ok)
	require.Equal(t, "g1", p.GroupID)

	a, err = op.Describe().Decode(nil)
	require.NoError(t, err)
	p, _ = PayloadAs[createParams](a)
	require.Equal(t, createParams{}, p)

	_, err = op.DecodeRequest([]byte(`{`))
	require.Error(t, err)
}
