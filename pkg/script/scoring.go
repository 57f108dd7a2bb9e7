package script

import (
	"encoding/json"
	"time"

	"github.com/dop251/goja"
	"github.com/go-go-golems/pickem/pkg/models"
	"github.com/go-go-golems/pickem/pkg/scoring"
	"github.com/pkg/errors"
)

// fromJS decodes a JS value into dst through its JSON form.
func fromJS(vm *goja.Runtime, v goja.Value, dst any) {
	if goja.IsUndefined(v) || goja.IsNull(v) {
		throw(vm, errors.New("missing argument"))
	}
	b, err := json.Marshal(v.Export())
	if err != nil {
		throw(vm, errors.Wrap(err, "encode argument"))
	}
	if err := json.Unmarshal(b, dst); err != nil {
		throw(vm, errors.Wrap(err, "decode argument"))
	}
}

func optionalLimit(call goja.FunctionCall, i int) int {
	if arg := call.Argument(i); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
		return int(arg.ToInteger())
	}
	return 0
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// scoringObject exposes the pick and slip helpers, e.g.
//
//	scoring.canFinalize(state("slip").slip)
//	scoring.points({odds: "+150", result: "win"})
func (r *Runner) scoringObject(vm *goja.Runtime) (*goja.Object, error) {
	obj := vm.NewObject()
	slipArg := func(call goja.FunctionCall) models.Slip {
		var s models.Slip
		fromJS(vm, call.Argument(0), &s)
		return s
	}
	fns := map[string]func(goja.FunctionCall) goja.Value{
		"points": func(call goja.FunctionCall) goja.Value {
			var p models.Pick
			fromJS(vm, call.Argument(0), &p)
			return vm.ToValue(scoring.GetPickPoints(p))
		},
		"parseOdds": func(call goja.FunctionCall) goja.Value {
			n, err := scoring.ParseAmericanOdds(call.Argument(0).String())
			if err != nil {
				throw(vm, err)
			}
			return vm.ToValue(n)
		},
		"result": func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(string(scoring.NormalizePickResult(call.Argument(0).String())))
		},
		"slipPoints": func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(scoring.SlipPoints(slipArg(call)))
		},
		"canFinalize": func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(scoring.CanFinalize(slipArg(call), r.now(), optionalLimit(call, 1)))
		},
		"remaining": func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(scoring.PickLimitRemaining(slipArg(call), optionalLimit(call, 1)))
		},
		"locked": func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(scoring.IsSlipTimeLocked(slipArg(call), r.now()))
		},
		"final": func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(scoring.IsSlipFinal(slipArg(call)))
		},
		"category": func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(string(scoring.SlipCategory(slipArg(call), r.now())))
		},
		"windowEnd": func(goja.FunctionCall) goja.Value {
			now := r.now()
			return vm.ToValue(scoring.EligibleWindowEnd(now, now.Location()).Format(time.RFC3339))
		},
	}
	for name, fn := range fns {
		if err := obj.Set(name, fn); err != nil {
			return nil, errors.Wrapf(err, "bind scoring.%s", name)
		}
	}
	return obj, nil
}
