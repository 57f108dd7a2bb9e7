// Package script drives an app from JavaScript files, for reproducing user
// flows against a backend without the UI:
//
//	dispatch("group/fetchAllGroupsRequest", {limit: 5})
//	waitIdle("group", 2000)
//	log(state("group").groups.length)
//	log(scoring.canFinalize(state("slip").slip))
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/app"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Runner struct {
	App    *app.App
	Out    io.Writer
	Logger zerolog.Logger
	// Poll is the waitIdle polling interval.
	Poll time.Duration
	// Now is the clock used by the scoring helpers; time.Now when nil.
	Now func() time.Time
}

func (r *Runner) RunFile(ctx context.Context, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read script")
	}
	return r.Run(ctx, path, string(b))
}

// Run executes src to completion. Cancelling ctx interrupts the script.
func (r *Runner) Run(ctx context.Context, name, src string) error {
	if r.App == nil {
		return errors.New("missing App")
	}
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	for fname, fn := range map[string]func(*goja.Runtime, context.Context) func(goja.FunctionCall) goja.Value{
		"dispatch": r.dispatch,
		"state":    r.state,
		"status":   r.status,
		"waitIdle": r.waitIdle,
		"log":      r.log,
	} {
		if err := vm.Set(fname, fn(vm, ctx)); err != nil {
			return errors.Wrapf(err, "bind %s", fname)
		}
	}

	sc, err := r.scoringObject(vm)
	if err != nil {
		return err
	}
	if err := vm.Set("scoring", sc); err != nil {
		return errors.Wrap(err, "bind scoring")
	}

	stop := context.AfterFunc(ctx, func() { vm.Interrupt("script cancelled") })
	defer stop()

	if _, err := vm.RunScript(name, src); err != nil {
		var ie *goja.InterruptedError
		if errors.As(err, &ie) {
			return errors.Wrap(ctx.Err(), name)
		}
		return errors.Wrapf(err, "run %s", name)
	}
	return nil
}

func throw(vm *goja.Runtime, err error) {
	panic(vm.NewGoError(err))
}

func (r *Runner) dispatch(vm *goja.Runtime, _ context.Context) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		t := call.Argument(0).String()
		var payload []byte
		if arg := call.Argument(1); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
			b, err := json.Marshal(arg.Export())
			if err != nil {
				throw(vm, errors.Wrap(err, "encode payload"))
			}
			payload = b
		}
		a, err := r.App.Decode(action.Type(t), payload)
		if err != nil {
			throw(vm, err)
		}
		r.App.Store.Dispatch(a)
		return goja.Undefined()
	}
}

// toJS converts v to plain JS values by way of its JSON form.
func toJS(vm *goja.Runtime, v any) goja.Value {
	b, err := json.Marshal(v)
	if err != nil {
		throw(vm, err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		throw(vm, err)
	}
	return vm.ToValue(out)
}

func (r *Runner) state(vm *goja.Runtime, _ context.Context) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		v, ok := r.App.Store.Get(name)
		if !ok {
			throw(vm, errors.Errorf("unknown domain %q", name))
		}
		return toJS(vm, v)
	}
}

func (r *Runner) status(vm *goja.Runtime, _ context.Context) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		st, ok := r.App.Store.Status(name)
		if !ok {
			throw(vm, errors.Errorf("unknown domain %q", name))
		}
		return toJS(vm, st)
	}
}

// waitIdle returns false when the timeout (ms, default 5000) expires first.
func (r *Runner) waitIdle(vm *goja.Runtime, ctx context.Context) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		ms := int64(5000)
		if arg := call.Argument(1); !goja.IsUndefined(arg) {
			ms = arg.ToInteger()
		}
		wctx, cancel := context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
		defer cancel()
		err := r.App.WaitIdle(wctx, name, r.Poll)
		switch {
		case err == nil:
			return vm.ToValue(true)
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			return vm.ToValue(false)
		default:
			throw(vm, err)
			return nil
		}
	}
}

func (r *Runner) log(vm *goja.Runtime, _ context.Context) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, a := range call.Arguments {
			switch a.ExportType() {
			case nil:
				parts = append(parts, a.String())
			default:
				if obj, ok := a.(*goja.Object); ok && obj.ClassName() != "Function" {
					if b, err := json.Marshal(a.Export()); err == nil {
						parts = append(parts, string(b))
						continue
					}
				}
				parts = append(parts, a.String())
			}
		}
		line := strings.Join(parts, " ")
		r.Logger.Info().Str("source", "script").Msg(line)
		if r.Out != nil {
			_, _ = fmt.Fprintln(r.Out, line)
		}
		return goja.Undefined()
	}
}
