package dispatcher

import (
	"context"
	"sync"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"

	"singular/core"
)

// Dispatcher routes calls to the module owning the call's category. The
// module table is fixed at construction; there is no re-registration.
// Every module mutates the same database through the transaction handle
// the dispatcher opens, and a non-reentrant mutex serializes entry so a
// collaborator calling back in can not interleave with a running call.
type Dispatcher struct {
	db      *db.DB
	modules map[core.ModuleType]core.Module

	mutex sync.Mutex
}

// New new dispatcher with its immutable module table
func New(database *db.DB, modules map[core.ModuleType]core.Module) core.IDispatcher {
	copied := make(map[core.ModuleType]core.Module, len(modules))
	for k, v := range modules {
		copied[k] = v
	}

	return &Dispatcher{
		db:      database,
		modules: copied,
	}
}

func (d *Dispatcher) resolve(call core.Call) (core.Module, error) {
	mod, ok := d.modules[call.Action.Module()]
	if !ok || mod == nil {
		return nil, core.ErrHandlerNotRegistered
	}
	return mod, nil
}

// Execute runs one call in its own transaction: the call fully commits or
// fully rolls back. Module failures propagate unchanged.
func (d *Dispatcher) Execute(ctx context.Context, call core.Call) error {
	mod, err := d.resolve(call)
	if err != nil {
		return err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.db.Tx(func(tx *db.DB) error {
		return mod.Execute(ctx, tx, call)
	})
}

// Batch executes encoded calls in order. With revertOnFail the whole
// batch shares one transaction and the first failure rolls everything
// back; without it each call commits on its own and failures are captured
// per call instead of aborting the rest.
func (d *Dispatcher) Batch(ctx context.Context, calls []core.Call, revertOnFail bool) ([]core.CallResult, error) {
	log := logger.FromContext(ctx).WithField("service", "dispatcher")

	d.mutex.Lock()
	defer d.mutex.Unlock()

	results := make([]core.CallResult, 0, len(calls))

	if revertOnFail {
		err := d.db.Tx(func(tx *db.DB) error {
			for _, call := range calls {
				mod, err := d.resolve(call)
				if err != nil {
					return err
				}
				if err := mod.Execute(ctx, tx, call); err != nil {
					return err
				}
				results = append(results, core.CallResult{OK: true})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return results, nil
	}

	for _, call := range calls {
		mod, err := d.resolve(call)
		if err == nil {
			err = d.db.Tx(func(tx *db.DB) error {
				return mod.Execute(ctx, tx, call)
			})
		}

		if err != nil {
			log.WithError(err).Debugf("call %d failed", call.Action)
			results = append(results, core.CallResult{OK: false, Msg: err.Error()})
			continue
		}
		results = append(results, core.CallResult{OK: true})
	}

	return results, nil
}
