package core

import (
	"context"

	"github.com/fox-one/pkg/store/db"
)

// Module one operation-category handler. All modules mutate the same
// persistent storage through the tx handle they are given; they are
// strategy objects behind one dispatch surface, not isolated services.
type Module interface {
	Execute(ctx context.Context, tx *db.DB, call Call) error
}

// IDispatcher routes calls to registered modules. Execute wraps one call in
// its own transaction; Batch runs encoded calls either atomically or with
// per-call commit depending on revertOnFail.
type IDispatcher interface {
	Execute(ctx context.Context, call Call) error
	Batch(ctx context.Context, calls []Call, revertOnFail bool) ([]CallResult, error)
}
