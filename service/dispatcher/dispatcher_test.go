package dispatcher

import (
	"context"
	"testing"

	"github.com/bmizerany/assert"

	"singular/core"
)

func TestExecuteUnregisteredAction(t *testing.T) {
	d := New(nil, nil)

	err := d.Execute(context.Background(), core.Call{Action: core.ActionTypeBorrow})
	assert.Equal(t, core.ErrHandlerNotRegistered, err)
}

func TestActionModuleMapping(t *testing.T) {
	assert.Equal(t, core.ModuleTypeBorrow, core.ActionTypeAddAsset.Module())
	assert.Equal(t, core.ModuleTypeCollateral, core.ActionTypeRemoveCollateral.Module())
	assert.Equal(t, core.ModuleTypeLiquidation, core.ActionTypeLiquidate.Module())
	assert.Equal(t, core.ModuleTypeLeverage, core.ActionTypeLeverDown.Module())
}
