package views

import (
	"github.com/shopspring/decimal"

	"singular/core"
)

// Market market view
type Market struct {
	core.Market
	Utilization decimal.Decimal `json:"utilization"`
	IdleAmount  decimal.Decimal `json:"idle_amount"`
}

// Position position view
type Position struct {
	core.Position
	BorrowAmount    decimal.Decimal `json:"borrow_amount"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	Solvent         bool            `json:"solvent"`
}
