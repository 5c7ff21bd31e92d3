package core

// ActionType user action type
type ActionType int

const (
	// ActionTypeBorrow borrow against collateral
	ActionTypeBorrow ActionType = iota + 1
	// ActionTypeRepay repay a borrow part
	ActionTypeRepay
	// ActionTypeAddCollateral add collateral share
	ActionTypeAddCollateral
	// ActionTypeRemoveCollateral remove collateral share
	ActionTypeRemoveCollateral
	// ActionTypeAddAsset lend asset into the pool
	ActionTypeAddAsset
	// ActionTypeRemoveAsset withdraw lent asset
	ActionTypeRemoveAsset
	// ActionTypeLiquidate liquidate a batch of users
	ActionTypeLiquidate
	// ActionTypeLeverUp borrow, swap and collateralize in one call
	ActionTypeLeverUp
	// ActionTypeLeverDown deleverage collateral into debt repayment
	ActionTypeLeverDown
)

// ModuleType operation category, one registered handler each
type ModuleType int

const (
	// ModuleTypeBorrow borrow/repay/lend operations
	ModuleTypeBorrow ModuleType = iota + 1
	// ModuleTypeCollateral collateral operations
	ModuleTypeCollateral
	// ModuleTypeLiquidation liquidation operations
	ModuleTypeLiquidation
	// ModuleTypeLeverage leverage operations
	ModuleTypeLeverage
)

// Module returns the category owning this action.
func (a ActionType) Module() ModuleType {
	switch a {
	case ActionTypeBorrow, ActionTypeRepay, ActionTypeAddAsset, ActionTypeRemoveAsset:
		return ModuleTypeBorrow
	case ActionTypeAddCollateral, ActionTypeRemoveCollateral:
		return ModuleTypeCollateral
	case ActionTypeLiquidate:
		return ModuleTypeLiquidation
	case ActionTypeLeverUp, ActionTypeLeverDown:
		return ModuleTypeLeverage
	default:
		return 0
	}
}

// Call a single encoded operation against the market's public surface.
// Body is a calldata-encoded argument list owned by the target module.
type Call struct {
	Action ActionType `json:"action"`
	UserID string     `json:"user_id"`
	Asset  string     `json:"asset"`
	Body   []byte     `json:"body"`
}

// CallResult per-call outcome of a batched execute
type CallResult struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg,omitempty"`
}
