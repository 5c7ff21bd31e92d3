package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001
	// ErrInvalidArgument malformed request rejected before any state mutation
	ErrInvalidArgument ErrorCode = 100002

	// ErrMarketNotFound no market
	ErrMarketNotFound ErrorCode = 100100
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100101
	// ErrPositionNotFound no position
	ErrPositionNotFound ErrorCode = 100102
	// ErrDepositNotFound no lender deposit
	ErrDepositNotFound ErrorCode = 100103
	// ErrInsufficientCollateral user is insolvent after the operation
	ErrInsufficientCollateral ErrorCode = 100104
	// ErrInsufficientLiquidity idle liquidity can not cover the withdrawal
	ErrInsufficientLiquidity ErrorCode = 100105
	// ErrInsufficientBalance subtraction below zero on a share or part balance
	ErrInsufficientBalance ErrorCode = 100106
	// ErrNoLiquidatableUser batch contained no insolvent user
	ErrNoLiquidatableUser ErrorCode = 100107
	// ErrInvalidPrice oracle returned an unusable rate and no cached rate exists
	ErrInvalidPrice ErrorCode = 100108
	// ErrLengthMismatch users and maxBorrowParts differ in length
	ErrLengthMismatch ErrorCode = 100109
	// ErrSwapperNotAllowed swapper is not on the allow-list
	ErrSwapperNotAllowed ErrorCode = 100110
	// ErrMinOutNotReached swap output below the caller's guard
	ErrMinOutNotReached ErrorCode = 100111

	// ErrHandlerNotRegistered no module registered for the action
	ErrHandlerNotRegistered ErrorCode = 100200
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
