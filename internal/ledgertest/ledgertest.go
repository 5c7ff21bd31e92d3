// Package ledgertest provides in-memory collaborator implementations for
// service tests: stores, a share-ledger vault, a fixed-rate oracle, a
// scripted bid queue and a rate-based swapper.
package ledgertest

import (
	"context"
	"sort"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/pkg/rebase"
)

// MarketStore in-memory core.IMarketStore
type MarketStore struct {
	markets map[string]*core.Market
}

func NewMarketStore(markets ...*core.Market) *MarketStore {
	s := &MarketStore{markets: map[string]*core.Market{}}
	for _, m := range markets {
		s.markets[m.AssetID] = m
	}
	return s
}

func (s *MarketStore) Create(ctx context.Context, tx *db.DB, market *core.Market) error {
	s.markets[market.AssetID] = market
	return nil
}

func (s *MarketStore) Find(ctx context.Context, tx *db.DB, assetID string) (*core.Market, error) {
	m, ok := s.markets[assetID]
	if !ok {
		return nil, core.ErrMarketNotFound
	}
	return m, nil
}

func (s *MarketStore) FindBySymbol(ctx context.Context, symbol string) (*core.Market, error) {
	for _, m := range s.markets {
		if m.Symbol == symbol {
			return m, nil
		}
	}
	return nil, core.ErrMarketNotFound
}

func (s *MarketStore) All(ctx context.Context) ([]*core.Market, error) {
	var out []*core.Market
	for _, m := range s.markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out, nil
}

func (s *MarketStore) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	market.Version++
	s.markets[market.AssetID] = market
	return nil
}

// PositionStore in-memory core.IPositionStore
type PositionStore struct {
	positions map[string]*core.Position
}

func NewPositionStore() *PositionStore {
	return &PositionStore{positions: map[string]*core.Position{}}
}

func key(userID, assetID string) string {
	return userID + "/" + assetID
}

func (s *PositionStore) Find(ctx context.Context, tx *db.DB, userID, assetID string) (*core.Position, error) {
	if p, ok := s.positions[key(userID, assetID)]; ok {
		copied := *p
		return &copied, nil
	}
	return &core.Position{
		UserID:          userID,
		AssetID:         assetID,
		BorrowPart:      decimal.Zero,
		CollateralShare: decimal.Zero,
	}, nil
}

func (s *PositionStore) FindByMarket(ctx context.Context, assetID string) ([]*core.Position, error) {
	var out []*core.Position
	for _, p := range s.positions {
		if p.AssetID == assetID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *PositionStore) FindByUser(ctx context.Context, userID string) ([]*core.Position, error) {
	var out []*core.Position
	for _, p := range s.positions {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *PositionStore) Save(ctx context.Context, tx *db.DB, position *core.Position) error {
	position.Version++
	copied := *position
	s.positions[key(position.UserID, position.AssetID)] = &copied
	return nil
}

// DepositStore in-memory core.IDepositStore
type DepositStore struct {
	deposits map[string]*core.Deposit
}

func NewDepositStore() *DepositStore {
	return &DepositStore{deposits: map[string]*core.Deposit{}}
}

func (s *DepositStore) Find(ctx context.Context, tx *db.DB, userID, assetID string) (*core.Deposit, error) {
	if d, ok := s.deposits[key(userID, assetID)]; ok {
		copied := *d
		return &copied, nil
	}
	return &core.Deposit{UserID: userID, AssetID: assetID, Fraction: decimal.Zero}, nil
}

func (s *DepositStore) FindByMarket(ctx context.Context, assetID string) ([]*core.Deposit, error) {
	var out []*core.Deposit
	for _, d := range s.deposits {
		if d.AssetID == assetID {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *DepositStore) Save(ctx context.Context, tx *db.DB, deposit *core.Deposit) error {
	deposit.Version++
	copied := *deposit
	s.deposits[key(deposit.UserID, deposit.AssetID)] = &copied
	return nil
}

// EventStore in-memory core.IEventStore
type EventStore struct {
	Events []*core.LiquidationEvent
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) Create(ctx context.Context, tx *db.DB, event *core.LiquidationEvent) error {
	s.Events = append(s.Events, event)
	return nil
}

func (s *EventStore) FindByMarket(ctx context.Context, assetID string, limit int) ([]*core.LiquidationEvent, error) {
	var out []*core.LiquidationEvent
	for _, e := range s.Events {
		if e.AssetID == assetID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Vault in-memory share ledger with 1:1 share/amount rebase unless an
// asset is seeded otherwise via SetRebase.
type Vault struct {
	rebases  map[string]rebase.Rebase
	balances map[string]decimal.Decimal
}

func NewVault() *Vault {
	return &Vault{
		rebases:  map[string]rebase.Rebase{},
		balances: map[string]decimal.Decimal{},
	}
}

func (v *Vault) SetRebase(assetID string, totalAmount, totalShare decimal.Decimal) {
	v.rebases[assetID] = rebase.Rebase{Elastic: totalAmount, Base: totalShare}
}

func (v *Vault) Credit(holder, assetID string, share decimal.Decimal) {
	v.balances[key(holder, assetID)] = v.Balance(holder, assetID).Add(share)
}

func (v *Vault) Balance(holder, assetID string) decimal.Decimal {
	if b, ok := v.balances[key(holder, assetID)]; ok {
		return b
	}
	return decimal.Zero
}

func (v *Vault) ToShare(ctx context.Context, assetID string, amount decimal.Decimal, roundUp bool) (decimal.Decimal, error) {
	return v.rebases[assetID].ToBase(amount, roundUp), nil
}

func (v *Vault) ToAmount(ctx context.Context, assetID string, share decimal.Decimal, roundUp bool) (decimal.Decimal, error) {
	return v.rebases[assetID].ToElastic(share, roundUp), nil
}

func (v *Vault) BalanceOf(ctx context.Context, holder, assetID string) (decimal.Decimal, error) {
	return v.Balance(holder, assetID), nil
}

func (v *Vault) Transfer(ctx context.Context, tx *db.DB, from, to, assetID string, share decimal.Decimal) error {
	balance := v.Balance(from, assetID)
	if balance.LessThan(share) {
		return core.ErrInsufficientBalance
	}
	v.balances[key(from, assetID)] = balance.Sub(share)
	v.Credit(to, assetID, share)
	return nil
}

func (v *Vault) Deposit(ctx context.Context, tx *db.DB, to, assetID string, amount decimal.Decimal) (decimal.Decimal, error) {
	share := v.rebases[assetID].ToBase(amount, false)
	v.rebases[assetID] = v.rebases[assetID].AddPair(amount, share)
	v.Credit(to, assetID, share)
	return share, nil
}

func (v *Vault) Withdraw(ctx context.Context, tx *db.DB, from, assetID string, share decimal.Decimal) (decimal.Decimal, error) {
	balance := v.Balance(from, assetID)
	if balance.LessThan(share) {
		return decimal.Zero, core.ErrInsufficientBalance
	}
	r, amount, err := v.rebases[assetID].Sub(share, false)
	if err != nil {
		return decimal.Zero, err
	}
	v.rebases[assetID] = r
	v.balances[key(from, assetID)] = balance.Sub(share)
	return amount, nil
}

// Oracle fixed-rate oracle; set OK to false to simulate an outage.
type Oracle struct {
	Rate decimal.Decimal
	OK   bool
}

func (o *Oracle) Get(ctx context.Context, market *core.Market) (decimal.Decimal, bool) {
	return o.Rate, o.OK
}

// Queue scripted order-book queue.
type Queue struct {
	Pool      core.BidPool
	Available bool
	// Return is the asset amount ExecuteBids pays back; Executed records
	// the collateral share it received.
	Return   decimal.Decimal
	Executed decimal.Decimal
	vault    *Vault
}

func NewQueue(vault *Vault) *Queue {
	return &Queue{vault: vault}
}

func (q *Queue) Holder() string {
	return "queue"
}

func (q *Queue) NextAvailableBidPool(ctx context.Context, market *core.Market) (core.BidPool, bool, error) {
	return q.Pool, q.Available, nil
}

func (q *Queue) ExecuteBids(ctx context.Context, tx *db.DB, market *core.Market, collateralShare decimal.Decimal, swapData []byte) (decimal.Decimal, error) {
	q.Executed = collateralShare
	if q.vault != nil {
		if _, err := q.vault.Deposit(ctx, tx, market.VaultHolder(), market.AssetID, q.Return); err != nil {
			return decimal.Zero, err
		}
	}
	return q.Return, nil
}

// Swapper converts at a fixed output rate per unit of collateral amount.
type Swapper struct {
	SwapperName string
	// Rate asset amount returned per unit of input collateral amount
	Rate  decimal.Decimal
	vault *Vault
	// Fail forces the swap to error
	Fail error
}

func NewSwapper(name string, rate decimal.Decimal, vault *Vault) *Swapper {
	return &Swapper{SwapperName: name, Rate: rate, vault: vault}
}

func (s *Swapper) Name() string {
	return s.SwapperName
}

func (s *Swapper) Swap(ctx context.Context, tx *db.DB, inputAssetID, outputAssetID string, shareIn, minAmountOut decimal.Decimal, recipient string, data []byte) (decimal.Decimal, decimal.Decimal, error) {
	if s.Fail != nil {
		return decimal.Zero, decimal.Zero, s.Fail
	}

	amountIn, err := s.vault.ToAmount(ctx, inputAssetID, shareIn, false)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	amountOut := amountIn.Mul(s.Rate)
	if amountOut.LessThan(minAmountOut) {
		return decimal.Zero, decimal.Zero, core.ErrMinOutNotReached
	}

	if _, err := s.vault.Withdraw(ctx, tx, s.SwapperName, inputAssetID, shareIn); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	shareOut, err := s.vault.Deposit(ctx, tx, recipient, outputAssetID, amountOut)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return amountOut, shareOut, nil
}
