package portfolio

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"GridironMarket/internal/model"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidPrice       = errors.New("price must be a positive number")
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrInsufficientShares = errors.New("not enough shares")
)

// Manager applies trades to the ledger with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	ledger   *Ledger
	filePath string
	now      func() time.Time
}

// NewManager creates a Manager, loading or initializing the ledger from disk.
// A fresh ledger is funded with initialDeposit.
func NewManager(filePath string, initialDeposit float64) (*Manager, error) {
	l, err := LoadLedger(filePath)
	if err != nil {
		return nil, err
	}

	if l.InitialDeposit == 0 && len(l.Transactions) == 0 {
		l.InitialDeposit = initialDeposit
		l.Balance = initialDeposit
	}

	m := &Manager{ledger: l, filePath: filePath, now: time.Now}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Buy debits quantity*price from cash and records the trade.
func (m *Manager) Buy(team string, quantity int, price float64) (model.Transaction, error) {
	if err := validate(quantity, price); err != nil {
		return model.Transaction{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cost := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
	balance := decimal.NewFromFloat(m.ledger.Balance)
	if balance.LessThan(cost) {
		return model.Transaction{}, fmt.Errorf("%w ($%s < $%s)", ErrInsufficientFunds,
			balance.StringFixed(2), cost.StringFixed(2))
	}

	m.ledger.Balance = balance.Sub(cost).InexactFloat64()
	return m.record(team, model.ActionBuy, quantity, price), nil
}

// Sell credits quantity*price to cash. The team must hold enough shares.
func (m *Manager) Sell(team string, quantity int, price float64) (model.Transaction, error) {
	if err := validate(quantity, price); err != nil {
		return model.Transaction{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	owned := 0
	for _, t := range m.ledger.Transactions {
		if t.TeamName != team {
			continue
		}
		if t.Action == model.ActionBuy {
			owned += t.Quantity
		} else {
			owned -= t.Quantity
		}
	}
	if owned < quantity {
		return model.Transaction{}, fmt.Errorf("%w: you have %d", ErrInsufficientShares, owned)
	}

	proceeds := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
	m.ledger.Balance = decimal.NewFromFloat(m.ledger.Balance).Add(proceeds).InexactFloat64()
	return m.record(team, model.ActionSell, quantity, price), nil
}

func validate(quantity int, price float64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (m *Manager) record(team string, action model.TradeAction, quantity int, price float64) model.Transaction {
	txn := model.Transaction{
		ID:        uuid.NewString(),
		TeamName:  team,
		Action:    action,
		Quantity:  quantity,
		Price:     price,
		Timestamp: m.now(),
	}
	m.ledger.Transactions = append(m.ledger.Transactions, txn)
	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save ledger after %s %s: %v", action, team, err)
	}
	return txn
}

// Balance returns the cash balance.
func (m *Manager) Balance() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Balance
}

// Transactions returns the trade history, newest first. Trades recorded
// at the same instant keep reverse insertion order.
func (m *Manager) Transactions() []model.Transaction {
	m.mu.Lock()
	out := make([]model.Transaction, len(m.ledger.Transactions))
	for i, t := range m.ledger.Transactions {
		out[len(out)-1-i] = t
	}
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// Snapshot returns cash and open positions.
func (m *Manager) Snapshot() model.PortfolioSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.PortfolioSnapshot{
		Balance:   m.ledger.Balance,
		Positions: Positions(m.ledger.Transactions),
	}
}

func (m *Manager) save() error {
	return SaveLedger(m.filePath, m.ledger)
}
