// Package portfolio keeps a local paper-trading ledger and values it
// against live market prices.
package portfolio

import (
	"encoding/json"
	"os"
	"time"

	"GridironMarket/internal/model"
)

// Ledger is the persisted account: cash plus every executed trade.
type Ledger struct {
	Balance        float64             `json:"balance"`
	InitialDeposit float64             `json:"initial_deposit"`
	Transactions   []model.Transaction `json:"transactions"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// LoadLedger reads the ledger from a JSON file. Returns an empty ledger if the file doesn't exist.
func LoadLedger(filePath string) (*Ledger, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Ledger{}, nil
		}
		return nil, err
	}
	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// SaveLedger writes the ledger to a JSON file.
func SaveLedger(filePath string, l *Ledger) error {
	l.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
