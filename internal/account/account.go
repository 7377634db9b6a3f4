// Package account holds the player's credit. Both the interactive round and
// the batch controller move money only through an Account.
package account

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is returned when a debit would take the balance below
// zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Account is a credit balance that is safe for concurrent use.
type Account struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

// New creates an account holding initial.
func New(initial decimal.Decimal) *Account {
	return &Account{balance: initial}
}

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Debit removes amount from the balance. The balance is left untouched when
// it cannot cover amount.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit amount must not be negative, got %s", amount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s, need %s", ErrInsufficientFunds, a.balance, amount)
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

// Credit adds amount to the balance. Negative amounts are ignored.
func (a *Account) Credit(amount decimal.Decimal) {
	if amount.IsNegative() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)
}
