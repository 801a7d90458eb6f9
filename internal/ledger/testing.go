package ledger

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that sets a wallet balance directly when the
// in-memory store is in use.
func SeedBalance(s Store, ownerID string, amount decimal.Decimal) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if id, exists := mem.byOwner[ownerID]; exists {
			w := mem.wallets[id]
			w.Balance = amount
			mem.wallets[id] = w
		}
	}
}
