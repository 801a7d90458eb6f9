package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestWalletDepositAndWithdraw(t *testing.T) {
	w := Wallet{Balance: decimal.NewFromInt(1_000)}

	if err := w.Deposit(decimal.NewFromInt(500)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(1_500)) {
		t.Fatalf("expected balance 1500, got %s", w.Balance)
	}

	if err := w.Withdraw(decimal.NewFromInt(700)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected balance 800, got %s", w.Balance)
	}
}

func TestWithdrawOverBalanceLeavesWalletUntouched(t *testing.T) {
	w := Wallet{Balance: decimal.NewFromInt(300)}

	err := w.Withdraw(decimal.NewFromInt(301))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("balance changed on failed withdraw: %s", w.Balance)
	}
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	w := Wallet{Balance: decimal.NewFromInt(100)}

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		if err := w.Deposit(amount); !errors.Is(err, ErrNonPositiveAmount) {
			t.Fatalf("deposit %s: expected non-positive error, got %v", amount, err)
		}
		if err := w.Withdraw(amount); !errors.Is(err, ErrNonPositiveAmount) {
			t.Fatalf("withdraw %s: expected non-positive error, got %v", amount, err)
		}
	}
	if !w.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance changed: %s", w.Balance)
	}
}

func TestNewReferenceFormat(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1_000; i++ {
		ref := NewReference()
		if !strings.HasPrefix(ref, "ref_") || len(ref) != len("ref_")+32 {
			t.Fatalf("unexpected reference format: %s", ref)
		}
		if _, dup := seen[ref]; dup {
			t.Fatalf("duplicate reference generated: %s", ref)
		}
		seen[ref] = struct{}{}
	}
}
