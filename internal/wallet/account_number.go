package wallet

import (
	"math/rand"
	"strings"
)

const (
	// accountNumberLength is the width of randomly generated account
	// numbers. Phone-seeded numbers inherit the phone's width instead.
	accountNumberLength = 10

	// phoneSeedMinLength is the minimum phone length considered well
	// formed for seeding (Nigerian numbers: leading 0 plus ten digits).
	phoneSeedMinLength = 11

	maxAllocationAttempts = 10
)

// phoneSeed derives an account number candidate from the owner's phone by
// stripping the leading digit. Returns empty when the phone is too short to
// be usable.
func phoneSeed(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) < phoneSeedMinLength {
		return ""
	}
	return phone[1:]
}

// candidateNumber produces the account number candidate for the given
// attempt. Attempt zero prefers the phone seed; subsequent attempts append a
// random suffix that widens each time, so the collision probability shrinks
// by a factor of ten per retry. Without a usable phone the candidate is a
// random number with a fixed leading 1, never ambiguous with a truncated
// phone.
func candidateNumber(phone string, attempt int) string {
	seed := phoneSeed(phone)
	if seed == "" {
		return "1" + randomDigits(accountNumberLength-1+attempt)
	}
	if attempt == 0 {
		return seed
	}
	return seed + randomDigits(attempt)
}

func randomDigits(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String()
}
