package funding

import (
	"context"
	"fmt"
	"sync"
)

// InitializeRequest asks the gateway to open a checkout session. Amounts are
// in minor currency units (kobo) as the gateway expects.
type InitializeRequest struct {
	AmountMinor int64
	Reference   string
	Email       string
	CallbackURL string
}

// InitializeResponse carries the checkout session the user is redirected to.
type InitializeResponse struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResponse reports the gateway's view of a charge.
type VerifyResponse struct {
	Success       bool
	AmountMinor   int64
	GatewayStatus string
}

// Gateway abstracts the external payment processor so the funding flow can
// be tested without network calls.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (InitializeResponse, error)
	Verify(ctx context.Context, reference string) (VerifyResponse, error)
}

// StaticGateway is an in-memory gateway for tests and development. It
// accepts every initialization, remembers the amount per reference and
// reports a successful charge on verify.
type StaticGateway struct {
	mu      sync.Mutex
	amounts map[string]int64

	// FailInit and FailVerify force the corresponding call to error.
	FailInit   bool
	FailVerify bool
	// Declined makes Verify report an unsuccessful charge.
	Declined bool
}

// NewStaticGateway constructs an empty static gateway.
func NewStaticGateway() *StaticGateway {
	return &StaticGateway{amounts: make(map[string]int64)}
}

func (g *StaticGateway) Initialize(_ context.Context, req InitializeRequest) (InitializeResponse, error) {
	if g.FailInit {
		return InitializeResponse{}, fmt.Errorf("gateway rejected initialization")
	}
	g.mu.Lock()
	g.amounts[req.Reference] = req.AmountMinor
	g.mu.Unlock()
	return InitializeResponse{
		AuthorizationURL: "https://checkout.example/" + req.Reference,
		AccessCode:       "access_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *StaticGateway) Verify(_ context.Context, reference string) (VerifyResponse, error) {
	if g.FailVerify {
		return VerifyResponse{}, fmt.Errorf("gateway verification unavailable")
	}
	g.mu.Lock()
	amount, ok := g.amounts[reference]
	g.mu.Unlock()
	if !ok {
		return VerifyResponse{Success: false, GatewayStatus: "abandoned"}, nil
	}
	if g.Declined {
		return VerifyResponse{Success: false, AmountMinor: amount, GatewayStatus: "failed"}, nil
	}
	return VerifyResponse{Success: true, AmountMinor: amount, GatewayStatus: "success"}, nil
}

// AmountFor reports the minor-unit amount recorded for a reference.
func (g *StaticGateway) AmountFor(reference string) (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amount, ok := g.amounts[reference]
	return amount, ok
}
