package pixel

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// AccountChecker answers whether an account is currently allocated.
type AccountChecker interface {
	AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error)
}

// Resolver decides whether coloring a position creates a new pixel account
// or updates the existing one.
//
// Resolve reads ledger state once and holds nothing across calls, so two
// concurrent requests for the same untouched position both get a
// CreatePixel; the ledger rejects whichever lands second.
type Resolver struct {
	addrs   *AddressCache
	ledger  AccountChecker
	metrics *Metrics
}

func NewResolver(addrs *AddressCache, ledger AccountChecker, metrics *Metrics) *Resolver {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Resolver{addrs: addrs, ledger: ledger, metrics: metrics}
}

func (r *Resolver) ProgramID() solana.PublicKey {
	return r.addrs.ProgramID()
}

// Resolve returns the operation that colors pos with color on behalf of
// requester. A failed existence query yields an error and no operation.
func (r *Resolver) Resolve(ctx context.Context, requester Identity, pos Position, color Color) (Operation, error) {
	addr, err := r.addrs.Address(pos)
	if err != nil {
		return nil, r.fail(ErrUnexpected(err, "address derivation failed"))
	}

	exists, err := r.ledger.AccountExists(ctx, addr)
	if err != nil {
		return nil, r.fail(ErrLookupFailed(err, "failed to query pixel account "+addr.String()))
	}

	var op Operation
	if exists {
		op = UpdatePixel{Color: color, Requester: requester, Address: addr}
	} else {
		op = CreatePixel{Position: pos, Color: color, Requester: requester, Address: addr}
	}
	r.metrics.Operations.With("kind", string(op.Kind())).Add(1)
	return op, nil
}

func (r *Resolver) fail(err *Error) *Error {
	r.metrics.Failures.With("code", err.Code().String()).Add(1)
	return err
}
