package pixel

import (
	"context"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/picassol/pixeld/common/testutils"
)

func newTestResolver(t *testing.T, ledger AccountChecker) *Resolver {
	cache, err := NewAddressCache(testProgramID, 128)
	require.NoError(t, err)
	return NewResolver(cache, ledger, nil)
}

func TestResolveCreatesWhenAccountMissing(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	resolver := newTestResolver(t, ledger)
	requester := NewRequester(solana.NewWallet().PublicKey())
	pos := Position{X: 10, Y: 20}
	color := Color{R: 1, G: 2, B: 3}

	op, err := resolver.Resolve(context.Background(), requester, pos, color)
	require.NoError(t, err)
	require.Equal(t, KindCreate, op.Kind())

	create, ok := op.(CreatePixel)
	require.True(t, ok)
	require.Equal(t, pos, create.Position)
	require.Equal(t, color, create.Color)
	require.Equal(t, requester.PublicKey(), create.Payer())

	addr, err := DeriveAddress(testProgramID, pos)
	require.NoError(t, err)
	require.Equal(t, addr, create.Address)
	require.Equal(t, []solana.PublicKey{addr}, ledger.Queried)
	require.Equal(t, 0, ledger.BlockhashCalls)
}

func TestResolveUpdatesWhenAccountExists(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	pos := Position{X: 199, Y: 0}
	addr, err := DeriveAddress(testProgramID, pos)
	require.NoError(t, err)
	ledger.Allocate(addr)

	resolver := newTestResolver(t, ledger)
	requester := NewRequester(solana.NewWallet().PublicKey())
	color := Color{R: 255, G: 255, B: 0}

	op, err := resolver.Resolve(context.Background(), requester, pos, color)
	require.NoError(t, err)
	update, ok := op.(UpdatePixel)
	require.True(t, ok, "expected UpdatePixel, got %T", op)
	require.Equal(t, UpdatePixel{Color: color, Requester: requester, Address: addr}, update)
	require.Equal(t, 1, ledger.ExistsCalls)
}

func TestResolveLookupFailure(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	ledger.ExistsErr = errors.New("connection refused")
	resolver := newTestResolver(t, ledger)

	op, err := resolver.Resolve(context.Background(), NewRequester(solana.NewWallet().PublicKey()),
		Position{X: 1, Y: 1}, Color{})
	require.Nil(t, op)
	require.Error(t, err)
	require.Equal(t, CodeLookupFailed, CodeOf(err))
	require.Contains(t, err.Error(), "connection refused")
}

func TestResolveDoesNotCacheExistence(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	resolver := newTestResolver(t, ledger)
	requester := NewRequester(solana.NewWallet().PublicKey())
	pos := Position{X: 5, Y: 5}

	op, err := resolver.Resolve(context.Background(), requester, pos, Color{})
	require.NoError(t, err)
	require.Equal(t, KindCreate, op.Kind())

	ledger.Allocate(op.(CreatePixel).Address)
	op, err = resolver.Resolve(context.Background(), requester, pos, Color{})
	require.NoError(t, err)
	require.Equal(t, KindUpdate, op.Kind())
	require.Equal(t, 2, ledger.ExistsCalls)
}

// Concurrent requests for one untouched position are not coordinated.
func TestResolveConcurrentCreatesAreNotCoordinated(t *testing.T) {
	ledger := testutils.NewFakeLedger()
	resolver := newTestResolver(t, ledger)
	pos := Position{X: 3, Y: 4}

	const n = 8
	ops := make([]Operation, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ops[i], errs[i] = resolver.Resolve(context.Background(), NewRequester(solana.NewWallet().PublicKey()), pos, Color{})
		}(i)
	}
	wg.Wait()

	for i, op := range ops {
		require.NoError(t, errs[i])
		require.Equal(t, KindCreate, op.Kind())
	}
	require.Equal(t, n, ledger.ExistsCalls)
}
