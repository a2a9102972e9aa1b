package testutils

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// FakeLedger is an in-memory ledger that records every query made against it.
type FakeLedger struct {
	mtx sync.Mutex

	accounts  map[solana.PublicKey]bool
	blockhash solana.Hash

	ExistsErr    error
	BlockhashErr error

	ExistsCalls    int
	BlockhashCalls int
	Queried        []solana.PublicKey
}

func NewFakeLedger() *FakeLedger {
	var hash solana.Hash
	for i := range hash {
		hash[i] = byte(i + 1)
	}
	return &FakeLedger{
		accounts:  make(map[solana.PublicKey]bool),
		blockhash: hash,
	}
}

// Allocate marks addr as an existing account.
func (l *FakeLedger) Allocate(addr solana.PublicKey) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.accounts[addr] = true
}

func (l *FakeLedger) Blockhash() solana.Hash {
	return l.blockhash
}

func (l *FakeLedger) Calls() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.ExistsCalls + l.BlockhashCalls
}

func (l *FakeLedger) AccountExists(_ context.Context, addr solana.PublicKey) (bool, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.ExistsCalls++
	l.Queried = append(l.Queried, addr)
	if l.ExistsErr != nil {
		return false, l.ExistsErr
	}
	return l.accounts[addr], nil
}

func (l *FakeLedger) LatestBlockhash(_ context.Context) (solana.Hash, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.BlockhashCalls++
	if l.BlockhashErr != nil {
		return solana.Hash{}, l.BlockhashErr
	}
	return l.blockhash, nil
}

// SequenceRand replays a fixed sequence of values, reduced modulo n.
type SequenceRand struct {
	mtx    sync.Mutex
	values []int
	next   int
}

func NewSequenceRand(values ...int) *SequenceRand {
	return &SequenceRand{values: values}
}

func (r *SequenceRand) Intn(n int) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	v := r.values[r.next%len(r.values)]
	r.next++
	return v % n
}
