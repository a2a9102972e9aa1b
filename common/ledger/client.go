package ledger

import (
	"context"
	"time"

	"github.com/eapache/go-resiliency/breaker"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
	"go.uber.org/ratelimit"

	"github.com/picassol/pixeld/app/config"
)

// Client is the read side of the ledger the action server depends on.
type Client interface {
	AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// RPCClient queries a cluster over JSON-RPC. Calls are paced by a rate
// limiter and guarded by a circuit breaker; failures are returned as is,
// never retried.
type RPCClient struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
	timeout    time.Duration

	limiter ratelimit.Limiter
	breaker *breaker.Breaker

	metrics *Metrics
	logger  log.Logger
}

var _ Client = (*RPCClient)(nil)

func NewRPCClient(cfg *config.LedgerConfig, metrics *Metrics, logger log.Logger) (*RPCClient, error) {
	commitment, err := parseCommitment(cfg.Commitment)
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.RateLimit > 0 {
		limiter = ratelimit.New(cfg.RateLimit)
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &RPCClient{
		rpc:        rpc.New(cfg.Endpoint),
		commitment: commitment,
		timeout:    cfg.Timeout,
		limiter:    limiter,
		breaker:    breaker.New(cfg.BreakerErrors, 1, cfg.BreakerTimeout),
		metrics:    metrics,
		logger:     logger.With("module", "ledger"),
	}, nil
}

func parseCommitment(s string) (rpc.CommitmentType, error) {
	switch c := rpc.CommitmentType(s); c {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return c, nil
	default:
		return "", errors.Errorf("unsupported commitment %q", s)
	}
}

// AccountExists reports whether any account is allocated at addr.
func (c *RPCClient) AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error) {
	var exists bool
	err := c.call(ctx, "getAccountInfo", func(ctx context.Context) error {
		_, err := c.rpc.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: c.commitment,
			DataSlice:  &rpc.DataSlice{Offset: ptrUint64(0), Length: ptrUint64(0)},
		})
		switch {
		case err == nil:
			exists = true
		case errors.Is(err, rpc.ErrNotFound):
			exists = false
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "getAccountInfo %s", addr)
	}
	return exists, nil
}

func (c *RPCClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var hash solana.Hash
	err := c.call(ctx, "getLatestBlockhash", func(ctx context.Context) error {
		out, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
		if err != nil {
			return err
		}
		if out == nil || out.Value == nil {
			return errors.New("empty blockhash result")
		}
		hash = out.Value.Blockhash
		return nil
	})
	if err != nil {
		return solana.Hash{}, errors.Wrap(err, "getLatestBlockhash")
	}
	return hash, nil
}

func (c *RPCClient) call(ctx context.Context, method string, op func(ctx context.Context) error) error {
	c.limiter.Take()
	start := time.Now()
	err := c.breaker.Run(func() error {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return op(ctx)
	})
	c.metrics.RequestDuration.With("method", method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.RequestErrors.With("method", method).Add(1)
		c.logger.Error("ledger query failed", "method", method, "err", err)
	}
	return err
}

func ptrUint64(v uint64) *uint64 {
	return &v
}
