package pixel

import (
	"context"
	"encoding/base64"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// BlockhashSource supplies the recent blockhash a transaction is pinned to.
type BlockhashSource interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// TxBuilder assembles the unsigned transaction carrying a single pixel
// instruction, paid for by the requester.
type TxBuilder struct {
	programID solana.PublicKey
	ledger    BlockhashSource
}

func NewTxBuilder(programID solana.PublicKey, ledger BlockhashSource) *TxBuilder {
	return &TxBuilder{programID: programID, ledger: ledger}
}

func (b *TxBuilder) Build(ctx context.Context, op Operation) (*solana.Transaction, error) {
	ix, err := BuildInstruction(b.programID, op)
	if err != nil {
		return nil, ErrUnexpected(err, "failed to build instruction")
	}

	blockhash, err := b.ledger.LatestBlockhash(ctx)
	if err != nil {
		return nil, ErrLookupFailed(err, "failed to fetch latest blockhash")
	}

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(op.Payer()))
	if err != nil {
		return nil, ErrUnexpected(err, "failed to assemble transaction")
	}
	// leave a blank slot per required signer for the wallet to fill
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	return tx, nil
}

// EncodeTransaction serializes tx in wire format as standard base64.
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	bz, err := tx.MarshalBinary()
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize transaction")
	}
	return base64.StdEncoding.EncodeToString(bz), nil
}
