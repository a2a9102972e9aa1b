package pixel

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AddressSeed is the domain separation tag prefixed to every pixel address seed.
const AddressSeed = "pixel"

type Position struct {
	X uint8 `json:"x"`
	Y uint8 `json:"y"`
}

// Bytes is the seed form of the position: one byte per axis.
func (p Position) Bytes() []byte {
	return []byte{p.X, p.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c Color) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// Identity is the read-only view of a requester: it names the key that will
// pay for and sign the transaction but can sign nothing itself.
type Identity interface {
	PublicKey() solana.PublicKey
}

// Requester is a validated caller identity.
type Requester struct {
	key solana.PublicKey
}

func NewRequester(key solana.PublicKey) Requester {
	return Requester{key: key}
}

func (r Requester) PublicKey() solana.PublicKey { return r.key }

func (r Requester) String() string { return r.key.String() }

type OperationKind string

const (
	KindCreate OperationKind = "create"
	KindUpdate OperationKind = "update"
)

// Operation is the descriptor handed to the transaction builder. It is
// either a CreatePixel or an UpdatePixel.
type Operation interface {
	Kind() OperationKind
	Payer() solana.PublicKey
	isOperation()
}

// CreatePixel allocates the pixel account at a position nobody has colored yet.
type CreatePixel struct {
	Position  Position
	Color     Color
	Requester Identity
	// Address is the derived pixel account.
	Address solana.PublicKey
}

func (CreatePixel) Kind() OperationKind        { return KindCreate }
func (op CreatePixel) Payer() solana.PublicKey { return op.Requester.PublicKey() }
func (CreatePixel) isOperation()               {}

// UpdatePixel recolors an existing pixel account. The stored position is
// authoritative, so none is sent.
type UpdatePixel struct {
	Color     Color
	Requester Identity
	Address   solana.PublicKey
}

func (UpdatePixel) Kind() OperationKind        { return KindUpdate }
func (op UpdatePixel) Payer() solana.PublicKey { return op.Requester.PublicKey() }
func (UpdatePixel) isOperation()               {}
