package pixel

import (
	"bytes"
	"crypto/sha256"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

const (
	InstructionCreatePixel = "create_pixel"
	InstructionUpdatePixel = "update_pixel"
)

// Discriminator is the 8 byte instruction tag of an Anchor program method.
func Discriminator(method string) [8]byte {
	var d [8]byte
	sum := sha256.Sum256([]byte("global:" + method))
	copy(d[:], sum[:8])
	return d
}

var (
	createPixelDiscriminator = Discriminator(InstructionCreatePixel)
	updatePixelDiscriminator = Discriminator(InstructionUpdatePixel)
)

type createPixelArgs struct {
	PosX     uint8
	PosY     uint8
	InitColR uint8
	InitColG uint8
	InitColB uint8
}

type updatePixelArgs struct {
	NewColR uint8
	NewColG uint8
	NewColB uint8
}

// BuildInstruction encodes op as a call into the canvas program.
func BuildInstruction(programID solana.PublicKey, op Operation) (solana.Instruction, error) {
	switch op := op.(type) {
	case CreatePixel:
		data, err := encodeInstruction(createPixelDiscriminator, createPixelArgs{
			PosX:     op.Position.X,
			PosY:     op.Position.Y,
			InitColR: op.Color.R,
			InitColG: op.Color.G,
			InitColB: op.Color.B,
		})
		if err != nil {
			return nil, err
		}
		accounts := solana.AccountMetaSlice{
			solana.NewAccountMeta(op.Address, true, false),
			solana.NewAccountMeta(op.Payer(), true, true),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		}
		return solana.NewInstruction(programID, accounts, data), nil
	case UpdatePixel:
		data, err := encodeInstruction(updatePixelDiscriminator, updatePixelArgs{
			NewColR: op.Color.R,
			NewColG: op.Color.G,
			NewColB: op.Color.B,
		})
		if err != nil {
			return nil, err
		}
		accounts := solana.AccountMetaSlice{
			solana.NewAccountMeta(op.Address, true, false),
			solana.NewAccountMeta(op.Payer(), false, true),
		}
		return solana.NewInstruction(programID, accounts, data), nil
	default:
		return nil, errors.Errorf("unknown pixel operation %T", op)
	}
}

func encodeInstruction(discriminator [8]byte, args interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, errors.Wrap(err, "failed to encode instruction args")
	}
	return buf.Bytes(), nil
}
