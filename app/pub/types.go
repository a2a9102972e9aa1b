package pub

import (
	"fmt"
	"time"

	"github.com/picassol/pixeld/plugins/pixel"
)

type msgType int8

const (
	issuedActionTpe msgType = iota
)

// the strings should be keep consistence with top level record name in schemas.go
func (this msgType) String() string {
	switch this {
	case issuedActionTpe:
		return "IssuedAction"
	default:
		return "Unknown"
	}
}

type AvroOrJsonMsg interface {
	ToNativeMap() map[string]interface{}
	String() string
}

// IssuedAction records an unsigned transaction handed out to a requester.
// Nothing guarantees the requester ever signs or submits it.
type IssuedAction struct {
	Kind      string `json:"kind"`
	Requester string `json:"requester"`
	Address   string `json:"address"`
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
	R         int32  `json:"r"`
	G         int32  `json:"g"`
	B         int32  `json:"b"`
	Timestamp int64  `json:"timestamp"` // milli seconds since Epoch
}

// NewIssuedAction describes op, targeting pos, as issued at t.
func NewIssuedAction(op pixel.Operation, pos pixel.Position, t time.Time) IssuedAction {
	msg := IssuedAction{
		Kind:      string(op.Kind()),
		Requester: op.Payer().String(),
		X:         int32(pos.X),
		Y:         int32(pos.Y),
		Timestamp: t.UnixNano() / int64(time.Millisecond),
	}
	var color pixel.Color
	switch op := op.(type) {
	case pixel.CreatePixel:
		msg.Address = op.Address.String()
		color = op.Color
	case pixel.UpdatePixel:
		msg.Address = op.Address.String()
		color = op.Color
	}
	msg.R, msg.G, msg.B = int32(color.R), int32(color.G), int32(color.B)
	return msg
}

func (msg *IssuedAction) String() string {
	return fmt.Sprintf("IssuedAction: %s %s at (%d, %d) by %s", msg.Kind, msg.Address, msg.X, msg.Y, msg.Requester)
}

func (msg *IssuedAction) ToNativeMap() map[string]interface{} {
	var native = make(map[string]interface{})
	native["kind"] = msg.Kind
	native["requester"] = msg.Requester
	native["address"] = msg.Address
	native["x"] = msg.X
	native["y"] = msg.Y
	native["r"] = msg.R
	native["g"] = msg.G
	native["b"] = msg.B
	native["timestamp"] = msg.Timestamp
	return native
}
