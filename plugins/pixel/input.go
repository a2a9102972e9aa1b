package pixel

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const maxColorComponent = 255

// RandomSource supplies the values a caller leaves out. *rand.Rand satisfies it
// but is not safe for concurrent use; see NewLockedRand.
type RandomSource interface {
	Intn(n int) int
}

type lockedRand struct {
	mtx sync.Mutex
	rnd *rand.Rand
}

// NewLockedRand returns a RandomSource seeded with seed that may be shared
// between goroutines.
func NewLockedRand(seed int64) RandomSource {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (r *lockedRand) Intn(n int) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.rnd.Intn(n)
}

// ParseRequester validates a base58 encoded public key.
func ParseRequester(raw string) (Requester, error) {
	if raw == "" {
		return Requester{}, ErrInvalidAccount("account is required")
	}
	if strings.TrimSpace(raw) != raw {
		return Requester{}, ErrInvalidAccount(fmt.Sprintf("account %q has surrounding whitespace", raw))
	}
	bz, err := base58.Decode(raw)
	if err != nil {
		return Requester{}, ErrInvalidAccount(fmt.Sprintf("account %q is not base58", raw))
	}
	if len(bz) != solana.PublicKeyLength {
		return Requester{}, ErrInvalidAccount(
			fmt.Sprintf("account %q decodes to %d bytes, expected %d", raw, len(bz), solana.PublicKeyLength))
	}
	return NewRequester(solana.PublicKeyFromBytes(bz)), nil
}

// ParseColor builds a color from optional decimal components. A missing
// component is drawn uniformly from [0, 255]; a component that is present but
// not an integer in that range is rejected.
func ParseColor(r, g, b string, rnd RandomSource) (Color, error) {
	var comps [3]uint8
	for i, raw := range []string{r, g, b} {
		v, err := parseComponent(raw, maxColorComponent+1, rnd)
		if err != nil {
			return Color{}, ErrInvalidColorComponent(
				fmt.Sprintf("%s=%q must be an integer in [0, %d]", "rgb"[i:i+1], raw, maxColorComponent))
		}
		comps[i] = v
	}
	return Color{R: comps[0], G: comps[1], B: comps[2]}, nil
}

// ParsePosition builds a position on a canvas of the given width from
// optional decimal coordinates, drawing missing ones uniformly from [0, width).
func ParsePosition(x, y string, width int, rnd RandomSource) (Position, error) {
	var coords [2]uint8
	for i, raw := range []string{x, y} {
		v, err := parseComponent(raw, width, rnd)
		if err != nil {
			return Position{}, ErrInvalidPosition(
				fmt.Sprintf("%s=%q must be an integer in [0, %d)", "xy"[i:i+1], raw, width))
		}
		coords[i] = v
	}
	return Position{X: coords[0], Y: coords[1]}, nil
}

// parseComponent parses raw as an integer in [0, bound), or draws one when raw is empty.
func parseComponent(raw string, bound int, rnd RandomSource) (uint8, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uint8(rnd.Intn(bound)), nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 || v >= bound {
		return 0, errors.Errorf("%d out of range", v)
	}
	return uint8(v), nil
}
