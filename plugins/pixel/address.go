package pixel

import (
	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// DeriveAddress returns the program derived address of the pixel at pos:
// the first off-curve address over the seeds ["pixel", [x, y]].
func DeriveAddress(programID solana.PublicKey, pos Position) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte(AddressSeed), pos.Bytes()}, programID)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(err, "failed to derive address of pixel %s", pos)
	}
	return addr, nil
}

// AddressCache memoizes DeriveAddress for one program. Only derivations are
// cached, account state never is.
type AddressCache struct {
	programID solana.PublicKey
	cache     *lru.Cache
}

func NewAddressCache(programID solana.PublicKey, size int) (*AddressCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create address cache")
	}
	return &AddressCache{programID: programID, cache: cache}, nil
}

func (c *AddressCache) ProgramID() solana.PublicKey {
	return c.programID
}

func (c *AddressCache) Address(pos Position) (solana.PublicKey, error) {
	if v, ok := c.cache.Get(pos); ok {
		return v.(solana.PublicKey), nil
	}
	addr, err := DeriveAddress(c.programID, pos)
	if err != nil {
		return solana.PublicKey{}, err
	}
	c.cache.Add(pos, addr)
	return addr, nil
}

func (c *AddressCache) Len() int {
	return c.cache.Len()
}
