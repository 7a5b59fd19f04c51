package tokens

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Descriptor identifies a token in the fixed allow-list.
type Descriptor struct {
	Key     string
	Name    string
	Symbol  string
	Address common.Address
}

// Registry maps symbolic token keys to contract addresses. Entries are
// fixed at construction; custom addresses bypass the registry entirely.
type Registry struct {
	tokens map[string]Descriptor
	order  []string
}

// NewRegistry builds the token allow-list. localTokenAddress is the
// project's own token; it is omitted when not configured. LINK and WETH
// use their Sepolia deployments.
func NewRegistry(localTokenAddress string) *Registry {
	r := &Registry{tokens: make(map[string]Descriptor)}

	if common.IsHexAddress(localTokenAddress) {
		r.add(Descriptor{
			Key:     "MYTOKEN",
			Name:    "MyToken",
			Symbol:  "MTK",
			Address: common.HexToAddress(localTokenAddress),
		})
	}
	r.add(Descriptor{
		Key:     "LINK",
		Name:    "Chainlink Token",
		Symbol:  "LINK",
		Address: common.HexToAddress("0x779877A7B0D9E8603169DdbD7836e478b4624789"),
	})
	r.add(Descriptor{
		Key:     "WETH",
		Name:    "Wrapped Ether",
		Symbol:  "WETH",
		Address: common.HexToAddress("0xdd13E55209Fd76AfE204dBda4007C227904f0a81"),
	})

	return r
}

func (r *Registry) add(d Descriptor) {
	r.tokens[d.Key] = d
	r.order = append(r.order, d.Key)
}

// Lookup returns the descriptor for a registry key.
func (r *Registry) Lookup(key string) (Descriptor, error) {
	d, ok := r.tokens[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		return Descriptor{}, fmt.Errorf("token '%s' is not in the registry", key)
	}
	return d, nil
}

// List returns all registry tokens in insertion order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.tokens[key])
	}
	return out
}
