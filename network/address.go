package network

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/types/bech32"
)

// AllowedAddresses re-encodes a bech32 account address under every allowed
// account prefix of the network. Transaction queries are issued once per
// returned address so that activity under a foreign but equivalent prefix
// (e.g. a plain cosmos address) is not missed.
func (n *Network) AllowedAddresses(address string) ([]string, error) {
	prefix, bz, err := bech32.DecodeAndConvert(address)
	if err != nil {
		return nil, fmt.Errorf("decode address %s: %w", address, err)
	}
	allowed := false
	for _, p := range n.AllowedAddressPrefixes {
		if p == prefix {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("address prefix %s is not allowed on network %s", prefix, n.ID)
	}
	addresses := make([]string, 0, len(n.AllowedAddressPrefixes))
	for _, p := range n.AllowedAddressPrefixes {
		converted, err := bech32.ConvertAndEncode(p, bz)
		if err != nil {
			return nil, fmt.Errorf("encode address with prefix %s: %w", p, err)
		}
		addresses = append(addresses, converted)
	}
	return addresses, nil
}

// ValidatorOperatorAddress re-encodes any bech32 address under the validator
// operator prefix. Used to match proposal depositors and voters against the
// validator set.
func (n *Network) ValidatorOperatorAddress(address string) (string, error) {
	_, bz, err := bech32.DecodeAndConvert(address)
	if err != nil {
		return "", fmt.Errorf("decode address %s: %w", address, err)
	}
	return bech32.ConvertAndEncode(n.ValidatorAddressPrefix, bz)
}

// ConsensusAddress derives the bech32 consensus address for raw consensus
// address bytes.
func (n *Network) ConsensusAddress(bz []byte) (string, error) {
	return bech32.ConvertAndEncode(n.ValidatorConsensusAddressPrefix, bz)
}
