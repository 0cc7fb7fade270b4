// Package network holds the static descriptor of a Cosmos SDK chain as seen
// by the wallet: denominations and their view-unit conversion, address
// prefixes, API endpoints and the fee schedule. A Network value is loaded
// once at startup and never mutated; every reducer receives it explicitly.
package network

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// CoinLookup maps a chain (minor unit) denom to its view (major unit)
// representation. ChainToViewConversionFactor is kept as a decimal string;
// its fractional digit count defines the display precision for the denom.
type CoinLookup struct {
	ViewDenom                   string `toml:"view_denom" json:"viewDenom"`
	ChainDenom                  string `toml:"chain_denom" json:"chainDenom"`
	ChainToViewConversionFactor string `toml:"chain_to_view_conversion_factor" json:"chainToViewConversionFactor"`
	Icon                        string `toml:"icon,omitempty" json:"icon,omitempty"`
	CoinGeckoID                 string `toml:"coin_gecko_id,omitempty" json:"coinGeckoId,omitempty"`
}

// Precision returns the number of fractional digits of the conversion
// factor. Amounts converted with this lookup are formatted to exactly this
// many decimal places.
func (l CoinLookup) Precision() int {
	if i := strings.Index(l.ChainToViewConversionFactor, "."); i >= 0 {
		return len(l.ChainToViewConversionFactor) - i - 1
	}
	return 0
}

// FeeOption is one denom choice for paying the fee of a transaction.
type FeeOption struct {
	Denom  string `toml:"denom" json:"denom"`
	Amount string `toml:"amount" json:"amount"`
}

// Fee is the gas estimate and fee options for one transaction type.
type Fee struct {
	GasEstimate int64       `toml:"gas_estimate" json:"gasEstimate"`
	FeeOptions  []FeeOption `toml:"fee_options" json:"feeOptions"`
}

// FeeSchedule maps transaction types to their fee. Transaction types without
// an entry fall back to Default.
type FeeSchedule struct {
	Default           Fee            `toml:"default" json:"default"`
	ByTransactionType map[string]Fee `toml:"by_transaction_type" json:"byTransactionType,omitempty"`
}

// Network describes one chain deployment.
type Network struct {
	ID          string `toml:"id" json:"id"`
	Name        string `toml:"name" json:"name"`
	Description string `toml:"description,omitempty" json:"description,omitempty"`

	APIURL string `toml:"api_url" json:"apiURL"`
	RPCURL string `toml:"rpc_url" json:"rpcURL"`

	StakingDenom string       `toml:"staking_denom" json:"stakingDenom"`
	CoinLookup   []CoinLookup `toml:"coin_lookup" json:"coinLookup"`

	AddressPrefix                   string   `toml:"address_prefix" json:"addressPrefix"`
	AllowedAddressPrefixes          []string `toml:"allowed_address_prefixes" json:"allowedAddressPrefixes"`
	ValidatorAddressPrefix          string   `toml:"validator_address_prefix" json:"validatorAddressPrefix"`
	ValidatorConsensusAddressPrefix string   `toml:"validator_consensus_address_prefix" json:"validatorConsensusAddressPrefix"`

	HDPath       string `toml:"hd_path,omitempty" json:"hdPath,omitempty"`
	LockUpPeriod string `toml:"lock_up_period,omitempty" json:"lockUpPeriod,omitempty"`

	Fees FeeSchedule `toml:"fees" json:"fees"`
}

// GetCoinLookup returns the lookup for a chain denom.
func (n *Network) GetCoinLookup(chainDenom string) (CoinLookup, bool) {
	for _, l := range n.CoinLookup {
		if l.ChainDenom == chainDenom {
			return l, true
		}
	}
	return CoinLookup{}, false
}

// GetCoinLookupViewDenom returns the lookup for a view denom. Used to resolve
// the staking denom, which the descriptor names in view units.
func (n *Network) GetCoinLookupViewDenom(viewDenom string) (CoinLookup, bool) {
	for _, l := range n.CoinLookup {
		if l.ViewDenom == viewDenom {
			return l, true
		}
	}
	return CoinLookup{}, false
}

// StakingCoinLookup resolves the staking denom's lookup entry.
func (n *Network) StakingCoinLookup() (CoinLookup, bool) {
	return n.GetCoinLookupViewDenom(n.StakingDenom)
}

// FeeFor returns the fee schedule entry for a transaction type, or the
// default entry when the type has no override.
func (n *Network) FeeFor(transactionType string) Fee {
	if fee, ok := n.Fees.ByTransactionType[transactionType]; ok {
		return fee
	}
	return n.Fees.Default
}

// Validate checks the descriptor for the invariants the reducers rely on:
// unique chain denoms, parseable decimal conversion factors and a resolvable
// staking denom.
func (n *Network) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("network: missing id")
	}
	seen := make(map[string]struct{}, len(n.CoinLookup))
	for _, l := range n.CoinLookup {
		if l.ChainDenom == "" || l.ViewDenom == "" {
			return fmt.Errorf("network %s: coin lookup with empty denom", n.ID)
		}
		if _, ok := seen[l.ChainDenom]; ok {
			return fmt.Errorf("network %s: duplicate coin lookup for chain denom %s", n.ID, l.ChainDenom)
		}
		seen[l.ChainDenom] = struct{}{}
		factor, err := sdkmath.LegacyNewDecFromStr(l.ChainToViewConversionFactor)
		if err != nil {
			return fmt.Errorf("network %s: conversion factor for %s: %w", n.ID, l.ChainDenom, err)
		}
		if !factor.IsPositive() {
			return fmt.Errorf("network %s: conversion factor for %s must be positive", n.ID, l.ChainDenom)
		}
	}
	if _, ok := n.StakingCoinLookup(); !ok {
		return fmt.Errorf("network %s: staking denom %s has no coin lookup", n.ID, n.StakingDenom)
	}
	return nil
}
