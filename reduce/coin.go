// Package reduce turns raw Cosmos SDK API responses into the normalized view
// models the wallet UI renders. Reducers are pure: they take raw records and
// the injected network descriptor, and never touch the network or retain
// state between calls. The only side effect in the package is a log line
// when a whole transaction has to be dropped.
package reduce

import (
	"strings"

	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/likecoin/walletdata/network"
)

// RawCoin is an amount as the chain reports it: an integer amount in the
// minor unit denom.
type RawCoin struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

// IBCTrace carries the resolved source denom and chain trace of an IBC
// voucher, so cross-chain assets are normalized against their origin denom.
type IBCTrace struct {
	Denom      string
	ChainTrace []string
}

// Coin is an amount in view units. Amounts whose denom has no coin lookup
// are passed through unconverted with Supported set to false instead of
// being dropped.
type Coin struct {
	Supported   bool   `json:"supported"`
	Amount      string `json:"amount"`
	Denom       string `json:"denom"`
	SourceChain string `json:"sourceChain,omitempty"`
}

// Reducer reduces raw chain records for one network.
type Reducer struct {
	net *network.Network
	log *zap.Logger
}

// New creates a Reducer for the given network. A nil logger is replaced with
// a no-op logger.
func New(net *network.Network, log *zap.Logger) *Reducer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reducer{net: net, log: log}
}

// Coin converts a raw chain amount into view units. The output is formatted
// to exactly as many decimal places as the lookup's conversion factor has
// fractional digits. All arithmetic is done on sdkmath decimals; amounts
// never pass through floating point.
func (r *Reducer) Coin(c RawCoin, ibc *IBCTrace) Coin {
	chainDenom := c.Denom
	var sourceChain string
	if ibc != nil {
		chainDenom = ibc.Denom
		if len(ibc.ChainTrace) > 0 {
			sourceChain = ibc.ChainTrace[0]
		}
	}

	lookup, ok := r.net.GetCoinLookup(chainDenom)
	if !ok {
		return Coin{Supported: false, Amount: c.Amount, Denom: chainDenom, SourceChain: sourceChain}
	}

	amount, err := sdkmath.LegacyNewDecFromStr(c.Amount)
	if err != nil {
		return Coin{Supported: false, Amount: c.Amount, Denom: chainDenom, SourceChain: sourceChain}
	}
	factor, err := sdkmath.LegacyNewDecFromStr(lookup.ChainToViewConversionFactor)
	if err != nil {
		return Coin{Supported: false, Amount: c.Amount, Denom: chainDenom, SourceChain: sourceChain}
	}

	return Coin{
		Supported:   true,
		Amount:      formatDec(amount.Mul(factor), lookup.Precision()),
		Denom:       lookup.ViewDenom,
		SourceChain: sourceChain,
	}
}

// StakingViewAmount converts a staking-denom chain amount into view units
// and returns just the formatted amount.
func (r *Reducer) StakingViewAmount(chainAmount string) string {
	lookup, ok := r.net.StakingCoinLookup()
	if !ok {
		return chainAmount
	}
	return r.Coin(RawCoin{Amount: chainAmount, Denom: lookup.ChainDenom}, nil).Amount
}

// formatDec renders d with exactly prec decimal places, rounding half up.
func formatDec(d sdkmath.LegacyDec, prec int) string {
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}

	scaled := d
	if prec > 0 {
		scaled = d.Mul(sdkmath.LegacyNewDec(10).Power(uint64(prec)))
	}
	units := scaled.TruncateInt()
	if scaled.Sub(sdkmath.LegacyNewDecFromInt(units)).GTE(sdkmath.LegacyNewDecWithPrec(5, 1)) {
		units = units.Add(sdkmath.OneInt())
	}

	s := units.String()
	if prec > 0 {
		for len(s) <= prec {
			s = "0" + s
		}
		s = s[:len(s)-prec] + "." + s[len(s)-prec:]
	}
	if neg && strings.Trim(s, "0.") != "" {
		s = "-" + s
	}
	return s
}
