package reduce

import (
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
)

const BondStatusBonded = "BOND_STATUS_BONDED"

// Validator statuses. Banned is an INACTIVE sub-reason for validators jailed
// until a far-future date, which chains use as a permanent ban.
const (
	ValidatorStatusActive   = "ACTIVE"
	ValidatorStatusInactive = "INACTIVE"

	ValidatorStatusDetailActive   = "active"
	ValidatorStatusDetailInactive = "inactive"
	ValidatorStatusDetailBanned   = "banned"
)

// bannedThreshold is the jail timestamp past which a validator counts as
// permanently banned rather than temporarily jailed.
var bannedThreshold = time.Date(9000, time.February, 1, 0, 0, 0, 0, time.UTC)

// RawValidator is one validator as the staking API returns it, with its
// signing info attached by the fetch layer.
type RawValidator struct {
	OperatorAddress string     `json:"operator_address"`
	ConsensusPubkey RawMessage `json:"consensus_pubkey"`
	Jailed          bool       `json:"jailed"`
	Status          string     `json:"status"`
	Tokens          string     `json:"tokens"`
	DelegatorShares string     `json:"delegator_shares"`
	Description     struct {
		Moniker  string `json:"moniker"`
		Identity string `json:"identity"`
		Website  string `json:"website"`
		Details  string `json:"details"`
	} `json:"description"`
	Commission struct {
		CommissionRates struct {
			Rate          string `json:"rate"`
			MaxRate       string `json:"max_rate"`
			MaxChangeRate string `json:"max_change_rate"`
		} `json:"commission_rates"`
		UpdateTime string `json:"update_time"`
	} `json:"commission"`

	SigningInfo *SigningInfo `json:"-"`
}

// SigningInfo is a validator's slashing signing info.
type SigningInfo struct {
	Address             string `json:"address"`
	StartHeight         string `json:"start_height"`
	JailedUntil         string `json:"jailed_until"`
	MissedBlocksCounter string `json:"missed_blocks_counter"`
}

// Validator is a normalized validator.
type Validator struct {
	ID                   string     `json:"id"`
	OperatorAddress      string     `json:"operatorAddress"`
	ConsensusPubkey      RawMessage `json:"consensusPubkey,omitempty"`
	Jailed               bool       `json:"jailed"`
	Details              string     `json:"details,omitempty"`
	Website              string     `json:"website,omitempty"`
	Identity             string     `json:"identity,omitempty"`
	Name                 string     `json:"name"`
	Picture              string     `json:"picture,omitempty"`
	VotingPower          string     `json:"votingPower"`
	StartHeight          string     `json:"startHeight,omitempty"`
	UptimePercentage     float64    `json:"uptimePercentage"`
	Tokens               string     `json:"tokens"`
	CommissionUpdateTime string     `json:"commissionUpdateTime"`
	Commission           string     `json:"commission"`
	MaxCommission        string     `json:"maxCommission"`
	MaxChangeCommission  string     `json:"maxChangeCommission"`
	Status               string     `json:"status"`
	StatusDetailed       string     `json:"statusDetailed"`
	ExpectedReturns      string     `json:"expectedReturns,omitempty"`
}

// Validator normalizes one validator. annualProvision and bondedTokens feed
// the expected-return estimate, totalShares the voting power share and
// signedBlocksWindow the uptime estimate. Any of them may be empty when the
// chain does not expose it, in which case the dependent field keeps its
// default.
func (r *Reducer) Validator(validator *RawValidator, annualProvision, totalShares, bondedTokens, signedBlocksWindow string) Validator {
	status, statusDetailed := validatorStatus(validator)

	website := validator.Description.Website
	if website == "[do-not-modify]" {
		website = ""
	} else if website != "" && !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}

	votingPower := "0"
	if validator.Status == BondStatusBonded {
		shares := decOrZero(validator.DelegatorShares)
		total := decOrZero(totalShares)
		if !total.IsZero() {
			votingPower = formatDec(shares.Quo(total), 6)
		}
	}

	var expectedReturns string
	if annualProvision != "" {
		provision := decOrZero(annualProvision)
		bonded := decOrZero(bondedTokens)
		rate := decOrZero(validator.Commission.CommissionRates.Rate)
		if !bonded.IsZero() {
			expectedReturns = formatDec(sdkmath.LegacyOneDec().Sub(rate).Mul(provision.Quo(bonded)), 6)
		}
	}

	var startHeight string
	if validator.SigningInfo != nil {
		startHeight = validator.SigningInfo.StartHeight
	}

	return Validator{
		ID:                   validator.OperatorAddress,
		OperatorAddress:      validator.OperatorAddress,
		ConsensusPubkey:      validator.ConsensusPubkey,
		Jailed:               validator.Jailed,
		Details:              validator.Description.Details,
		Website:              website,
		Identity:             validator.Description.Identity,
		Name:                 validator.Description.Moniker,
		VotingPower:          votingPower,
		StartHeight:          startHeight,
		UptimePercentage:     uptimePercentage(validator, signedBlocksWindow),
		Tokens:               r.StakingViewAmount(validator.Tokens),
		CommissionUpdateTime: validator.Commission.UpdateTime,
		Commission:           formatDec(decOrZero(validator.Commission.CommissionRates.Rate), 6),
		MaxCommission:        validator.Commission.CommissionRates.MaxRate,
		MaxChangeCommission:  validator.Commission.CommissionRates.MaxChangeRate,
		Status:               status,
		StatusDetailed:       statusDetailed,
		ExpectedReturns:      expectedReturns,
	}
}

func validatorStatus(validator *RawValidator) (status, detail string) {
	if validator.Status == BondStatusBonded {
		return ValidatorStatusActive, ValidatorStatusDetailActive
	}
	if validator.SigningInfo != nil {
		if until, err := time.Parse(time.RFC3339Nano, validator.SigningInfo.JailedUntil); err == nil && until.After(bannedThreshold) {
			return ValidatorStatusInactive, ValidatorStatusDetailBanned
		}
	}
	return ValidatorStatusInactive, ValidatorStatusDetailInactive
}

// uptimePercentage estimates uptime as the signed share of the signed-blocks
// window. Without signing info or a window it defaults to 1.
func uptimePercentage(validator *RawValidator, signedBlocksWindow string) float64 {
	if validator.SigningInfo == nil || validator.SigningInfo.MissedBlocksCounter == "" || signedBlocksWindow == "" {
		return 1
	}
	missed := decOrZero(validator.SigningInfo.MissedBlocksCounter)
	window := decOrZero(signedBlocksWindow)
	if window.IsZero() {
		return 1
	}
	return 1 - missed.Quo(window).MustFloat64()
}
