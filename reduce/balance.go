package reduce

import (
	sdkmath "cosmossdk.io/math"
)

// Balance types as the UI distinguishes them.
const (
	BalanceTypeStake    = "STAKE"
	BalanceTypeCurrency = "CURRENCY"
)

// rewardDustThreshold filters rewards too small to render.
var rewardDustThreshold = sdkmath.LegacyNewDecWithPrec(1, 6) // 0.000001

// Balance is one denom's holdings of an account. For the staking denom the
// total includes delegated and undelegating stake on top of the available
// amount.
type Balance struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Total       string `json:"total"`
	Denom       string `json:"denom"`
	Available   string `json:"available"`
	Staked      string `json:"staked"`
	SourceChain string `json:"sourceChain,omitempty"`
}

// Delegation is a normalized delegation to one validator.
type Delegation struct {
	ID               string     `json:"id"`
	ValidatorAddress string     `json:"validatorAddress"`
	DelegatorAddress string     `json:"delegatorAddress"`
	Validator        *Validator `json:"validator,omitempty"`
	Amount           string     `json:"amount"`
	Active           bool       `json:"active"`
	Denom            string     `json:"denom"`
}

// Undelegation is one unbonding entry.
type Undelegation struct {
	ID               string     `json:"id"`
	DelegatorAddress string     `json:"delegatorAddress"`
	Validator        *Validator `json:"validator,omitempty"`
	Amount           string     `json:"amount"`
	StartHeight      string     `json:"startHeight"`
	EndTime          string     `json:"endTime"`
}

// Reward is one validator's pending reward in one denom.
type Reward struct {
	ID        string     `json:"id"`
	Denom     string     `json:"denom"`
	Amount    string     `json:"amount"`
	Validator *Validator `json:"validator,omitempty"`
}

// Block is a normalized block header.
type Block struct {
	ID              string `json:"id"`
	Height          string `json:"height"`
	ChainID         string `json:"chainId"`
	Hash            string `json:"hash"`
	Time            string `json:"time"`
	ProposerAddress string `json:"proposerAddress"`
}

// RawDelegation is one delegation as the staking API returns it.
type RawDelegation struct {
	Delegation struct {
		DelegatorAddress string `json:"delegator_address"`
		ValidatorAddress string `json:"validator_address"`
		Shares           string `json:"shares"`
	} `json:"delegation"`
	Balance RawCoin `json:"balance"`
}

// RawUnbondingEntry is one entry of an unbonding delegation.
type RawUnbondingEntry struct {
	CreationHeight string `json:"creation_height"`
	CompletionTime string `json:"completion_time"`
	Balance        string `json:"balance"`
}

// RawReward is one validator's pending rewards as the distribution API
// returns them.
type RawReward struct {
	ValidatorAddress string    `json:"validator_address"`
	Reward           []RawCoin `json:"reward"`
}

// BlockResponse is the latest-block endpoint response.
type BlockResponse struct {
	BlockID struct {
		Hash string `json:"hash"`
	} `json:"block_id"`
	Block struct {
		Header struct {
			Height          string `json:"height"`
			ChainID         string `json:"chain_id"`
			Time            string `json:"time"`
			ProposerAddress string `json:"proposer_address"`
		} `json:"header"`
	} `json:"block"`
}

// Balance folds delegations and undelegations into one balance row per
// already-normalized coin.
func (r *Reducer) Balance(coin Coin, delegations []Delegation, undelegations []Undelegation) Balance {
	isStakingDenom := coin.Denom == r.net.StakingDenom

	available := decOrZero(coin.Amount)
	staked := sdkmath.LegacyZeroDec()
	for _, d := range delegations {
		staked = staked.Add(decOrZero(d.Amount))
	}
	undelegating := sdkmath.LegacyZeroDec()
	for _, u := range undelegations {
		undelegating = undelegating.Add(decOrZero(u.Amount))
	}

	balanceType := BalanceTypeCurrency
	total := coin.Amount
	precision := 0
	if lookup, ok := r.net.GetCoinLookupViewDenom(coin.Denom); ok {
		precision = lookup.Precision()
	}
	if isStakingDenom {
		balanceType = BalanceTypeStake
		total = formatDec(available.Add(staked).Add(undelegating), precision)
	}

	return Balance{
		ID:          coin.Denom,
		Type:        balanceType,
		Total:       total,
		Denom:       coin.Denom,
		Available:   coin.Amount,
		Staked:      formatDec(staked, precision),
		SourceChain: coin.SourceChain,
	}
}

// Delegation normalizes one delegation.
func (r *Reducer) Delegation(delegation RawDelegation, validator *Validator, active bool) Delegation {
	coin := r.Coin(delegation.Balance, nil)
	return Delegation{
		ID:               delegation.Delegation.ValidatorAddress + "-" + coin.Denom,
		ValidatorAddress: delegation.Delegation.ValidatorAddress,
		DelegatorAddress: delegation.Delegation.DelegatorAddress,
		Validator:        validator,
		Amount:           coin.Amount,
		Active:           active,
		Denom:            coin.Denom,
	}
}

// Undelegation normalizes one unbonding entry.
func (r *Reducer) Undelegation(delegatorAddress string, entry RawUnbondingEntry, validator *Validator) Undelegation {
	id := entry.CreationHeight
	if validator != nil {
		id = validator.OperatorAddress + "_" + entry.CreationHeight
	}
	return Undelegation{
		ID:               id,
		DelegatorAddress: delegatorAddress,
		Validator:        validator,
		Amount:           r.StakingViewAmount(entry.Balance),
		StartHeight:      entry.CreationHeight,
		EndTime:          entry.CompletionTime,
	}
}

// Rewards normalizes pending rewards across validators, one row per
// validator and denom. Dust below 0.000001 view units is dropped.
func (r *Reducer) Rewards(rewards []RawReward, validators map[string]*Validator) []Reward {
	var reduced []Reward
	for _, reward := range rewards {
		validator := validators[reward.ValidatorAddress]
		for _, raw := range reward.Reward {
			coin := r.Coin(raw, nil)
			if decOrZero(coin.Amount).LT(rewardDustThreshold) {
				continue
			}
			id := reward.ValidatorAddress + "_" + coin.Denom
			reduced = append(reduced, Reward{
				ID:        id,
				Denom:     coin.Denom,
				Amount:    coin.Amount,
				Validator: validator,
			})
		}
	}
	return reduced
}

// Block normalizes the latest-block response.
func (r *Reducer) Block(block *BlockResponse) Block {
	return Block{
		ID:              block.BlockID.Hash,
		Height:          block.Block.Header.Height,
		ChainID:         block.Block.Header.ChainID,
		Hash:            block.BlockID.Hash,
		Time:            block.Block.Header.Time,
		ProposerAddress: block.Block.Header.ProposerAddress,
	}
}

// UndelegationEndTime finds the completion_time attribute inside a
// transaction's events. Unbonding transactions expose their end time only
// there.
func UndelegationEndTime(tx *TxResponse) string {
	for _, log := range tx.Logs {
		for _, ev := range log.Events {
			for _, attr := range ev.Attributes {
				if attr.Key == "completion_time" {
					return attr.Value
				}
			}
		}
	}
	return ""
}
