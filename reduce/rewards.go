package reduce

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// RewardCoins parses an event-log amount string. Claimed amounts are encoded
// in transfer events as one comma-separated string of concatenated
// digit+denom tokens, e.g. "15000ungm,100000uchf". Each token is split into
// its leading digits and trailing denom and normalized independently.
func (r *Reducer) RewardCoins(reward string) []Coin {
	var coins []Coin
	for _, token := range splitTokens(reward) {
		amount, denom := splitAmountDenom(token)
		coins = append(coins, r.Coin(RawCoin{Amount: amount, Denom: denom}, nil))
	}
	return coins
}

// claimedRewards sums the claimed amounts of one transaction per denom from
// its transfer events. When the transaction carries no transfer events (as
// on failed claims) a single zero entry is returned so rendering always has
// a row.
func (r *Reducer) claimedRewards(tx *TxResponse) []Coin {
	var amountValues []string
	for _, log := range tx.Logs {
		for _, ev := range log.Events {
			if ev.Type != "transfer" {
				continue
			}
			for _, attr := range ev.Attributes {
				if attr.Key == "amount" {
					amountValues = append(amountValues, attr.Value)
				}
			}
		}
	}

	if len(amountValues) == 0 {
		return []Coin{{Denom: "", Amount: "0"}}
	}

	// exact per-denom sums, first-seen denom order
	var order []string
	totals := make(map[string]sdkmath.LegacyDec)
	supported := make(map[string]bool)
	for _, value := range amountValues {
		for _, coin := range r.RewardCoins(value) {
			amount, err := sdkmath.LegacyNewDecFromStr(coin.Amount)
			if err != nil {
				continue
			}
			if total, ok := totals[coin.Denom]; ok {
				totals[coin.Denom] = total.Add(amount)
			} else {
				order = append(order, coin.Denom)
				totals[coin.Denom] = amount
				supported[coin.Denom] = coin.Supported
			}
		}
	}

	coins := make([]Coin, 0, len(order))
	for _, denom := range order {
		precision := 0
		if lookup, ok := r.net.GetCoinLookupViewDenom(denom); ok {
			precision = lookup.Precision()
		}
		coins = append(coins, Coin{
			Supported: supported[denom],
			Denom:     denom,
			Amount:    formatDec(totals[denom], precision),
		})
	}
	return coins
}

type msgWithdrawReward struct {
	ValidatorAddress string `json:"validator_address"`
}

// aggregateClaimMessages collapses every claim-reward message of one
// transaction into a single synthetic message listing all target validators,
// so one user action shows as one row instead of N.
func aggregateClaimMessages(msgs []RawMessage) (txMessage, error) {
	validators := make([]string, 0, len(msgs))
	for _, raw := range msgs {
		var m msgWithdrawReward
		if err := json.Unmarshal(raw, &m); err != nil {
			return txMessage{}, fmt.Errorf("decode withdraw reward message: %w", err)
		}
		validators = append(validators, m.ValidatorAddress)
	}
	return txMessage{
		TypeURL:         "/cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward",
		ClaimValidators: validators,
	}, nil
}

func splitTokens(s string) []string {
	var tokens []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				tokens = append(tokens, s[start:i])
			}
			start = i + 1
		}
	}
	return tokens
}

// splitAmountDenom splits a token like "15000ungm" into its leading digit
// run and the rest.
func splitAmountDenom(token string) (amount, denom string) {
	i := 0
	for i < len(token) && token[i] >= '0' && token[i] <= '9' {
		i++
	}
	return token[:i], token[i:]
}
