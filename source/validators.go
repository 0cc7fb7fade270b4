package source

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"

	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/likecoin/walletdata/reduce"
)

// GetValidators fetches the full validator set with signing infos, the
// bonded pool and the annual provision, and reduces them. Chains without a
// mint module simply leave the expected-return estimate empty.
func (c *Client) GetValidators(ctx context.Context) ([]reduce.Validator, error) {
	var validatorsRes struct {
		Validators []reduce.RawValidator `json:"validators"`
	}
	if err := c.get(ctx, "/cosmos/staking/v1beta1/validators?pagination.limit=500", &validatorsRes); err != nil {
		return nil, err
	}

	signingInfos, err := c.getSigningInfos(ctx)
	if err != nil {
		c.log.Warn("signing infos unavailable", zap.Error(err))
		signingInfos = nil
	}

	var poolRes struct {
		Pool struct {
			BondedTokens string `json:"bonded_tokens"`
		} `json:"pool"`
	}
	if err := c.get(ctx, "/cosmos/staking/v1beta1/pool", &poolRes); err != nil {
		return nil, err
	}

	annualProvision := c.getAnnualProvision(ctx)
	signedBlocksWindow := c.getSignedBlocksWindow(ctx)
	totalShares := sumShares(validatorsRes.Validators)

	validators := make([]reduce.Validator, 0, len(validatorsRes.Validators))
	for i := range validatorsRes.Validators {
		raw := &validatorsRes.Validators[i]
		if address, err := c.consensusAddress(raw.ConsensusPubkey); err == nil {
			raw.SigningInfo = signingInfos[address]
		}
		validators = append(validators, c.reducer.Validator(raw, annualProvision, totalShares, poolRes.Pool.BondedTokens, signedBlocksWindow))
	}
	return validators, nil
}

// ValidatorsByOperator keys reduced validators by operator address for the
// reducers that resolve addresses against the validator set.
func ValidatorsByOperator(validators []reduce.Validator) map[string]*reduce.Validator {
	byOperator := make(map[string]*reduce.Validator, len(validators))
	for i := range validators {
		byOperator[validators[i].OperatorAddress] = &validators[i]
	}
	return byOperator
}

func (c *Client) getSigningInfos(ctx context.Context) (map[string]*reduce.SigningInfo, error) {
	var res struct {
		Info []reduce.SigningInfo `json:"info"`
	}
	if err := c.get(ctx, "/cosmos/slashing/v1beta1/signing_infos?pagination.limit=500", &res); err != nil {
		return nil, err
	}
	infos := make(map[string]*reduce.SigningInfo, len(res.Info))
	for i := range res.Info {
		infos[res.Info[i].Address] = &res.Info[i]
	}
	return infos, nil
}

// getAnnualProvision returns the chain's annual provision, or empty when the
// chain has no mint module.
func (c *Client) getAnnualProvision(ctx context.Context) string {
	var res struct {
		AnnualProvisions string `json:"annual_provisions"`
	}
	if err := c.get(ctx, "/cosmos/mint/v1beta1/annual_provisions", &res); err != nil {
		c.log.Debug("annual provisions unavailable", zap.Error(err))
		return ""
	}
	return res.AnnualProvisions
}

// getSignedBlocksWindow returns the slashing signed-blocks window the uptime
// estimate divides by, or empty when the params are unavailable (uptime then
// defaults to 1).
func (c *Client) getSignedBlocksWindow(ctx context.Context) string {
	var res struct {
		Params struct {
			SignedBlocksWindow string `json:"signed_blocks_window"`
		} `json:"params"`
	}
	if err := c.get(ctx, "/cosmos/slashing/v1beta1/params", &res); err != nil {
		c.log.Debug("slashing params unavailable", zap.Error(err))
		return ""
	}
	return res.Params.SignedBlocksWindow
}

// consensusAddress derives the bech32 consensus address of a validator from
// its consensus pubkey: the first 20 bytes of the SHA-256 of the key bytes,
// re-encoded under the network's consensus prefix. This is how signing infos
// (keyed by consensus address) are matched to validators (which only carry
// the pubkey).
func (c *Client) consensusAddress(pubkey reduce.RawMessage) (string, error) {
	var key struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(pubkey, &key); err != nil {
		return "", fmt.Errorf("decode consensus pubkey: %w", err)
	}
	bz, err := base64.StdEncoding.DecodeString(key.Key)
	if err != nil {
		return "", fmt.Errorf("decode consensus pubkey bytes: %w", err)
	}
	sum := sha256.Sum256(bz)
	return c.net.ConsensusAddress(sum[:20])
}

func votingPowerDec(validator *reduce.Validator) sdkmath.LegacyDec {
	power, err := sdkmath.LegacyNewDecFromStr(validator.VotingPower)
	if err != nil {
		return sdkmath.LegacyZeroDec()
	}
	return power
}

func sumShares(validators []reduce.RawValidator) string {
	total := sdkmath.LegacyZeroDec()
	for _, v := range validators {
		if v.Status != reduce.BondStatusBonded {
			continue
		}
		shares, err := sdkmath.LegacyNewDecFromStr(v.DelegatorShares)
		if err != nil {
			continue
		}
		total = total.Add(shares)
	}
	return total.String()
}

// GetProposals fetches and reduces all proposals together with the bonded
// total their tally percentages need.
func (c *Client) GetProposals(ctx context.Context) ([]reduce.Proposal, error) {
	var res struct {
		Proposals []reduce.ProposalResponse `json:"proposals"`
	}
	if err := c.get(ctx, "/cosmos/gov/v1/proposals?pagination.limit=500", &res); err != nil {
		return nil, err
	}

	var poolRes struct {
		Pool struct {
			BondedTokens string `json:"bonded_tokens"`
		} `json:"pool"`
	}
	if err := c.get(ctx, "/cosmos/staking/v1beta1/pool", &poolRes); err != nil {
		return nil, err
	}

	proposals := make([]reduce.Proposal, 0, len(res.Proposals))
	for i := range res.Proposals {
		proposals = append(proposals, c.reducer.Proposal(&res.Proposals[i], poolRes.Pool.BondedTokens))
	}
	return proposals, nil
}

// GetProposal fetches and reduces a single proposal, including its live
// tally. For finalized proposals the live tally is ignored by the reducer.
func (c *Client) GetProposal(ctx context.Context, proposalID string) (reduce.Proposal, error) {
	var res struct {
		Proposal reduce.ProposalResponse `json:"proposal"`
	}
	if err := c.get(ctx, "/cosmos/gov/v1/proposals/"+url.PathEscape(proposalID), &res); err != nil {
		return reduce.Proposal{}, err
	}

	var poolRes struct {
		Pool struct {
			BondedTokens string `json:"bonded_tokens"`
		} `json:"pool"`
	}
	if err := c.get(ctx, "/cosmos/staking/v1beta1/pool", &poolRes); err != nil {
		return reduce.Proposal{}, err
	}

	proposal := c.reducer.Proposal(&res.Proposal, poolRes.Pool.BondedTokens)

	var tallyRes struct {
		Tally reduce.TallyResult `json:"tally"`
	}
	if err := c.get(ctx, "/cosmos/gov/v1/proposals/"+url.PathEscape(proposalID)+"/tally", &tallyRes); err == nil {
		proposal.Tally = c.reducer.Tally(&res.Proposal, &tallyRes.Tally, poolRes.Pool.BondedTokens)
	}
	return proposal, nil
}

// GetGovernanceOverview summarizes staked assets and the top voters: the ten
// active validators with the largest voting power.
func (c *Client) GetGovernanceOverview(ctx context.Context, validators []reduce.Validator) (*reduce.GovernanceOverview, error) {
	var poolRes struct {
		Pool struct {
			BondedTokens string `json:"bonded_tokens"`
		} `json:"pool"`
	}
	if err := c.get(ctx, "/cosmos/staking/v1beta1/pool", &poolRes); err != nil {
		return nil, err
	}

	// the staking endpoint returns operator-address order, not power order
	active := make([]*reduce.Validator, 0, len(validators))
	for i := range validators {
		if validators[i].Status == reduce.ValidatorStatusActive {
			active = append(active, &validators[i])
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return votingPowerDec(active[i]).GT(votingPowerDec(active[j]))
	})

	topVoters := make([]reduce.TopVoter, 0, 10)
	for _, validator := range active {
		topVoters = append(topVoters, c.reducer.TopVoter(validator))
		if len(topVoters) == 10 {
			break
		}
	}

	overview := &reduce.GovernanceOverview{
		TotalStakedAssets: c.reducer.StakingViewAmount(poolRes.Pool.BondedTokens),
		TotalVoters:       len(validators),
		TopVoters:         topVoters,
	}
	return overview, nil
}
