package source

import (
	"context"
	"net/url"

	"github.com/likecoin/walletdata/reduce"
)

// GetProposalDeposits fetches and reduces the deposits of one proposal.
func (c *Client) GetProposalDeposits(ctx context.Context, proposalID string, validators map[string]*reduce.Validator) ([]reduce.Deposit, error) {
	var res struct {
		Deposits []reduce.RawDeposit `json:"deposits"`
	}
	if err := c.get(ctx, "/cosmos/gov/v1/proposals/"+url.PathEscape(proposalID)+"/deposits", &res); err != nil {
		return nil, err
	}
	deposits := make([]reduce.Deposit, 0, len(res.Deposits))
	for _, raw := range res.Deposits {
		deposits = append(deposits, c.reducer.Deposit(raw, validators))
	}
	return deposits, nil
}

// GetProposalVotes fetches and reduces the votes of one proposal. The gov v1
// API reports weighted vote options; only the first option is kept, matching
// how the wallet renders votes.
func (c *Client) GetProposalVotes(ctx context.Context, proposalID string, validators map[string]*reduce.Validator) ([]reduce.Vote, error) {
	var res struct {
		Votes []struct {
			ProposalID string `json:"proposal_id"`
			Voter      string `json:"voter"`
			Options    []struct {
				Option string `json:"option"`
			} `json:"options"`
		} `json:"votes"`
	}
	if err := c.get(ctx, "/cosmos/gov/v1/proposals/"+url.PathEscape(proposalID)+"/votes", &res); err != nil {
		return nil, err
	}
	votes := make([]reduce.Vote, 0, len(res.Votes))
	for _, raw := range res.Votes {
		vote := reduce.RawVote{ProposalID: raw.ProposalID, Voter: raw.Voter}
		if len(raw.Options) > 0 {
			vote.Option = raw.Options[0].Option
		}
		votes = append(votes, c.reducer.Vote(vote, validators))
	}
	return votes, nil
}
