package reduce

import (
	"testing"

	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/stretchr/testify/require"
)

func governanceAddresses(t *testing.T) (account, operator string) {
	t.Helper()
	bz := make([]byte, 20)
	bz[19] = 0x42
	account, err := bech32.ConvertAndEncode("like", bz)
	require.NoError(t, err)
	operator, err = bech32.ConvertAndEncode("likevaloper", bz)
	require.NoError(t, err)
	return account, operator
}

func TestDeposit(t *testing.T) {
	r := testReducer(t)
	account, operator := governanceAddresses(t)
	validators := map[string]*Validator{
		operator: {OperatorAddress: operator, Name: "node-one"},
	}

	t.Run("depositor matching a validator is annotated", func(t *testing.T) {
		d := r.Deposit(RawDeposit{
			Depositor: account,
			Amount:    []RawCoin{{Denom: "nanoekil", Amount: "2000000000"}},
		}, validators)

		require.Equal(t, account, d.ID)
		require.Equal(t, "2.000000000", d.Amount[0].Amount)
		require.Equal(t, "node-one", d.Depositer.Name)
		require.Equal(t, operator, d.Depositer.Address)
		require.NotNil(t, d.Depositer.Validator)
	})

	t.Run("plain depositor stays a plain account", func(t *testing.T) {
		d := r.Deposit(RawDeposit{Depositor: account}, nil)

		require.Equal(t, account, d.Depositer.Address)
		require.Empty(t, d.Depositer.Name)
		require.Nil(t, d.Depositer.Validator)
	})
}

func TestVote(t *testing.T) {
	r := testReducer(t)
	account, operator := governanceAddresses(t)
	validators := map[string]*Validator{
		operator: {OperatorAddress: operator, Name: "node-one"},
	}

	v := r.Vote(RawVote{ProposalID: "5", Voter: account, Option: "VOTE_OPTION_YES"}, validators)

	require.Equal(t, "5_"+account, v.ID)
	require.Equal(t, "VOTE_OPTION_YES", v.Option)
	require.Equal(t, "node-one", v.Voter.Name)
}

func TestTopVoter(t *testing.T) {
	r := testReducer(t)
	validator := &Validator{OperatorAddress: "likevaloper1a", Name: "node-one", VotingPower: "0.100000"}

	voter := r.TopVoter(validator)

	require.Equal(t, "node-one", voter.Name)
	require.Equal(t, "likevaloper1a", voter.Address)
	require.Equal(t, "0.100000", voter.VotingPower)
	require.Same(t, validator, voter.Validator)
}
