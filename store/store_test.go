package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/likecoin/walletdata/reduce"
)

func TestApply(t *testing.T) {
	t.Run("collection events set data and the loaded flag", func(t *testing.T) {
		s := Apply(NewState(), SetBalances{Balances: []reduce.Balance{{Denom: "EKIL"}}})

		require.True(t, s.BalancesLoaded)
		require.Len(t, s.Balances, 1)
		require.False(t, s.RewardsLoaded)
	})

	t.Run("does not mutate its input", func(t *testing.T) {
		before := NewState()
		Apply(before, SetRewards{Rewards: []reduce.Reward{{ID: "a"}}})

		require.False(t, before.RewardsLoaded)
		require.Nil(t, before.Rewards)
	})

	t.Run("unknown events are ignored", func(t *testing.T) {
		s := Apply(NewState(), nil)
		require.Equal(t, NewState(), s)
	})
}

func TestApplyTransactionsPage(t *testing.T) {
	msg := func(key string) reduce.Message { return reduce.Message{Key: key, Hash: key} }

	t.Run("page zero replaces the collection", func(t *testing.T) {
		s := Apply(NewState(), SetTransactionsPage{Transactions: []reduce.Message{msg("A_0")}, Page: 0})
		s = Apply(s, SetTransactionsPage{Transactions: []reduce.Message{msg("B_0")}, Page: 0})

		require.Len(t, s.Transactions, 1)
		require.Equal(t, "B_0", s.Transactions[0].Key)
		require.True(t, s.TransactionsLoaded)
		require.True(t, s.MoreTransactionsAvailable)
	})

	t.Run("later pages merge with existing rows winning", func(t *testing.T) {
		existing := msg("A_0")
		existing.Memo = "original"
		s := Apply(NewState(), SetTransactionsPage{Transactions: []reduce.Message{existing}, Page: 0})

		duplicate := msg("A_0")
		duplicate.Memo = "changed"
		s = Apply(s, SetTransactionsPage{Transactions: []reduce.Message{duplicate, msg("B_0")}, Page: 1})

		require.Len(t, s.Transactions, 2)
		require.Equal(t, "original", s.Transactions[0].Memo)
		require.Equal(t, "B_0", s.Transactions[1].Key)
	})

	t.Run("an empty page exhausts pagination", func(t *testing.T) {
		s := Apply(NewState(), SetTransactionsPage{Transactions: []reduce.Message{msg("A_0")}, Page: 0})
		s = Apply(s, SetTransactionsPage{Transactions: nil, Page: 1})

		require.False(t, s.MoreTransactionsAvailable)
		require.Len(t, s.Transactions, 1)
	})
}

func TestApplyAppendProposal(t *testing.T) {
	t.Run("appends a new proposal", func(t *testing.T) {
		s := Apply(NewState(), AppendProposal{Proposal: reduce.Proposal{ProposalID: "1"}})
		s = Apply(s, AppendProposal{Proposal: reduce.Proposal{ProposalID: "2"}})

		require.Len(t, s.Proposals, 2)
		require.True(t, s.ProposalsLoaded)
	})

	t.Run("replaces an existing proposal in place", func(t *testing.T) {
		s := Apply(NewState(), SetProposals{Proposals: []reduce.Proposal{
			{ProposalID: "1", Title: "old"},
			{ProposalID: "2"},
		}})
		s = Apply(s, AppendProposal{Proposal: reduce.Proposal{ProposalID: "1", Title: "new"}})

		require.Len(t, s.Proposals, 2)
		require.Equal(t, "new", s.Proposals[0].Title)
		require.Equal(t, "1", s.Proposals[0].ProposalID)
	})
}

func TestApplyResetSession(t *testing.T) {
	s := NewState()
	s = Apply(s, SetBalances{Balances: []reduce.Balance{{Denom: "EKIL"}}})
	s = Apply(s, SetValidators{Validators: []reduce.Validator{{ID: "likevaloper1a"}}})
	s = Apply(s, SetProposals{Proposals: []reduce.Proposal{{ProposalID: "1"}}})
	s = Apply(s, SetTransactionsPage{Transactions: []reduce.Message{{Key: "A_0"}}, Page: 0})
	s = Apply(s, SetTransactionsPage{Transactions: nil, Page: 1})

	s = Apply(s, ResetSession{})

	require.Nil(t, s.Balances)
	require.False(t, s.BalancesLoaded)
	require.Nil(t, s.Transactions)
	require.False(t, s.TransactionsLoaded)
	require.True(t, s.MoreTransactionsAvailable)

	// chain-scoped collections survive a logout
	require.True(t, s.ValidatorsLoaded)
	require.Len(t, s.Validators, 1)
	require.True(t, s.ProposalsLoaded)
	require.Len(t, s.Proposals, 1)
}

func TestStore(t *testing.T) {
	st := New()

	st.Dispatch(SetTransactionsLoading{Loading: true})
	require.True(t, st.State().TransactionsLoading)

	st.Dispatch(SetTransactionsLoading{Loading: false})
	require.False(t, st.State().TransactionsLoading)
}
