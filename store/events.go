package store

import (
	"github.com/likecoin/walletdata/reduce"
)

// Event is a state transition. The set is closed; Apply ignores events it
// does not know.
type Event interface {
	storeEvent()
}

type SetBlock struct{ Block *reduce.Block }

type SetBalances struct{ Balances []reduce.Balance }

type SetRewards struct{ Rewards []reduce.Reward }

type SetDelegations struct{ Delegations []reduce.Delegation }

type SetUndelegations struct{ Undelegations []reduce.Undelegation }

type SetValidators struct{ Validators []reduce.Validator }

type SetProposals struct{ Proposals []reduce.Proposal }

// AppendProposal adds one incrementally loaded proposal. An existing
// proposal with the same ID is replaced in place.
type AppendProposal struct{ Proposal reduce.Proposal }

type SetGovernanceOverview struct{ Overview *reduce.GovernanceOverview }

// SetTransactionsPage commits one page of transactions. Page zero replaces
// the collection; later pages merge, deduplicated by message key with the
// already-present row winning. MoreTransactionsAvailable reflects whether
// the page was non-empty.
type SetTransactionsPage struct {
	Transactions []reduce.Message
	Page         int
}

type SetTransactionsLoading struct{ Loading bool }

// ResetSession clears all session-scoped collections (balances, rewards,
// delegations, undelegations, transactions) and their loaded flags.
// Chain-scoped collections (validators, proposals) survive.
type ResetSession struct{}

func (SetBlock) storeEvent()               {}
func (SetBalances) storeEvent()            {}
func (SetRewards) storeEvent()             {}
func (SetDelegations) storeEvent()         {}
func (SetUndelegations) storeEvent()       {}
func (SetValidators) storeEvent()          {}
func (SetProposals) storeEvent()           {}
func (AppendProposal) storeEvent()         {}
func (SetGovernanceOverview) storeEvent()  {}
func (SetTransactionsPage) storeEvent()    {}
func (SetTransactionsLoading) storeEvent() {}
func (ResetSession) storeEvent()           {}

// Apply computes the next state for an event. It never mutates its input
// beyond replacing whole collections.
func Apply(s State, ev Event) State {
	switch ev := ev.(type) {
	case SetBlock:
		s.Block = ev.Block
	case SetBalances:
		s.Balances = ev.Balances
		s.BalancesLoaded = true
	case SetRewards:
		s.Rewards = ev.Rewards
		s.RewardsLoaded = true
	case SetDelegations:
		s.Delegations = ev.Delegations
		s.DelegationsLoaded = true
	case SetUndelegations:
		s.Undelegations = ev.Undelegations
		s.UndelegationsLoaded = true
	case SetValidators:
		s.Validators = ev.Validators
		s.ValidatorsLoaded = true
	case SetProposals:
		s.Proposals = ev.Proposals
		s.ProposalsLoaded = true
	case AppendProposal:
		s.Proposals = appendProposal(s.Proposals, ev.Proposal)
		s.ProposalsLoaded = true
	case SetGovernanceOverview:
		s.GovernanceOverview = ev.Overview
		s.GovernanceOverviewLoaded = true
	case SetTransactionsPage:
		if ev.Page > 0 {
			s.Transactions = mergeTransactions(s.Transactions, ev.Transactions)
		} else {
			s.Transactions = ev.Transactions
		}
		s.TransactionsLoaded = true
		s.MoreTransactionsAvailable = len(ev.Transactions) > 0
	case SetTransactionsLoading:
		s.TransactionsLoading = ev.Loading
	case ResetSession:
		s.Balances = nil
		s.BalancesLoaded = false
		s.Rewards = nil
		s.RewardsLoaded = false
		s.Delegations = nil
		s.DelegationsLoaded = false
		s.Undelegations = nil
		s.UndelegationsLoaded = false
		s.Transactions = nil
		s.TransactionsLoaded = false
		s.TransactionsLoading = false
		s.MoreTransactionsAvailable = true
	}
	return s
}

func appendProposal(proposals []reduce.Proposal, proposal reduce.Proposal) []reduce.Proposal {
	next := make([]reduce.Proposal, 0, len(proposals)+1)
	replaced := false
	for _, p := range proposals {
		if p.ProposalID == proposal.ProposalID {
			next = append(next, proposal)
			replaced = true
			continue
		}
		next = append(next, p)
	}
	if !replaced {
		next = append(next, proposal)
	}
	return next
}

func mergeTransactions(existing, incoming []reduce.Message) []reduce.Message {
	seen := make(map[string]struct{}, len(existing))
	merged := make([]reduce.Message, 0, len(existing)+len(incoming))
	for _, m := range existing {
		seen[m.Key] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range incoming {
		if _, ok := seen[m.Key]; ok {
			continue
		}
		seen[m.Key] = struct{}{}
		merged = append(merged, m)
	}
	return merged
}
