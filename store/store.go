// Package store holds the latest reduced collections behind a small
// event-sourced state container. State transitions are pure functions so
// they can be tested without any fetch layer; the Store wrapper adds the
// single-writer locking the dispatch layer needs.
package store

import (
	"sync"

	"github.com/likecoin/walletdata/reduce"
)

// State is the flat collection container. Each collection has a paired
// Loaded flag so the UI can distinguish "not yet loaded" from "loaded but
// empty".
type State struct {
	Block *reduce.Block

	Balances       []reduce.Balance
	BalancesLoaded bool

	Rewards       []reduce.Reward
	RewardsLoaded bool

	Delegations       []reduce.Delegation
	DelegationsLoaded bool

	Undelegations       []reduce.Undelegation
	UndelegationsLoaded bool

	Validators       []reduce.Validator
	ValidatorsLoaded bool

	Proposals       []reduce.Proposal
	ProposalsLoaded bool

	GovernanceOverview       *reduce.GovernanceOverview
	GovernanceOverviewLoaded bool

	Transactions              []reduce.Message
	TransactionsLoaded        bool
	TransactionsLoading       bool
	MoreTransactionsAvailable bool
}

// NewState returns the initial state. MoreTransactionsAvailable starts true
// so the first page is always fetched.
func NewState() State {
	return State{MoreTransactionsAvailable: true}
}

// Store is a single-writer wrapper around State.
type Store struct {
	mu    sync.RWMutex
	state State
}

// New creates a Store with the initial state.
func New() *Store {
	return &Store{state: NewState()}
}

// Dispatch applies an event to the state.
func (s *Store) Dispatch(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Apply(s.state, ev)
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
