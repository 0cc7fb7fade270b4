package source

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/likecoin/walletdata/network"
	"github.com/likecoin/walletdata/reduce"
	"github.com/likecoin/walletdata/store"
)

// Notifier receives user-facing non-fatal failure notices from the dispatch
// layer.
type Notifier interface {
	Notify(level, message string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) {}

// Session dispatches fetches for one signed-in address and commits the
// reduced results to the store. Each fetch failure is logged, surfaced
// through the notifier and leaves the collection's loaded flag false; it
// never aborts the other fetches.
//
// There is no cancellation of superseded fetches: a late page result still
// commits and can overwrite newer state. The window is small (single user,
// single address) and the next refresh heals it, so the race is documented
// rather than mitigated.
type Session struct {
	client   *Client
	store    *store.Store
	net      *network.Network
	notifier Notifier
	log      *zap.Logger

	mu         sync.RWMutex
	validators map[string]*reduce.Validator
}

// NewSession wires a session over a client and store.
func NewSession(client *Client, st *store.Store, notifier Notifier, log *zap.Logger) *Session {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		client:   client,
		store:    st,
		net:      client.net,
		notifier: notifier,
		log:      log,
	}
}

// Refresh fetches the block and all session collections concurrently. Each
// collection writes a disjoint slice of store state, so no ordering between
// the fetches is needed. The returned error aggregates the individual
// failures for callers that care; the store is already updated with every
// successful result.
func (s *Session) Refresh(ctx context.Context, address string) error {
	var (
		errMu  sync.Mutex
		errAll error
	)
	collect := func(err error) {
		if err == nil {
			return
		}
		errMu.Lock()
		errAll = multierr.Append(errAll, err)
		errMu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { collect(s.GetBlock(ctx)); return nil })
	g.Go(func() error { collect(s.GetBalances(ctx, address)); return nil })
	g.Go(func() error { collect(s.GetRewards(ctx, address)); return nil })
	g.Go(func() error { collect(s.GetTransactions(ctx, address, 0)); return nil })
	g.Go(func() error { collect(s.GetDelegations(ctx, address)); return nil })
	g.Go(func() error { collect(s.GetUndelegations(ctx, address)); return nil })
	_ = g.Wait()
	return errAll
}

// Logout clears all session-scoped state.
func (s *Session) Logout() {
	s.store.Dispatch(store.ResetSession{})
}

// GetBlock fetches the latest block into the store.
func (s *Session) GetBlock(ctx context.Context) error {
	block, err := s.client.GetBlock(ctx)
	if err != nil {
		return s.fail("Getting block failed", err)
	}
	s.store.Dispatch(store.SetBlock{Block: &block})
	return nil
}

// GetBalances fetches the address's balances into the store.
func (s *Session) GetBalances(ctx context.Context, address string) error {
	balances, err := s.client.GetBalances(ctx, address)
	if err != nil {
		return s.fail("Getting balances failed", err)
	}
	s.store.Dispatch(store.SetBalances{Balances: balances})
	return nil
}

// GetRewards fetches the address's pending rewards into the store.
func (s *Session) GetRewards(ctx context.Context, address string) error {
	rewards, err := s.client.GetRewards(ctx, address, s.validatorsDict())
	if err != nil {
		return s.fail("Getting rewards failed", err)
	}
	s.store.Dispatch(store.SetRewards{Rewards: rewards})
	return nil
}

// GetDelegations fetches the address's delegations into the store.
func (s *Session) GetDelegations(ctx context.Context, address string) error {
	delegations, err := s.client.GetDelegations(ctx, address, s.validatorsDict())
	if err != nil {
		return s.fail("Getting delegations failed", err)
	}
	s.store.Dispatch(store.SetDelegations{Delegations: delegations})
	return nil
}

// GetUndelegations fetches the address's unbonding delegations into the
// store.
func (s *Session) GetUndelegations(ctx context.Context, address string) error {
	undelegations, err := s.client.GetUndelegations(ctx, address, s.validatorsDict())
	if err != nil {
		return s.fail("Getting undelegations failed", err)
	}
	s.store.Dispatch(store.SetUndelegations{Undelegations: undelegations})
	return nil
}

// GetTransactions fetches one page of transactions for every allowed
// re-encoding of the address and commits the merged page. Duplicates across
// pages are resolved by the store merge, keyed per message.
func (s *Session) GetTransactions(ctx context.Context, address string, page int) error {
	s.store.Dispatch(store.SetTransactionsLoading{Loading: true})
	defer s.store.Dispatch(store.SetTransactionsLoading{Loading: false})

	addresses, err := s.net.AllowedAddresses(address)
	if err != nil {
		return s.fail("Getting transactions failed", err)
	}
	var messages []reduce.Message
	seen := make(map[string]struct{})
	for _, addr := range addresses {
		batch, err := s.client.GetTransactions(ctx, addr, page)
		if err != nil {
			return s.fail("Getting transactions failed", err)
		}
		// the same account queried under another prefix returns the same rows
		for _, msg := range batch {
			if _, ok := seen[msg.Key]; ok {
				continue
			}
			seen[msg.Key] = struct{}{}
			messages = append(messages, msg)
		}
	}
	s.store.Dispatch(store.SetTransactionsPage{Transactions: messages, Page: page})
	return nil
}

// GetValidators fetches the validator set into the store and caches the
// by-operator dictionary for the session reducers.
func (s *Session) GetValidators(ctx context.Context) error {
	validators, err := s.client.GetValidators(ctx)
	if err != nil {
		return s.fail("Getting validators failed", err)
	}
	s.mu.Lock()
	s.validators = ValidatorsByOperator(validators)
	s.mu.Unlock()
	s.store.Dispatch(store.SetValidators{Validators: validators})
	return nil
}

// GetProposals fetches all proposals into the store.
func (s *Session) GetProposals(ctx context.Context) error {
	proposals, err := s.client.GetProposals(ctx)
	if err != nil {
		return s.fail("Getting proposals failed", err)
	}
	s.store.Dispatch(store.SetProposals{Proposals: proposals})
	return nil
}

// GetProposal fetches one proposal into the store.
func (s *Session) GetProposal(ctx context.Context, proposalID string) error {
	proposal, err := s.client.GetProposal(ctx, proposalID)
	if err != nil {
		return s.fail("Getting proposal failed", err)
	}
	s.store.Dispatch(store.AppendProposal{Proposal: proposal})
	return nil
}

// GetGovernanceOverview fetches the governance overview into the store.
func (s *Session) GetGovernanceOverview(ctx context.Context) error {
	overview, err := s.client.GetGovernanceOverview(ctx, s.store.State().Validators)
	if err != nil {
		return s.fail("Getting governance overview failed", err)
	}
	s.store.Dispatch(store.SetGovernanceOverview{Overview: overview})
	return nil
}

func (s *Session) validatorsDict() map[string]*reduce.Validator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validators
}

func (s *Session) fail(message string, err error) error {
	s.log.Warn(message, zap.Error(err))
	s.notifier.Notify("danger", fmt.Sprintf("%s: %v", message, err))
	return fmt.Errorf("%s: %w", message, err)
}
