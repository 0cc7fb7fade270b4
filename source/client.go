// Package source is the fetch boundary of the data layer: a REST client for
// the chain API plus a session dispatcher that fans fetches out, reduces the
// responses and commits them to the store. Fetch failures are surfaced as
// notifications and leave the collection's loaded flag untouched; they never
// fail a whole refresh.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/likecoin/walletdata/network"
	"github.com/likecoin/walletdata/reduce"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// transactionsPageSize is the page size used for transaction queries.
const transactionsPageSize = 50

// Client queries the REST API of one network.
type Client struct {
	net     *network.Network
	http    *http.Client
	reducer *reduce.Reducer
	log     *zap.Logger
}

// NewClient creates a Client for the network's API endpoint.
func NewClient(net *network.Network, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		net:     net,
		http:    &http.Client{Timeout: 30 * time.Second},
		reducer: reduce.New(net, log),
		log:     log,
	}
}

// get fetches a JSON document into out, retrying transient transport
// failures. Non-2xx statuses are not retried.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	endpoint := c.net.APIURL + path
	return retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
			return retry.Unrecoverable(fmt.Errorf("GET %s: status %d: %s", path, res.StatusCode, body))
		}
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return retry.Unrecoverable(fmt.Errorf("GET %s: decode: %w", path, err))
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

// GetBlock fetches and reduces the latest block.
func (c *Client) GetBlock(ctx context.Context) (reduce.Block, error) {
	var res reduce.BlockResponse
	if err := c.get(ctx, "/cosmos/base/tendermint/v1beta1/blocks/latest", &res); err != nil {
		return reduce.Block{}, err
	}
	return c.reducer.Block(&res), nil
}

// GetBalances fetches an account's balances together with its delegations
// and undelegations, which the staking-denom balance total folds in.
func (c *Client) GetBalances(ctx context.Context, address string) ([]reduce.Balance, error) {
	var res struct {
		Balances []reduce.RawCoin `json:"balances"`
	}
	if err := c.get(ctx, "/cosmos/bank/v1beta1/balances/"+url.PathEscape(address), &res); err != nil {
		return nil, err
	}
	delegations, err := c.GetDelegations(ctx, address, nil)
	if err != nil {
		return nil, err
	}
	undelegations, err := c.GetUndelegations(ctx, address, nil)
	if err != nil {
		return nil, err
	}

	balances := make([]reduce.Balance, 0, len(res.Balances))
	for _, raw := range res.Balances {
		coin := c.reducer.Coin(raw, nil)
		balances = append(balances, c.reducer.Balance(coin, delegations, undelegations))
	}
	return balances, nil
}

// GetDelegations fetches and reduces an account's delegations.
func (c *Client) GetDelegations(ctx context.Context, address string, validators map[string]*reduce.Validator) ([]reduce.Delegation, error) {
	var res struct {
		DelegationResponses []reduce.RawDelegation `json:"delegation_responses"`
	}
	if err := c.get(ctx, "/cosmos/staking/v1beta1/delegations/"+url.PathEscape(address), &res); err != nil {
		return nil, err
	}
	delegations := make([]reduce.Delegation, 0, len(res.DelegationResponses))
	for _, raw := range res.DelegationResponses {
		validator := validators[raw.Delegation.ValidatorAddress]
		delegations = append(delegations, c.reducer.Delegation(raw, validator, validator != nil))
	}
	return delegations, nil
}

// GetUndelegations fetches and reduces an account's unbonding delegations,
// one row per unbonding entry.
func (c *Client) GetUndelegations(ctx context.Context, address string, validators map[string]*reduce.Validator) ([]reduce.Undelegation, error) {
	var res struct {
		UnbondingResponses []struct {
			DelegatorAddress string                     `json:"delegator_address"`
			ValidatorAddress string                     `json:"validator_address"`
			Entries          []reduce.RawUnbondingEntry `json:"entries"`
		} `json:"unbonding_responses"`
	}
	if err := c.get(ctx, "/cosmos/staking/v1beta1/delegators/"+url.PathEscape(address)+"/unbonding_delegations", &res); err != nil {
		return nil, err
	}
	var undelegations []reduce.Undelegation
	for _, unbonding := range res.UnbondingResponses {
		validator := validators[unbonding.ValidatorAddress]
		for _, entry := range unbonding.Entries {
			undelegations = append(undelegations, c.reducer.Undelegation(unbonding.DelegatorAddress, entry, validator))
		}
	}
	return undelegations, nil
}

// GetRewards fetches and reduces an account's pending staking rewards.
func (c *Client) GetRewards(ctx context.Context, address string, validators map[string]*reduce.Validator) ([]reduce.Reward, error) {
	var res struct {
		Rewards []reduce.RawReward `json:"rewards"`
	}
	if err := c.get(ctx, "/cosmos/distribution/v1beta1/delegators/"+url.PathEscape(address)+"/rewards", &res); err != nil {
		return nil, err
	}
	return c.reducer.Rewards(res.Rewards, validators), nil
}

// GetTransactions fetches one page of an address's transactions, querying
// both sent and received sides, and reduces them. Duplicates across the two
// queries and across pages are left in; the assembler deduplicates by hash.
func (c *Client) GetTransactions(ctx context.Context, address string, page int) ([]reduce.Message, error) {
	sent, err := c.getTxsByEvent(ctx, fmt.Sprintf("message.sender='%s'", address), page)
	if err != nil {
		return nil, err
	}
	received, err := c.getTxsByEvent(ctx, fmt.Sprintf("transfer.recipient='%s'", address), page)
	if err != nil {
		return nil, err
	}
	return c.reducer.ReduceTransactions(append(sent, received...)), nil
}

func (c *Client) getTxsByEvent(ctx context.Context, event string, page int) ([]reduce.TxResponse, error) {
	query := url.Values{}
	query.Set("events", event)
	query.Set("pagination.limit", fmt.Sprintf("%d", transactionsPageSize))
	query.Set("pagination.offset", fmt.Sprintf("%d", page*transactionsPageSize))
	query.Set("order_by", "ORDER_BY_DESC")

	var res struct {
		TxResponses []reduce.TxResponse `json:"tx_responses"`
	}
	if err := c.get(ctx, "/cosmos/tx/v1beta1/txs?"+query.Encode(), &res); err != nil {
		return nil, err
	}
	return res.TxResponses, nil
}
