package source

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/stretchr/testify/require"

	"github.com/likecoin/walletdata/network"
	"github.com/likecoin/walletdata/reduce"
)

// fixtureServer serves canned chain API responses keyed by path prefix.
func fixtureServer(t *testing.T, fixtures map[string]string) *network.Network {
	t.Helper()
	mux := http.NewServeMux()
	for prefix, body := range fixtures {
		body := body
		mux.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	net := network.LikeCoinTestnet()
	net.APIURL = srv.URL
	return net
}

const sendTxFixture = `{
  "height": "100",
  "txhash": "AB12",
  "code": 0,
  "raw_log": "",
  "logs": [
    {
      "msg_index": 0,
      "log": "",
      "events": [
        {
          "type": "transfer",
          "attributes": [
            {"key": "sender", "value": "like1sender"},
            {"key": "recipient", "value": "like1recipient"},
            {"key": "amount", "value": "1000000000nanoekil"}
          ]
        }
      ]
    }
  ],
  "timestamp": "2022-06-01T10:00:00Z",
  "tx": {
    "body": {
      "messages": [
        {
          "@type": "/cosmos.bank.v1beta1.MsgSend",
          "from_address": "like1sender",
          "to_address": "like1recipient",
          "amount": [{"denom": "nanoekil", "amount": "1000000000"}]
        }
      ],
      "memo": ""
    },
    "auth_info": {
      "fee": {
        "amount": [{"denom": "nanoekil", "amount": "35000000"}],
        "gas_limit": "350000"
      }
    }
  }
}`

func TestGetBlock(t *testing.T) {
	net := fixtureServer(t, map[string]string{
		"/cosmos/base/tendermint/v1beta1/blocks/latest": `{
			"block_id": {"hash": "ABCD"},
			"block": {"header": {
				"height": "4242",
				"chain_id": "likecoin-public-testnet-5",
				"time": "2022-06-01T10:00:00Z",
				"proposer_address": "likevalcons1prop"
			}}
		}`,
	})

	block, err := NewClient(net, nil).GetBlock(context.Background())
	require.NoError(t, err)
	require.Equal(t, "4242", block.Height)
	require.Equal(t, "ABCD", block.Hash)
	require.Equal(t, "likecoin-public-testnet-5", block.ChainID)
}

func TestGetBalances(t *testing.T) {
	net := fixtureServer(t, map[string]string{
		"/cosmos/bank/v1beta1/balances/": `{
			"balances": [{"denom": "nanoekil", "amount": "1000000000"}]
		}`,
		"/cosmos/staking/v1beta1/delegations/": `{
			"delegation_responses": [{
				"delegation": {
					"delegator_address": "like1me",
					"validator_address": "likevaloper1a",
					"shares": "2000000000.000000000000000000"
				},
				"balance": {"denom": "nanoekil", "amount": "2000000000"}
			}]
		}`,
		"/cosmos/staking/v1beta1/delegators/": `{
			"unbonding_responses": [{
				"delegator_address": "like1me",
				"validator_address": "likevaloper1a",
				"entries": [{
					"creation_height": "90",
					"completion_time": "2022-07-01T00:00:00Z",
					"balance": "500000000"
				}]
			}]
		}`,
	})

	balances, err := NewClient(net, nil).GetBalances(context.Background(), "like1me")
	require.NoError(t, err)
	require.Len(t, balances, 1)

	balance := balances[0]
	require.Equal(t, reduce.BalanceTypeStake, balance.Type)
	require.Equal(t, "EKIL", balance.Denom)
	require.Equal(t, "1.000000000", balance.Available)
	require.Equal(t, "2.000000000", balance.Staked)
	require.Equal(t, "3.500000000", balance.Total)
}

func TestGetTransactions(t *testing.T) {
	net := fixtureServer(t, map[string]string{
		// both the sender and the recipient query return the same transaction
		"/cosmos/tx/v1beta1/txs": `{"tx_responses": [` + sendTxFixture + `]}`,
	})

	messages, err := NewClient(net, nil).GetTransactions(context.Background(), "like1sender", 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "AB12", messages[0].Hash)
	require.Equal(t, reduce.MessageTypeSend, messages[0].Type)
	require.Equal(t, []string{"like1sender", "like1recipient"}, messages[0].InvolvedAddresses)
}

func TestGetValidators(t *testing.T) {
	// the signing info is keyed by the consensus address derived from the
	// validator's pubkey
	const pubkey = "Abk2Vp8hW1+pLARw06U7b3v2GPS1mdfxKeUodV0hZy0="
	keyBytes, err := base64.StdEncoding.DecodeString(pubkey)
	require.NoError(t, err)
	sum := sha256.Sum256(keyBytes)
	consAddr, err := bech32.ConvertAndEncode("likevalcons", sum[:20])
	require.NoError(t, err)

	net := fixtureServer(t, map[string]string{
		"/cosmos/staking/v1beta1/validators": `{
			"validators": [{
				"operator_address": "likevaloper1a",
				"consensus_pubkey": {"@type": "/cosmos.crypto.ed25519.PubKey", "key": "` + pubkey + `"},
				"jailed": false,
				"status": "BOND_STATUS_BONDED",
				"tokens": "5000000000",
				"delegator_shares": "5000000000.000000000000000000",
				"description": {"moniker": "node-one"},
				"commission": {"commission_rates": {"rate": "0.100000000000000000"}}
			}]
		}`,
		"/cosmos/slashing/v1beta1/signing_infos": `{"info": [{
			"address": "` + consAddr + `",
			"start_height": "10",
			"missed_blocks_counter": "500"
		}]}`,
		"/cosmos/slashing/v1beta1/params":        `{"params": {"signed_blocks_window": "10000"}}`,
		"/cosmos/staking/v1beta1/pool":           `{"pool": {"bonded_tokens": "5000000000"}}`,
		"/cosmos/mint/v1beta1/annual_provisions": `{"annual_provisions": "500000000.000000000000000000"}`,
	})

	validators, err := NewClient(net, nil).GetValidators(context.Background())
	require.NoError(t, err)
	require.Len(t, validators, 1)

	v := validators[0]
	require.Equal(t, "likevaloper1a", v.OperatorAddress)
	require.Equal(t, reduce.ValidatorStatusActive, v.Status)
	require.Equal(t, "node-one", v.Name)
	require.Equal(t, "1.000000", v.VotingPower)
	require.Equal(t, "5.000000000", v.Tokens)
	require.Equal(t, "10", v.StartHeight)
	// 1 - 500/10000
	require.InDelta(t, 0.95, v.UptimePercentage, 1e-9)
	// (1 - 0.1) * 500000000 / 5000000000
	require.Equal(t, "0.090000", v.ExpectedReturns)

	byOperator := ValidatorsByOperator(validators)
	require.Contains(t, byOperator, "likevaloper1a")
}

func TestGetGovernanceOverview(t *testing.T) {
	net := fixtureServer(t, map[string]string{
		"/cosmos/staking/v1beta1/pool": `{"pool": {"bonded_tokens": "4000000000"}}`,
	})

	// response order is by operator address, smallest power first
	validators := []reduce.Validator{
		{OperatorAddress: "likevaloper1small", Status: reduce.ValidatorStatusActive, VotingPower: "0.010000"},
		{OperatorAddress: "likevaloper1idle", Status: reduce.ValidatorStatusInactive, VotingPower: "0"},
		{OperatorAddress: "likevaloper1big", Status: reduce.ValidatorStatusActive, VotingPower: "0.990000"},
	}

	overview, err := NewClient(net, nil).GetGovernanceOverview(context.Background(), validators)
	require.NoError(t, err)

	require.Equal(t, "4.000000000", overview.TotalStakedAssets)
	require.Equal(t, 3, overview.TotalVoters)
	require.Len(t, overview.TopVoters, 2)
	require.Equal(t, "likevaloper1big", overview.TopVoters[0].Address)
	require.Equal(t, "likevaloper1small", overview.TopVoters[1].Address)
}

func TestGetProposal(t *testing.T) {
	net := fixtureServer(t, map[string]string{
		"/cosmos/gov/v1/proposals/5/tally": `{
			"tally": {"yes_count": "1000000000", "no_count": "0", "abstain_count": "0", "no_with_veto_count": "0"}
		}`,
		"/cosmos/gov/v1/proposals/5": `{
			"proposal": {
				"id": "5",
				"status": "PROPOSAL_STATUS_VOTING_PERIOD",
				"messages": [{"@type": "/cosmos.params.v1beta1.ParameterChangeProposal", "content": {"title": "T", "description": "D"}}],
				"submit_time": "2022-05-01T00:00:00Z",
				"voting_start_time": "2022-05-03T00:00:00Z",
				"voting_end_time": "2022-05-17T00:00:00Z",
				"total_deposit": [{"denom": "nanoekil", "amount": "2000000000"}]
			}
		}`,
		"/cosmos/staking/v1beta1/pool": `{"pool": {"bonded_tokens": "4000000000"}}`,
	})

	proposal, err := NewClient(net, nil).GetProposal(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, "5", proposal.ProposalID)
	require.Equal(t, "T", proposal.Title)
	require.Equal(t, "2.000000000", proposal.Deposit)
	require.Equal(t, "1.000000000", proposal.Tally.Yes)
	require.Equal(t, 0.25, proposal.Tally.TotalVotedPercentage)
}

func TestGetStatusError(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	net := network.LikeCoinTestnet()
	net.APIURL = srv.URL

	_, err := NewClient(net, nil).GetBlock(context.Background())
	require.ErrorContains(t, err, "status 404")
	// non-2xx responses are not retried
	require.EqualValues(t, 1, calls.Load())
}
