package reduce

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func sendMessage(from, to, amount string) RawMessage {
	return RawMessage(fmt.Sprintf(
		`{"@type":"/cosmos.bank.v1beta1.MsgSend","from_address":%q,"to_address":%q,"amount":[{"denom":"nanoekil","amount":%q}]}`,
		from, to, amount,
	))
}

func sendTx(hash, timestamp string) TxResponse {
	return TxResponse{
		Height:    "100",
		TxHash:    hash,
		Timestamp: timestamp,
		Tx: Tx{
			Body: TxBody{
				Messages: []RawMessage{sendMessage("like1sender", "like1recipient", "1000000000")},
				Memo:     "test memo",
			},
			AuthInfo: AuthInfo{Fee: TxFee{
				Amount:   []RawCoin{{Denom: "nanoekil", Amount: "35000000"}},
				GasLimit: "350000",
			}},
		},
		Logs: []TxLog{{
			MsgIndex: 0,
			Events: []Event{{
				Type: "transfer",
				Attributes: []EventAttribute{
					{Key: "sender", Value: "like1sender"},
					{Key: "recipient", Value: "like1recipient"},
					{Key: "amount", Value: "1000000000nanoekil"},
				},
			}},
		}},
	}
}

func TestReduceTransaction(t *testing.T) {
	r := testReducer(t)

	t.Run("send", func(t *testing.T) {
		tx := sendTx("AB12", "2022-06-01T10:00:00Z")

		msgs, err := r.ReduceTransaction(&tx)
		require.NoError(t, err)
		require.Len(t, msgs, 1)

		msg := msgs[0]
		require.Equal(t, MessageTypeSend, msg.Type)
		require.Equal(t, "AB12", msg.Hash)
		require.Equal(t, "AB12_0", msg.Key)
		require.Equal(t, "likecoin-public-testnet-5", msg.NetworkID)
		require.Equal(t, "100", msg.Height)
		require.Equal(t, "test memo", msg.Memo)
		require.True(t, msg.Success)
		require.Equal(t, []Coin{{Supported: true, Amount: "0.035000000", Denom: "EKIL"}}, msg.Fees)
		require.Equal(t, []string{"like1sender", "like1recipient"}, msg.InvolvedAddresses)

		details, ok := msg.Details.(SendDetails)
		require.True(t, ok)
		require.Equal(t, []string{"like1sender"}, details.From)
		require.Equal(t, []string{"like1recipient"}, details.To)
		require.Equal(t, "1.000000000", details.Amounts[0].Amount)
	})

	t.Run("claim messages collapse into one trailing row", func(t *testing.T) {
		claim := func(validator string) RawMessage {
			return RawMessage(fmt.Sprintf(
				`{"@type":"/cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward","delegator_address":"like1d","validator_address":%q}`,
				validator,
			))
		}
		tx := sendTx("CLAIM1", "2022-06-01T10:00:00Z")
		tx.Tx.Body.Messages = []RawMessage{
			claim("likevaloper1a"),
			sendMessage("like1sender", "like1recipient", "5"),
			claim("likevaloper1b"),
		}

		msgs, err := r.ReduceTransaction(&tx)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		require.Equal(t, MessageTypeSend, msgs[0].Type)
		require.Equal(t, MessageTypeClaimRewards, msgs[1].Type)

		details, ok := msgs[1].Details.(ClaimRewardsDetails)
		require.True(t, ok)
		require.Equal(t, []string{"likevaloper1a", "likevaloper1b"}, details.From)
		require.Equal(t, []Coin{{Supported: true, Amount: "1.000000000", Denom: "EKIL"}}, details.Amounts)
	})

	t.Run("non-zero code marks every row failed and falls back to raw_log", func(t *testing.T) {
		tx := sendTx("FAIL1", "2022-06-01T10:00:00Z")
		tx.Code = 11
		tx.Logs = nil
		tx.RawLog = `{"message":"out of gas in location: WritePerByte"}`

		msgs, err := r.ReduceTransaction(&tx)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		require.False(t, msgs[0].Success)
		require.Equal(t, "out of gas in location: WritePerByte", msgs[0].Log)
		require.Empty(t, msgs[0].InvolvedAddresses)
	})

	t.Run("plain raw_log passes through when not a JSON object", func(t *testing.T) {
		tx := sendTx("FAIL2", "2022-06-01T10:00:00Z")
		tx.Code = 5
		tx.Logs = nil
		tx.RawLog = "insufficient funds"

		msgs, err := r.ReduceTransaction(&tx)
		require.NoError(t, err)
		require.Equal(t, "insufficient funds", msgs[0].Log)
	})

	t.Run("failing per-message log falls back to the first log", func(t *testing.T) {
		tx := sendTx("FAIL3", "2022-06-01T10:00:00Z")
		tx.Tx.Body.Messages = append(tx.Tx.Body.Messages, sendMessage("like1sender", "like1other", "7"))
		ok, notOK := true, false
		tx.Logs = []TxLog{
			{MsgIndex: 0, Success: &ok, Log: "first log"},
			{MsgIndex: 1, Success: &notOK, Log: "second log"},
		}

		msgs, err := r.ReduceTransaction(&tx)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		require.Equal(t, "first log", msgs[0].Log)
		require.Equal(t, "first log", msgs[1].Log)
	})

	t.Run("ignored system messages produce no rows", func(t *testing.T) {
		tx := sendTx("IBC1", "2022-06-01T10:00:00Z")
		tx.Tx.Body.Messages = []RawMessage{
			RawMessage(`{"@type":"/ibc.core.client.v1.MsgUpdateClient","client_id":"07-tendermint-0"}`),
		}

		msgs, err := r.ReduceTransaction(&tx)
		require.NoError(t, err)
		require.Empty(t, msgs)
	})

	t.Run("message without a log entry has no involved addresses", func(t *testing.T) {
		tx := sendTx("NOLOG", "2022-06-01T10:00:00Z")
		tx.Logs = []TxLog{{MsgIndex: 7}}

		msgs, err := r.ReduceTransaction(&tx)
		require.NoError(t, err)
		require.Empty(t, msgs[0].InvolvedAddresses)
	})

	t.Run("malformed message payload is an error", func(t *testing.T) {
		tx := sendTx("BAD1", "2022-06-01T10:00:00Z")
		tx.Tx.Body.Messages = []RawMessage{
			RawMessage(`{"@type":"/cosmos.bank.v1beta1.MsgSend","amount":"not-an-array"}`),
		}

		_, err := r.ReduceTransaction(&tx)
		require.Error(t, err)
	})
}

func TestReduceTransactions(t *testing.T) {
	r := testReducer(t)

	t.Run("dedups by hash and orders newest first", func(t *testing.T) {
		txs := []TxResponse{
			sendTx("A", "2022-06-01T10:00:00Z"),
			sendTx("B", "2022-06-03T10:00:00Z"),
			sendTx("A", "2022-06-01T10:00:00Z"),
			sendTx("C", "2022-06-02T10:00:00Z"),
		}

		msgs := r.ReduceTransactions(txs)

		hashes := make([]string, len(msgs))
		for i, m := range msgs {
			hashes[i] = m.Hash
		}
		require.Equal(t, []string{"B", "C", "A"}, hashes)
	})

	t.Run("a broken transaction is dropped without affecting the batch", func(t *testing.T) {
		bad := sendTx("BAD", "2022-06-02T10:00:00Z")
		bad.Tx.Body.Messages = []RawMessage{
			RawMessage(`{"@type":"/cosmos.bank.v1beta1.MsgSend","amount":"not-an-array"}`),
		}
		txs := []TxResponse{sendTx("GOOD", "2022-06-01T10:00:00Z"), bad}

		msgs := r.ReduceTransactions(txs)

		require.Len(t, msgs, 1)
		require.Equal(t, "GOOD", msgs[0].Hash)
	})
}
