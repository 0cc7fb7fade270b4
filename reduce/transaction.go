package reduce

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Message is one normalized output row per (transaction, message) pair.
// Multiple claim-reward messages inside one transaction collapse into a
// single row.
type Message struct {
	ID                string         `json:"id"`
	Type              MessageType    `json:"type"`
	Hash              string         `json:"hash"`
	NetworkID         string         `json:"networkId"`
	Key               string         `json:"key"`
	Height            string         `json:"height"`
	Details           MessageDetails `json:"details"`
	Timestamp         string         `json:"timestamp"`
	Memo              string         `json:"memo"`
	Fees              []Coin         `json:"fees"`
	Success           bool           `json:"success"`
	Log               string         `json:"log"`
	InvolvedAddresses []string       `json:"involvedAddresses"`
	RawMessage        RawMessage     `json:"rawMessage,omitempty"`
	Events            [][]Event      `json:"events,omitempty"`
}

// txMessage is a message surviving ignore filtering and claim aggregation.
// Raw is nil for the synthetic claim aggregate; ClaimValidators is set only
// there.
type txMessage struct {
	TypeURL         string
	Raw             RawMessage
	ClaimValidators []string
}

// ReduceTransactions normalizes a list of raw transactions. Hash duplicates
// from pagination overlap are removed (first occurrence wins) and the result
// is ordered newest first. A transaction that fails to reduce is logged and
// dropped; the rest of the batch is unaffected.
func (r *Reducer) ReduceTransactions(txs []TxResponse) []Message {
	seen := make(map[string]struct{}, len(txs))
	deduped := make([]TxResponse, 0, len(txs))
	for _, tx := range txs {
		if _, ok := seen[tx.TxHash]; ok {
			continue
		}
		seen[tx.TxHash] = struct{}{}
		deduped = append(deduped, tx)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Timestamp < deduped[j].Timestamp
	})
	for i, j := 0, len(deduped)-1; i < j; i, j = i+1, j-1 {
		deduped[i], deduped[j] = deduped[j], deduped[i]
	}

	var messages []Message
	for i := range deduped {
		reduced, err := r.ReduceTransaction(&deduped[i])
		if err != nil {
			r.log.Error("dropping transaction",
				zap.String("hash", deduped[i].TxHash),
				zap.Error(err))
			continue
		}
		messages = append(messages, reduced...)
	}
	return messages
}

// ReduceTransaction normalizes a single raw transaction into one Message per
// surviving message. Claim-reward messages are aggregated into one trailing
// synthetic message; ignored system messages produce no row. Any failure,
// including panics from unexpected payload shapes, is returned as an error
// so the caller can drop just this transaction.
func (r *Reducer) ReduceTransaction(tx *TxResponse) (messages []Message, err error) {
	defer func() {
		if p := recover(); p != nil {
			messages = nil
			err = fmt.Errorf("reduce transaction %s: %v", tx.TxHash, p)
		}
	}()

	fees := r.coins(tx.Tx.AuthInfo.Fee.Amount)

	var claimMessages []RawMessage
	var otherMessages []txMessage
	for _, raw := range tx.Tx.Body.Messages {
		typeURL := messageTypeURL(raw)
		if IsIgnoredMessageType(typeURL) {
			continue
		}
		if ParseMessageType(typeURL) == MessageTypeClaimRewards {
			claimMessages = append(claimMessages, raw)
			continue
		}
		otherMessages = append(otherMessages, txMessage{TypeURL: typeURL, Raw: raw})
	}

	all := otherMessages
	if len(claimMessages) > 0 {
		claim, err := aggregateClaimMessages(claimMessages)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.TxHash, err)
		}
		all = append(all, claim)
	}

	var events [][]Event
	for _, log := range tx.Logs {
		events = append(events, log.Events)
	}

	for index, msg := range all {
		msgType := ParseMessageType(msg.TypeURL)
		details, err := r.messageDetails(msgType, msg, tx)
		if err != nil {
			return nil, fmt.Errorf("transaction %s message %d: %w", tx.TxHash, index, err)
		}
		messages = append(messages, Message{
			ID:                tx.TxHash,
			Type:              msgType,
			Hash:              tx.TxHash,
			NetworkID:         r.net.ID,
			Key:               fmt.Sprintf("%s_%d", tx.TxHash, index),
			Height:            tx.Height,
			Details:           details,
			Timestamp:         tx.Timestamp,
			Memo:              tx.Tx.Body.Memo,
			Fees:              fees,
			Success:           tx.Code == 0,
			Log:               transactionLog(tx, index),
			InvolvedAddresses: involvedAddresses(eventsForMessage(tx, index)),
			RawMessage:        msg.Raw,
			Events:            events,
		})
	}
	return messages, nil
}

// transactionLog resolves the human-readable log text for the message at
// index. Failed transactions stop writing per-message logs early, so a
// missing or failing entry falls back to the transaction-level raw log or
// the first per-message log.
func transactionLog(tx *TxResponse, index int) string {
	if index >= len(tx.Logs) {
		// raw_log is a JSON object string on failures
		if msg := gjson.Get(tx.RawLog, "message"); msg.Exists() {
			return msg.String()
		}
		return tx.RawLog
	}
	log := tx.Logs[index]
	if log.Success != nil && !*log.Success {
		return tx.Logs[0].Log
	}
	return log.Log
}

// eventsForMessage returns the event list logged for the message at index,
// matched by msg_index. A missing entry means the message produced no
// events, not an error.
func eventsForMessage(tx *TxResponse, index int) []Event {
	for _, log := range tx.Logs {
		if log.MsgIndex == index {
			return log.Events
		}
	}
	return nil
}

// involvedAddresses extracts every sender and recipient address from a
// message's events, deduplicated in first-seen order.
func involvedAddresses(events []Event) []string {
	var addresses []string
	seen := make(map[string]struct{})
	push := func(addr string) {
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		addresses = append(addresses, addr)
	}
	for _, ev := range events {
		for _, attr := range ev.Attributes {
			if attr.Key == "sender" {
				push(attr.Value)
			}
		}
		for _, attr := range ev.Attributes {
			if attr.Key == "recipient" {
				push(attr.Value)
				break
			}
		}
	}
	return addresses
}
