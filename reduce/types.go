package reduce

import (
	jsoniter "github.com/json-iterator/go"
)

// Raw message payloads arrive loosely typed and can be large; jsoniter keeps
// decoding cheap while staying bit-compatible with encoding/json.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RawMessage is an undecoded JSON message payload.
type RawMessage = jsoniter.RawMessage

// TxResponse is one transaction as the Cosmos tx query API returns it.
type TxResponse struct {
	Height    string  `json:"height"`
	TxHash    string  `json:"txhash"`
	Code      int     `json:"code"`
	RawLog    string  `json:"raw_log"`
	Logs      []TxLog `json:"logs"`
	Timestamp string  `json:"timestamp"`
	Tx        Tx      `json:"tx"`
}

// Tx is the decoded transaction body and auth info.
type Tx struct {
	Body     TxBody   `json:"body"`
	AuthInfo AuthInfo `json:"auth_info"`
}

// TxBody carries the messages and memo of a transaction.
type TxBody struct {
	Messages []RawMessage `json:"messages"`
	Memo     string       `json:"memo"`
}

// AuthInfo carries the fee of a transaction.
type AuthInfo struct {
	Fee TxFee `json:"fee"`
}

// TxFee is the declared fee of a transaction.
type TxFee struct {
	Amount   []RawCoin `json:"amount"`
	GasLimit string    `json:"gas_limit"`
}

// TxLog is the per-message execution log of a transaction.
type TxLog struct {
	MsgIndex int     `json:"msg_index"`
	Success  *bool   `json:"success,omitempty"`
	Log      string  `json:"log"`
	Events   []Event `json:"events"`
}

// Event is one typed event emitted during message execution.
type Event struct {
	Type       string           `json:"type"`
	Attributes []EventAttribute `json:"attributes"`
}

// EventAttribute is a key/value pair inside an event.
type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// messageEnvelope is the minimal shape shared by every message payload.
type messageEnvelope struct {
	Type string `json:"@type"`
}

// messageTypeURL extracts the type URL of a raw message. Malformed payloads
// yield an empty URL, which classifies as unknown downstream.
func messageTypeURL(msg RawMessage) string {
	var env messageEnvelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return ""
	}
	return env.Type
}
