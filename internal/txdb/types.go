package txdb

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/likecoin/walletdata/reduce"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// message mirrors reduce.Message for storage, with the polymorphic details
// payload kept raw.
type message struct {
	ID                string              `json:"id"`
	Type              string              `json:"type"`
	Hash              string              `json:"hash"`
	NetworkID         string              `json:"networkId"`
	Key               string              `json:"key"`
	Height            string              `json:"height"`
	Details           jsoniter.RawMessage `json:"details"`
	Timestamp         string              `json:"timestamp"`
	Memo              string              `json:"memo"`
	Fees              []reduce.Coin       `json:"fees"`
	Success           bool                `json:"success"`
	Log               string              `json:"log"`
	InvolvedAddresses []string            `json:"involvedAddresses"`
}

// Message converts the stored row back into a reduce.Message.
func (m message) Message() reduce.Message {
	return reduce.Message{
		ID:                m.ID,
		Type:              reduce.MessageType(m.Type),
		Hash:              m.Hash,
		NetworkID:         m.NetworkID,
		Key:               m.Key,
		Height:            m.Height,
		Details:           reduce.RawDetails(m.Details),
		Timestamp:         m.Timestamp,
		Memo:              m.Memo,
		Fees:              m.Fees,
		Success:           m.Success,
		Log:               m.Log,
		InvolvedAddresses: m.InvolvedAddresses,
	}
}
