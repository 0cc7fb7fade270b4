package reduce

import (
	"fmt"
)

// MessageDetails is the kind-specific payload of a normalized message.
// Kinds without a dedicated detail reducer carry EmptyDetails.
type MessageDetails interface {
	messageDetails()
}

// EmptyDetails is the detail payload of unknown or detail-less kinds.
type EmptyDetails struct{}

func (EmptyDetails) messageDetails() {}

// RawDetails carries a detail payload that has round-tripped through
// storage. It is only re-rendered, never interpreted.
type RawDetails []byte

func (RawDetails) messageDetails() {}

func (d RawDetails) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// SendDetails covers single sends.
type SendDetails struct {
	From    []string `json:"from"`
	To      []string `json:"to"`
	Amounts []Coin   `json:"amounts"`
}

func (SendDetails) messageDetails() {}

// SendMultipleDetails covers multi-output sends. Amounts holds the first
// coin of each output, index-aligned with To.
type SendMultipleDetails struct {
	From    []string `json:"from"`
	To      []string `json:"to"`
	Amounts []Coin   `json:"amounts"`
}

func (SendMultipleDetails) messageDetails() {}

// StakeDetails covers delegations.
type StakeDetails struct {
	To     []string `json:"to"`
	Amount Coin     `json:"amount"`
}

func (StakeDetails) messageDetails() {}

// RestakeDetails covers redelegations.
type RestakeDetails struct {
	From   []string `json:"from"`
	To     []string `json:"to"`
	Amount Coin     `json:"amount"`
}

func (RestakeDetails) messageDetails() {}

// UnstakeDetails covers undelegations.
type UnstakeDetails struct {
	From   []string `json:"from"`
	Amount Coin     `json:"amount"`
}

func (UnstakeDetails) messageDetails() {}

// ClaimRewardsDetails covers the synthetic aggregated claim message. From
// lists every validator the original claim messages targeted; Amounts is
// derived from the transaction's transfer events.
type ClaimRewardsDetails struct {
	From    []string `json:"from"`
	Amounts []Coin   `json:"amounts"`
}

func (ClaimRewardsDetails) messageDetails() {}

// SubmitProposalDetails covers proposal submissions.
type SubmitProposalDetails struct {
	ProposalType        string `json:"proposalType"`
	ProposalTitle       string `json:"proposalTitle"`
	ProposalDescription string `json:"proposalDescription"`
	InitialDeposit      Coin   `json:"initialDeposit"`
}

func (SubmitProposalDetails) messageDetails() {}

// VoteDetails covers governance votes.
type VoteDetails struct {
	ProposalID string `json:"proposalId"`
	VoteOption string `json:"voteOption"`
}

func (VoteDetails) messageDetails() {}

// DepositDetails covers governance deposits.
type DepositDetails struct {
	ProposalID string `json:"proposalId"`
	Amount     Coin   `json:"amount"`
}

func (DepositDetails) messageDetails() {}

// MintNFTDetails covers LikeCoin NFT mints.
type MintNFTDetails struct {
	Creator    string `json:"creator"`
	NFTClassID string `json:"nftClassId"`
	NFTID      string `json:"nftId"`
}

func (MintNFTDetails) messageDetails() {}

// TransferNFTDetails covers NFT transfers.
type TransferNFTDetails struct {
	From       string `json:"from"`
	To         string `json:"to"`
	NFTClassID string `json:"nftClassId"`
	NFTID      string `json:"nftId"`
}

func (TransferNFTDetails) messageDetails() {}

// GrantDetails covers authz-executed sends, unwrapped to the first inner
// message.
type GrantDetails struct {
	Grantee string   `json:"grantee"`
	From    []string `json:"from"`
	To      []string `json:"to"`
	Amounts []Coin   `json:"amounts"`
}

func (GrantDetails) messageDetails() {}

type msgSend struct {
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	Amount      []RawCoin `json:"amount"`
}

type msgMultiSendIO struct {
	Address string    `json:"address"`
	Coins   []RawCoin `json:"coins"`
}

type msgMultiSend struct {
	Inputs  []msgMultiSendIO `json:"inputs"`
	Outputs []msgMultiSendIO `json:"outputs"`
}

type msgDelegate struct {
	ValidatorAddress string  `json:"validator_address"`
	Amount           RawCoin `json:"amount"`
}

type msgRedelegate struct {
	ValidatorSrcAddress string  `json:"validator_src_address"`
	ValidatorDstAddress string  `json:"validator_dst_address"`
	Amount              RawCoin `json:"amount"`
}

type msgSubmitProposal struct {
	Content struct {
		Type  string `json:"type"`
		Value struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"value"`
	} `json:"content"`
	InitialDeposit []RawCoin `json:"initial_deposit"`
}

type msgVote struct {
	ProposalID string `json:"proposal_id"`
	Option     string `json:"option"`
}

type msgDeposit struct {
	ProposalID string    `json:"proposal_id"`
	Amount     []RawCoin `json:"amount"`
}

type msgMintNFT struct {
	Creator string `json:"creator"`
	ClassID string `json:"class_id"`
	ID      string `json:"id"`
}

type msgTransferNFT struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	ClassID  string `json:"class_id"`
	ID       string `json:"id"`
}

type msgExec struct {
	Grantee string       `json:"grantee"`
	Msgs    []RawMessage `json:"msgs"`
}

// messageDetails builds the kind-specific detail record for one message.
// The transaction is needed for claim rewards, whose amounts only exist in
// the event logs. Decode failures bubble up so the assembler can drop the
// whole transaction.
func (r *Reducer) messageDetails(msgType MessageType, msg txMessage, tx *TxResponse) (MessageDetails, error) {
	switch msgType {
	case MessageTypeSend:
		var m msgSend
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode send message: %w", err)
		}
		return SendDetails{
			From:    []string{m.FromAddress},
			To:      []string{m.ToAddress},
			Amounts: r.coins(m.Amount),
		}, nil

	case MessageTypeSendMultiple:
		var m msgMultiSend
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode multisend message: %w", err)
		}
		details := SendMultipleDetails{}
		if len(m.Inputs) > 0 {
			details.From = []string{m.Inputs[0].Address}
		}
		for _, out := range m.Outputs {
			details.To = append(details.To, out.Address)
			if len(out.Coins) > 0 {
				details.Amounts = append(details.Amounts, r.Coin(out.Coins[0], nil))
			}
		}
		return details, nil

	case MessageTypeStake:
		var m msgDelegate
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode delegate message: %w", err)
		}
		return StakeDetails{
			To:     []string{m.ValidatorAddress},
			Amount: r.Coin(m.Amount, nil),
		}, nil

	case MessageTypeRestake:
		var m msgRedelegate
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode redelegate message: %w", err)
		}
		return RestakeDetails{
			From:   []string{m.ValidatorSrcAddress},
			To:     []string{m.ValidatorDstAddress},
			Amount: r.Coin(m.Amount, nil),
		}, nil

	case MessageTypeUnstake:
		var m msgDelegate
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode undelegate message: %w", err)
		}
		return UnstakeDetails{
			From:   []string{m.ValidatorAddress},
			Amount: r.Coin(m.Amount, nil),
		}, nil

	case MessageTypeClaimRewards:
		return ClaimRewardsDetails{
			From:    msg.ClaimValidators,
			Amounts: r.claimedRewards(tx),
		}, nil

	case MessageTypeSubmitProposal:
		var m msgSubmitProposal
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode submit proposal message: %w", err)
		}
		details := SubmitProposalDetails{
			ProposalType:        m.Content.Type,
			ProposalTitle:       m.Content.Value.Title,
			ProposalDescription: m.Content.Value.Description,
		}
		if len(m.InitialDeposit) > 0 {
			details.InitialDeposit = r.Coin(m.InitialDeposit[0], nil)
		}
		return details, nil

	case MessageTypeVote:
		var m msgVote
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode vote message: %w", err)
		}
		return VoteDetails{ProposalID: m.ProposalID, VoteOption: m.Option}, nil

	case MessageTypeDeposit:
		var m msgDeposit
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode deposit message: %w", err)
		}
		details := DepositDetails{ProposalID: m.ProposalID}
		if len(m.Amount) > 0 {
			details.Amount = r.Coin(m.Amount[0], nil)
		}
		return details, nil

	case MessageTypeMintNFT:
		var m msgMintNFT
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode mint nft message: %w", err)
		}
		return MintNFTDetails{Creator: m.Creator, NFTClassID: m.ClassID, NFTID: m.ID}, nil

	case MessageTypeTransferNFT:
		var m msgTransferNFT
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode transfer nft message: %w", err)
		}
		return TransferNFTDetails{From: m.Sender, To: m.Receiver, NFTClassID: m.ClassID, NFTID: m.ID}, nil

	case MessageTypeGrant:
		var m msgExec
		if err := json.Unmarshal(msg.Raw, &m); err != nil {
			return nil, fmt.Errorf("decode exec message: %w", err)
		}
		details := GrantDetails{Grantee: m.Grantee}
		if len(m.Msgs) > 0 {
			var inner msgSend
			if err := json.Unmarshal(m.Msgs[0], &inner); err != nil {
				return nil, fmt.Errorf("decode exec inner message: %w", err)
			}
			details.From = []string{inner.FromAddress}
			details.To = []string{inner.ToAddress}
			details.Amounts = r.coins(inner.Amount)
		}
		return details, nil

	default:
		return EmptyDetails{}, nil
	}
}

func (r *Reducer) coins(raw []RawCoin) []Coin {
	coins := make([]Coin, 0, len(raw))
	for _, c := range raw {
		coins = append(coins, r.Coin(c, nil))
	}
	return coins
}
