package reduce

import "strings"

// MessageType is the semantic kind of a transaction message. The set is
// closed; wire types without a mapping classify as MessageTypeUnknown.
type MessageType string

const (
	MessageTypeSend                MessageType = "SendTx"
	MessageTypeSendMultiple        MessageType = "SendMultipleTx"
	MessageTypeStake               MessageType = "StakeTx"
	MessageTypeRestake             MessageType = "RestakeTx"
	MessageTypeUnstake             MessageType = "UnstakeTx"
	MessageTypeClaimRewards        MessageType = "ClaimRewardsTx"
	MessageTypeSubmitProposal      MessageType = "SubmitProposalTx"
	MessageTypeVote                MessageType = "VoteTx"
	MessageTypeDeposit             MessageType = "DepositTx"
	MessageTypeCreateIscnRecord    MessageType = "CreateIscnRecordTx"
	MessageTypeUpdateIscnRecord    MessageType = "UpdateIscnRecordTx"
	MessageTypeChangeIscnOwnership MessageType = "ChangeIscnOwnershipTx"
	MessageTypeCreateNFTClass      MessageType = "CreateNFTClassTx"
	MessageTypeMintNFT             MessageType = "MintNFTTx"
	MessageTypeTransferNFT         MessageType = "TransferNFTTx"
	MessageTypeGrant               MessageType = "GrantTx"
	MessageTypeUnknown             MessageType = "UnknownTx"
)

var messageTypeBySuffix = map[string]MessageType{
	"cosmos.bank.v1beta1.MsgSend":                             MessageTypeSend,
	"cosmos.bank.v1beta1.MsgMultiSend":                        MessageTypeSendMultiple,
	"cosmos.staking.v1beta1.MsgDelegate":                      MessageTypeStake,
	"cosmos.staking.v1beta1.MsgBeginRedelegate":               MessageTypeRestake,
	"cosmos.staking.v1beta1.MsgUndelegate":                    MessageTypeUnstake,
	"cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward":  MessageTypeClaimRewards,
	"cosmos.gov.v1beta1.MsgSubmitProposal":                    MessageTypeSubmitProposal,
	"cosmos.gov.v1beta1.MsgVote":                              MessageTypeVote,
	"cosmos.gov.v1beta1.MsgDeposit":                           MessageTypeDeposit,
	"likechain.iscn.MsgCreateIscnRecord":                      MessageTypeCreateIscnRecord,
	"likechain.iscn.MsgUpdateIscnRecord":                      MessageTypeUpdateIscnRecord,
	"likechain.iscn.MsgChangeIscnRecordOwnership":             MessageTypeChangeIscnOwnership,
	"likechain.likenft.v1.MsgNewClass":                        MessageTypeCreateNFTClass,
	"likechain.likenft.v1.MsgMintNFT":                         MessageTypeMintNFT,
	"cosmos.authz.v1beta1.MsgExec":                            MessageTypeGrant,
	"cosmos.nft.v1beta1.MsgSend":                              MessageTypeTransferNFT,
}

// System messages with no user-facing meaning. They are dropped before
// classification and contribute no output row.
var ignoredTypeSuffixes = map[string]struct{}{
	"ibc.core.client.v1.MsgUpdateClient": {},
}

// ParseMessageType maps a fully qualified type URL such as
// "/cosmos.bank.v1beta1.MsgSend" to its semantic message type.
func ParseMessageType(typeURL string) MessageType {
	if t, ok := messageTypeBySuffix[typeSuffix(typeURL)]; ok {
		return t
	}
	return MessageTypeUnknown
}

// IsIgnoredMessageType reports whether a type URL is on the ignore list.
func IsIgnoredMessageType(typeURL string) bool {
	_, ok := ignoredTypeSuffixes[typeSuffix(typeURL)]
	return ok
}

func typeSuffix(typeURL string) string {
	if i := strings.Index(typeURL, "/"); i >= 0 {
		return typeURL[i+1:]
	}
	return typeURL
}
