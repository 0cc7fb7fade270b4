package reduce

import (
	"strconv"
	"strings"

	sdkmath "cosmossdk.io/math"
)

const (
	ProposalStatusUnspecified   = "PROPOSAL_STATUS_UNSPECIFIED"
	ProposalStatusDepositPeriod = "PROPOSAL_STATUS_DEPOSIT_PERIOD"
	ProposalStatusVotingPeriod  = "PROPOSAL_STATUS_VOTING_PERIOD"
	ProposalStatusPassed        = "PROPOSAL_STATUS_PASSED"
	ProposalStatusRejected      = "PROPOSAL_STATUS_REJECTED"
)

// ProposalType is the semantic kind of a governance proposal.
type ProposalType string

const (
	ProposalTypeText            ProposalType = "TEXT"
	ProposalTypeTreasury        ProposalType = "TREASURY"
	ProposalTypeParameterChange ProposalType = "PARAMETER_CHANGE"
	ProposalTypeUpgrade         ProposalType = "UPGRADE"
	ProposalTypeUnknown         ProposalType = ""
)

var proposalTypeByMessage = map[string]ProposalType{
	"TextProposal":               ProposalTypeText,
	"CommunityPoolSpendProposal": ProposalTypeTreasury,
	"ParameterChangeProposal":    ProposalTypeParameterChange,
	"SoftwareUpgradeProposal":    ProposalTypeUpgrade,
}

var proposalSummaryByType = map[ProposalType]string{
	ProposalTypeText:            "This is a text proposal. Text proposals can be proposed by anyone and are used as a signalling mechanism for this community. If this proposal is accepted, nothing will change without community coordination.",
	ProposalTypeTreasury:        "This is a treasury proposal. Treasury proposals transfer funds from the community pool to the recipient defined in the proposal.",
	ProposalTypeParameterChange: "This is a parameter change proposal. Parameter change proposals update a network parameter immediately once accepted.",
	ProposalTypeUpgrade:         "This is a software upgrade proposal. If accepted, validators are expected to update their node software at the defined upgrade height.",
}

// TallyResult is the raw vote counts of a proposal, in chain units.
type TallyResult struct {
	YesCount        string `json:"yes_count"`
	AbstainCount    string `json:"abstain_count"`
	NoCount         string `json:"no_count"`
	NoWithVetoCount string `json:"no_with_veto_count"`
}

// ProposalResponse is one governance proposal as the gov v1 API returns it.
type ProposalResponse struct {
	ID               string       `json:"id"`
	Messages         []RawMessage `json:"messages"`
	Status           string       `json:"status"`
	FinalTallyResult *TallyResult `json:"final_tally_result"`
	SubmitTime       string       `json:"submit_time"`
	DepositEndTime   string       `json:"deposit_end_time"`
	TotalDeposit     []RawCoin    `json:"total_deposit"`
	VotingStartTime  string       `json:"voting_start_time"`
	VotingEndTime    string       `json:"voting_end_time"`
}

// Tally is a normalized vote tally in view units. TotalVotedPercentage is -1
// when it cannot be computed: for finalized proposals the historical bonded
// total is unknown, and an in-flight proposal needs the current bonded total
// supplied.
type Tally struct {
	Yes                  string  `json:"yes"`
	No                   string  `json:"no"`
	Abstain              string  `json:"abstain"`
	Veto                 string  `json:"veto"`
	Total                string  `json:"total"`
	TotalVotedPercentage float64 `json:"totalVotedPercentage"`
}

// Proposal is a normalized governance proposal.
type Proposal struct {
	ID                int          `json:"id"`
	ProposalID        string       `json:"proposalId"`
	Type              ProposalType `json:"type"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	CreationTime      string       `json:"creationTime"`
	Status            string       `json:"status"`
	StatusBeginTime   string       `json:"statusBeginTime"`
	StatusEndTime     string       `json:"statusEndTime"`
	DepositEndTime    string       `json:"depositEndTime"`
	VotingStartTime   string       `json:"votingStartTime"`
	VotingEndTime     string       `json:"votingEndTime"`
	Tally             Tally        `json:"tally"`
	FinalTallyResult  *TallyResult `json:"finalTallyResult,omitempty"`
	TotalBondedTokens string       `json:"totalBondedTokens,omitempty"`
	Deposit           string       `json:"deposit"`
	Summary           string       `json:"summary,omitempty"`
}

// proposalFinalized reports whether voting on the proposal has concluded.
func proposalFinalized(status string) bool {
	return status == ProposalStatusPassed || status == ProposalStatusRejected
}

// Tally normalizes a vote tally. For finalized proposals the proposal's
// stored final tally always wins over any live tally supplied, since live
// counts of a concluded vote are historically meaningless.
func (r *Reducer) Tally(proposal *ProposalResponse, live *TallyResult, totalBondedTokens string) Tally {
	tally := live
	if tally == nil {
		tally = &TallyResult{YesCount: "0", AbstainCount: "0", NoCount: "0", NoWithVetoCount: "0"}
	}
	if proposalFinalized(proposal.Status) && proposal.FinalTallyResult != nil {
		tally = proposal.FinalTallyResult
	}

	yes := decOrZero(tally.YesCount)
	no := decOrZero(tally.NoCount)
	abstain := decOrZero(tally.AbstainCount)
	veto := decOrZero(tally.NoWithVetoCount)
	totalVoted := r.StakingViewAmount(yes.Add(no).Add(abstain).Add(veto).String())

	return Tally{
		Yes:                  r.StakingViewAmount(yes.String()),
		No:                   r.StakingViewAmount(no.String()),
		Abstain:              r.StakingViewAmount(abstain.String()),
		Veto:                 r.StakingViewAmount(veto.String()),
		Total:                totalVoted,
		TotalVotedPercentage: r.totalVotedPercentage(proposal, totalBondedTokens, totalVoted),
	}
}

// totalVotedPercentage is -1 for finalized proposals (the historical bonded
// total is unknown) and when no bonded total is supplied, 0 when nothing has
// been voted, and the voted/bonded ratio rounded to 4 decimals otherwise.
func (r *Reducer) totalVotedPercentage(proposal *ProposalResponse, totalBondedTokens, totalVoted string) float64 {
	if proposalFinalized(proposal.Status) {
		return -1
	}
	voted := decOrZero(totalVoted)
	if voted.IsZero() {
		return 0
	}
	if totalBondedTokens == "" {
		return -1
	}
	bonded := decOrZero(r.StakingViewAmount(totalBondedTokens))
	if bonded.IsZero() {
		return -1
	}
	ratio := formatDec(voted.Quo(bonded), 4)
	percentage, err := strconv.ParseFloat(ratio, 64)
	if err != nil {
		return -1
	}
	return percentage
}

// Proposal normalizes one governance proposal. Type, title and description
// derive from the first message; proposals without messages reduce with
// empty strings rather than failing.
func (r *Reducer) Proposal(proposal *ProposalResponse, totalBondedTokens string) Proposal {
	var typeString, title, description string
	if len(proposal.Messages) > 0 {
		var content struct {
			Type    string `json:"@type"`
			Content struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			} `json:"content"`
		}
		if err := json.Unmarshal(proposal.Messages[0], &content); err == nil {
			if i := strings.LastIndex(content.Type, "."); i >= 0 {
				typeString = content.Type[i+1:]
			} else {
				typeString = content.Type
			}
			title = content.Content.Title
			description = content.Content.Description
		}
	}
	proposalType := proposalTypeByMessage[typeString]

	id, _ := strconv.Atoi(proposal.ID)
	return Proposal{
		ID:                id,
		ProposalID:        proposal.ID,
		Type:              proposalType,
		Title:             title,
		Description:       description,
		CreationTime:      proposal.SubmitTime,
		Status:            proposal.Status,
		StatusBeginTime:   proposalBeginTime(proposal),
		StatusEndTime:     proposalEndTime(proposal),
		DepositEndTime:    proposal.DepositEndTime,
		VotingStartTime:   proposal.VotingStartTime,
		VotingEndTime:     proposal.VotingEndTime,
		Tally:             r.Tally(proposal, nil, totalBondedTokens),
		FinalTallyResult:  proposal.FinalTallyResult,
		TotalBondedTokens: totalBondedTokens,
		Deposit:           r.proposalDeposit(proposal),
		Summary:           proposalSummaryByType[proposalType],
	}
}

// proposalDeposit sums the staking-denom part of the total deposit. Deposits
// in other denoms are not considered.
func (r *Reducer) proposalDeposit(proposal *ProposalResponse) string {
	stakingLookup, ok := r.net.StakingCoinLookup()
	if !ok {
		return "0"
	}
	sum := sdkmath.LegacyZeroDec()
	for _, deposit := range proposal.TotalDeposit {
		if deposit.Denom != stakingLookup.ChainDenom {
			continue
		}
		sum = sum.Add(decOrZero(deposit.Amount))
	}
	return r.StakingViewAmount(sum.String())
}

// proposalBeginTime and proposalEndTime derive the bounds of the proposal's
// current status window. For finalized proposals voting has literally ended,
// so the voting end time serves as both bounds.
func proposalBeginTime(proposal *ProposalResponse) string {
	switch proposal.Status {
	case ProposalStatusDepositPeriod:
		return proposal.SubmitTime
	case ProposalStatusVotingPeriod:
		return proposal.VotingStartTime
	case ProposalStatusPassed, ProposalStatusRejected:
		return proposal.VotingEndTime
	}
	return ""
}

func proposalEndTime(proposal *ProposalResponse) string {
	switch proposal.Status {
	case ProposalStatusDepositPeriod:
		return proposal.DepositEndTime
	case ProposalStatusVotingPeriod, ProposalStatusPassed, ProposalStatusRejected:
		return proposal.VotingEndTime
	}
	return ""
}

func decOrZero(s string) sdkmath.LegacyDec {
	if s == "" {
		return sdkmath.LegacyZeroDec()
	}
	d, err := sdkmath.LegacyNewDecFromStr(s)
	if err != nil {
		return sdkmath.LegacyZeroDec()
	}
	return d
}
