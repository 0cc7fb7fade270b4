package reduce

// RawDeposit is a governance deposit as the API returns it.
type RawDeposit struct {
	Depositor string    `json:"depositor"`
	Amount    []RawCoin `json:"amount"`
}

// RawVote is a governance vote as the API returns it.
type RawVote struct {
	ProposalID string `json:"proposal_id"`
	Voter      string `json:"voter"`
	Option     string `json:"option"`
}

// NetworkAccount is an address annotated with its validator identity when
// the address belongs to one.
type NetworkAccount struct {
	Name      string     `json:"name,omitempty"`
	Address   string     `json:"address"`
	Picture   string     `json:"picture,omitempty"`
	Validator *Validator `json:"validator,omitempty"`
}

// Deposit is a normalized governance deposit.
type Deposit struct {
	ID        string         `json:"id"`
	Amount    []Coin         `json:"amount"`
	Depositer NetworkAccount `json:"depositer"`
}

// Vote is a normalized governance vote.
type Vote struct {
	ID     string         `json:"id"`
	Voter  NetworkAccount `json:"voter"`
	Option string         `json:"option"`
}

// TopVoter is a validator ranked by voting power for the governance
// overview.
type TopVoter struct {
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	VotingPower string     `json:"votingPower"`
	Picture     string     `json:"picture,omitempty"`
	Validator   *Validator `json:"validator"`
}

// GovernanceOverview summarizes chain-wide governance state.
type GovernanceOverview struct {
	TotalStakedAssets string     `json:"totalStakedAssets"`
	TotalVoters       int        `json:"totalVoters"`
	TopVoters         []TopVoter `json:"topVoters"`
}

// Deposit normalizes a governance deposit.
func (r *Reducer) Deposit(deposit RawDeposit, validators map[string]*Validator) Deposit {
	return Deposit{
		ID:        deposit.Depositor,
		Amount:    r.coins(deposit.Amount),
		Depositer: r.networkAccount(deposit.Depositor, validators),
	}
}

// Vote normalizes a governance vote.
func (r *Reducer) Vote(vote RawVote, validators map[string]*Validator) Vote {
	return Vote{
		ID:     vote.ProposalID + "_" + vote.Voter,
		Voter:  r.networkAccount(vote.Voter, validators),
		Option: vote.Option,
	}
}

// TopVoter converts a validator into its governance-overview row.
func (r *Reducer) TopVoter(validator *Validator) TopVoter {
	return TopVoter{
		Name:        validator.Name,
		Address:     validator.OperatorAddress,
		VotingPower: validator.VotingPower,
		Picture:     validator.Picture,
		Validator:   validator,
	}
}

// networkAccount matches an address against the validator set, keyed by
// operator address. Addresses that cannot be re-encoded under the operator
// prefix stay plain accounts.
func (r *Reducer) networkAccount(address string, validators map[string]*Validator) NetworkAccount {
	if address == "" {
		return NetworkAccount{}
	}
	operatorAddress, err := r.net.ValidatorOperatorAddress(address)
	if err != nil {
		return NetworkAccount{Address: address}
	}
	if validator, ok := validators[operatorAddress]; ok {
		return NetworkAccount{
			Name:      validator.Name,
			Address:   operatorAddress,
			Picture:   validator.Picture,
			Validator: validator,
		}
	}
	return NetworkAccount{Address: address}
}
