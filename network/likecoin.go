package network

// LikeCoinTestnet is the compiled-in descriptor for the LikeCoin public test
// chain. Deployments that need a different chain load one from a TOML file
// instead.
func LikeCoinTestnet() *Network {
	return &Network{
		ID:           "likecoin-public-testnet-5",
		Name:         "LikeCoin public test chain",
		Description:  "LikeCoin is a decentralized publishing infrastructure.",
		APIURL:       "https://node.testnet.like.co",
		RPCURL:       "https://node.testnet.like.co/rpc/",
		StakingDenom: "EKIL",
		CoinLookup: []CoinLookup{
			{
				ViewDenom:                   "EKIL",
				ChainDenom:                  "nanoekil",
				ChainToViewConversionFactor: "0.000000001",
				CoinGeckoID:                 "likecoin",
			},
		},
		AddressPrefix:                   "like",
		AllowedAddressPrefixes:          []string{"like", "cosmos"},
		ValidatorAddressPrefix:          "likevaloper",
		ValidatorConsensusAddressPrefix: "likevalcons",
		HDPath:                          "m/44'/118'/0'/0/0",
		LockUpPeriod:                    "21 days",
		Fees: FeeSchedule{
			Default: Fee{
				GasEstimate: 350000,
				FeeOptions:  []FeeOption{{Denom: "EKIL", Amount: "0.035"}},
			},
			ByTransactionType: map[string]Fee{
				"ClaimRewardsTx": {
					GasEstimate: 140000,
					FeeOptions:  []FeeOption{{Denom: "EKIL", Amount: "0.014"}},
				},
			},
		},
	}
}
