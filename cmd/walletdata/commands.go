package main

import (
	"github.com/spf13/cobra"
)

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <address>",
		Short: "Fetch an account's balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient()
			if err != nil {
				return err
			}
			balances, err := client.GetBalances(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(balances)
		},
	}
}

func rewardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rewards <address>",
		Short: "Fetch an account's pending staking rewards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient()
			if err != nil {
				return err
			}
			rewards, err := client.GetRewards(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			return printJSON(rewards)
		},
	}
}

func delegationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delegations <address>",
		Short: "Fetch an account's delegations and undelegations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient()
			if err != nil {
				return err
			}
			delegations, err := client.GetDelegations(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			undelegations, err := client.GetUndelegations(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"delegations":   delegations,
				"undelegations": undelegations,
			})
		},
	}
}

func transactionsCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "transactions <address>",
		Short: "Fetch and normalize an account's transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient()
			if err != nil {
				return err
			}
			net, err := loadNetwork()
			if err != nil {
				return err
			}
			messages, err := client.GetTransactions(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}
			history, closeDB, err := openHistory(cmd.Context(), net.ID)
			if err != nil {
				return err
			}
			defer closeDB()
			if history != nil {
				if err := history.SaveMessages(cmd.Context(), messages); err != nil {
					return err
				}
			}
			return printJSON(messages)
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "result page, 0-based")
	return cmd
}

func validatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validators",
		Short: "Fetch the validator set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient()
			if err != nil {
				return err
			}
			validators, err := client.GetValidators(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(validators)
		},
	}
}

func proposalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "proposals [id]",
		Short: "Fetch governance proposals",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				proposal, err := client.GetProposal(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				deposits, err := client.GetProposalDeposits(cmd.Context(), args[0], nil)
				if err != nil {
					return err
				}
				votes, err := client.GetProposalVotes(cmd.Context(), args[0], nil)
				if err != nil {
					return err
				}
				return printJSON(map[string]interface{}{
					"proposal": proposal,
					"deposits": deposits,
					"votes":    votes,
				})
			}
			proposals, err := client.GetProposals(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(proposals)
		},
	}
}

func blockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block",
		Short: "Fetch the latest block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient()
			if err != nil {
				return err
			}
			block, err := client.GetBlock(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(block)
		},
	}
}
