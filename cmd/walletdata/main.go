// Command walletdata fetches and reduces chain data for one network and
// prints the normalized collections as JSON. It is the same pipeline the
// wallet front-end consumes, exposed for debugging and scripting.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/likecoin/walletdata/internal/txdb"
	"github.com/likecoin/walletdata/network"
	"github.com/likecoin/walletdata/source"
)

var (
	flagNetworkFile string
	flagAPIURL      string
	flagDatabase    string
	flagDebug       bool
)

var rootCmd = &cobra.Command{
	Use:   "walletdata",
	Short: "Fetch and normalize chain data the way the wallet front-end sees it",
	Long: `walletdata queries a Cosmos SDK chain API and reduces the raw responses
into the normalized view models of the wallet: balances, rewards,
delegations, transactions, validators and governance proposals.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagNetworkFile, "network", "", "path to a TOML network descriptor (default: built-in LikeCoin testnet)")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api", "", "override the network's API base URL")
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "db", "", "sqlite file for the local transaction history (default: none)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose logging")

	rootCmd.AddCommand(
		balancesCmd(),
		rewardsCmd(),
		delegationsCmd(),
		transactionsCmd(),
		validatorsCmd(),
		proposalsCmd(),
		blockCmd(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if flagDebug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func loadNetwork() (*network.Network, error) {
	net := network.LikeCoinTestnet()
	if flagNetworkFile != "" {
		loaded, err := network.Load(flagNetworkFile)
		if err != nil {
			return nil, err
		}
		net = loaded
	}
	if flagAPIURL != "" {
		net.APIURL = flagAPIURL
	}
	return net, nil
}

func newClient() (*source.Client, *zap.Logger, error) {
	log, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	net, err := loadNetwork()
	if err != nil {
		return nil, nil, err
	}
	return source.NewClient(net, log), log, nil
}

// openHistory opens the local transaction history when --db is set.
func openHistory(ctx context.Context, networkID string) (*txdb.History, func(), error) {
	if flagDatabase == "" {
		return nil, func() {}, nil
	}
	db, err := txdb.Open(ctx, flagDatabase)
	if err != nil {
		return nil, nil, err
	}
	if err := txdb.Migrate(db, version); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return txdb.NewHistory(db, networkID), func() { _ = db.Close() }, nil
}

// version traces the schema of the local history database.
const version = "walletdata/1"

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
