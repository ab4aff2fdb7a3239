package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/app"
	marketd "github.com/iov-one/bazaar/cmd/marketd/app"
	"github.com/iov-one/bazaar/cmd/marketd/config"
	"github.com/iov-one/bazaar/cmd/marketd/server"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/x/cash"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:    "marketd",
		Usage:   "escrowed marketplace ledger",
		Version: bazaar.Version(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "home",
				Usage:   "directory holding the configuration, genesis and data",
				Value:   defaultHome(),
				EnvVars: []string{"BAZAAR_HOME"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "write the configuration and genesis files",
				Action: initCmd,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "chain-id", Usage: "identifier of the new ledger", Value: "bazaar-local"},
					&cli.StringFlag{Name: "admin", Usage: "address of the marketplace owner", Required: true},
					&cli.UintFlag{Name: "fee", Usage: "fee percentage charged on every sale"},
					&cli.StringSliceFlag{Name: "fund", Usage: "initial funds as address:amount, can be repeated"},
				},
			},
			{
				Name:   "start",
				Usage:  "run the ledger and serve the API",
				Action: startCmd,
			},
			{
				Name:  "version",
				Usage: "print the build version",
				Action: func(c *cli.Context) error {
					fmt.Println(bazaar.Version())
					return nil
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bazaar"
	}
	return filepath.Join(home, ".bazaar")
}

func initCmd(c *cli.Context) error {
	home := c.String("home")

	admin, err := bazaar.ParseAddress(c.String("admin"))
	if err != nil {
		return errors.Wrap(err, "admin")
	}
	funds, err := parseFunds(c.StringSlice("fund"))
	if err != nil {
		return err
	}
	gen, err := marketd.GenInitOptions(marketd.GenesisOptions{
		ChainID:       c.String("chain-id"),
		Admin:         admin,
		FeePercentage: uint32(c.Uint("fee")),
		Accounts:      funds,
	})
	if err != nil {
		return err
	}

	genPath := filepath.Join(home, config.GenesisFileName)
	if _, err := os.Stat(genPath); err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "%s already exists", genPath)
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		return err
	}
	if err := app.SaveGenesis(genPath, gen); err != nil {
		return err
	}

	conf := config.DefaultConfig()
	conf.ChainID = gen.ChainID
	if err := config.Write(filepath.Join(home, config.FileName), conf); err != nil {
		return err
	}
	fmt.Printf("Initialized %s in %s\n", gen.ChainID, home)
	return nil
}

// parseFunds reads "address:amount" pairs.
func parseFunds(raw []string) ([]cash.GenesisAccount, error) {
	accounts := make([]cash.GenesisAccount, 0, len(raw))
	for _, r := range raw {
		i := strings.LastIndex(r, ":")
		if i < 0 {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "fund %q: want address:amount", r)
		}
		addr, err := bazaar.ParseAddress(r[:i])
		if err != nil {
			return nil, errors.Wrapf(err, "fund %q", r)
		}
		amount, err := strconv.ParseUint(r[i+1:], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidAmount, "fund %q", r)
		}
		accounts = append(accounts, cash.GenesisAccount{Address: addr, Balance: amount})
	}
	return accounts, nil
}

func startCmd(c *cli.Context) error {
	home := c.String("home")
	conf, err := config.Load(home)
	if err != nil {
		return err
	}

	logger, err := newLogger(conf.LogLevel)
	if err != nil {
		return err
	}

	dbPath := conf.DBPath
	if dbPath != "" && !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(home, dbPath)
	}
	kv, err := marketd.CommitKVStore(dbPath, conf.History)
	if err != nil {
		return err
	}
	node, err := marketd.Application("marketd", kv, logger.With("module", "ledger"))
	if err != nil {
		return err
	}

	if node.Ledger.ChainID() == "" {
		gen, err := app.LoadGenesis(filepath.Join(home, config.GenesisFileName))
		if err != nil {
			return err
		}
		if _, err := node.Ledger.InitGenesis(gen, marketd.Initializer()); err != nil {
			return err
		}
	}
	if conf.ChainID != "" && conf.ChainID != node.Ledger.ChainID() {
		return errors.Wrapf(errors.ErrInvalidState, "store holds chain %q, configured %q", node.Ledger.ChainID(), conf.ChainID)
	}
	node.Ledger.Subscribe(app.NewLogSink(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(node, server.Options{
		Debug:    conf.Debug,
		CacheTTL: conf.CacheTTL(),
		Logger:   logger.With("module", "api"),
	})
	return srv.ListenAndServe(ctx, conf.Listen)
}

func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	option, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return log.NewFilter(logger, option), nil
}
