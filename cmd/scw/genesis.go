package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/bcnmy/scw-contracts-sub000/cmd/scw/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/genesis"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

var genesisCMD = &cli.Command{
	Name:  "genesis",
	Usage: "The genesis manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "init",
			Usage:  "Deploy the account system and fund the genesis accounts",
			Action: initGenesis,
		},
		{
			Name:   "show",
			Usage:  "Show the genesis config the ledger was initialized with",
			Action: showLedgerGenesis,
		},
	},
}

func initGenesis(ctx *cli.Context) error {
	r, err := common.PrepareRepo(ctx)
	if err != nil {
		return err
	}
	lg, err := common.PrepareLedger(r)
	if err != nil {
		return err
	}
	defer lg.Close()

	if genesis.IsInitialized(lg) {
		fmt.Println("genesis already initialized")
		return nil
	}
	if err := genesis.Initialize(r.GenesisConfig, lg); err != nil {
		return err
	}
	meta := lg.ChainLedger.GetChainMeta()
	fmt.Printf("genesis initialized, chain-id: %d, block hash: %s\n", r.GenesisConfig.ChainID, meta.BlockHash)
	return nil
}

func showLedgerGenesis(ctx *cli.Context) error {
	r, err := common.PrepareRepo(ctx)
	if err != nil {
		return err
	}
	lg, err := common.PrepareLedger(r)
	if err != nil {
		return err
	}
	defer lg.Close()

	cfg, err := genesis.GetGenesisConfig(lg)
	if err != nil {
		return err
	}
	if cfg == nil {
		fmt.Println("genesis is not initialized")
		return nil
	}
	str, err := repo.MarshalConfig(cfg)
	if err != nil {
		return err
	}
	fmt.Println(str)
	return nil
}
