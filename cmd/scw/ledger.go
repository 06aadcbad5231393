package main

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/bcnmy/scw-contracts-sub000/cmd/scw/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor"
	syscommon "github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/token"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
)

var ledgerArgs = struct {
	Height  uint64
	Latest  bool
	Address string
}{}

var ledgerCMD = &cli.Command{
	Name:  "ledger",
	Usage: "The ledger manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "block",
			Usage:  "Show a block header and its receipts",
			Action: showBlock,
			Flags: []cli.Flag{
				&cli.Uint64Flag{
					Name:        "height",
					Usage:       "Block height",
					Destination: &ledgerArgs.Height,
				},
				&cli.BoolFlag{
					Name:        "latest",
					Usage:       "Show the latest block",
					Destination: &ledgerArgs.Latest,
				},
			},
		},
		{
			Name:   "chain-meta",
			Usage:  "Show the latest height and block hash",
			Action: showChainMeta,
		},
		{
			Name:   "balance",
			Usage:  "Show the native balance of an address",
			Action: showBalance,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "address",
					Destination: &ledgerArgs.Address,
					Required:    true,
				},
			},
		},
		{
			Name:   "contracts",
			Usage:  "List the contracts deployed at genesis",
			Action: listContracts,
		},
	},
}

type blockInfo struct {
	Hash     ethcommon.Hash      `json:"hash"`
	Header   *ledger.BlockHeader `json:"header"`
	Receipts []*ledger.Receipt   `json:"receipts"`
}

func openLedger(ctx *cli.Context) (*ledger.Ledger, error) {
	r, err := common.PrepareRepo(ctx)
	if err != nil {
		return nil, err
	}
	return common.PrepareLedger(r)
}

func showBlock(ctx *cli.Context) error {
	lg, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer lg.Close()

	height := ledgerArgs.Height
	if ledgerArgs.Latest {
		height = lg.ChainLedger.GetChainMeta().Height
	}
	header, err := lg.ChainLedger.GetBlockHeader(height)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return errors.Errorf("block %d not found", height)
		}
		return err
	}
	receipts, err := lg.ChainLedger.GetReceipts(height)
	if err != nil {
		return err
	}
	return common.Pretty(&blockInfo{Hash: header.Hash(), Header: header, Receipts: receipts})
}

func showChainMeta(ctx *cli.Context) error {
	lg, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer lg.Close()

	return common.Pretty(lg.ChainLedger.GetChainMeta())
}

func showBalance(ctx *cli.Context) error {
	addr, err := common.ParseAddress(ledgerArgs.Address)
	if err != nil {
		return err
	}
	lg, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer lg.Close()

	fmt.Println(lg.StateLedger.GetBalance(addr).String())
	return nil
}

func listContracts(ctx *cli.Context) error {
	lg, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer lg.Close()

	nvm := executor.NewNativeVM()
	fmt.Printf("registered contracts: %v\n", nvm.Names())
	deployments := append(saccount.Deployments(), saccount.Deployment{
		Address: ethcommon.HexToAddress(syscommon.TokenContractAddr),
		Name:    token.ContractName,
	})
	for _, d := range deployments {
		status := "deployed"
		if !nvm.IsContract(lg.StateLedger, d.Address) {
			status = "missing"
		}
		fmt.Printf("%-24s %s %s\n", d.Name, d.Address, status)
	}
	return nil
}
