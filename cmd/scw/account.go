package main

import (
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/bcnmy/scw-contracts-sub000/cmd/scw/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/crypto"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

var accountArgs = struct {
	Account        string
	Owner          string
	Index          uint64
	Modules        cli.StringSlice
	To             string
	Value          string
	Data           string
	Operation      uint
	TargetTxGas    uint64
	BatchID        uint64
	Module         string
	Implementation string
}{}

func accountAddrFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "account",
		Aliases:     []string{"a"},
		Usage:       "Smart account address",
		Destination: &accountArgs.Account,
		Required:    true,
	}
}

func ownerFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "owner",
		Usage:       "Owner address, the owner keystore signs account transactions",
		Destination: &accountArgs.Owner,
		Required:    required,
	}
}

func moduleFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "module",
		Usage:       "Module address",
		Destination: &accountArgs.Module,
		Required:    true,
	}
}

var counterFactualFlags = []cli.Flag{
	&cli.Uint64Flag{
		Name:        "index",
		Usage:       "Account index of the owner",
		Destination: &accountArgs.Index,
	},
	&cli.StringSliceFlag{
		Name:        "modules",
		Usage:       "Modules enabled at deploy time",
		Destination: &accountArgs.Modules,
	},
}

var accountCMD = &cli.Command{
	Name:  "account",
	Usage: "The smart account manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "address",
			Usage:  "Show the counterfactual address of an account",
			Action: accountAddress,
			Flags:  append([]cli.Flag{ownerFlag(true)}, counterFactualFlags...),
		},
		{
			Name:   "create",
			Usage:  "Deploy an account through the factory",
			Action: createAccount,
			Flags:  append([]cli.Flag{ownerFlag(true), common.SenderFlag()}, counterFactualFlags...),
		},
		{
			Name:   "info",
			Usage:  "Show account state",
			Action: showAccount,
			Flags:  []cli.Flag{accountAddrFlag()},
		},
		{
			Name:   "exec",
			Usage:  "Sign a transaction with the owner keystore and relay it through execTransaction",
			Action: execAccountTransaction,
			Flags: []cli.Flag{
				accountAddrFlag(),
				ownerFlag(false),
				common.SenderFlag(),
				common.KeystorePasswordFlag(),
				&cli.StringFlag{
					Name:        "to",
					Usage:       "Call target",
					Destination: &accountArgs.To,
					Required:    true,
				},
				&cli.StringFlag{
					Name:        "value",
					Usage:       "Value in wei",
					Value:       "0",
					Destination: &accountArgs.Value,
				},
				&cli.StringFlag{
					Name:        "data",
					Usage:       "Call data(hex string)",
					Destination: &accountArgs.Data,
				},
				&cli.UintFlag{
					Name:        "operation",
					Usage:       "0 call, 1 delegatecall",
					Destination: &accountArgs.Operation,
				},
				&cli.Uint64Flag{
					Name:        "target-tx-gas",
					Usage:       "Gas forwarded to the call, 0 forwards all",
					Destination: &accountArgs.TargetTxGas,
				},
				&cli.Uint64Flag{
					Name:        "batch-id",
					Usage:       "Nonce space of the transaction",
					Destination: &accountArgs.BatchID,
				},
			},
		},
		{
			Name:   "enable-module",
			Usage:  "Enable a module on the account",
			Action: enableModule,
			Flags:  []cli.Flag{accountAddrFlag(), ownerFlag(false), common.SenderFlag(), common.KeystorePasswordFlag(), moduleFlag()},
		},
		{
			Name:   "disable-module",
			Usage:  "Disable a module of the account",
			Action: disableModule,
			Flags:  []cli.Flag{accountAddrFlag(), ownerFlag(false), common.SenderFlag(), common.KeystorePasswordFlag(), moduleFlag()},
		},
		{
			Name:   "upgrade",
			Usage:  "Point the account proxy at another implementation",
			Action: upgradeAccount,
			Flags: []cli.Flag{
				accountAddrFlag(),
				ownerFlag(false),
				common.SenderFlag(),
				common.KeystorePasswordFlag(),
				&cli.StringFlag{
					Name:        "implementation",
					Usage:       "New implementation address",
					Destination: &accountArgs.Implementation,
					Required:    true,
				},
			},
		},
	},
}

func counterFactualArgs() (ethcommon.Address, []ethcommon.Address, *big.Int, error) {
	owner, err := common.ParseAddress(accountArgs.Owner)
	if err != nil {
		return ethcommon.Address{}, nil, nil, err
	}
	modules := make([]ethcommon.Address, 0, len(accountArgs.Modules.Value()))
	for _, m := range accountArgs.Modules.Value() {
		module, err := common.ParseAddress(m)
		if err != nil {
			return ethcommon.Address{}, nil, nil, err
		}
		modules = append(modules, module)
	}
	return owner, modules, new(big.Int).SetUint64(accountArgs.Index), nil
}

func accountAddress(ctx *cli.Context) error {
	owner, modules, index, err := counterFactualArgs()
	if err != nil {
		return err
	}
	fmt.Println(saccount.CounterFactualAddress(saccount.AccountFactoryAddr, owner, modules, index).Hex())
	return nil
}

func prepareAccountClient(ctx *cli.Context) (*repo.Repo, *accountClient, func(), error) {
	r, exec, lg, err := common.PrepareExecutor(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	sender := ethcommon.Address{}
	if common.SenderFlagVar != "" {
		if sender, err = common.ParseAddress(common.SenderFlagVar); err != nil {
			lg.Close()
			return nil, nil, nil, err
		}
	}
	return r, &accountClient{exec: exec, lg: lg, sender: sender}, lg.Close, nil
}

func printReceipt(receipt *ledger.Receipt) {
	fmt.Printf("tx: %s, gas used: %d, logs: %d\n", receipt.TxHash, receipt.GasUsed, len(receipt.Logs))
}

func createAccount(ctx *cli.Context) error {
	owner, modules, index, err := counterFactualArgs()
	if err != nil {
		return err
	}
	_, client, closeLedger, err := prepareAccountClient(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	account, receipt, err := client.createAccount(owner, modules, index)
	if err != nil {
		return err
	}
	printReceipt(receipt)
	fmt.Printf("account created: %s\n", account)
	return nil
}

func showAccount(ctx *cli.Context) error {
	account, err := common.ParseAddress(accountArgs.Account)
	if err != nil {
		return err
	}
	_, client, closeLedger, err := prepareAccountClient(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	info, err := client.info(account)
	if err != nil {
		return err
	}
	return common.Pretty(info)
}

// ownerKey loads the keystore of --owner, or of the current account owner when it is not given
func ownerKey(ctx *cli.Context, r *repo.Repo, client *accountClient, account ethcommon.Address) (*crypto.Secp256k1PrivateKey, error) {
	var owner ethcommon.Address
	if accountArgs.Owner != "" {
		var err error
		if owner, err = common.ParseAddress(accountArgs.Owner); err != nil {
			return nil, err
		}
	} else {
		out, err := client.view(account, "owner")
		if err != nil {
			return nil, err
		}
		owner = out.(ethcommon.Address)
		if owner == (ethcommon.Address{}) {
			return nil, errors.Errorf("account %s has no owner, it is controlled by modules only", account)
		}
	}
	return common.LoadOwnerKey(ctx, r, owner)
}

func withOwner(ctx *cli.Context, fn func(client *accountClient, account ethcommon.Address, key *crypto.Secp256k1PrivateKey) (*ledger.Receipt, error)) error {
	account, err := common.ParseAddress(accountArgs.Account)
	if err != nil {
		return err
	}
	r, client, closeLedger, err := prepareAccountClient(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	key, err := ownerKey(ctx, r, client, account)
	if err != nil {
		return err
	}
	receipt, err := fn(client, account, key)
	if err != nil {
		return err
	}
	printReceipt(receipt)
	return nil
}

func execAccountTransaction(ctx *cli.Context) error {
	to, err := common.ParseAddress(accountArgs.To)
	if err != nil {
		return err
	}
	value, ok := new(big.Int).SetString(accountArgs.Value, 10)
	if !ok {
		return errors.Errorf("invalid value %q", accountArgs.Value)
	}
	data := []byte{}
	if accountArgs.Data != "" {
		if data, err = hexutil.Decode(accountArgs.Data); err != nil {
			return errors.Wrap(err, "invalid data")
		}
	}
	if accountArgs.Operation > uint(interfaces.DelegateCall) {
		return errors.Errorf("invalid operation %d", accountArgs.Operation)
	}
	tx := interfaces.Transaction{
		To:          to,
		Value:       value,
		Data:        data,
		Operation:   uint8(accountArgs.Operation),
		TargetTxGas: new(big.Int).SetUint64(accountArgs.TargetTxGas),
	}
	return withOwner(ctx, func(client *accountClient, account ethcommon.Address, key *crypto.Secp256k1PrivateKey) (*ledger.Receipt, error) {
		return client.execTransaction(account, key, tx, new(big.Int).SetUint64(accountArgs.BatchID))
	})
}

func enableModule(ctx *cli.Context) error {
	module, err := common.ParseAddress(accountArgs.Module)
	if err != nil {
		return err
	}
	return withOwner(ctx, func(client *accountClient, account ethcommon.Address, key *crypto.Secp256k1PrivateKey) (*ledger.Receipt, error) {
		return client.selfCall(account, key, "enableModule", module)
	})
}

func disableModule(ctx *cli.Context) error {
	module, err := common.ParseAddress(accountArgs.Module)
	if err != nil {
		return err
	}
	return withOwner(ctx, func(client *accountClient, account ethcommon.Address, key *crypto.Secp256k1PrivateKey) (*ledger.Receipt, error) {
		prev, err := client.prevModule(account, module)
		if err != nil {
			return nil, err
		}
		return client.selfCall(account, key, "disableModule", prev, module)
	})
}

func upgradeAccount(ctx *cli.Context) error {
	implementation, err := common.ParseAddress(accountArgs.Implementation)
	if err != nil {
		return err
	}
	return withOwner(ctx, func(client *accountClient, account ethcommon.Address, key *crypto.Secp256k1PrivateKey) (*ledger.Receipt, error) {
		if !client.exec.NativeVM().IsContract(client.lg.StateLedger, implementation) {
			return nil, errors.Errorf("implementation %s is not a contract", implementation)
		}
		return client.selfCall(account, key, "updateImplementation", implementation)
	})
}
