package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system"
	"github.com/bcnmy/scw-contracts-sub000/internal/genesis"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/internal/storagemgr"
	"github.com/bcnmy/scw-contracts-sub000/pkg/crypto"
	"github.com/bcnmy/scw-contracts-sub000/pkg/loggers"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

const (
	KeystoreDirName = "keystore"

	DefaultKeystorePassword = "2023@scw"
)

var KeystorePasswordFlagVar string

func KeystorePasswordFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "password",
		Usage:       "Keystore password",
		EnvVars:     []string{"SCW_KEYSTORE_PASSWORD"},
		Destination: &KeystorePasswordFlagVar,
		Aliases:     []string{"pwd"},
		Required:    false,
	}
}

var SenderFlagVar string

// SenderFlag is the relayer submitting the message, it pays the gas
func SenderFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "sender",
		Aliases:     []string{"s"},
		Usage:       "Relayer address paying the gas",
		EnvVars:     []string{"SCW_SENDER"},
		Value:       repo.DefaultAccountAddrs[0],
		Destination: &SenderFlagVar,
	}
}

// EnterPassword prompts on the terminal, with needConfirm it asks twice until both inputs match
func EnterPassword(needConfirm bool) (string, error) {
	for {
		password, err := readPassword("enter a password for keystore(will use default if input empty):")
		if err != nil || !needConfirm {
			return password, err
		}
		confirmed, err := readPassword("please re-enter password for keystore:")
		if err != nil {
			return "", err
		}
		if password == confirmed {
			return password, nil
		}
		fmt.Println("passwords did not match, please try again")
	}
}

func readPassword(prompt string) (string, error) {
	fmt.Println(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", errors.Wrap(err, "can not read password")
	}
	return strings.TrimRight(string(raw), "\r\n"), nil
}

// KeystorePassword reads the password from the flag or the terminal
func KeystorePassword(ctx *cli.Context, needConfirm bool) (string, error) {
	password := KeystorePasswordFlagVar
	if !ctx.IsSet(KeystorePasswordFlag().Name) {
		var err error
		password, err = EnterPassword(needConfirm)
		if err != nil {
			return "", err
		}
	}
	if password == "" {
		password = DefaultKeystorePassword
		fmt.Println("keystore password is empty, will use default")
	}
	return password, nil
}

func Pretty(d any) error {
	res, err := json.MarshalIndent(d, "", "\t")
	if err != nil {
		return err
	}
	fmt.Println(string(res))
	return nil
}

// GetRootPath is --repo, or the root LoadRepoRootFromEnv resolves
func GetRootPath(ctx *cli.Context) (string, error) {
	return repo.LoadRepoRootFromEnv(ctx.String("repo"))
}

func PrepareRepo(ctx *cli.Context) (*repo.Repo, error) {
	p, err := GetRootPath(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(p, repo.CfgFileName)); err != nil {
		return nil, errors.Errorf("%s repo not exist", repo.AppName)
	}

	r, err := repo.Load(p)
	if err != nil {
		return nil, err
	}

	fmt.Printf("repo: %s\n", r.RepoRoot)

	if err := loggers.Initialize(ctx.Context, r, false); err != nil {
		return nil, err
	}
	return r, nil
}

func PrepareLedger(r *repo.Repo) (*ledger.Ledger, error) {
	if err := storagemgr.Initialize(r.Config); err != nil {
		return nil, errors.Wrap(err, "init storage manager failed")
	}
	lg, err := ledger.NewLedger(r)
	if err != nil {
		return nil, errors.Wrap(err, "open ledger failed")
	}
	return lg, nil
}

// PrepareExecutor opens the ledger of an initialized chain and an executor on top of it
func PrepareExecutor(ctx *cli.Context) (*repo.Repo, *executor.BlockExecutor, *ledger.Ledger, error) {
	r, err := PrepareRepo(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	lg, err := PrepareLedger(r)
	if err != nil {
		return nil, nil, nil, err
	}
	if !genesis.IsInitialized(lg) {
		lg.Close()
		return nil, nil, nil, errors.New("genesis is not initialized, run `genesis init` first")
	}
	exec, err := executor.New(r, lg)
	if err != nil {
		lg.Close()
		return nil, nil, nil, err
	}
	return r, exec, lg, nil
}

// ExecuteMessages packs msgs into the next block
func ExecuteMessages(exec *executor.BlockExecutor, lg *ledger.Ledger, msgs ...*system.Message) ([]*ledger.Receipt, error) {
	meta := lg.ChainLedger.GetChainMeta()
	return exec.ExecuteBlock(&executor.Block{
		Number:       meta.Height + 1,
		Timestamp:    time.Now().Unix(),
		Coinbase:     msgs[0].From,
		Transactions: msgs,
	})
}

func KeystorePath(r *repo.Repo, addr ethcommon.Address) string {
	return filepath.Join(r.RepoRoot, KeystoreDirName, addr.Hex()+".json")
}

// LoadOwnerKey decrypts the keystore of addr
func LoadOwnerKey(ctx *cli.Context, r *repo.Repo, addr ethcommon.Address) (*crypto.Secp256k1PrivateKey, error) {
	ks, err := crypto.ReadKeystore(KeystorePath(r, addr))
	if err != nil {
		return nil, err
	}
	password, err := KeystorePassword(ctx, false)
	if err != nil {
		return nil, err
	}
	if err := ks.DecryptPrivateKey(password); err != nil {
		return nil, err
	}
	return ks.PrivateKey, nil
}

func ParseAddress(str string) (ethcommon.Address, error) {
	if !ethcommon.IsHexAddress(str) {
		return ethcommon.Address{}, errors.Errorf("invalid address %q", str)
	}
	return ethcommon.HexToAddress(str), nil
}

func WaitUserConfirm() error {
	var choice string
	if _, err := fmt.Scanln(&choice); err != nil {
		return err
	}
	if choice != "y" {
		return errors.New("interrupt by user")
	}
	return nil
}
