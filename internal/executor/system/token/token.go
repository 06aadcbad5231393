package token

import (
	_ "embed"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
)

const ContractName = "token"

//go:embed sol/Token.abi
var tokenABI string

var Layout = common.NewStorageLayout(1,
	common.Slot{Index: 0, Name: "name", Type: "string"},
	common.Slot{Index: 1, Name: "symbol", Type: "string"},
	common.Slot{Index: 2, Name: "decimals", Type: "uint8"},
	common.Slot{Index: 3, Name: "totalSupply", Type: "uint256"},
	common.Slot{Index: 4, Name: "balances", Type: "mapping(address=>uint256)"},
	common.Slot{Index: 5, Name: "allowances", Type: "mapping(address=>mapping(address=>uint256))"},
)

var BuildConfig = &common.SystemContractBuildConfig[*Token]{
	Name:   ContractName,
	AbiStr: tokenABI,
	Layout: Layout,
	Constructor: func(systemContractBase common.SystemContractBase) *Token {
		return &Token{SystemContractBase: systemContractBase}
	},
}

// ABI is the erc20 interface accounts pay token refunds through
func ABI() abi.ABI {
	return BuildConfig.ContractABI()
}

type allowanceKey struct {
	owner   ethcommon.Address
	spender ethcommon.Address
}

// Token is a plain erc20 token kept in native storage
type Token struct {
	common.SystemContractBase

	name        *common.VMSlot[string]
	symbol      *common.VMSlot[string]
	decimals    *common.VMSlot[uint8]
	totalSupply *common.VMSlot[*big.Int]
	balances    *common.VMMap[ethcommon.Address, *big.Int]
	allowances  *common.VMMap[allowanceKey, *big.Int]
}

func (t *Token) SetContext(ctx *common.VMContext) {
	t.SystemContractBase.SetContext(ctx)

	t.name = common.NewVMSlot[string](t.StateAccount, t.Layout.Key("name"))
	t.symbol = common.NewVMSlot[string](t.StateAccount, t.Layout.Key("symbol"))
	t.decimals = common.NewVMSlot[uint8](t.StateAccount, t.Layout.Key("decimals"))
	t.totalSupply = common.NewVMSlot[*big.Int](t.StateAccount, t.Layout.Key("totalSupply"))
	t.balances = common.NewVMMap[ethcommon.Address, *big.Int](t.StateAccount, t.Layout.Key("balances"), common.AddressKey)
	t.allowances = common.NewVMMap[allowanceKey, *big.Int](t.StateAccount, t.Layout.Key("allowances"), func(key allowanceKey) []byte {
		return append(common.AddressKey(key.owner), common.AddressKey(key.spender)...)
	})
}

// Init writes the token metadata and mints the whole supply to the holder
func Init(lg ledger.StateLedger, addr ethcommon.Address, config *Config) error {
	account := lg.GetOrCreateAccount(addr)
	if err := common.NewVMSlot[string](account, Layout.Key("name")).Put(config.Name); err != nil {
		return err
	}
	if err := common.NewVMSlot[string](account, Layout.Key("symbol")).Put(config.Symbol); err != nil {
		return err
	}
	if err := common.NewVMSlot[uint8](account, Layout.Key("decimals")).Put(config.Decimals); err != nil {
		return err
	}
	if err := common.NewVMSlot[*big.Int](account, Layout.Key("totalSupply")).Put(config.TotalSupply); err != nil {
		return err
	}
	return common.NewVMMap[ethcommon.Address, *big.Int](account, Layout.Key("balances"), common.AddressKey).Put(config.Holder, config.TotalSupply)
}

func (t *Token) Name() (string, error) {
	_, name, err := t.name.Get()
	return name, err
}

func (t *Token) Symbol() (string, error) {
	_, symbol, err := t.symbol.Get()
	return symbol, err
}

func (t *Token) Decimals() (uint8, error) {
	_, decimals, err := t.decimals.Get()
	return decimals, err
}

func (t *Token) TotalSupply() (*big.Int, error) {
	exist, totalSupply, err := t.totalSupply.Get()
	if err != nil || !exist {
		return big.NewInt(0), err
	}
	return totalSupply, nil
}

func (t *Token) BalanceOf(account ethcommon.Address) (*big.Int, error) {
	exist, balance, err := t.balances.Get(account)
	if err != nil || !exist {
		return big.NewInt(0), err
	}
	return balance, nil
}

func (t *Token) Allowance(owner, spender ethcommon.Address) (*big.Int, error) {
	exist, allowance, err := t.allowances.Get(allowanceKey{owner: owner, spender: spender})
	if err != nil || !exist {
		return big.NewInt(0), err
	}
	return allowance, nil
}

func (t *Token) Approve(spender ethcommon.Address, value *big.Int) (bool, error) {
	if err := t.approve(t.Ctx.From, spender, value); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Token) Transfer(to ethcommon.Address, value *big.Int) (bool, error) {
	if err := t.transfer(t.Ctx.From, to, value); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Token) TransferFrom(from, to ethcommon.Address, value *big.Int) (bool, error) {
	allowance, err := t.Allowance(from, t.Ctx.From)
	if err != nil {
		return false, err
	}
	if allowance.Cmp(value) < 0 {
		return false, ErrNotEnoughAllowance
	}
	if err := t.transfer(from, to, value); err != nil {
		return false, err
	}
	if err := t.approve(from, t.Ctx.From, new(big.Int).Sub(allowance, value)); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Token) approve(owner, spender ethcommon.Address, value *big.Int) error {
	if value.Sign() < 0 {
		return ErrValue
	}
	if owner == (ethcommon.Address{}) || spender == (ethcommon.Address{}) {
		return ErrEmptyAccount
	}
	if err := t.allowances.Put(allowanceKey{owner: owner, spender: spender}, value); err != nil {
		return err
	}
	return t.EmitEvent(&EventApproval{Owner: owner, Spender: spender, Value: value})
}

func (t *Token) transfer(from, to ethcommon.Address, value *big.Int) error {
	if value.Sign() < 0 {
		return ErrValue
	}
	if from == (ethcommon.Address{}) || to == (ethcommon.Address{}) {
		return ErrEmptyAccount
	}
	fromBalance, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(value) < 0 {
		return ErrInsufficientBalance
	}
	if err := t.balances.Put(from, new(big.Int).Sub(fromBalance, value)); err != nil {
		return err
	}
	toBalance, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Put(to, new(big.Int).Add(toBalance, value)); err != nil {
		return err
	}
	return t.EmitEvent(&EventTransfer{From: from, To: to, Value: value})
}
