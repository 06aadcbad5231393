package token

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

type Config struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
	Holder      ethcommon.Address
}

var (
	ErrTotalSupply         = errors.New("total supply below zero")
	ErrValue               = errors.New("input value below zero")
	ErrInsufficientBalance = errors.New("value exceeds balance")
	ErrEmptyAccount        = errors.New("account is empty")
	ErrNotEnoughAllowance  = errors.New("not enough allowance")
)

const (
	nameMethod         = "name"
	symbolMethod       = "symbol"
	decimalsMethod     = "decimals"
	totalSupplyMethod  = "totalSupply"
	balanceOfMethod    = "balanceOf"
	allowanceMethod    = "allowance"
	approveMethod      = "approve"
	transferMethod     = "transfer"
	transferFromMethod = "transferFrom"
)

func GenerateConfig(genesis *repo.GenesisConfig) (*Config, error) {
	totalSupply, ok := new(big.Int).SetString(genesis.Token.TotalSupply, 10)
	if !ok {
		return nil, fmt.Errorf("invalid token total supply %q", genesis.Token.TotalSupply)
	}
	if totalSupply.Sign() < 0 {
		return nil, ErrTotalSupply
	}
	if !ethcommon.IsHexAddress(genesis.Token.Holder) {
		return nil, fmt.Errorf("invalid token holder %q", genesis.Token.Holder)
	}
	return &Config{
		Name:        genesis.Token.Name,
		Symbol:      genesis.Token.Symbol,
		Decimals:    genesis.Token.Decimals,
		TotalSupply: totalSupply,
		Holder:      ethcommon.HexToAddress(genesis.Token.Holder),
	}, nil
}

type EventTransfer struct {
	From  ethcommon.Address
	To    ethcommon.Address
	Value *big.Int
}

func (e *EventTransfer) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["Transfer"])
}

type EventApproval struct {
	Owner   ethcommon.Address
	Spender ethcommon.Address
	Value   *big.Int
}

func (e *EventApproval) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["Approval"])
}
