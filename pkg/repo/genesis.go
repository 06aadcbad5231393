package repo

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type GenesisConfig struct {
	ChainID   uint64            `mapstructure:"chainid" toml:"chainid"`
	Timestamp int64             `mapstructure:"timestamp" toml:"timestamp"`
	Accounts  []*GenesisAccount `mapstructure:"accounts" toml:"accounts"`
	Token     Token             `mapstructure:"token" toml:"token"`
	Paymaster Paymaster         `mapstructure:"paymaster" toml:"paymaster"`
}

type GenesisAccount struct {
	Address string `mapstructure:"address" toml:"address"`
	Balance string `mapstructure:"balance" toml:"balance"`
}

// Token is the fee token deployed at genesis, the whole supply is minted to Holder
type Token struct {
	Name        string `mapstructure:"name" toml:"name"`
	Symbol      string `mapstructure:"symbol" toml:"symbol"`
	Decimals    uint8  `mapstructure:"decimals" toml:"decimals"`
	TotalSupply string `mapstructure:"total_supply" toml:"total_supply"`
	Holder      string `mapstructure:"holder" toml:"holder"`
}

// Paymaster is the verifying paymaster deployed at genesis, Signer signs the operations it sponsors
type Paymaster struct {
	Owner  string `mapstructure:"owner" toml:"owner"`
	Signer string `mapstructure:"signer" toml:"signer"`
}

func DefaultGenesisConfig() *GenesisConfig {
	return &GenesisConfig{
		ChainID:   1356,
		Timestamp: 1704067200,
		Accounts: lo.Map(DefaultAccountAddrs, func(addr string, _ int) *GenesisAccount {
			return &GenesisAccount{
				Address: addr,
				Balance: DefaultAccountBalance,
			}
		}),
		Token: Token{
			Name:        "Fee Token",
			Symbol:      "FEE",
			Decimals:    18,
			TotalSupply: "1000000000000000000000000000",
			Holder:      DefaultAccountAddrs[0],
		},
		Paymaster: Paymaster{
			Owner:  DefaultAccountAddrs[0],
			Signer: DefaultAccountAddrs[0],
		},
	}
}

func (g *GenesisConfig) ParseBalances() (map[string]*big.Int, error) {
	balances := make(map[string]*big.Int, len(g.Accounts))
	for _, account := range g.Accounts {
		balance, ok := new(big.Int).SetString(account.Balance, 10)
		if !ok {
			return nil, errors.Errorf("invalid balance %q of genesis account %s", account.Balance, account.Address)
		}
		balances[account.Address] = balance
	}
	return balances, nil
}
