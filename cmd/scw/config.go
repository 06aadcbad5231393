package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/bcnmy/scw-contracts-sub000/cmd/scw/common"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

var configCMD = &cli.Command{
	Name:  "config",
	Usage: "Generate, print and validate the repo config",
	Subcommands: []*cli.Command{
		{
			Name:   "generate",
			Usage:  "Write default config.toml and genesis.toml into the repo",
			Action: generateConfig,
		},
		{
			Name:  "show",
			Usage: "Print config.toml with env overrides applied",
			Action: func(ctx *cli.Context) error {
				return printConfig(ctx, func(r *repo.Repo) any { return r.Config })
			},
		},
		{
			Name:  "show-genesis",
			Usage: "Print genesis.toml with env overrides applied",
			Action: func(ctx *cli.Context) error {
				return printConfig(ctx, func(r *repo.Repo) any { return r.GenesisConfig })
			},
		},
		{
			Name:   "check",
			Usage:  "Validate both config files",
			Action: checkConfig,
		},
	},
}

func repoExist(p string) bool {
	_, err := os.Stat(filepath.Join(p, repo.CfgFileName))
	return err == nil
}

// loadRepo never initializes a repo, use config generate for that
func loadRepo(ctx *cli.Context) (*repo.Repo, error) {
	p, err := common.GetRootPath(ctx)
	if err != nil {
		return nil, err
	}
	if !repoExist(p) {
		return nil, errors.Errorf("%s repo not exist in %s, run `config generate` first", repo.AppName, p)
	}
	return repo.Load(p)
}

func generateConfig(ctx *cli.Context) error {
	p, err := common.GetRootPath(ctx)
	if err != nil {
		return err
	}
	if repoExist(p) {
		fmt.Printf("%s repo already exists in %s\n", repo.AppName, p)
		return nil
	}
	if err := os.MkdirAll(p, 0755); err != nil {
		return err
	}
	if err := repo.Default(p).Flush(); err != nil {
		return err
	}
	fmt.Printf("config generated in %s\n", p)
	return nil
}

func printConfig(ctx *cli.Context, pick func(r *repo.Repo) any) error {
	r, err := loadRepo(ctx)
	if err != nil {
		return err
	}
	out, err := repo.MarshalConfig(pick(r))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func checkConfig(ctx *cli.Context) error {
	r, err := loadRepo(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("config invalid: %s", err), 1)
	}
	if _, err := r.GenesisConfig.ParseBalances(); err != nil {
		return cli.Exit(fmt.Sprintf("genesis config invalid: %s", err), 1)
	}
	fmt.Println("config is valid")
	return nil
}
