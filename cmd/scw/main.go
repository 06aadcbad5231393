package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

const envFileVar = "SCW_ENV_FILE"

func main() {
	if err := loadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(*cli.Context) {
		printVersion(os.Stdout)
	}
	return &cli.App{
		Name:    repo.AppName,
		Usage:   "Smart contract wallet engine: accounts, modules, session keys and passkeys on a native vm",
		Version: repo.BuildVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "repo",
				Usage:   "repo root, falls back to $SCW_PATH then ~/.scw",
				EnvVars: []string{"SCW_PATH"},
			},
		},
		Commands: []*cli.Command{
			configCMD,
			genesisCMD,
			keystoreCMD,
			accountCMD,
			ledgerCMD,
			versionCMD,
		},
	}
}

// loadEnvFile exports $SCW_ENV_FILE (default .env) into the process env when it exists
func loadEnvFile() error {
	envFile, ok := os.LookupEnv(envFileVar)
	if !ok {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err != nil {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}
	return nil
}
