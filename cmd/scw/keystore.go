package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/bcnmy/scw-contracts-sub000/cmd/scw/common"
	"github.com/bcnmy/scw-contracts-sub000/pkg/crypto"
)

var ownerPrivateKeyFlagVar string

var keystoreDescriptionFlagVar string

var keystoreAddressFlagVar string

var keystoreOldPasswordFlagVar string
var keystoreNewPasswordFlagVar string

func keystoreAddressFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "address",
		Usage:       "Owner address of the keystore",
		Destination: &keystoreAddressFlagVar,
		Required:    true,
	}
}

var keystoreCMD = &cli.Command{
	Name:  "keystore",
	Usage: "The owner keystore manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "generate",
			Usage:  "Generate an owner keystore",
			Action: generateKeystore,
			Flags: []cli.Flag{
				common.KeystorePasswordFlag(),
				&cli.StringFlag{
					Name:        "private-key",
					Usage:       "Owner private key(hex string), if not specified, generate a new one",
					Destination: &ownerPrivateKeyFlagVar,
					EnvVars:     []string{"SCW_OWNER_PRIVATE_KEY"},
				},
				&cli.StringFlag{
					Name:        "description",
					Usage:       "Keystore description",
					Destination: &keystoreDescriptionFlagVar,
				},
			},
		},
		{
			Name:   "list",
			Usage:  "List owner keystores",
			Action: listKeystore,
		},
		{
			Name:   "private-key",
			Usage:  "Show owner private key",
			Action: showPrivateKey,
			Flags: []cli.Flag{
				keystoreAddressFlag(),
				common.KeystorePasswordFlag(),
			},
		},
		{
			Name:   "update-password",
			Usage:  "Update keystore password",
			Action: updateKeystorePassword,
			Flags: []cli.Flag{
				keystoreAddressFlag(),
				&cli.StringFlag{
					Name:        "old-password",
					Usage:       "Old keystore password",
					EnvVars:     []string{"SCW_KEYSTORE_OLD_PASSWORD"},
					Destination: &keystoreOldPasswordFlagVar,
					Required:    true,
				},
				&cli.StringFlag{
					Name:        "new-password",
					Usage:       "New keystore password",
					EnvVars:     []string{"SCW_KEYSTORE_NEW_PASSWORD"},
					Destination: &keystoreNewPasswordFlagVar,
					Required:    true,
				},
			},
		},
	},
}

func generateKeystore(ctx *cli.Context) error {
	r, err := loadRepo(ctx)
	if err != nil {
		return err
	}

	var key *crypto.Secp256k1PrivateKey
	if ownerPrivateKeyFlagVar != "" {
		key, err = crypto.ParseSecp256k1PrivateKey(ownerPrivateKeyFlagVar)
	} else {
		key, err = crypto.GenerateSecp256k1PrivateKey()
	}
	if err != nil {
		return err
	}

	path := common.KeystorePath(r, key.Address())
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("keystore of %s already exists", key.Address())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	password, err := common.KeystorePassword(ctx, true)
	if err != nil {
		return err
	}
	if err := crypto.NewKeystore(path, key, password, keystoreDescriptionFlagVar).Write(); err != nil {
		return err
	}
	fmt.Printf("keystore generated, owner: %s\n", key.Address())
	return nil
}

func listKeystore(ctx *cli.Context) error {
	r, err := loadRepo(ctx)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(filepath.Join(r.RepoRoot, common.KeystoreDirName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ks, err := crypto.ReadKeystore(filepath.Join(r.RepoRoot, common.KeystoreDirName, entry.Name()))
		if err != nil {
			fmt.Printf("%s: %s\n", entry.Name(), err)
			continue
		}
		fmt.Printf("%s %s\n", ks.Address, ks.Description)
	}
	return nil
}

func showPrivateKey(ctx *cli.Context) error {
	r, err := loadRepo(ctx)
	if err != nil {
		return err
	}
	addr, err := common.ParseAddress(keystoreAddressFlagVar)
	if err != nil {
		return err
	}
	key, err := common.LoadOwnerKey(ctx, r, addr)
	if err != nil {
		return err
	}
	fmt.Println(key.String())
	return nil
}

func updateKeystorePassword(ctx *cli.Context) error {
	r, err := loadRepo(ctx)
	if err != nil {
		return err
	}
	addr, err := common.ParseAddress(keystoreAddressFlagVar)
	if err != nil {
		return err
	}
	ks, err := crypto.ReadKeystore(common.KeystorePath(r, addr))
	if err != nil {
		return err
	}
	if err := ks.UpdatePassword(keystoreOldPasswordFlagVar, keystoreNewPasswordFlagVar); err != nil {
		return err
	}
	if err := ks.Write(); err != nil {
		return err
	}
	fmt.Println("keystore password updated")
	return nil
}
