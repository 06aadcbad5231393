package repo

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// Repo is the on-disk home of a node: node config, genesis config and storage
type Repo struct {
	RepoRoot      string
	Config        *Config
	GenesisConfig *GenesisConfig
}

func Default(repoRoot string) *Repo {
	return &Repo{
		RepoRoot:      repoRoot,
		Config:        DefaultConfig(),
		GenesisConfig: DefaultGenesisConfig(),
	}
}

// Load reads both config files of the repo, missing ones are written with defaults first
func Load(repoRoot string) (*Repo, error) {
	root, err := LoadRepoRootFromEnv(repoRoot)
	if err != nil {
		return nil, err
	}
	rep := &Repo{RepoRoot: root}
	if rep.Config, err = LoadConfig(root); err != nil {
		return nil, err
	}
	if rep.GenesisConfig, err = LoadGenesisConfig(root); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Repo) Flush() error {
	if err := nodeConfigFile.store(r.RepoRoot, r.Config); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	if err := genesisConfigFile.store(r.RepoRoot, r.GenesisConfig); err != nil {
		return errors.Wrap(err, "failed to write genesis config")
	}
	return nil
}

// GetStoragePath joins the storage dir of repoRoot with the given components
func GetStoragePath(repoRoot string, subPath ...string) string {
	return filepath.Join(append([]string{repoRoot, "storage"}, subPath...)...)
}

// LoadRepoRootFromEnv resolves an empty repoRoot from SCW_PATH, then from ~/.scw
func LoadRepoRootFromEnv(repoRoot string) (string, error) {
	if repoRoot != "" {
		return repoRoot, nil
	}
	if fromEnv := os.Getenv(rootPathEnvVar); fromEnv != "" {
		return fromEnv, nil
	}
	return homedir.Expand(defaultRepoRoot)
}

func fileExist(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
