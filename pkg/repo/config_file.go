package repo

import (
	"bytes"
	"os"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// configFile binds a toml file of the repo to the env prefix overriding its keys
type configFile struct {
	name      string
	envPrefix string
}

var (
	nodeConfigFile    = configFile{name: CfgFileName, envPrefix: envPrefix}
	genesisConfigFile = configFile{name: genesisCfgFileName, envPrefix: genesisEnvPrefix}
)

func LoadConfig(repoRoot string) (*Config, error) {
	cfg := DefaultConfig()
	if err := nodeConfigFile.loadOrInit(repoRoot, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}

func LoadGenesisConfig(repoRoot string) (*GenesisConfig, error) {
	genesis := DefaultGenesisConfig()
	if err := genesisConfigFile.loadOrInit(repoRoot, genesis); err != nil {
		return nil, errors.Wrap(err, "failed to load genesis config")
	}
	return genesis, nil
}

// MarshalConfig renders config the way it is stored in the repo
func MarshalConfig(config any) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	enc.SetArraysMultiline(true)
	if err := enc.Encode(config); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// loadOrInit fills dst from the file, or writes dst (defaults plus env overrides) when the file is absent
func (f configFile) loadOrInit(repoRoot string, dst any) error {
	if fileExist(path.Join(repoRoot, f.name)) {
		return f.load(repoRoot, dst)
	}
	if err := os.MkdirAll(repoRoot, 0755); err != nil {
		return errors.Wrapf(err, "create repo %s", repoRoot)
	}
	return f.store(repoRoot, dst)
}

// store writes dst, reloads it so env overrides land in dst, then writes it again
func (f configFile) store(repoRoot string, dst any) error {
	if err := f.write(repoRoot, dst); err != nil {
		return err
	}
	if err := f.load(repoRoot, dst); err != nil {
		return errors.Wrap(err, "apply env overrides")
	}
	return f.write(repoRoot, dst)
}

func (f configFile) write(repoRoot string, src any) error {
	raw, err := MarshalConfig(src)
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(repoRoot, f.name), []byte(raw), 0644)
}

func (f configFile) load(repoRoot string, dst any) error {
	p := path.Join(repoRoot, f.name)
	raw, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	// viper coerces types silently, decode into a scratch value of the same type first
	scratch := reflect.New(reflect.TypeOf(dst).Elem()).Interface()
	if err := toml.NewDecoder(bytes.NewReader(raw)).Decode(scratch); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			return errors.Errorf("invalid config %s:\n%s", p, decodeErr.String())
		}
		return errors.Wrapf(err, "invalid config %s", p)
	}

	vp := viper.New()
	vp.SetConfigFile(p)
	vp.SetConfigType("toml")
	vp.SetEnvPrefix(f.envPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()
	if err := vp.ReadInConfig(); err != nil {
		return err
	}
	return vp.Unmarshal(dst, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationHook,
		semicolonListHook,
	)))
}

func durationHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(Duration(0)) {
		return data, nil
	}
	d, err := time.ParseDuration(data.(string))
	if err != nil {
		return nil, err
	}
	return Duration(d), nil
}

// semicolonListHook lets env vars carry lists as "a;b;c"
func semicolonListHook(from reflect.Kind, to reflect.Kind, data any) (any, error) {
	if from != reflect.String || to != reflect.Slice {
		return data, nil
	}
	raw := strings.Trim(data.(string), ";")
	if raw == "" {
		return []string{}, nil
	}
	return strings.Split(raw, ";"), nil
}
