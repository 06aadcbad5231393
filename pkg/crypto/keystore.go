package crypto

import (
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	KeyTypeSecp256k1 = "secp256k1"

	keystoreVersion = 3
)

// scrypt cost of newly written keystores
var (
	ScryptN = keystore.StandardScryptN
	ScryptP = keystore.StandardScryptP
)

type KeystoreKey interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

type PrivateKey interface {
	KeystoreKey
	Sign([]byte) ([]byte, error)
}

type KeystoreInfo struct {
	KeyType     string              `json:"key_type"`
	Address     string              `json:"address"`
	PublicKey   string              `json:"public_key"`
	Crypto      keystore.CryptoJSON `json:"crypto"`
	Version     uint                `json:"version"`
	Description string              `json:"description"`
	Extra       map[string]string   `json:"extra"`
}

// Keystore holds an encrypted owner key, PrivateKey is nil until DecryptPrivateKey succeeds
type Keystore struct {
	crypto keystore.CryptoJSON

	Path        string
	Description string
	Address     ethcommon.Address
	PrivateKey  *Secp256k1PrivateKey
	PublicKey   *Secp256k1PublicKey
	Password    string
	Extra       map[string]string
}

func NewKeystore(path string, privateKey *Secp256k1PrivateKey, password string, description string) *Keystore {
	return &Keystore{
		Path:        path,
		Description: description,
		Address:     privateKey.Address(),
		PrivateKey:  privateKey,
		PublicKey:   privateKey.PublicKey(),
		Password:    password,
		Extra:       map[string]string{},
	}
}

func ReadKeystoreInfo(path string) (*KeystoreInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keystore %s", path)
	}
	var info KeystoreInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal keystore %s", path)
	}
	return &info, nil
}

func WriteKeystoreInfo(path string, info *KeystoreInfo) error {
	raw, err := json.MarshalIndent(info, "", "\t")
	if err != nil {
		return errors.Wrapf(err, "failed to marshal keystore %s", path)
	}

	if err := os.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrapf(err, "failed to write keystore %s", path)
	}
	return nil
}

func ReadKeystore(path string) (*Keystore, error) {
	info, err := ReadKeystoreInfo(path)
	if err != nil {
		return nil, err
	}
	if info.KeyType != KeyTypeSecp256k1 {
		return nil, errors.Errorf("keystore %s has unsupported key type %q", path, info.KeyType)
	}
	if info.Version != keystoreVersion {
		return nil, errors.Errorf("keystore %s has invalid version %d, expected %d", path, info.Version, keystoreVersion)
	}

	publicKeyBytes, err := hexutil.Decode(info.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode public key in keystore %s", path)
	}
	publicKey := &Secp256k1PublicKey{}
	if err := publicKey.Unmarshal(publicKeyBytes); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal public key in keystore %s", path)
	}
	if publicKey.Address().Hex() != ethcommon.HexToAddress(info.Address).Hex() {
		return nil, errors.Errorf("keystore %s address %s does not match its public key", path, info.Address)
	}

	return &Keystore{
		crypto:      info.Crypto,
		Path:        path,
		Description: info.Description,
		Address:     publicKey.Address(),
		PublicKey:   publicKey,
		Extra:       info.Extra,
	}, nil
}

func (ks *Keystore) DecryptPrivateKey(password string) error {
	privateKeyBytes, err := keystore.DecryptDataV3(ks.crypto, password)
	if err != nil {
		return errors.Wrapf(err, "failed to decrypt private key in keystore %s", ks.Path)
	}
	privateKey := &Secp256k1PrivateKey{}
	if err := privateKey.Unmarshal(privateKeyBytes); err != nil {
		return errors.Wrapf(err, "failed to unmarshal private key in keystore %s", ks.Path)
	}
	if privateKey.Address() != ks.Address {
		return errors.Errorf("keystore %s private key does not match address %s", ks.Path, ks.Address)
	}

	ks.PrivateKey = privateKey
	ks.Password = password
	return nil
}

// UpdatePassword re-encrypts the key, the keystore file is rewritten by Write
func (ks *Keystore) UpdatePassword(oldPassword string, newPassword string) error {
	if ks.PrivateKey == nil || ks.Password != oldPassword {
		if err := ks.DecryptPrivateKey(oldPassword); err != nil {
			return err
		}
	}
	ks.Password = newPassword
	return nil
}

func (ks *Keystore) Write() error {
	if ks.PrivateKey == nil {
		return errors.Errorf("keystore %s is not decrypted", ks.Path)
	}
	privateKeyBytes, err := ks.PrivateKey.Marshal()
	if err != nil {
		return errors.Wrapf(err, "failed to marshal private key in keystore %s", ks.Path)
	}
	publicKeyBytes, err := ks.PublicKey.Marshal()
	if err != nil {
		return errors.Wrapf(err, "failed to marshal public key in keystore %s", ks.Path)
	}

	encryptedPrivateKey, err := keystore.EncryptDataV3(privateKeyBytes, []byte(ks.Password), ScryptN, ScryptP)
	if err != nil {
		return errors.Wrapf(err, "failed to encrypt private key in keystore %s", ks.Path)
	}
	ks.crypto = encryptedPrivateKey
	return WriteKeystoreInfo(ks.Path, &KeystoreInfo{
		KeyType:     KeyTypeSecp256k1,
		Address:     ks.Address.Hex(),
		PublicKey:   hexutil.Encode(publicKeyBytes),
		Crypto:      encryptedPrivateKey,
		Version:     keystoreVersion,
		Description: ks.Description,
		Extra:       ks.Extra,
	})
}

func IsZeroBytes(bytes []byte) bool {
	b := byte(0)
	for _, s := range bytes {
		b |= s
	}
	return b == 0
}
