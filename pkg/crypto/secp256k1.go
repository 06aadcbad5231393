package crypto

import (
	"crypto/ecdsa"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var _ PrivateKey = (*Secp256k1PrivateKey)(nil)

var _ KeystoreKey = (*Secp256k1PublicKey)(nil)

// Secp256k1PrivateKey is the key owning a smart account
type Secp256k1PrivateKey struct {
	PrivateKey *ecdsa.PrivateKey
}

func GenerateSecp256k1PrivateKey() (*Secp256k1PrivateKey, error) {
	privateKey, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "secp256k1: failed to generate private key")
	}
	return &Secp256k1PrivateKey{PrivateKey: privateKey}, nil
}

func ParseSecp256k1PrivateKey(str string) (*Secp256k1PrivateKey, error) {
	raw, err := hexutil.Decode(ensure0x(str))
	if err != nil {
		return nil, errors.Wrap(err, "secp256k1: invalid private key hex")
	}
	key := &Secp256k1PrivateKey{}
	if err := key.Unmarshal(raw); err != nil {
		return nil, err
	}
	return key, nil
}

// Sign signs a 32 bytes digest, the recovery byte is 27 or 28
func (k *Secp256k1PrivateKey) Sign(hash []byte) ([]byte, error) {
	sig, err := ethcrypto.Sign(hash, k.PrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "secp256k1: failed to sign")
	}
	sig[ethcrypto.RecoveryIDOffset] += 27
	return sig, nil
}

func (k *Secp256k1PrivateKey) PublicKey() *Secp256k1PublicKey {
	return &Secp256k1PublicKey{PublicKey: &k.PrivateKey.PublicKey}
}

func (k *Secp256k1PrivateKey) Address() ethcommon.Address {
	return ethcrypto.PubkeyToAddress(k.PrivateKey.PublicKey)
}

func (k *Secp256k1PrivateKey) Type() string {
	return KeyTypeSecp256k1
}

func (k *Secp256k1PrivateKey) String() string {
	return hexutil.Encode(ethcrypto.FromECDSA(k.PrivateKey))
}

func (k *Secp256k1PrivateKey) Marshal() ([]byte, error) {
	return ethcrypto.FromECDSA(k.PrivateKey), nil
}

func (k *Secp256k1PrivateKey) Unmarshal(raw []byte) error {
	if len(raw) != 32 {
		return errors.Errorf("secp256k1: bad private key length %d, want 32", len(raw))
	}
	if IsZeroBytes(raw) {
		return errors.New("secp256k1: private key is zero")
	}
	privateKey, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return errors.Wrap(err, "secp256k1: invalid private key")
	}
	k.PrivateKey = privateKey
	return nil
}

type Secp256k1PublicKey struct {
	PublicKey *ecdsa.PublicKey
}

// Verify checks a 65 bytes signature produced by Sign
func (k *Secp256k1PublicKey) Verify(hash []byte, sig []byte) bool {
	if len(sig) != ethcrypto.SignatureLength {
		return false
	}
	return ethcrypto.VerifySignature(ethcrypto.FromECDSAPub(k.PublicKey), hash, sig[:ethcrypto.RecoveryIDOffset])
}

func (k *Secp256k1PublicKey) Address() ethcommon.Address {
	return ethcrypto.PubkeyToAddress(*k.PublicKey)
}

func (k *Secp256k1PublicKey) Type() string {
	return KeyTypeSecp256k1
}

func (k *Secp256k1PublicKey) String() string {
	return hexutil.Encode(ethcrypto.CompressPubkey(k.PublicKey))
}

func (k *Secp256k1PublicKey) Marshal() ([]byte, error) {
	return ethcrypto.CompressPubkey(k.PublicKey), nil
}

func (k *Secp256k1PublicKey) Unmarshal(raw []byte) error {
	publicKey, err := ethcrypto.DecompressPubkey(raw)
	if err != nil {
		return errors.Wrap(err, "secp256k1: invalid public key")
	}
	k.PublicKey = publicKey
	return nil
}

func ensure0x(str string) string {
	if len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X') {
		return str
	}
	return "0x" + str
}
