package saccount

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/base64"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-webauthn/webauthn/protocol/webauthncbor"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

var (
	ErrInvalidPasskey               = errors.New("invalid passkey")
	ErrPasskeyVerificationFailed    = errors.New("passkey verification failed")
	ErrPasskeyChallengeCheckFailed  = errors.New("passkey challenge check failed")
	ErrInvalidPasskeySignatureShape = errors.New("invalid passkey signature")
)

var passkeySignatureArgs = abi.Arguments{
	{Name: "authenticatorData", Type: common.BytesType},
	{Name: "clientDataJSON", Type: common.BytesType},
	{Name: "r", Type: common.BigIntType},
	{Name: "s", Type: common.BigIntType},
}

var PasskeyModuleBuildConfig = &common.SystemContractBuildConfig[*PasskeyModule]{
	Name:   PasskeyModuleName,
	AbiStr: passkeyModuleABI,
	Layout: common.NewStorageLayout(1,
		common.Slot{Index: 0, Name: "passkeys", Type: "mapping(address=>bytes)"},
	),
	Constructor: func(systemContractBase common.SystemContractBase) *PasskeyModule {
		return &PasskeyModule{SystemContractBase: systemContractBase}
	},
}

type ClientData struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Origin    string `json:"origin"`
}

// PasskeySignature is the webauthn assertion a passkey module signature carries
type PasskeySignature struct {
	AuthenticatorData []byte
	ClientDataJSON    []byte
	R                 *big.Int
	S                 *big.Int
}

func EncodePasskeySignature(sig *PasskeySignature) ([]byte, error) {
	return passkeySignatureArgs.Pack(sig.AuthenticatorData, sig.ClientDataJSON, sig.R, sig.S)
}

func DecodePasskeySignature(data []byte) (*PasskeySignature, error) {
	values, err := passkeySignatureArgs.Unpack(data)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPasskeySignatureShape, err.Error())
	}
	sig := &PasskeySignature{}
	if err := passkeySignatureArgs.Copy(sig, values); err != nil {
		return nil, errors.Wrap(ErrInvalidPasskeySignatureShape, err.Error())
	}
	return sig, nil
}

// ParsePasskey decodes a COSE encoded ES256 public key
func ParsePasskey(publicKey []byte) (*ecdsa.PublicKey, error) {
	var pk webauthncose.EC2PublicKeyData
	if err := webauthncbor.Unmarshal(publicKey, &pk); err != nil {
		return nil, errors.Wrap(ErrInvalidPasskey, err.Error())
	}
	if pk.KeyType != int64(webauthncose.EllipticKey) || pk.Algorithm != int64(webauthncose.AlgES256) || pk.Curve != int64(webauthncose.P256) {
		return nil, errors.Wrapf(ErrInvalidPasskey, "key type %d, algorithm %d, curve %d", pk.KeyType, pk.Algorithm, pk.Curve)
	}
	key := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(pk.XCoord),
		Y:     new(big.Int).SetBytes(pk.YCoord),
	}
	if !key.Curve.IsOnCurve(key.X, key.Y) {
		return nil, errors.Wrap(ErrInvalidPasskey, "point not on curve")
	}
	return key, nil
}

// VerifyPasskey checks a webauthn assertion whose challenge is hash
func VerifyPasskey(key *ecdsa.PublicKey, hash [32]byte, sig *PasskeySignature) error {
	clientData := &ClientData{}
	if err := json.Unmarshal(sig.ClientDataJSON, clientData); err != nil {
		return errors.Wrap(ErrPasskeyChallengeCheckFailed, err.Error())
	}
	challenge, err := base64.RawURLEncoding.DecodeString(clientData.Challenge)
	if err != nil {
		return errors.Wrap(ErrPasskeyChallengeCheckFailed, err.Error())
	}
	if !bytes.Equal(challenge, hash[:]) {
		return ErrPasskeyChallengeCheckFailed
	}

	clientDataHash := sha256.Sum256(sig.ClientDataJSON)
	message := sha256.Sum256(append(ethcommon.CopyBytes(sig.AuthenticatorData), clientDataHash[:]...))
	if !ecdsa.Verify(key, message[:], sig.R, sig.S) {
		return ErrPasskeyVerificationFailed
	}
	return nil
}

var _ interfaces.IModule = (*PasskeyModule)(nil)

// PasskeyModule validates webauthn P-256 assertions against the passkey an account registered
type PasskeyModule struct {
	common.SystemContractBase

	passkeys *common.VMMap[ethcommon.Address, []byte]
}

func (m *PasskeyModule) SetContext(ctx *common.VMContext) {
	m.SystemContractBase.SetContext(ctx)

	m.passkeys = common.NewVMMap[ethcommon.Address, []byte](m.StateAccount, m.Layout.Key("passkeys"), common.AddressKey)
}

func (m *PasskeyModule) SetPasskey(publicKey []byte) error {
	if _, err := ParsePasskey(publicKey); err != nil {
		return packer.NewRevertStringError(err.Error())
	}
	account := m.Ctx.From
	if err := m.passkeys.Put(account, publicKey); err != nil {
		return err
	}
	m.Logger.Infof("account %s set passkey %x", account, publicKey)
	return m.EmitEvent(&EventPasskeySet{Account: account, KeyHash: crypto.Keccak256Hash(publicKey)})
}

func (m *PasskeyModule) RemovePasskey() error {
	account := m.Ctx.From
	if !m.passkeys.Has(account) {
		return packer.NewRevertStringError("PKM: no passkey")
	}
	m.passkeys.Delete(account)
	return m.EmitEvent(&EventPasskeyRemoved{Account: account})
}

func (m *PasskeyModule) GetPasskey(account ethcommon.Address) ([]byte, error) {
	_, publicKey, err := m.passkeys.Get(account)
	return publicKey, err
}

func (m *PasskeyModule) ValidateUserOp(userOp interfaces.UserOperation, userOpHash [32]byte) (*big.Int, error) {
	if err := m.verify(userOpHash, userOp.Signature); err != nil {
		m.Logger.Debugf("passkey of account %s rejected user operation: %v", m.Ctx.From, err)
		return big.NewInt(interfaces.SigValidationFailed), nil
	}
	return big.NewInt(interfaces.SigValidationSucceeded), nil
}

func (m *PasskeyModule) IsValidSignature(dataHash [32]byte, moduleSignature []byte) ([4]byte, error) {
	if err := m.verify(dataHash, moduleSignature); err != nil {
		return interfaces.InvalidSignatureValue, nil
	}
	return interfaces.EIP1271MagicValue, nil
}

func (m *PasskeyModule) verify(hash [32]byte, signature []byte) error {
	exist, publicKey, err := m.passkeys.Get(m.Ctx.From)
	if err != nil {
		return err
	}
	if !exist {
		return errors.Wrapf(ErrInvalidPasskey, "account %s has no passkey", m.Ctx.From)
	}
	key, err := ParsePasskey(publicKey)
	if err != nil {
		return err
	}
	sig, err := DecodePasskeySignature(signature)
	if err != nil {
		return err
	}
	return VerifyPasskey(key, hash, sig)
}
