package saccount

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

var SessionKeyModuleBuildConfig = &common.SystemContractBuildConfig[*SessionKeyModule]{
	Name:   SessionKeyModuleName,
	AbiStr: sessionKeyModuleABI,
	Layout: common.NewStorageLayout(1,
		common.Slot{Index: 0, Name: "sessions", Type: "mapping(address=>SessionData)"},
	),
	Constructor: func(systemContractBase common.SystemContractBase) *SessionKeyModule {
		return &SessionKeyModule{SystemContractBase: systemContractBase}
	},
}

// SessionData is the session key of one account, validUntil 0 never expires
type SessionData struct {
	SessionKey ethcommon.Address
	ValidAfter *big.Int
	ValidUntil *big.Int
}

var _ interfaces.IModule = (*SessionKeyModule)(nil)

// SessionKeyModule lets an account delegate signing to a temporary key valid in a time window.
// The caller of every method is the account.
type SessionKeyModule struct {
	common.SystemContractBase

	sessions *common.VMMap[ethcommon.Address, SessionData]
}

func (m *SessionKeyModule) SetContext(ctx *common.VMContext) {
	m.SystemContractBase.SetContext(ctx)

	m.sessions = common.NewVMMap[ethcommon.Address, SessionData](m.StateAccount, m.Layout.Key("sessions"), common.AddressKey)
}

func (m *SessionKeyModule) SetSessionKey(sessionKey ethcommon.Address, validAfter, validUntil *big.Int) error {
	if sessionKey == (ethcommon.Address{}) {
		return packer.NewRevertStringError("SKM: invalid session key")
	}
	if validUntil.Sign() != 0 && validUntil.Cmp(validAfter) <= 0 {
		return packer.NewRevertStringError("SKM: invalid time range")
	}
	account := m.Ctx.From
	if err := m.sessions.Put(account, SessionData{SessionKey: sessionKey, ValidAfter: validAfter, ValidUntil: validUntil}); err != nil {
		return err
	}
	m.Logger.Infof("account %s set session key %s, valid [%s, %s]", account, sessionKey, validAfter, validUntil)
	return m.EmitEvent(&EventSessionKeySet{Account: account, SessionKey: sessionKey, ValidAfter: validAfter, ValidUntil: validUntil})
}

func (m *SessionKeyModule) RevokeSessionKey() error {
	account := m.Ctx.From
	exist, session, err := m.sessions.Get(account)
	if err != nil {
		return err
	}
	if !exist {
		return packer.NewRevertStringError("SKM: no session key")
	}
	m.sessions.Delete(account)
	return m.EmitEvent(&EventSessionKeyRevoked{Account: account, SessionKey: session.SessionKey})
}

func (m *SessionKeyModule) GetSessionKey(account ethcommon.Address) (SessionData, error) {
	exist, session, err := m.sessions.Get(account)
	if err != nil {
		return SessionData{}, err
	}
	if !exist {
		return SessionData{ValidAfter: new(big.Int), ValidUntil: new(big.Int)}, nil
	}
	return session, nil
}

// ValidateUserOp returns the session window as validation data, the entry point enforces it
func (m *SessionKeyModule) ValidateUserOp(userOp interfaces.UserOperation, userOpHash [32]byte) (*big.Int, error) {
	session, ok := m.signedBySession(userOpHash, userOp.Signature)
	if !ok {
		return big.NewInt(interfaces.SigValidationFailed), nil
	}
	return interfaces.PackValidationData(&interfaces.Validation{
		SigValidation: interfaces.SigValidationSucceeded,
		ValidAfter:    session.ValidAfter.Uint64(),
		ValidUntil:    session.ValidUntil.Uint64(),
	}), nil
}

// IsValidSignature checks the window against the block time, there is no entry point to do it
func (m *SessionKeyModule) IsValidSignature(dataHash [32]byte, moduleSignature []byte) ([4]byte, error) {
	session, ok := m.signedBySession(dataHash, moduleSignature)
	if !ok {
		return interfaces.InvalidSignatureValue, nil
	}
	validation := interfaces.ParseValidationData(interfaces.PackValidationData(&interfaces.Validation{
		ValidAfter: session.ValidAfter.Uint64(),
		ValidUntil: session.ValidUntil.Uint64(),
	}))
	if !validation.ValidAt(m.Ctx.Tx.Time) {
		return interfaces.InvalidSignatureValue, nil
	}
	return interfaces.EIP1271MagicValue, nil
}

// signedBySession recovers the eth_sign signer of hash and matches it with the session key of the caller
func (m *SessionKeyModule) signedBySession(hash [32]byte, signature []byte) (SessionData, bool) {
	exist, session, err := m.sessions.Get(m.Ctx.From)
	if err != nil || !exist {
		return SessionData{}, false
	}
	if len(signature) != staticSignatureLength {
		return SessionData{}, false
	}
	signer, err := recoverSigner(accounts.TextHash(hash[:]), signature[0:32], signature[32:64], signature[64])
	if err != nil {
		m.Logger.Debugf("session key signature of account %s: %v", m.Ctx.From, err)
		return SessionData{}, false
	}
	return session, signer == session.SessionKey
}
