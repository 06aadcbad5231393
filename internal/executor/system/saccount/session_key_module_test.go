package saccount

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
)

func setSessionKey(t *testing.T, account *testAccount, sessionKey ethcommon.Address, validAfter, validUntil uint64) error {
	_, err := account.nvm.CallMethod(account.address, SessionKeyModuleAddr, nil, SessionKeyModuleBuildConfig.ContractABI(),
		"setSessionKey", sessionKey, new(big.Int).SetUint64(validAfter), new(big.Int).SetUint64(validUntil))
	return err
}

// sessionSignature wraps an eth_sign signature of hash by key for the session key module
func sessionSignature(t *testing.T, key *ecdsa.PrivateKey, hash ethcommon.Hash) []byte {
	sig, err := EncodeModuleSignature(SessionKeyModuleAddr, signHash(t, key, ethcommon.BytesToHash(accounts.TextHash(hash.Bytes()))))
	require.Nil(t, err)
	return sig
}

func TestSessionKeyModule(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm, SessionKeyModuleAddr)
	sessionKey, err := crypto.GenerateKey()
	require.Nil(t, err)
	session := crypto.PubkeyToAddress(sessionKey.PublicKey)
	now := nvm.Tx.Time
	hash := crypto.Keccak256Hash([]byte("payload"))

	// nothing registered yet
	err = account.checkSignatures(hash, sessionSignature(t, sessionKey, hash))
	assert.Equal(t, CodeModuleRejected, FailureCode(err))

	require.Nil(t, setSessionKey(t, account, session, now-100, now+100))
	assert.Len(t, findLogs(nvm, SessionKeyModuleAddr, SessionKeyModuleBuildConfig.ContractABI().Events["SessionKeySet"].ID), 1)

	outputs, err := nvm.CallMethod(relayer, SessionKeyModuleAddr, nil, SessionKeyModuleBuildConfig.ContractABI(), "getSessionKey", account.address)
	require.Nil(t, err)
	data := *abi.ConvertType(outputs[0], new(SessionData)).(*SessionData)
	assert.Equal(t, session, data.SessionKey)
	assert.EqualValues(t, now+100, data.ValidUntil.Uint64())

	assert.Nil(t, account.checkSignatures(hash, sessionSignature(t, sessionKey, hash)))
	assert.Equal(t, interfaces.EIP1271MagicValue, account.isValidSignature(hash, sessionSignature(t, sessionKey, hash)))

	// the owner key is not the session key
	err = account.checkSignatures(hash, sessionSignature(t, account.key, hash))
	assert.Equal(t, CodeModuleRejected, FailureCode(err))

	// the window travels with the validation data of a user operation
	op := newUserOp(account.address, interfaces.PackNonce(big.NewInt(0), 0))
	op.Signature = sessionSignature(t, sessionKey, userOpHash(nvm, &op))
	validationData, err := account.validateUserOp(op)
	require.Nil(t, err)
	validation := interfaces.ParseValidationData(validationData)
	assert.EqualValues(t, interfaces.SigValidationSucceeded, validation.SigValidation)
	assert.Equal(t, now-100, validation.ValidAfter)
	assert.Equal(t, now+100, validation.ValidUntil)

	op = newUserOp(account.address, interfaces.PackNonce(big.NewInt(0), 1))
	op.Signature = sessionSignature(t, account.key, userOpHash(nvm, &op))
	validationData, err = account.validateUserOp(op)
	require.Nil(t, err)
	assert.EqualValues(t, interfaces.SigValidationFailed, validationData.Int64())

	// an expired session no longer signs messages
	require.Nil(t, setSessionKey(t, account, session, 1, 2))
	err = account.checkSignatures(hash, sessionSignature(t, sessionKey, hash))
	assert.Equal(t, CodeModuleRejected, FailureCode(err))

	_, err = nvm.CallMethod(account.address, SessionKeyModuleAddr, nil, SessionKeyModuleBuildConfig.ContractABI(), "revokeSessionKey")
	require.Nil(t, err)
	assert.Len(t, findLogs(nvm, SessionKeyModuleAddr, SessionKeyModuleBuildConfig.ContractABI().Events["SessionKeyRevoked"].ID), 1)
	_, err = nvm.CallMethod(account.address, SessionKeyModuleAddr, nil, SessionKeyModuleBuildConfig.ContractABI(), "revokeSessionKey")
	assert.NotNil(t, err)
}

func TestSessionKeyModule_SetSessionKey(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm, SessionKeyModuleAddr)

	testcases := map[string]struct {
		sessionKey ethcommon.Address
		validAfter uint64
		validUntil uint64
		err        string
	}{
		"never expires": {
			sessionKey: receiver,
		},
		"window": {
			sessionKey: receiver,
			validAfter: 10,
			validUntil: 20,
		},
		"zero key": {
			err: "SKM: invalid session key",
		},
		"inverted window": {
			sessionKey: receiver,
			validAfter: 20,
			validUntil: 10,
			err:        "SKM: invalid time range",
		},
	}
	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			err := setSessionKey(t, account, tc.sessionKey, tc.validAfter, tc.validUntil)
			if tc.err == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}
