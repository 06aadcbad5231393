package saccount

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces/mock_interfaces"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

var contractSignerAddr = ethcommon.HexToAddress("0x000000000000000000000000000000000000c0de")

func (a *testAccount) checkSignatures(hash ethcommon.Hash, signatures []byte) error {
	_, err := a.call(relayer, "checkSignatures", [32]byte(hash), signatures)
	return err
}

func (a *testAccount) isValidSignature(hash ethcommon.Hash, signatures []byte) [4]byte {
	return a.view("isValidSignature", [32]byte(hash), signatures)[0].([4]byte)
}

func TestAuthorize_Owner(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	hash := crypto.Keccak256Hash([]byte("payload"))

	other, err := crypto.GenerateKey()
	require.Nil(t, err)

	ethSign := signHash(t, account.key, ethcommon.BytesToHash(accounts.TextHash(hash.Bytes())))
	ethSign[64] += 4

	testcases := map[string]struct {
		signatures []byte
		code       string
	}{
		"ecdsa": {
			signatures: account.sign(hash),
		},
		"eth_sign": {
			signatures: ethSign,
		},
		"ecdsa over another hash": {
			signatures: account.sign(crypto.Keccak256Hash([]byte("other"))),
			code:       CodeSignerNotOwner,
		},
		"ecdsa by another key": {
			signatures: signHash(t, other, hash),
			code:       CodeSignerNotOwner,
		},
		"hash not approved": {
			signatures: ApprovedHashSignature(account.owner),
			code:       CodeHashNotApproved,
		},
		"malformed": {
			signatures: []byte{0x01, 0x02},
			code:       CodeInvalidSignature,
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			err := account.checkSignatures(hash, tc.signatures)
			if tc.code == "" {
				assert.Nil(t, err)
				assert.Equal(t, interfaces.EIP1271MagicValue, account.isValidSignature(hash, tc.signatures))
				return
			}
			assert.Equal(t, tc.code, FailureCode(err))
			assert.ErrorIs(t, err, ErrAuthorizationFailure)
			assert.Equal(t, interfaces.InvalidSignatureValue, account.isValidSignature(hash, tc.signatures))
		})
	}
}

func TestAuthorize_ApprovedHash(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	hash := crypto.Keccak256Hash([]byte("payload"))

	_, err := account.call(relayer, "approveHash", [32]byte(hash))
	assert.Equal(t, CodeNotOwner, FailureCode(err))

	_, err = account.call(account.owner, "approveHash", [32]byte(hash))
	require.Nil(t, err)
	assert.EqualValues(t, 1, account.view("approvedHashes", account.owner, [32]byte(hash))[0].(*big.Int).Int64())
	assert.Len(t, findLogs(nvm, account.address, SmartAccountABI().Events["ApproveHash"].ID), 1)

	assert.Nil(t, account.checkSignatures(hash, ApprovedHashSignature(account.owner)))

	// an approval by someone else is never enough
	err = account.checkSignatures(hash, ApprovedHashSignature(relayer))
	assert.Equal(t, CodeSignerNotOwner, FailureCode(err))
}

func TestAuthorize_ContractSigner(t *testing.T) {
	hash := crypto.Keccak256Hash([]byte("payload"))
	signatures := CombineSignatures(Signature{Signer: contractSignerAddr, Data: []byte("inner"), Contract: true})

	testcases := map[string]struct {
		setup func(validator *mock_interfaces.MockISignatureValidator)
		depth int
		code  string
	}{
		"accepted": {
			setup: func(validator *mock_interfaces.MockISignatureValidator) {
				validator.EXPECT().IsValidSignature([32]byte(hash), []byte("inner")).Return(interfaces.EIP1271MagicValue, nil).Times(2)
			},
		},
		"rejected": {
			setup: func(validator *mock_interfaces.MockISignatureValidator) {
				validator.EXPECT().IsValidSignature(gomock.Any(), gomock.Any()).Return(interfaces.InvalidSignatureValue, nil).Times(1)
			},
			code: CodeContractSigRejected,
		},
		"answer changes between the two queries": {
			setup: func(validator *mock_interfaces.MockISignatureValidator) {
				validator.EXPECT().IsValidSignature(gomock.Any(), gomock.Any()).Return(interfaces.EIP1271MagicValue, nil).Times(1)
				validator.EXPECT().IsValidSignature(gomock.Any(), gomock.Any()).Return(interfaces.InvalidSignatureValue, nil).Times(1)
			},
			code: CodeContractSigRejected,
		},
		"signer reverts": {
			setup: func(validator *mock_interfaces.MockISignatureValidator) {
				validator.EXPECT().IsValidSignature(gomock.Any(), gomock.Any()).Return([4]byte{}, packer.NewRevertStringError("nope")).Times(1)
			},
			code: CodeContractSigRejected,
		},
		"nesting exhausted": {
			setup: func(validator *mock_interfaces.MockISignatureValidator) {},
			depth: -1,
			code:  CodeSignatureDepth,
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			nvm := newTestNVM(t)
			validator := mock_interfaces.NewMockISignatureValidator(gomock.NewController(t))
			nvm.DeployInstance(contractSignerAddr, interfaces.SignatureValidatorABI, validator)
			account := deployAccountWithOwner(t, nvm, contractSignerAddr)
			if tc.depth < 0 {
				nvm.Tx.MaxSignatureDepth = 0
			}
			tc.setup(validator)

			err := account.checkSignatures(hash, signatures)
			if tc.code == "" {
				assert.Nil(t, err)
				return
			}
			assert.Equal(t, tc.code, FailureCode(err))
		})
	}
}

func TestAuthorize_Module(t *testing.T) {
	nvm := newTestNVM(t)
	modules, mocks := deployMockModules(t, nvm, 2)
	account := deployAccount(t, nvm, modules[0])
	hash := crypto.Keccak256Hash([]byte("payload"))

	moduleSignature := func(module ethcommon.Address, inner string) []byte {
		sig, err := EncodeModuleSignature(module, []byte(inner))
		require.Nil(t, err)
		return sig
	}

	before := testutil.ToFloat64(authorizationCounter.WithLabelValues("module", "success"))
	mocks[0].EXPECT().IsValidSignature([32]byte(hash), []byte("good")).Return(interfaces.EIP1271MagicValue, nil).Times(1)
	assert.Nil(t, account.checkSignatures(hash, moduleSignature(modules[0], "good")))
	assert.Equal(t, before+1, testutil.ToFloat64(authorizationCounter.WithLabelValues("module", "success")))

	mocks[0].EXPECT().IsValidSignature([32]byte(hash), []byte("bad")).Return(interfaces.InvalidSignatureValue, nil).Times(1)
	err := account.checkSignatures(hash, moduleSignature(modules[0], "bad"))
	assert.Equal(t, CodeModuleRejected, FailureCode(err))

	// a module that is not enabled is never asked
	err = account.checkSignatures(hash, moduleSignature(modules[1], "good"))
	assert.Equal(t, CodeInvalidModule, FailureCode(err))

	// module signatures take precedence over the owner
	err = account.checkSignatures(hash, moduleSignature(receiver, "good"))
	assert.Equal(t, CodeInvalidModule, FailureCode(err))
}

func TestAuthorize_Ownerless(t *testing.T) {
	nvm := newTestNVM(t)
	modules, _ := deployMockModules(t, nvm, 1)
	account := deployAccountWithOwner(t, nvm, ethcommon.Address{}, modules...)
	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	hash := crypto.Keccak256Hash([]byte("payload"))

	err = account.checkSignatures(hash, signHash(t, key, hash))
	assert.Equal(t, CodeOwnerlessAccount, FailureCode(err))
	err = account.checkSignatures(hash, ApprovedHashSignature(ethcommon.Address{}))
	assert.Equal(t, CodeOwnerlessAccount, FailureCode(err))
}

func TestValidateUserOpSignature(t *testing.T) {
	nvm := newTestNVM(t)
	modules, mocks := deployMockModules(t, nvm, 2)
	account := deployAccount(t, nvm, modules[0])

	t.Run("owner", func(t *testing.T) {
		op := newUserOp(account.address, interfaces.PackNonce(big.NewInt(1), 0))
		account.signUserOp(&op)
		validationData, err := account.validateUserOp(op)
		require.Nil(t, err)
		assert.EqualValues(t, interfaces.SigValidationSucceeded, validationData.Int64())
	})

	t.Run("wrong key does not revert", func(t *testing.T) {
		key, err := crypto.GenerateKey()
		require.Nil(t, err)
		op := newUserOp(account.address, interfaces.PackNonce(big.NewInt(2), 0))
		op.Signature = signHash(t, key, userOpHash(nvm, &op))
		validationData, err := account.validateUserOp(op)
		require.Nil(t, err)
		assert.EqualValues(t, interfaces.SigValidationFailed, validationData.Int64())
		// the nonce is consumed anyway
		assert.EqualValues(t, 1, account.nonce(2).Int64())
	})

	t.Run("module sees its inner signature", func(t *testing.T) {
		op := newUserOp(account.address, interfaces.PackNonce(big.NewInt(3), 0))
		signature, err := EncodeModuleSignature(modules[0], []byte("inner"))
		require.Nil(t, err)
		op.Signature = signature
		packed := interfaces.PackValidationData(&interfaces.Validation{ValidUntil: 100, ValidAfter: 10})
		mocks[0].EXPECT().ValidateUserOp(gomock.Any(), [32]byte(userOpHash(nvm, &op))).
			DoAndReturn(func(userOp interfaces.UserOperation, hash [32]byte) (*big.Int, error) {
				assert.Equal(t, []byte("inner"), userOp.Signature)
				return packed, nil
			}).Times(1)
		validationData, err := account.validateUserOp(op)
		require.Nil(t, err)
		assert.Equal(t, packed, validationData)
	})

	t.Run("module reverts", func(t *testing.T) {
		op := newUserOp(account.address, interfaces.PackNonce(big.NewInt(4), 0))
		signature, err := EncodeModuleSignature(modules[0], []byte("inner"))
		require.Nil(t, err)
		op.Signature = signature
		mocks[0].EXPECT().ValidateUserOp(gomock.Any(), gomock.Any()).Return(nil, packer.NewRevertStringError("nope")).Times(1)
		validationData, err := account.validateUserOp(op)
		require.Nil(t, err)
		assert.EqualValues(t, interfaces.SigValidationFailed, validationData.Int64())
	})

	t.Run("disabled module", func(t *testing.T) {
		op := newUserOp(account.address, interfaces.PackNonce(big.NewInt(5), 0))
		signature, err := EncodeModuleSignature(modules[1], []byte("inner"))
		require.Nil(t, err)
		op.Signature = signature
		validationData, err := account.validateUserOp(op)
		require.Nil(t, err)
		assert.EqualValues(t, interfaces.SigValidationFailed, validationData.Int64())
	})

	t.Run("only the entry point", func(t *testing.T) {
		op := newUserOp(account.address, interfaces.PackNonce(big.NewInt(6), 0))
		account.signUserOp(&op)
		_, err := account.call(relayer, "validateUserOp", op, [32]byte(userOpHash(nvm, &op)), big.NewInt(0))
		assert.Equal(t, CodeNotEntryPoint, FailureCode(err))
	})
}

// nestedAccounts returns accounts where each one is owned by the previous, the first is owned by a key
func nestedAccounts(t *testing.T, nvm *system.TestNVM, depth int) []*testAccount {
	chain := []*testAccount{deployAccount(t, nvm)}
	for i := 1; i <= depth; i++ {
		chain = append(chain, deployAccountWithOwner(t, nvm, chain[i-1].address))
	}
	return chain
}

// nestedSignature wraps the key signature of chain[0] into one contract signature per level
func nestedSignature(t *testing.T, chain []*testAccount, hash ethcommon.Hash) []byte {
	signatures := chain[0].sign(hash)
	for _, signer := range chain[:len(chain)-1] {
		signatures = CombineSignatures(Signature{Signer: signer.address, Data: signatures, Contract: true})
	}
	return signatures
}

func TestAuthorize_NestedAccounts(t *testing.T) {
	hash := crypto.Keccak256Hash([]byte("payload"))

	testcases := map[string]struct {
		depth int
		code  string
	}{
		"one level": {
			depth: 1,
		},
		"two levels": {
			depth: 2,
		},
		"three levels": {
			depth: 3,
			code:  CodeSignatureDepth,
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			nvm := newTestNVM(t)
			nvm.Tx.MaxSignatureDepth = 2
			chain := nestedAccounts(t, nvm, tc.depth)
			top := chain[len(chain)-1]
			signatures := nestedSignature(t, chain, hash)

			err := top.checkSignatures(hash, signatures)
			if tc.code == "" {
				assert.Nil(t, err)
				assert.Equal(t, interfaces.EIP1271MagicValue, top.isValidSignature(hash, signatures))
				return
			}
			assert.Equal(t, tc.code, FailureCode(err))
			assert.ErrorIs(t, err, ErrAuthorizationFailure)
		})
	}

	// the leaf key signing another hash is rejected at the leaf, not by the depth bound
	nvm := newTestNVM(t)
	nvm.Tx.MaxSignatureDepth = 2
	chain := nestedAccounts(t, nvm, 2)
	signatures := nestedSignature(t, chain, crypto.Keccak256Hash([]byte("other")))
	err := chain[2].checkSignatures(hash, signatures)
	assert.Equal(t, CodeContractSigRejected, FailureCode(err))
}

func TestAuthorize_DisabledModule(t *testing.T) {
	nvm := newTestNVM(t)
	modules, mocks := deployMockModules(t, nvm, 1)
	account := deployAccount(t, nvm, modules[0])
	require.True(t, account.view("isModuleEnabled", modules[0])[0].(bool))

	require.Nil(t, account.self("disableModule", SentinelModules, modules[0]))
	require.False(t, account.view("isModuleEnabled", modules[0])[0].(bool))

	hash := crypto.Keccak256Hash([]byte("payload"))
	signatures, err := EncodeModuleSignature(modules[0], []byte("good"))
	require.Nil(t, err)
	// the module would approve, it must never be asked
	mocks[0].EXPECT().IsValidSignature(gomock.Any(), gomock.Any()).Return(interfaces.EIP1271MagicValue, nil).Times(0)
	mocks[0].EXPECT().ValidateUserOp(gomock.Any(), gomock.Any()).Return(big.NewInt(interfaces.SigValidationSucceeded), nil).Times(0)

	err = account.checkSignatures(hash, signatures)
	assert.Equal(t, CodeInvalidModule, FailureCode(err))
	assert.ErrorIs(t, err, ErrAuthorizationFailure)
	assert.Equal(t, interfaces.InvalidSignatureValue, account.isValidSignature(hash, signatures))

	op := newUserOp(account.address, interfaces.PackNonce(big.NewInt(0), 0))
	op.Signature = signatures
	validationData, err := account.validateUserOp(op)
	require.Nil(t, err)
	assert.EqualValues(t, interfaces.SigValidationFailed, validationData.Int64())
}
