package saccount

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
)

// AuthResult describes an accepted signature
type AuthResult struct {
	Kind SignatureKind

	// Signer is the owner for owner signatures and the module for module signatures
	Signer ethcommon.Address
}

// CheckSignatures reverts unless signatures authorize dataHash for this account
func (sa *SmartAccount) CheckSignatures(dataHash [32]byte, signatures []byte) error {
	_, err := sa.authorize(dataHash, signatures)
	return err
}

// IsValidSignature implements EIP-1271, a rejection is reported as the invalid value instead of a revert.
// Exhausted nesting reverts so the outermost account reports it.
func (sa *SmartAccount) IsValidSignature(hash [32]byte, signature []byte) ([4]byte, error) {
	if _, err := sa.authorize(hash, signature); err != nil {
		if isDepthFailure(err) {
			return [4]byte{}, err
		}
		sa.Logger.WithFields(logrus.Fields{
			"account": sa.Address(),
			"hash":    ethcommon.Hash(hash),
		}).Debugf("signature rejected: %v", err)
		return interfaces.InvalidSignatureValue, nil
	}
	return interfaces.EIP1271MagicValue, nil
}

func (sa *SmartAccount) authorize(dataHash ethcommon.Hash, signatures []byte) (*AuthResult, error) {
	decoded, err := DecodeSignature(dataHash, signatures)
	if err != nil {
		authorizationCounter.WithLabelValues("malformed", resultLabel(false)).Inc()
		return nil, err
	}
	result, err := sa.authorizeDecoded(dataHash, decoded)
	authorizationCounter.WithLabelValues(decoded.Kind.String(), resultLabel(err == nil)).Inc()
	return result, err
}

func (sa *SmartAccount) authorizeDecoded(dataHash ethcommon.Hash, decoded *DecodedSignature) (*AuthResult, error) {
	if decoded.Kind == KindModule {
		if err := sa.moduleSignature(dataHash, decoded.Module, decoded.Data); err != nil {
			return nil, err
		}
		return &AuthResult{Kind: KindModule, Signer: decoded.Module}, nil
	}

	owner, err := sa.Owner()
	if err != nil {
		return nil, err
	}
	if owner == (ethcommon.Address{}) {
		return nil, authFailure(CodeOwnerlessAccount, "%s signature on an ownerless account", decoded.Kind)
	}
	if decoded.Signer != owner {
		return nil, authFailure(CodeSignerNotOwner, "%s signer %s is not the owner", decoded.Kind, decoded.Signer)
	}

	switch decoded.Kind {
	case KindApprovedHash:
		if !sa.approvedHashes.Has(approvedHashKey{owner: owner, hash: dataHash}) {
			return nil, authFailure(CodeHashNotApproved, "hash %s not approved by %s", dataHash, owner)
		}
	case KindContract:
		if err := sa.contractSignature(dataHash, decoded.Signer, decoded.Data); err != nil {
			return nil, err
		}
	}
	return &AuthResult{Kind: decoded.Kind, Signer: owner}, nil
}

// moduleSignature lets an enabled module judge its inner signature
func (sa *SmartAccount) moduleSignature(dataHash ethcommon.Hash, module ethcommon.Address, inner []byte) error {
	if !sa.modules.enabled(module) {
		return authFailure(CodeInvalidModule, "module %s not enabled", module)
	}
	outputs, err := common.StaticCallMethod(sa.Ctx, module, interfaces.ModuleABI, "isValidSignature", sa.Ctx.Gas.Remaining(), [32]byte(dataHash), inner)
	if err != nil {
		return authFailure(CodeModuleRejected, "module %s: %v", module, err)
	}
	magic, err := common.ConvertOutput[[4]byte](outputs, 0)
	if err != nil {
		return authFailure(CodeModuleRejected, "module %s: %v", module, err)
	}
	if magic != interfaces.EIP1271MagicValue {
		return authFailure(CodeModuleRejected, "module %s returned %x", module, magic)
	}
	return nil
}

// contractSignature asks signer twice through the static channel, a signer whose answer changes is rejected
func (sa *SmartAccount) contractSignature(dataHash ethcommon.Hash, signer ethcommon.Address, data []byte) error {
	if err := sa.Ctx.Tx.EnterSignature(); err != nil {
		return authFailure(CodeSignatureDepth, "contract signer %s: %v", signer, err)
	}
	defer sa.Ctx.Tx.ExitSignature()

	for i := 0; i < 2; i++ {
		outputs, err := common.StaticCallMethod(sa.Ctx, signer, interfaces.SignatureValidatorABI, "isValidSignature", sa.Ctx.Gas.Remaining(), [32]byte(dataHash), data)
		if err != nil {
			if isDepthFailure(err) {
				return authFailure(CodeSignatureDepth, "contract signer %s: %v", signer, err)
			}
			return authFailure(CodeContractSigRejected, "contract signer %s: %v", signer, err)
		}
		magic, err := common.ConvertOutput[[4]byte](outputs, 0)
		if err != nil {
			return authFailure(CodeContractSigRejected, "contract signer %s: %v", signer, err)
		}
		if magic != interfaces.EIP1271MagicValue {
			return authFailure(CodeContractSigRejected, "contract signer %s returned %x", signer, magic)
		}
	}
	return nil
}

// validateUserOpSignature returns the packed validation data of a user operation signature, a rejected signature yields SigValidationFailed
func (sa *SmartAccount) validateUserOpSignature(userOp *interfaces.UserOperation, userOpHash ethcommon.Hash) *big.Int {
	failed := big.NewInt(interfaces.SigValidationFailed)
	decoded, err := DecodeSignature(userOpHash, userOp.Signature)
	if err != nil {
		authorizationCounter.WithLabelValues("malformed", resultLabel(false)).Inc()
		sa.Logger.WithField("account", sa.Address()).Warnf("user op signature malformed: %v", err)
		return failed
	}

	if decoded.Kind != KindModule {
		if _, err := sa.authorizeDecoded(userOpHash, decoded); err != nil {
			authorizationCounter.WithLabelValues(decoded.Kind.String(), resultLabel(false)).Inc()
			sa.Logger.WithField("account", sa.Address()).Warnf("user op signature rejected: %v", err)
			return failed
		}
		authorizationCounter.WithLabelValues(decoded.Kind.String(), resultLabel(true)).Inc()
		return big.NewInt(interfaces.SigValidationSucceeded)
	}

	if !sa.modules.enabled(decoded.Module) {
		authorizationCounter.WithLabelValues(KindModule.String(), resultLabel(false)).Inc()
		sa.Logger.WithField("account", sa.Address()).Warnf("user op signed by disabled module %s", decoded.Module)
		return failed
	}
	// the module sees its own inner signature
	op := *userOp
	op.Signature = decoded.Data
	outputs, err := common.CallMethod(sa.Ctx, decoded.Module, nil, interfaces.ModuleABI, "validateUserOp", sa.Ctx.Gas.Remaining(), op, [32]byte(userOpHash))
	if err != nil {
		authorizationCounter.WithLabelValues(KindModule.String(), resultLabel(false)).Inc()
		sa.Logger.WithField("account", sa.Address()).Warnf("module %s validate user op: %v", decoded.Module, err)
		return failed
	}
	validationData, err := common.ConvertOutput[*big.Int](outputs, 0)
	if err != nil {
		return failed
	}
	succeeded := interfaces.ParseValidationData(validationData).SigValidation == interfaces.SigValidationSucceeded
	authorizationCounter.WithLabelValues(KindModule.String(), resultLabel(succeeded)).Inc()
	return validationData
}

func isDepthFailure(err error) bool {
	return errors.Is(err, common.ErrSignatureDepth) || FailureCode(err) == CodeSignatureDepth
}
