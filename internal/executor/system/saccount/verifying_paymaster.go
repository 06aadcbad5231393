package saccount

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

// paymasterAndData is paymaster(20) | abi.encode(uint48 validUntil, uint48 validAfter) | signature(65)
const (
	validTimestampOffset = ethcommon.AddressLength
	signatureOffset      = validTimestampOffset + 64
)

var VerifyingPaymasterLayout = common.NewStorageLayout(1,
	common.Slot{Index: 0, Name: "owner", Type: "address"},
	common.Slot{Index: 1, Name: "verifyingSigner", Type: "address"},
)

var VerifyingPaymasterBuildConfig = &common.SystemContractBuildConfig[*VerifyingPaymaster]{
	Name:   VerifyingPaymasterName,
	AbiStr: verifyingPaymasterABI,
	Layout: VerifyingPaymasterLayout,
	Constructor: func(systemContractBase common.SystemContractBase) *VerifyingPaymaster {
		return &VerifyingPaymaster{SystemContractBase: systemContractBase}
	},
}

func VerifyingPaymasterABI() abi.ABI {
	return VerifyingPaymasterBuildConfig.ContractABI()
}

var (
	validTimeArgs = abi.Arguments{
		{Name: "validUntil", Type: common.UInt48Type},
		{Name: "validAfter", Type: common.UInt48Type},
	}

	// the user operation without paymasterAndData and signature, which carry the sponsor signature itself
	sponsoredOpArgs = abi.Arguments{
		{Name: "sender", Type: common.AddressType},
		{Name: "nonce", Type: common.BigIntType},
		{Name: "initCode", Type: common.Bytes32Type},
		{Name: "callData", Type: common.Bytes32Type},
		{Name: "callGasLimit", Type: common.BigIntType},
		{Name: "verificationGasLimit", Type: common.BigIntType},
		{Name: "preVerificationGas", Type: common.BigIntType},
		{Name: "maxFeePerGas", Type: common.BigIntType},
		{Name: "maxPriorityFeePerGas", Type: common.BigIntType},
	}
)

var _ interfaces.IPaymaster = (*VerifyingPaymaster)(nil)

// VerifyingPaymaster pays for user operations an off chain service signed for.
// The sponsor signature only agrees to pay gas, the account still checks its own signature.
type VerifyingPaymaster struct {
	common.SystemContractBase

	owner           *common.VMSlot[ethcommon.Address]
	verifyingSigner *common.VMSlot[ethcommon.Address]
}

func (vp *VerifyingPaymaster) SetContext(ctx *common.VMContext) {
	vp.SystemContractBase.SetContext(ctx)

	vp.owner = common.NewVMSlot[ethcommon.Address](vp.StateAccount, vp.Layout.Key("owner"))
	vp.verifyingSigner = common.NewVMSlot[ethcommon.Address](vp.StateAccount, vp.Layout.Key("verifyingSigner"))
}

// InitVerifyingPaymaster sets the owner and the sponsor signer of the paymaster deployed at addr
func InitVerifyingPaymaster(lg ledger.StateLedger, addr, owner, signer ethcommon.Address) error {
	account := lg.GetOrCreateAccount(addr)
	if err := common.NewVMSlot[ethcommon.Address](account, VerifyingPaymasterLayout.Key("owner")).Put(owner); err != nil {
		return err
	}
	return common.NewVMSlot[ethcommon.Address](account, VerifyingPaymasterLayout.Key("verifyingSigner")).Put(signer)
}

func (vp *VerifyingPaymaster) Owner() (ethcommon.Address, error) {
	_, owner, err := vp.owner.Get()
	return owner, err
}

func (vp *VerifyingPaymaster) VerifyingSigner() (ethcommon.Address, error) {
	_, signer, err := vp.verifyingSigner.Get()
	return signer, err
}

func (vp *VerifyingPaymaster) onlyOwner() error {
	owner, err := vp.Owner()
	if err != nil {
		return err
	}
	if owner == (ethcommon.Address{}) || vp.Ctx.From != owner {
		return packer.NewRevertStringError("VerifyingPaymaster: caller is not the owner")
	}
	return nil
}

func (vp *VerifyingPaymaster) onlyEntryPoint() error {
	if vp.Ctx.From != EntryPointAddr {
		return packer.NewRevertStringError("VerifyingPaymaster: caller is not the entry point")
	}
	return nil
}

func (vp *VerifyingPaymaster) SetVerifyingSigner(newSigner ethcommon.Address) error {
	if err := vp.onlyOwner(); err != nil {
		return err
	}
	if newSigner == (ethcommon.Address{}) {
		return packer.NewRevertStringError("VerifyingPaymaster: signer can not be zero address")
	}
	oldSigner, err := vp.VerifyingSigner()
	if err != nil {
		return err
	}
	if err := vp.verifyingSigner.Put(newSigner); err != nil {
		return err
	}
	vp.Logger.Infof("verifying signer changed from %s to %s", oldSigner, newSigner)
	return vp.EmitEvent(&EventVerifyingSignerChanged{OldSigner: oldSigner, NewSigner: newSigner})
}

// Deposit adds the attached value to the paymaster deposit in the entry point
func (vp *VerifyingPaymaster) Deposit() error {
	_, err := common.CallMethod(vp.Ctx, EntryPointAddr, vp.Ctx.Value, EntryPointABI(), "depositTo", vp.Ctx.Gas.Remaining(), vp.Address())
	return err
}

func (vp *VerifyingPaymaster) GetDeposit() (*big.Int, error) {
	outputs, err := common.StaticCallMethod(vp.Ctx, EntryPointAddr, EntryPointABI(), "balanceOf", vp.Ctx.Gas.Remaining(), vp.Address())
	if err != nil {
		return nil, err
	}
	return common.ConvertOutput[*big.Int](outputs, 0)
}

func (vp *VerifyingPaymaster) WithdrawTo(withdrawAddress ethcommon.Address, amount *big.Int) error {
	if err := vp.onlyOwner(); err != nil {
		return err
	}
	_, err := common.CallMethod(vp.Ctx, EntryPointAddr, nil, EntryPointABI(), "withdrawTo", vp.Ctx.Gas.Remaining(), withdrawAddress, amount)
	return err
}

// GetHash is the digest the verifying signer signs with eth_sign, bound to the chain and this paymaster
func (vp *VerifyingPaymaster) GetHash(userOp interfaces.UserOperation, validUntil, validAfter *big.Int) ([32]byte, error) {
	packed, err := sponsoredOpArgs.Pack(
		userOp.Sender,
		userOp.Nonce,
		crypto.Keccak256Hash(userOp.InitCode),
		crypto.Keccak256Hash(userOp.CallData),
		userOp.CallGasLimit,
		userOp.VerificationGasLimit,
		userOp.PreVerificationGas,
		userOp.MaxFeePerGas,
		userOp.MaxPriorityFeePerGas,
	)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Keccak256Hash(
		packed,
		ethcommon.LeftPadBytes(vp.Ctx.Tx.ChainID.Bytes(), 32),
		ethcommon.LeftPadBytes(vp.Address().Bytes(), 32),
		ethcommon.LeftPadBytes(validUntil.Bytes(), 32),
		ethcommon.LeftPadBytes(validAfter.Bytes(), 32),
	), nil
}

func (vp *VerifyingPaymaster) ParsePaymasterAndData(paymasterAndData []byte) (*big.Int, *big.Int, []byte, error) {
	return parsePaymasterAndData(paymasterAndData)
}

func parsePaymasterAndData(paymasterAndData []byte) (validUntil, validAfter *big.Int, signature []byte, err error) {
	if len(paymasterAndData) < signatureOffset {
		return nil, nil, nil, packer.NewRevertStringError("VerifyingPaymaster: paymasterAndData too short")
	}
	values, err := validTimeArgs.Unpack(paymasterAndData[validTimestampOffset:signatureOffset])
	if err != nil || len(values) != 2 {
		return nil, nil, nil, packer.NewRevertStringError("VerifyingPaymaster: invalid valid time range")
	}
	validUntil, ok := values[0].(*big.Int)
	if !ok {
		return nil, nil, nil, packer.NewRevertStringError("VerifyingPaymaster: invalid validUntil")
	}
	validAfter, ok = values[1].(*big.Int)
	if !ok {
		return nil, nil, nil, packer.NewRevertStringError("VerifyingPaymaster: invalid validAfter")
	}
	return validUntil, validAfter, ethcommon.CopyBytes(paymasterAndData[signatureOffset:]), nil
}

// ValidatePaymasterUserOp never reverts on a wrong signer, it reports SigValidationFailed so bundlers can simulate.
// The sender is returned as context so PostOp can account the sponsored gas.
func (vp *VerifyingPaymaster) ValidatePaymasterUserOp(userOp interfaces.UserOperation, userOpHash [32]byte, maxCost *big.Int) ([]byte, *big.Int, error) {
	if err := vp.onlyEntryPoint(); err != nil {
		return nil, nil, err
	}
	validUntil, validAfter, signature, err := parsePaymasterAndData(userOp.PaymasterAndData)
	if err != nil {
		return nil, nil, err
	}
	if len(signature) != staticSignatureLength {
		return nil, nil, packer.NewRevertStringError("VerifyingPaymaster: invalid signature length in paymasterAndData")
	}

	validation := &interfaces.Validation{
		SigValidation: interfaces.SigValidationFailed,
		ValidUntil:    validUntil.Uint64(),
		ValidAfter:    validAfter.Uint64(),
	}
	hash, err := vp.GetHash(userOp, validUntil, validAfter)
	if err != nil {
		return nil, nil, err
	}
	signer, err := recoverSigner(accounts.TextHash(hash[:]), signature[0:32], signature[32:64], signature[64])
	if err != nil {
		return nil, nil, packer.NewRevertStringError("VerifyingPaymaster: invalid signature")
	}
	verifyingSigner, err := vp.VerifyingSigner()
	if err != nil {
		return nil, nil, err
	}
	if signer != verifyingSigner {
		vp.Logger.WithField("sender", userOp.Sender).Debugf("sponsor signer %s is not %s", signer, verifyingSigner)
		return nil, interfaces.PackValidationData(validation), nil
	}
	validation.SigValidation = interfaces.SigValidationSucceeded
	return userOp.Sender.Bytes(), interfaces.PackValidationData(validation), nil
}

func (vp *VerifyingPaymaster) PostOp(mode uint8, context []byte, actualGasCost *big.Int) error {
	if err := vp.onlyEntryPoint(); err != nil {
		return err
	}
	sender := ethcommon.BytesToAddress(context)
	vp.Logger.WithField("sender", sender).Debugf("sponsored %s, %s", actualGasCost, interfaces.PostOpMode(mode))
	return vp.EmitEvent(&EventGasSponsored{Sender: sender, Mode: mode, ActualGasCost: actualGasCost})
}
