package interfaces

import (
	_ "embed"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed sol/IModule.abi
var moduleABI string

//go:embed sol/IGuard.abi
var guardABI string

//go:embed sol/IPaymaster.abi
var paymasterABI string

//go:embed sol/ISignatureValidator.abi
var signatureValidatorABI string

var (
	ModuleABI             = mustParseABI(moduleABI)
	GuardABI              = mustParseABI(guardABI)
	PaymasterABI          = mustParseABI(paymasterABI)
	SignatureValidatorABI = mustParseABI(signatureValidatorABI)
)

func mustParseABI(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return a
}
