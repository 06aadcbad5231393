package saccount

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

var (
	ErrAuthorizationFailure = errors.New("authorization failure")
	ErrNonceFailure         = errors.New("nonce failure")
	ErrGuardVeto            = errors.New("guard veto")
	ErrExecutionFailure     = errors.New("execution failure")
	ErrUpgradeFailure       = errors.New("upgrade failure")
	// ErrModuleRegistry also covers installing a guard without the guard methods
	ErrModuleRegistry       = errors.New("module registry failure")
	ErrCallerNotAllowed     = errors.New("caller not allowed")
)

// revert codes, the packed revert reason of a failure is its code
const (
	CodeAlreadyInitialized    = "BSA000"
	CodeNotEntryPoint         = "BSA001"
	CodeNotEntryPointOrSelf   = "BSA002"
	CodeNotSelf               = "BSA003"
	CodeNotOwner              = "BSA004"
	CodeNotModule             = "BSA005"
	CodeNotProxied            = "BSA006"
	CodeNotEnoughGas          = "BSA010"
	CodeTokenRefundFailed     = "BSA011"
	CodeNativeRefundFailed    = "BSA012"
	CodeTransactionFailed     = "BSA013"
	CodeBatchLengthMismatch   = "BSA014"
	CodeInvalidOperation      = "BSA015"
	CodeContractSigInside     = "BSA020"
	CodeContractSigLength     = "BSA021"
	CodeContractSigData       = "BSA022"
	CodeContractSigRejected   = "BSA023"
	CodeInvalidSignature      = "BSA024"
	CodeHashNotApproved       = "BSA025"
	CodeSignerNotOwner        = "BSA026"
	CodeOwnerlessAccount      = "BSA027"
	CodeSignatureDepth        = "BSA028"
	CodeModuleRejected        = "BSA029"
	CodeNonceMismatch         = "BSA030"
	CodeGuardVeto             = "BSA040"
	CodeInvalidModule         = "BSA050"
	CodeModuleAlreadyEnabled  = "BSA051"
	CodeWrongPrevModule       = "BSA052"
	CodeInvalidPageSize       = "BSA053"
	CodeModuleCapability      = "BSA054"
	CodeInvalidImplementation = "BSA060"
	CodeIncompatibleLayout    = "BSA061"
	CodeInvalidGuard          = "BSA062"
)

// Failure is a typed engine failure, it unwraps to its kind and to the revert error carrying the code
type Failure struct {
	Kind error
	Code string
	Msg  string

	revert error
}

func newFailure(kind error, code string, format string, args ...any) *Failure {
	return &Failure{
		Kind:   kind,
		Code:   code,
		Msg:    fmt.Sprintf(format, args...),
		revert: packer.NewRevertStringError(code),
	}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s: %s", f.Code, f.Kind, f.Msg)
}

func (f *Failure) Unwrap() []error {
	return []error{f.Kind, f.revert}
}

func authFailure(code string, format string, args ...any) *Failure {
	return newFailure(ErrAuthorizationFailure, code, format, args...)
}

func callerFailure(code string, format string, args ...any) *Failure {
	return newFailure(ErrCallerNotAllowed, code, format, args...)
}

func registryFailure(code string, format string, args ...any) *Failure {
	return newFailure(ErrModuleRegistry, code, format, args...)
}

// FailureCode returns the code of the first failure in the chain of err
func FailureCode(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Code
	}
	return ""
}
