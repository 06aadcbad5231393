package saccount

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
)

var SmartAccountProxyLayout = common.NewStorageLayout(1,
	common.Slot{Index: 0, Name: "implementation", Type: "address"},
)

var SmartAccountProxyBuildConfig = &common.SystemContractBuildConfig[*SmartAccountProxy]{
	Name:   SmartAccountProxyName,
	AbiStr: smartAccountProxyABI,
	Layout: SmartAccountProxyLayout,
	Constructor: func(systemContractBase common.SystemContractBase) *SmartAccountProxy {
		return &SmartAccountProxy{SystemContractBase: systemContractBase}
	},
}

var _ common.Fallback = (*SmartAccountProxy)(nil)

// SmartAccountProxy is the code of every deployed account, it runs the implementation on its own storage
type SmartAccountProxy struct {
	common.SystemContractBase

	implementation *common.VMSlot[ethcommon.Address]
}

func (proxy *SmartAccountProxy) SetContext(ctx *common.VMContext) {
	proxy.SystemContractBase.SetContext(ctx)

	proxy.implementation = common.NewVMSlot[ethcommon.Address](proxy.StateAccount, proxy.Layout.Key("implementation"))
}

func (proxy *SmartAccountProxy) Fallback(input []byte) ([]byte, error) {
	implementation, err := proxy.implementation.MustGet()
	if err != nil {
		return nil, errors.Wrapf(err, "proxy %s has no implementation", proxy.Address())
	}
	return proxy.Ctx.VM.DelegateCall(proxy.Ctx, implementation, input, proxy.Ctx.Gas.Remaining())
}
