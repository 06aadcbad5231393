package saccount

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
)

const (
	CallbackHandlerNAME    = "Default Callback Handler"
	CallbackHandlerVERSION = "1.0.1"
)

var (
	interfaceIdERC721Receiver  = [4]byte{0x15, 0x0b, 0x7a, 0x02}
	interfaceIdERC1155Receiver = [4]byte{0x4e, 0x23, 0x12, 0xe0}
	interfaceIdERC777Recipient = [4]byte{0x00, 0x23, 0xde, 0x29}

	erc1155ReceivedSelector      = [4]byte{0xf2, 0x3a, 0x6e, 0x61}
	erc1155BatchReceivedSelector = [4]byte{0xbc, 0x19, 0x7c, 0x81}
)

var CallbackHandlerBuildConfig = &common.SystemContractBuildConfig[*CallbackHandler]{
	Name:   CallbackHandlerName,
	AbiStr: callbackHandlerABI,
	Layout: common.NewStorageLayout(1),
	Constructor: func(systemContractBase common.SystemContractBase) *CallbackHandler {
		return &CallbackHandler{SystemContractBase: systemContractBase}
	},
}

// CallbackHandler is the default fallback handler of accounts, it accepts token callbacks
type CallbackHandler struct {
	common.SystemContractBase
}

func (h *CallbackHandler) OnERC721Received(operator, from ethcommon.Address, tokenId *big.Int, data []byte) ([4]byte, error) {
	return interfaceIdERC721Receiver, nil
}

func (h *CallbackHandler) OnERC1155Received(operator, from ethcommon.Address, id, value *big.Int, data []byte) ([4]byte, error) {
	return erc1155ReceivedSelector, nil
}

func (h *CallbackHandler) OnERC1155BatchReceived(operator, from ethcommon.Address, ids, values []*big.Int, data []byte) ([4]byte, error) {
	return erc1155BatchReceivedSelector, nil
}

func (h *CallbackHandler) TokensReceived(operator, from, to ethcommon.Address, amount *big.Int, userData, operatorData []byte) error {
	return nil
}

func (h *CallbackHandler) SupportsInterface(interfaceId [4]byte) (bool, error) {
	switch interfaceId {
	case interfaceIdERC165, interfaceIdERC721Receiver, interfaceIdERC1155Receiver, interfaceIdERC777Recipient:
		return true, nil
	}
	return false, nil
}

func (h *CallbackHandler) NAME() (string, error) {
	return CallbackHandlerNAME, nil
}

func (h *CallbackHandler) VERSION() (string, error) {
	return CallbackHandlerVERSION, nil
}
