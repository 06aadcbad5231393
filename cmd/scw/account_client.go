package main

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/bcnmy/scw-contracts-sub000/cmd/scw/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/crypto"
)

// accountClient drives smart accounts through the local executor, sender relays every message
type accountClient struct {
	exec   *executor.BlockExecutor
	lg     *ledger.Ledger
	sender ethcommon.Address
}

type accountInfo struct {
	Address         ethcommon.Address   `json:"address"`
	Owner           ethcommon.Address   `json:"owner"`
	Implementation  ethcommon.Address   `json:"implementation"`
	EntryPoint      ethcommon.Address   `json:"entry_point"`
	Guard           ethcommon.Address   `json:"guard"`
	FallbackHandler ethcommon.Address   `json:"fallback_handler"`
	Version         string              `json:"version"`
	Nonce           *big.Int            `json:"nonce"`
	Deposit         *big.Int            `json:"deposit"`
	Balance         *big.Int            `json:"balance"`
	Modules         []ethcommon.Address `json:"modules"`
}

func (c *accountClient) call(to ethcommon.Address, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	result, err := c.exec.Call(&system.Message{From: c.sender, To: to, Data: input})
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return nil, revertError(method, result.Err, result.Revert())
	}
	return contractABI.Unpack(method, result.Return())
}

// send dry runs the message and executes it in the next block only when the dry run succeeds
func (c *accountClient) send(to ethcommon.Address, value *big.Int, contractABI abi.ABI, method string, args ...any) (*ledger.Receipt, error) {
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	msg := &system.Message{From: c.sender, To: to, Value: value, Data: input}
	result, err := c.exec.Call(&system.Message{From: c.sender, To: to, Value: value, Data: input})
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return nil, revertError(method, result.Err, result.Revert())
	}

	receipts, err := common.ExecuteMessages(c.exec, c.lg, msg)
	if err != nil {
		return nil, err
	}
	receipt := receipts[0]
	if receipt.Failed() {
		return receipt, errors.Errorf("tx %s failed: %s", receipt.TxHash, receipt.Ret)
	}
	return receipt, nil
}

func revertError(method string, err error, revert []byte) error {
	if reason, errUnpack := abi.UnpackRevert(revert); errUnpack == nil {
		return errors.Errorf("%s reverted: %s", method, reason)
	}
	return errors.Wrapf(err, "%s failed", method)
}

func (c *accountClient) createAccount(owner ethcommon.Address, modules []ethcommon.Address, index *big.Int) (ethcommon.Address, *ledger.Receipt, error) {
	factoryABI := saccount.SmartAccountFactoryBuildConfig.ContractABI()
	outputs, err := c.call(saccount.AccountFactoryAddr, factoryABI, "getAddressForCounterFactualAccount", owner, modules, index)
	if err != nil {
		return ethcommon.Address{}, nil, err
	}
	receipt, err := c.send(saccount.AccountFactoryAddr, nil, factoryABI, "deployCounterFactualAccount", owner, modules, index)
	if err != nil {
		return ethcommon.Address{}, receipt, err
	}
	return outputs[0].(ethcommon.Address), receipt, nil
}

func (c *accountClient) view(account ethcommon.Address, method string, args ...any) (any, error) {
	outputs, err := c.call(account, saccount.SmartAccountABI(), method, args...)
	if err != nil {
		return nil, err
	}
	return outputs[0], nil
}

func (c *accountClient) info(account ethcommon.Address) (*accountInfo, error) {
	if !c.exec.NativeVM().IsContract(c.lg.StateLedger, account) {
		return nil, errors.Errorf("account %s is not deployed", account)
	}
	info := &accountInfo{Address: account, Balance: c.lg.StateLedger.GetBalance(account)}
	for method, dst := range map[string]*ethcommon.Address{
		"owner":              &info.Owner,
		"getImplementation":  &info.Implementation,
		"entryPoint":         &info.EntryPoint,
		"getGuard":           &info.Guard,
		"getFallbackHandler": &info.FallbackHandler,
	} {
		out, err := c.view(account, method)
		if err != nil {
			return nil, err
		}
		*dst = out.(ethcommon.Address)
	}
	out, err := c.view(account, "VERSION")
	if err != nil {
		return nil, err
	}
	info.Version = out.(string)
	if out, err = c.view(account, "getNonce", big.NewInt(0)); err != nil {
		return nil, err
	}
	info.Nonce = out.(*big.Int)
	if out, err = c.view(account, "getDeposit"); err != nil {
		return nil, err
	}
	info.Deposit = out.(*big.Int)
	if info.Modules, err = c.modules(account); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *accountClient) modules(account ethcommon.Address) ([]ethcommon.Address, error) {
	outputs, err := c.call(account, saccount.SmartAccountABI(), "getModulesPaginated", saccount.SentinelModules, big.NewInt(100))
	if err != nil {
		return nil, err
	}
	return outputs[0].([]ethcommon.Address), nil
}

// prevModule finds the list entry pointing at module, disableModule needs it
func (c *accountClient) prevModule(account, module ethcommon.Address) (ethcommon.Address, error) {
	modules, err := c.modules(account)
	if err != nil {
		return ethcommon.Address{}, err
	}
	prev := saccount.SentinelModules
	for _, m := range modules {
		if m == module {
			return prev, nil
		}
		prev = m
	}
	return ethcommon.Address{}, errors.Errorf("module %s is not enabled on %s", module, account)
}

// execTransaction signs tx with the owner key under batchId and relays it without refund
func (c *accountClient) execTransaction(account ethcommon.Address, key *crypto.Secp256k1PrivateKey, tx interfaces.Transaction, batchId *big.Int) (*ledger.Receipt, error) {
	if tx.Value == nil {
		tx.Value = new(big.Int)
	}
	if tx.TargetTxGas == nil {
		tx.TargetTxGas = new(big.Int)
	}
	if tx.Data == nil {
		tx.Data = []byte{}
	}
	refund := interfaces.EmptyFeeRefund()
	nonce, err := c.view(account, "getNonce", batchId)
	if err != nil {
		return nil, err
	}
	hash, err := c.view(account, "getTransactionHash", tx.To, tx.Value, tx.Data, tx.Operation, tx.TargetTxGas,
		refund.BaseGas, refund.GasPrice, refund.TokenGasPriceFactor, refund.GasToken, refund.RefundReceiver, batchId, nonce)
	if err != nil {
		return nil, err
	}
	txHash := hash.([32]byte)
	signature, err := key.Sign(txHash[:])
	if err != nil {
		return nil, err
	}
	return c.send(account, nil, saccount.SmartAccountABI(), "execTransaction", tx, batchId, nonce, refund, signature)
}

// selfCall runs an account management method through execTransaction, the account calls itself
func (c *accountClient) selfCall(account ethcommon.Address, key *crypto.Secp256k1PrivateKey, method string, args ...any) (*ledger.Receipt, error) {
	data, err := saccount.SmartAccountABI().Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	return c.execTransaction(account, key, interfaces.Transaction{
		To:        account,
		Data:      data,
		Operation: uint8(interfaces.Call),
	}, new(big.Int))
}
