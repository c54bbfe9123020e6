package evm

import (
	"context"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/ClipFinance/funding-lib/common/types"
)

// wallet is the locally backed types.WalletSigner for chains configured with
// a private key. Browser-wallet flows replace it with an external signer.
type wallet struct {
	chain *evm
}

// GetAddress returns the signer's account address.
func (w *wallet) GetAddress(ctx context.Context) (string, error) {
	w.chain.signerMutex.RLock()
	txSigner := w.chain.signer
	w.chain.signerMutex.RUnlock()

	if txSigner == nil {
		return "", errors.New("signer not initialized")
	}

	return txSigner.Address().Hex(), nil
}

// SendTransaction signs and broadcasts the given payload and returns the
// transaction hash.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the transaction payload to sign and submit.
//
// Returns:
// - string: the submitted transaction hash.
// - error: an error if preparation, signing or broadcasting fails.
func (w *wallet) SendTransaction(ctx context.Context, req *types.TransactionRequest) (string, error) {
	e := w.chain

	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	e.signerMutex.RLock()
	txSigner := e.signer
	e.signerMutex.RUnlock()

	if client == nil || txSigner == nil {
		return "", errors.New("client or signer not initialized")
	}

	value := big.NewInt(0)
	if req.Value != "" {
		parsed, ok := new(big.Int).SetString(req.Value, 10)
		if !ok {
			return "", errors.Errorf("invalid transaction value %q", req.Value)
		}
		value = parsed
	}

	var data []byte
	if req.Data != "" && req.Data != "0x" {
		decoded, err := hexutil.Decode(req.Data)
		if err != nil {
			return "", errors.Wrap(err, "failed to decode transaction data")
		}
		data = decoded
	}

	nonce, err := client.PendingNonceAt(ctx, txSigner.Address())
	if err != nil {
		return "", errors.Wrap(err, "failed to get nonce")
	}

	gasLimit, err := w.resolveGasLimit(ctx, req, value, data)
	if err != nil {
		return "", err
	}

	tx, err := w.prepareTransaction(ctx, nonce, req.To, value, data, gasLimit)
	if err != nil {
		return "", err
	}

	signedTx, err := txSigner.SignTx(tx, e.chainID)
	if err != nil {
		e.logger.WithError(err).Error("Failed to sign transaction")
		return "", errors.Wrap(err, "failed to sign transaction")
	}

	if err = client.SendTransaction(ctx, signedTx); err != nil {
		e.logger.WithError(err).Error("Failed to send transaction")
		return "", errors.Wrap(err, "failed to send transaction")
	}

	return signedTx.Hash().Hex(), nil
}

// resolveGasLimit uses the gas limit carried by the payload when present and
// estimates one with headroom otherwise.
func (w *wallet) resolveGasLimit(ctx context.Context, req *types.TransactionRequest, value *big.Int, data []byte) (uint64, error) {
	if req.GasLimit != "" {
		gasLimit, err := strconv.ParseUint(req.GasLimit, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid gas limit %q", req.GasLimit)
		}
		return gasLimit, nil
	}

	estimated, err := w.chain.EstimateGas(ctx, req.To, value, data)
	if err != nil {
		w.chain.logger.WithField("chain", w.chain.config.Name).WithError(err).Warn("Failed to estimate gas")
		return 0, errors.Wrap(err, "failed to estimate gas")
	}

	return estimated * gasLimitHeadroom / 100, nil
}

// prepareTransaction builds an EIP-1559 transaction when the chain supports
// it and a legacy one otherwise.
func (w *wallet) prepareTransaction(ctx context.Context, nonce uint64, toAddress string, value *big.Int, data []byte, gasLimit uint64) (*ethtypes.Transaction, error) {
	e := w.chain
	to := common.HexToAddress(toAddress)

	gasPriceData, err := e.getEIP1559GasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gas price data")
	}

	if gasPriceData.IsEIP1559 {
		return ethtypes.NewTx(&ethtypes.DynamicFeeTx{
			ChainID:   e.chainID,
			Nonce:     nonce,
			GasFeeCap: gasPriceData.MaxFeePerGas,
			GasTipCap: gasPriceData.MaxPriorityFeePerGas,
			Gas:       gasLimit,
			To:        &to,
			Value:     value,
			Data:      data,
		}), nil
	}

	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gas price")
	}

	gasPrice = new(big.Int).Mul(gasPrice, big.NewInt(150))
	gasPrice = new(big.Int).Div(gasPrice, big.NewInt(100))

	return ethtypes.NewTransaction(
		nonce,
		to,
		value,
		gasLimit,
		gasPrice,
		data,
	), nil
}
