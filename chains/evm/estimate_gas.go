package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// GasPriceData represents the gas price data for EIP-1559 transactions.
type GasPriceData struct {
	MaxFeePerGas         *big.Int // The maximum fee per gas.
	MaxPriorityFeePerGas *big.Int // The maximum priority fee per gas.
	IsEIP1559            bool     // Indicates if the transaction is EIP-1559.
}

// EstimateGas estimates the gas required for a transaction. When the chain
// has a local signer its address is used as the sender, since token calls
// can revert for an unfunded zero sender.
//
// Parameters:
// - ctx: the context for managing the request.
// - toAddress: the recipient address of the transaction.
// - value: the amount of Ether to send with the transaction.
// - data: the input data for the transaction.
//
// Returns:
// - uint64: the estimated gas required for the transaction.
// - error: an error if the client is not initialized or if the gas estimation fails.
func (e *evm) EstimateGas(ctx context.Context, toAddress string, value *big.Int, data []byte) (uint64, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return 0, errors.New("client not initialized")
	}

	var from common.Address
	e.signerMutex.RLock()
	if e.signer != nil {
		from = e.signer.Address()
	}
	e.signerMutex.RUnlock()

	to := common.HexToAddress(toAddress)
	msg := ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  data,
	}

	return client.EstimateGas(ctx, msg)
}

// getEIP1559GasPrice retrieves the gas price data for EIP-1559 transactions.
// Chains without a base fee in their headers fall back to legacy pricing.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - *GasPriceData: the gas price data for EIP-1559 transactions.
// - error: an error if the client is not initialized or if there is an issue retrieving the gas price data.
func (e *evm) getEIP1559GasPrice(ctx context.Context) (*GasPriceData, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	suggestedTip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		e.logger.WithError(err).Error("Failed to get suggested gas tip")
		suggestedTip = big.NewInt(1)
	}

	if suggestedTip.Cmp(big.NewInt(0)) == 0 {
		suggestedTip = big.NewInt(1)
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		e.logger.WithField("chain", e.config.Name).WithError(err).Warn("Failed to get header by number")
		return nil, errors.Wrap(err, "failed to get header by number")
	}

	baseFee := header.BaseFee
	if baseFee == nil {
		return &GasPriceData{IsEIP1559: false}, nil
	}

	baseFeeBuf := new(big.Int).Mul(baseFee, big.NewInt(130))
	baseFeeBuf = baseFeeBuf.Div(baseFeeBuf, big.NewInt(100))
	maxFeePerGas := new(big.Int).Add(baseFeeBuf, suggestedTip)

	if maxFeePerGas.Cmp(suggestedTip) <= 0 {
		maxFeePerGas = new(big.Int).Add(suggestedTip, baseFee)
	}

	return &GasPriceData{
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: suggestedTip,
		IsEIP1559:            true,
	}, nil
}
