package evm

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
)

// TransactionReceipt looks up the mined receipt for the given hash. While the
// transaction is still pending the error wraps ErrReceiptNotFound, so polling
// loops can keep waiting without treating it as a hard failure.
//
// Parameters:
// - ctx: the context for managing the request.
// - txHash: the transaction hash to look up.
//
// Returns:
// - *types.Receipt: the mined receipt.
// - error: an error if the lookup fails or the receipt is not available yet.
func (e *evm) TransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	receipt, err := client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, errors.Wrap(funderrors.ErrReceiptNotFound, txHash)
		}
		return nil, errors.Wrap(err, "failed to get transaction receipt")
	}

	return &types.Receipt{
		TxHash:      txHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		Succeeded:   receipt.Status == ethtypes.ReceiptStatusSuccessful,
	}, nil
}
