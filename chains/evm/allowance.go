package evm

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/ClipFinance/funding-lib/chains/evm/generated"
	"github.com/ClipFinance/funding-lib/common/types"
)

// GetAllowance reads the ERC-20 spending limit the owner has granted to the
// spender. The native asset has no allowance concept and reads as unlimited.
//
// Parameters:
// - ctx: the context for managing the request.
// - tokenAddress: the token contract address.
// - owner: the token owner address.
// - spender: the spender contract address.
//
// Returns:
// - *big.Int: the raw allowance.
// - error: an error if the allowance read fails.
func (e *evm) GetAllowance(ctx context.Context, tokenAddress string, owner string, spender string) (*big.Int, error) {
	e.clientMutex.RLock()
	client := e.client
	e.clientMutex.RUnlock()

	if client == nil {
		return nil, errors.New("client not initialized")
	}

	if tokenAddress == "" || strings.EqualFold(tokenAddress, types.ZeroAddress) {
		return math.MaxBig256, nil
	}

	tokenAbi, err := abi.JSON(strings.NewReader(generated.ERC20ABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token ABI")
	}

	data, err := tokenAbi.Pack("allowance", common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack allowance data")
	}

	tokenAddr := common.HexToAddress(tokenAddress)
	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &tokenAddr,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call allowance")
	}

	if len(result) == 0 {
		return nil, errors.New("empty result from allowance call")
	}

	allowance := new(big.Int)
	allowance.SetBytes(result)

	return allowance, nil
}
