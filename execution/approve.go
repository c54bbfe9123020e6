package execution

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

const erc20ApproveABI = `[{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

// approveCalldata builds the hex-encoded calldata for an ERC-20 approve call
// granting the spender permission to move the given amount.
//
// Parameters:
// - spender: address allowed to spend the tokens.
// - amount: allowance amount in smallest units.
//
// Returns:
// - string: 0x-prefixed calldata.
// - error: non-nil if the ABI could not be packed.
func approveCalldata(spender string, amount *big.Int) (string, error) {
	parsedABI, err := abi.JSON(strings.NewReader(erc20ApproveABI))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse ERC20 approve ABI")
	}

	data, err := parsedABI.Pack("approve", common.HexToAddress(spender), amount)
	if err != nil {
		return "", errors.Wrap(err, "failed to pack approve calldata")
	}

	return hexutil.Encode(data), nil
}
