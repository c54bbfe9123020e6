package dbconfig

import (
	"context"
	"database/sql"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/dbconfig/models"
)

// GetChainTokens returns the token catalog for the given chain id, optionally
// filtering by active status.
//
// Parameters:
// - ctx: the context for managing the request.
// - chainID: the chain identifier.
// - activeOnly: a boolean flag to filter only active tokens.
//
// Returns:
// - []models.Token: a slice of token models.
// - error: an error if the database operation fails.
func (dc *DBConfig) GetChainTokens(ctx context.Context, chainID string, activeOnly bool) ([]models.Token, error) {
	if chainID == "" {
		return nil, funderrors.ErrInvalidChainID
	}

	db, err := sql.Open("postgres", dc.dbConnStr)
	if err != nil {
		return nil, funderrors.ErrDatabaseConnect
	}
	defer db.Close()

	query := `
       SELECT
           id,
           chain_id,
           address,
           symbol,
           decimals,
           native,
           usd_price,
           balance,
           active,
           created_at,
           updated_at
       FROM chain_tokens
       WHERE chain_id = $1
    `

	args := []interface{}{chainID}
	if activeOnly {
		query += " AND active = $2"
		args = append(args, true)
	}

	query += " ORDER BY symbol ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, funderrors.ErrDatabaseConnect
	}
	defer rows.Close()

	var tokens []models.Token
	for rows.Next() {
		var token models.Token
		var usdPrice sql.NullString
		var balance sql.NullString

		err := rows.Scan(
			&token.ID,
			&token.ChainID,
			&token.Address,
			&token.Symbol,
			&token.Decimals,
			&token.Native,
			&usdPrice,
			&balance,
			&token.Active,
			&token.CreatedAt,
			&token.UpdatedAt,
		)
		if err != nil {
			return nil, funderrors.ErrDatabaseConnect
		}

		if usdPrice.Valid {
			price, err := decimal.NewFromString(usdPrice.String)
			if err == nil {
				token.USDPrice = price
			}
		}
		if balance.Valid {
			token.Balance = balance.String
			token.BalanceFormatted = formatBalance(balance.String, token.Decimals)
		}

		tokens = append(tokens, token)
	}

	if err = rows.Err(); err != nil {
		return nil, funderrors.ErrDatabaseConnect
	}

	return tokens, nil
}

// GetNativeTokenAddress returns the native token address for the given chain id.
func (dc *DBConfig) GetNativeTokenAddress(ctx context.Context, chainID string) (string, error) {
	db, err := sql.Open("postgres", dc.dbConnStr)
	if err != nil {
		return "", errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	var address string
	err = db.QueryRowContext(ctx, `
        SELECT address
        FROM chain_tokens
        WHERE chain_id = $1 AND native = true
    `, chainID).Scan(&address)
	if err != nil {
		return "", errors.Wrap(err, "failed to get native token address")
	}

	return address, nil
}

// UpdateTokenPrice stores a freshly fetched USD unit price for a token.
// Prices are volatile, so the catalog is refreshed before every quote cycle.
func (dc *DBConfig) UpdateTokenPrice(ctx context.Context, chainID string, tokenAddress string, price decimal.Decimal) error {
	db, err := sql.Open("postgres", dc.dbConnStr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	result, err := db.ExecContext(ctx, `
       UPDATE chain_tokens
       SET
           usd_price = $1,
           updated_at = NOW()
       WHERE chain_id = $2 AND address = $3
    `, price.String(), chainID, tokenAddress)
	if err != nil {
		return errors.Wrap(err, "failed to update token price")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}

	if affected == 0 {
		return funderrors.ErrTokenNotFound
	}

	return nil
}

// UpdateBalance caches a scanned token balance for the given chain and token
// address, in both raw and formatted form.
func (dc *DBConfig) UpdateBalance(ctx context.Context, chainID string, tokenAddress string, balance *big.Int) error {
	db, err := sql.Open("postgres", dc.dbConnStr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	var decimals int32
	err = db.QueryRowContext(ctx, `
       SELECT decimals
       FROM chain_tokens
       WHERE chain_id = $1 AND address = $2
    `, chainID, tokenAddress).Scan(&decimals)
	if err != nil {
		return errors.Wrap(err, "failed to get token decimals")
	}

	formatted := decimal.NewFromBigInt(balance, -decimals)

	result, err := db.ExecContext(ctx, `
       UPDATE chain_tokens
       SET
           balance = $1,
           balance_formatted = $2,
           updated_at = NOW()
       WHERE chain_id = $3 AND address = $4
    `, balance.String(), formatted.String(), chainID, tokenAddress)
	if err != nil {
		return errors.Wrap(err, "failed to update token balance")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}

	if affected == 0 {
		return funderrors.ErrTokenNotFound
	}

	return nil
}

func formatBalance(raw string, decimals int32) decimal.Decimal {
	units, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -decimals)
}
