package dbconfig

import (
	"context"
	"database/sql"
	"strings"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/ClipFinance/funding-lib/dbconfig/models"
)

// GetChains returns all chains from the database, optionally filtering by active status.
func (dc *DBConfig) GetChains(ctx context.Context, activeOnly bool) ([]models.Chain, error) {
	db, err := sql.Open("postgres", dc.dbConnStr)
	if err != nil {
		return nil, funderrors.ErrDatabaseConnect
	}
	defer db.Close()

	query := `
      SELECT
          id,
          chain_id,
          name,
          chain_type,
          rpc_url,
          native_symbol,
          native_decimals,
          active,
          created_at,
          updated_at
      FROM chains
  `

	var args []interface{}
	if activeOnly {
		query += " WHERE active = $1"
		args = append(args, true)
	}

	query += " ORDER BY chain_id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, funderrors.ErrDatabaseConnect
	}
	defer rows.Close()

	var chains []models.Chain
	for rows.Next() {
		chain, err := scanChain(rows.Scan)
		if err != nil {
			return nil, funderrors.ErrDatabaseConnect
		}
		chains = append(chains, *chain)
	}

	if err = rows.Err(); err != nil {
		return nil, funderrors.ErrDatabaseConnect
	}

	return chains, nil
}

// GetChainByID returns a single chain row by its chain id.
func (dc *DBConfig) GetChainByID(ctx context.Context, chainID string) (*models.Chain, error) {
	if chainID == "" {
		return nil, funderrors.ErrInvalidChainID
	}

	db, err := sql.Open("postgres", dc.dbConnStr)
	if err != nil {
		return nil, funderrors.ErrDatabaseConnect
	}
	defer db.Close()

	row := db.QueryRowContext(ctx, `
       SELECT
           id,
           chain_id,
           name,
           chain_type,
           rpc_url,
           native_symbol,
           native_decimals,
           active,
           created_at,
           updated_at
       FROM chains
       WHERE chain_id = $1
    `, chainID)

	chain, err := scanChain(row.Scan)
	if err == sql.ErrNoRows {
		return nil, funderrors.ErrChainNotFound
	}
	if err != nil {
		return nil, funderrors.ErrDatabaseConnect
	}

	return chain, nil
}

func scanChain(scan func(dest ...interface{}) error) (*models.Chain, error) {
	var chain models.Chain
	var chainType sql.NullString
	var rpcUrl sql.NullString
	var nativeSymbol sql.NullString
	var nativeDecimals sql.NullInt32

	err := scan(
		&chain.ID,
		&chain.ChainID,
		&chain.Name,
		&chainType,
		&rpcUrl,
		&nativeSymbol,
		&nativeDecimals,
		&chain.Active,
		&chain.CreatedAt,
		&chain.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if chainType.Valid {
		chain.Type = types.ParseChainType(strings.ToUpper(chainType.String))
	}
	if rpcUrl.Valid {
		chain.RpcUrl = rpcUrl.String
	}
	if nativeSymbol.Valid {
		chain.NativeSymbol = nativeSymbol.String
	}
	if nativeDecimals.Valid {
		chain.NativeDecimals = nativeDecimals.Int32
	}

	return &chain, nil
}
