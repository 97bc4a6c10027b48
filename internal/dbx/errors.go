package dbx

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ClassifyError maps a driver error onto one of the common error kinds:
// unique violations become ErrorConflict, foreign key violations and
// sql.ErrNoRows become ErrorNotFound, everything else ErrorStorage.
// The original error stays in the chain. nil stays nil.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorConflict) || errors.Is(err, common.ErrorStorage) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", common.ErrorNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %w", common.ErrorConflict, pgErr.ConstraintName, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s: %w", common.ErrorNotFound, pgErr.ConstraintName, err)
		}
	}
	return fmt.Errorf("%w: %w", common.ErrorStorage, err)
}

// ExpectOneRow turns the result of an UPDATE/DELETE by primary key into an
// error: driver errors are classified, zero affected rows is
// common.ErrorNotFound.
func ExpectOneRow(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", ClassifyError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", ClassifyError(err))
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
