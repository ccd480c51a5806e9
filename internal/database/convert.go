package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// scanRows drains a row set into a QueryResult, mapping driver values onto
// the Value variants. The driver hands back int64, float64, string, []byte,
// bool, time.Time, or nil; anything else is a wiring bug.
func scanRows(rows *sql.Rows) (types.QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return types.QueryResult{}, fmt.Errorf("reading columns: %w", err)
	}

	result := types.OK()
	result.Columns = columns

	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return types.QueryResult{}, fmt.Errorf("scanning row: %w", err)
		}
		row := make(types.Row, len(columns))
		for i, v := range raw {
			row[i], err = fromDriver(v)
			if err != nil {
				return types.QueryResult{}, fmt.Errorf("column %q: %w", columns[i], err)
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return types.QueryResult{}, err
	}
	result.AffectedRows = int64(len(result.Rows))
	return result, nil
}

// fromDriver maps one driver scan target onto a Value.
func fromDriver(v any) (types.Value, error) {
	switch x := v.(type) {
	case nil:
		return types.Null(), nil
	case int64:
		return types.Int(x), nil
	case float64:
		return types.Float(x), nil
	case string:
		return types.Text(x), nil
	case bool:
		return types.Bool(x), nil
	case []byte:
		// Copy: the driver reuses the buffer between rows.
		return types.Blob(append([]byte(nil), x...)), nil
	case time.Time:
		return types.Text(x.UTC().Format(time.RFC3339Nano)), nil
	default:
		return types.Null(), fmt.Errorf("unsupported driver type %T", v)
	}
}
