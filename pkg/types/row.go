package types

// Row is an ordered sequence of Values. Its arity matches the column-name
// slice of the QueryResult that carries it.
type Row []Value

// QueryResult carries the outcome of a single statement. Success=false
// implies Rows is empty, ErrorMessage is non-empty, and Err carries the
// failure-class sentinel for errors.Is checks.
type QueryResult struct {
	Rows         []Row
	Columns      []string
	AffectedRows int64
	LastInsertID int64
	Success      bool
	ErrorMessage string
	Err          error
}

// OK returns an empty successful result.
func OK() QueryResult { return QueryResult{Success: true} }

// Failure returns a failed result carrying the error and its text.
func Failure(err error) QueryResult {
	return QueryResult{Success: false, ErrorMessage: err.Error(), Err: err}
}

// Empty reports whether the result carries no rows.
func (r QueryResult) Empty() bool { return len(r.Rows) == 0 }

// Value returns the value at (row, column name). Missing coordinates
// return Null.
func (r QueryResult) Value(row int, column string) Value {
	if row < 0 || row >= len(r.Rows) {
		return Null()
	}
	for i, c := range r.Columns {
		if c == column && i < len(r.Rows[row]) {
			return r.Rows[row][i]
		}
	}
	return Null()
}

// RowMap returns row i as a column-name keyed map. Out-of-range indexes
// return nil.
func (r QueryResult) RowMap(i int) map[string]Value {
	if i < 0 || i >= len(r.Rows) {
		return nil
	}
	m := make(map[string]Value, len(r.Columns))
	for j, c := range r.Columns {
		if j < len(r.Rows[i]) {
			m[c] = r.Rows[i][j]
		}
	}
	return m
}
