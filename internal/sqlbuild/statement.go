package sqlbuild

// Statement is SQL text tagged with whether it mutates state.
//
// Write statements are executed inside BEGIN ... COMMIT by the database
// gateway and rolled back on any error, so a stored function that raises
// partway through a multi-row operation leaves nothing behind.
type Statement struct {
	SQL   string
	Write bool
}

// Read tags sql as a read-only statement.
func Read(sql string) Statement {
	return Statement{SQL: sql}
}

// Transactionify tags sql as a write that must run in its own transaction.
func Transactionify(sql string) Statement {
	return Statement{SQL: sql, Write: true}
}

// Read renders a read-only call of f.
func (f Function) Read(args ...any) (Statement, error) {
	sql, err := f.Call(args...)
	if err != nil {
		return Statement{}, err
	}
	return Read(sql), nil
}

// Write renders a call of f wrapped in a transaction.
func (f Function) Write(args ...any) (Statement, error) {
	sql, err := f.Call(args...)
	if err != nil {
		return Statement{}, err
	}
	return Transactionify(sql), nil
}
