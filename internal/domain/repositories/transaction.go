package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes a function within a read-write transaction.
	// The transaction commits only when fn returns nil.
	ExecTx(ctx context.Context, fn TxFn) error

	// ExecSnapshot executes a function within a read-only transaction that
	// sees one consistent snapshot for every query it issues.
	ExecSnapshot(ctx context.Context, fn TxFn) error
}
