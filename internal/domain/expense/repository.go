package expense

import "context"

// Repository defines expense persistence operations
type Repository interface {
	Create(ctx context.Context, e *Expense) error
}
