// Package optimistic implements the mutation pattern used for favorites,
// rentals and returns: apply the change locally first, confirm it remotely,
// and reconcile with the server's answer.
//
// The engine assumes the caller's single-threaded, event-driven model: it
// takes no locks and does not queue concurrent mutations of the same field.
// Two rapid mutations race, and the last response to arrive wins.
package optimistic

import "context"

// Attempt runs one optimistic mutation over *field.
//
//  1. The current value is snapshotted.
//  2. next is written to *field immediately, so the caller's view reflects
//     the change with zero latency.
//  3. call issues the remote request. When it returns a non-nil entity, the
//     server's value replaces the optimistic guess verbatim (the server may
//     have deduplicated or reordered). A nil entity with nil error keeps
//     the optimistic value.
//  4. On error the snapshot is restored exactly and the error is returned;
//     *field is never left at a value the server did not confirm.
func Attempt[T any](ctx context.Context, field *T, next T, call func(context.Context) (*T, error)) error {
	snapshot := *field
	*field = next

	confirmed, err := call(ctx)
	if err != nil {
		*field = snapshot
		return err
	}
	if confirmed != nil {
		*field = *confirmed
	}
	return nil
}
