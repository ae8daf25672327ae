package dispatch

import "context"

// StdinConfirmer builds a taskset.Confirmer backed by a yes/no prompt
// function (e.g. one that reads a terminal line). prompt is invoked with
// the set title and summary; its bool return is passed straight through.
// ctx cancellation unblocks the wait with a non-nil error regardless of
// whether prompt has returned, by racing the two.
func StdinConfirmer(prompt func(setTitle, summary string) (bool, error)) func(ctx context.Context, setTitle, summary string) (bool, error) {
	return func(ctx context.Context, setTitle, summary string) (bool, error) {
		type result struct {
			cont bool
			err  error
		}
		done := make(chan result, 1)
		go func() {
			cont, err := prompt(setTitle, summary)
			done <- result{cont: cont, err: err}
		}()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case r := <-done:
			return r.cont, r.err
		}
	}
}

// AutoConfirmer always continues without waiting — the non-interactive
// default for batch plan runs.
func AutoConfirmer(ctx context.Context, setTitle, summary string) (bool, error) {
	return true, nil
}
