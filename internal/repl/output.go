package repl

import (
	"context"
	"fmt"
)

// displayWelcome renders the header once the active tab is known, the way
// the popup fills in its page on load.
func (r *REPL) displayWelcome(ctx context.Context) {
	type tabResult struct {
		url string
		err error
	}
	done := make(chan tabResult, 1)
	r.deps.Tabs.GetCurrentTabURL(ctx, func(url string) {
		done <- tabResult{url: url}
	}, func(err error) {
		done <- tabResult{err: err}
	})

	var res tabResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	fmt.Fprint(r.out, r.formatter.FormatWelcome(res.url))
	if res.err != nil {
		r.status.Render(fmt.Sprintf("Active tab unavailable: %v", res.err))
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) displayError(err error) {
	r.status.Hide()
	fmt.Fprintln(r.out, r.formatter.FormatError(err))
}

func (r *REPL) displayHelp() {
	fmt.Fprint(r.out, r.formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatInfo(msg))
}
