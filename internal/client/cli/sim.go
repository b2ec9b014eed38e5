package cli

import (
	"context"
	"fmt"

	"simuorg/internal/client/fetch"
)

// Sim is the simulation page. For now it only lists the policies the
// server can run, through the same fetch machinery as every other page.
func (a *App) Sim(ctx context.Context) error {
	f := fetch.New[[]string](a.log)
	defer f.Close()

	f.Subscribe(func(st fetch.State[[]string]) {
		switch st.Phase {
		case fetch.PhaseLoading:
			fmt.Fprintln(a.out, "Loading policies...")
		case fetch.PhaseError:
			fmt.Fprintln(a.out, st.ErrorMessage)
		case fetch.PhaseSuccess:
			fmt.Fprintln(a.out, "Available simulation policies:")
			for _, p := range st.Data {
				fmt.Fprintln(a.out, " -", p)
			}
		}
	})

	f.Start(ctx, func(ctx context.Context) ([]string, error) {
		return a.gw.FetchSimPolicies(ctx)
	})
	return nil
}
