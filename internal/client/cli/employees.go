package cli

import (
	"context"
	"fmt"

	"simuorg/internal/client/fetch"
	"simuorg/internal/client/models"
)

// Employees is the roster page. Mounting it creates a fresh fetcher whose
// transitions drive the rendering: loading indicator, fixed error message,
// or one row per record.
func (a *App) Employees(ctx context.Context) error {
	f := fetch.New[[]models.Employee](a.log)
	defer f.Close()

	f.Subscribe(func(st fetch.State[[]models.Employee]) {
		a.renderEmployees(st)
	})

	f.Start(ctx, func(ctx context.Context) ([]models.Employee, error) {
		return a.gw.FetchEmployees(ctx)
	})
	return nil
}

func (a *App) renderEmployees(st fetch.State[[]models.Employee]) {
	switch st.Phase {
	case fetch.PhaseLoading:
		fmt.Fprintln(a.out, "Loading employees...")
	case fetch.PhaseError:
		fmt.Fprintln(a.out, st.ErrorMessage)
	case fetch.PhaseSuccess:
		if len(st.Data) == 0 {
			fmt.Fprintln(a.out, "No employees yet. Upload a dataset first.")
			return
		}
		fmt.Fprintln(a.out, "id / name / department / score")
		for _, e := range st.Data {
			fmt.Fprintln(a.out, e.DisplayRow())
		}
	}
}
