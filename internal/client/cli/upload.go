package cli

import (
	"context"
	"fmt"

	"simuorg/internal/client/upload"
)

// Upload is the dataset submission page: prompt for a CSV path, submit,
// render the status transitions.
func (a *App) Upload(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Path to CSV file", a.out)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(a.out, "No file selected.")
		return nil
	}

	flow := upload.New(a.gw, a.log)
	defer flow.Close()

	flow.Subscribe(func(s upload.Status) {
		switch s {
		case upload.StatusUploading:
			fmt.Fprintln(a.out, "Uploading...")
		case upload.StatusSuccess:
			fmt.Fprintln(a.out, "Dataset uploaded.")
		case upload.StatusFailed:
			fmt.Fprintln(a.out, upload.FailedMessage)
		}
	})

	flow.Select(path)
	flow.Submit(ctx)
	return nil
}
