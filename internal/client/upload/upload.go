// Package upload drives the dataset submission flow: a four-state status
// machine (empty -> uploading -> success|failed) around one multipart call.
// It is the upload counterpart of the fetch package: errors become status,
// never text shown to the user beyond one fixed retry prompt.
package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"simuorg/internal/logging"
)

// Status is the render state of the upload view.
type Status string

const (
	StatusEmpty     Status = "empty"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
)

// FailedMessage is the fixed retry prompt shown for any failed upload.
const FailedMessage = "Upload failed. Please try again."

// openFile is a test seam for os.Open.
var openFile = func(path string) (io.ReadCloser, error) { return os.Open(path) }

// Uploader is the single gateway operation the flow needs.
type Uploader interface {
	UploadDataset(ctx context.Context, filename string, file io.Reader) error
}

// Flow owns the selected file for the duration of one submission.
type Flow struct {
	mu          sync.Mutex
	status      Status
	filePath    string
	closed      bool
	uploader    Uploader
	log         logging.Logger
	subscribers []func(Status)
}

// New constructs an empty Flow.
func New(uploader Uploader, log logging.Logger) *Flow {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Flow{status: StatusEmpty, uploader: uploader, log: log}
}

// Select records the file to submit and resets the flow, including from a
// terminal success/failed status.
func (f *Flow) Select(path string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.filePath = path
	f.status = StatusEmpty
	f.mu.Unlock()
	f.notify(StatusEmpty)
}

// Submit sends the selected file to the server: exactly one network call.
// Without a selection it is a no-op (a guarded precondition, not an error).
// Any failure — opening the file, transport, non-2xx — ends in StatusFailed;
// both outcomes are terminal until the next Select, which discards the
// previous file handle either way.
func (f *Flow) Submit(ctx context.Context) {
	f.mu.Lock()
	if f.closed || f.filePath == "" {
		f.mu.Unlock()
		return
	}
	path := f.filePath
	f.filePath = ""
	f.status = StatusUploading
	f.mu.Unlock()
	f.notify(StatusUploading)

	f.settle(ctx, f.send(ctx, path))
}

func (f *Flow) send(ctx context.Context, path string) error {
	file, err := openFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return f.uploader.UploadDataset(ctx, filepath.Base(path), file)
}

func (f *Flow) settle(ctx context.Context, err error) {
	status := StatusSuccess
	if err != nil {
		f.log.Error(ctx, "upload failed", "error", err)
		status = StatusFailed
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.status = status
	f.mu.Unlock()
	f.notify(status)
}

// Status returns the current status.
func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// HasSelection reports whether a file is queued for submission.
func (f *Flow) HasSelection() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filePath != ""
}

// Subscribe registers fn to be called after every status change.
func (f *Flow) Subscribe(fn func(Status)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
}

// Close marks the view unmounted; late settlements are dropped.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *Flow) notify(status Status) {
	f.mu.Lock()
	subs := make([]func(Status), len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(status)
	}
}
