package filewatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ErrModified is the cause of contexts canceled by UntilModifyContext
// when a watched file is modified.
var ErrModified = errors.New("file modified")

// UntilModifyContext returns a context that is canceled
// when one of config files is modified (= written, created, removed, or renamed).
//
// Each file is watched through its parent directory,
// so replacing a file by rename (as editors and k8s ConfigMap do) is also detected.
// Changes only in permission are ignored.
//
// # Args
//
// - ctx: context.Context
//
// - targetFilePath ...string: file pathes to be watched. Empty path is ignored.
//
// # Returns
//
// - context.Context: context that is canceled when one of target files is modified.
// `context.Cause` of the context wraps ErrModified.
//
// - func(): cancel function.
//
// - error: error caused when it fails to start watching files.
//
// If error is not nil, both of the the context and the cancel function are nil.
func UntilModifyContext(ctx context.Context, targetFilePath ...string) (context.Context, func(), error) {
	targets := map[string]struct{}{}
	dirs := map[string]struct{}{}
	for _, f := range targetFilePath {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, nil, err
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, nil, err
		}
	}

	cctx, cancel := context.WithCancelCause(ctx)
	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(fmt.Errorf("watching files: %w", err))
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op == fsnotify.Chmod {
					continue
				}
				if _, ok := targets[filepath.Clean(event.Name)]; !ok {
					continue
				}
				cancel(fmt.Errorf("%w: %s (%s)", ErrModified, event.Name, event.Op.String()))
				return
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
