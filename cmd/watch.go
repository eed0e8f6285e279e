package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/samwightt/gqlbind/internal/config"
	"github.com/samwightt/gqlbind/internal/log"
	"github.com/spf13/cobra"
)

const watchDebounce = 200 * time.Millisecond

// fileWatcher calls back after a burst of changes to any of a fixed set of
// files settles. Parent directories are watched rather than the files
// themselves so that editors replacing a file on save are still seen.
type fileWatcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   logr.Logger
}

func newFileWatcher(paths []string, debounce time.Duration, logger logr.Logger) (*fileWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &fileWatcher{fs: fs, files: make(map[string]bool), debounce: debounce, logger: logger}
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fs.Close()
			return nil, err
		}
		w.files[abs] = true
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

func (w *fileWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	return err == nil && w.files[abs]
}

// run blocks until ctx is done or onChange returns an error that isFatal
// accepts. Other errors from onChange are logged and watching continues.
func (w *fileWatcher) run(ctx context.Context, onChange func() error) error {
	defer w.fs.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				w.logger.V(1).Info("change detected", "file", event.Name, "op", event.Op.String())
				pending = time.After(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(err, "watch error")

		case <-pending:
			pending = nil
			if err := onChange(); err != nil {
				if isFatal(err) {
					return err
				}
				w.logger.Info("regeneration failed", "error", err.Error())
			}
		}
	}
}

func watchAndGenerate(cmd *cobra.Command, args []string, opts *generateOptions) error {
	if opts.output == "" && (configFile == nil || len(configFile.Targets) == 0 || len(args) > 0) {
		return errors.New("--watch requires --output")
	}
	if slices.Contains(args, "-") {
		return errors.New("--watch cannot read operations from stdin")
	}

	paths, err := watchedPaths(args)
	if err != nil {
		return err
	}

	if err := runGenerate(cmd, args, opts); isFatal(err) {
		return err
	}

	w, err := newFileWatcher(paths, watchDebounce, log.FromContext(cmd.Context()))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %d files for changes\n", len(paths))
	return w.run(cmd.Context(), func() error {
		if configFilePath != "" {
			reloaded, err := config.Load(configFilePath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return nil
			}
			configFile = reloaded
		}
		return runGenerate(cmd, args, opts)
	})
}

func watchedPaths(args []string) ([]string, error) {
	paths := []string{schemaFilePath}
	if configFilePath != "" {
		paths = append(paths, configFilePath)
	}
	patterns := args
	if configFile != nil && len(args) == 0 {
		for _, t := range configFile.Targets {
			paths = append(paths, configFile.TargetSchema(t))
			patterns = append(patterns, t.Operations...)
		}
	}
	ops, err := expandOperationPaths(patterns)
	if err != nil {
		return nil, err
	}
	return append(paths, ops...), nil
}
