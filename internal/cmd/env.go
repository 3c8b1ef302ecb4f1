package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kpumuk/lazycopy/internal/clipboard"
	"github.com/kpumuk/lazycopy/internal/config"
	"github.com/kpumuk/lazycopy/internal/devtools"
	"github.com/kpumuk/lazycopy/internal/history"
)

// environment holds everything a command needs to copy text.
type environment struct {
	cfg      config.Config
	logger   *zap.Logger
	provider clipboard.Provider
	reporter clipboard.Reporter
	tracker  *devtools.Tracker
	store    *history.Store
	closers  []func()
}

// newProvider builds the clipboard provider for the loaded config.
var newProvider = func(cfg config.Config) clipboard.Provider {
	return clipboard.NewSystemProvider(clipboard.WithForceFallback(cfg.ForceOSC52))
}

func setup(cmd *cobra.Command) (*environment, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("parse config flag: %w", err)
	}

	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	env := &environment{
		cfg:      cfg,
		logger:   logger,
		provider: newProvider(cfg),
		reporter: logReporter{logger: logger},
		tracker:  devtools.NewTracker(0),
	}
	env.closers = append(env.closers, func() { _ = logger.Sync() })

	if cfg.Redis != "" {
		store, err := history.NewStore(cfg.Redis, cfg.HistoryLimit, history.WithHook(env.tracker.Hook()))
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("create redis client: %w", err)
		}
		env.store = store
		env.closers = append(env.closers, func() { _ = store.Close() })
		logger.Debug("history enabled", zap.String("redis", store.DisplayRedisURL()), zap.Int("limit", store.Limit()))
	}

	return env, nil
}

// Close releases resources in reverse order of acquisition.
func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

// readEntries collects entries from arguments, a file, or piped stdin, in
// that order of preference. Blank lines are skipped.
func readEntries(args []string, file string, stdin io.Reader) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open entries file: %w", err)
		}
		defer f.Close()
		return scanLines(f)
	}

	if stdin == nil || isTerminal(stdin) {
		return nil, nil
	}
	return scanLines(stdin)
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return lines, nil
}

// readAll reads a single copy payload from stdin.
func readAll(stdin io.Reader) (string, error) {
	if stdin == nil || isTerminal(stdin) {
		return "", errors.New("nothing to copy: pass text as an argument or pipe it into stdin")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
