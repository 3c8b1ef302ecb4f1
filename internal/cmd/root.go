// Package cmd provides the entrypoint and CLI command configuration for the
// lazycopy application.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"runtime/pprof"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kpumuk/lazycopy/internal/clipboard"
	"github.com/kpumuk/lazycopy/internal/ui"
)

func buildVersion(version, commit, date, builtBy string) string {
	result := version
	if commit != "" {
		result = fmt.Sprintf("%s\ncommit: %s", result, commit)
	}
	if date != "" {
		result = fmt.Sprintf("%s\nbuilt at: %s", result, date)
	}
	if builtBy != "" {
		result = fmt.Sprintf("%s\nbuilt by: %s", result, builtBy)
	}
	result = fmt.Sprintf("%s\ngoos: %s\ngoarch: %s", result, runtime.GOOS, runtime.GOARCH)
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
		result = fmt.Sprintf("%s\nmodule version: %s, checksum: %s", result, info.Main.Version, info.Main.Sum)
	}

	return result
}

// newRootCmd builds the command tree without executing it.
func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lazycopy [text...]",
		Short: "Copy text to the clipboard from the terminal.",
		Long: "Copy text to the clipboard from the terminal.\n\n" +
			"Entries come from arguments, --file, or lines piped into stdin. Over SSH,\n" +
			"or when no clipboard tool is installed, text is sent to the terminal with OSC 52.",
		Args: cobra.ArbitraryArgs,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default $XDG_CONFIG_HOME/lazycopy/config.yaml)")
	pf.String("redis", "", "redis URL for copy history, e.g. redis://localhost:6379/0")
	pf.Duration("reset-delay", clipboard.DefaultResetDelay, "how long the copied confirmation stays visible")
	pf.Int("history-limit", 100, "number of copies kept in history")
	pf.Bool("force-osc52", false, "always copy through the terminal with OSC 52")
	pf.String("log-file", "", "write diagnostics to this file")
	rootCmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "osc52":
			name = "force-osc52"
		}
		return pflag.NormalizedName(name)
	})

	rootCmd.Flags().String("file", "", "read entries from file, one per line")
	rootCmd.Flags().String("cpuprofile", "", "write cpu profile to file")
	rootCmd.Flags().BoolP("help", "h", false, "help for lazycopy")

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runUI(cmd, args, version)
	}

	rootCmd.AddCommand(newCopyCmd(), newHistoryCmd())
	return rootCmd
}

// Execute initializes and runs the lazycopy terminal application.
func Execute(version, commit, date, builtBy string) error {
	rootCmd := newRootCmd(version)
	rootCmd.Version = buildVersion(version, commit, date, builtBy)
	rootCmd.SetVersionTemplate(`lazycopy {{printf "version %s\n" .Version}}`)

	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(rootCmd.Version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	)
}

func runUI(cmd *cobra.Command, args []string, version string) error {
	cpuprofile, err := cmd.Flags().GetString("cpuprofile")
	if err != nil {
		return fmt.Errorf("parse cpuprofile flag: %w", err)
	}
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("parse file flag: %w", err)
	}

	entries, err := readEntries(args, file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	var profileFile *os.File
	if cpuprofile != "" {
		file, err := os.Create(cpuprofile)
		if err != nil {
			return fmt.Errorf("create cpuprofile file: %w", err)
		}
		profileFile = file
		if err := pprof.StartCPUProfile(profileFile); err != nil {
			_ = profileFile.Close()
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = profileFile.Close()
		}()
	}

	app := ui.New(ui.Options{
		Entries:    entries,
		Provider:   env.provider,
		ResetDelay: env.cfg.ResetDelay,
		Reporter:   env.reporter,
		History:    env.store,
		Tracker:    env.tracker,
		Version:    version,
	})
	env.logger.Debug("starting ui", zap.Int("entries", len(entries)))

	opts, closeTTY, err := programOptions(cmd.InOrStdin(), tea.OpenTTY)
	if err != nil {
		return err
	}
	defer closeTTY()

	p := tea.NewProgram(app, opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run lazycopy: %w", err)
	}

	return nil
}

// programOptions reads keys from the controlling terminal when stdin is not
// one, e.g. when entries were piped in. The returned func releases it.
func programOptions(stdin io.Reader, openTTY func() (*os.File, *os.File, error)) ([]tea.ProgramOption, func(), error) {
	if isTerminal(stdin) {
		return nil, func() {}, nil
	}

	in, out, err := openTTY()
	if err != nil {
		return nil, nil, fmt.Errorf("open terminal for keyboard input: %w", err)
	}
	closeTTY := func() {
		_ = in.Close()
		if out != nil && out != in {
			_ = out.Close()
		}
	}
	return []tea.ProgramOption{tea.WithInput(in)}, closeTTY, nil
}
