package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kpumuk/lazycopy/internal/clipboard"
	"github.com/kpumuk/lazycopy/internal/devtools"
	"github.com/kpumuk/lazycopy/internal/history"
	"github.com/kpumuk/lazycopy/internal/ui/components/statusbar"
	"github.com/kpumuk/lazycopy/internal/ui/format"
	"github.com/kpumuk/lazycopy/internal/ui/theme"
)

const copyTimeout = 5 * time.Second

func newCopyCmd() *cobra.Command {
	copyCmd := &cobra.Command{
		Use:   "copy [text...]",
		Short: "Copy text from arguments or stdin and exit.",
		RunE:  runCopy,
	}
	copyCmd.Flags().BoolP("quiet", "q", false, "do not print the confirmation")
	return copyCmd
}

func runCopy(cmd *cobra.Command, args []string) error {
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("parse quiet flag: %w", err)
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		if text, err = readAll(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	copier := clipboard.New(env.provider,
		clipboard.WithResetDelay(env.cfg.ResetDelay),
		clipboard.WithReporter(clipboard.MultiReporter(env.reporter, env.tracker)),
	)
	defer copier.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), copyTimeout)
	defer cancel()

	result := copier.Copy(ctx, text)
	if !result.OK() {
		return fmt.Errorf("copy failed: %w", result.Err)
	}

	if env.store != nil {
		item := history.Item{Text: text, Strategy: result.Strategy.String()}
		if err := env.store.Record(devtools.WithOrigin(ctx, "cmd.copy"), item); err != nil {
			env.logger.Warn("record history", zap.Error(err))
		}
	}

	if !quiet {
		styles := theme.NewStyles()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
			styles.Copied.Render(statusbar.CopiedLabel),
			styles.Muted.Render(fmt.Sprintf("%s via %s", format.Bytes(int64(len(text))), result.Strategy)),
		)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent copies stored in Redis.",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().IntP("limit", "n", 20, "number of items to print")
	historyCmd.Flags().Bool("clear", false, "delete the history instead of printing it")
	return historyCmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("parse limit flag: %w", err)
	}
	clearHistory, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return fmt.Errorf("parse clear flag: %w", err)
	}

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	if env.store == nil {
		return errors.New("copy history is disabled: set --redis or LAZYCOPY_REDIS")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), copyTimeout)
	defer cancel()
	ctx = devtools.WithOrigin(ctx, "cmd.history")

	if clearHistory {
		return env.store.Clear(ctx)
	}

	items, err := env.store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	styles := theme.NewStyles()
	out := cmd.OutOrStdout()
	for _, item := range items {
		age := lipgloss.NewStyle().Width(6).Render(format.DurationSince(item.CopiedAt))
		_, _ = fmt.Fprintf(out, "%s %s %s\n",
			styles.Muted.Render(age),
			styles.Meta.Render(fmt.Sprintf("%-6s", item.Strategy)),
			format.Line(item.Text, 100),
		)
	}
	return nil
}
