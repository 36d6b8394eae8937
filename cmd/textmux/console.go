package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/textmux/internal/botconfig"
	"github.com/vango-dev/textmux/internal/demo"
	"github.com/vango-dev/textmux/pkg/dispatch"
	"github.com/vango-dev/textmux/pkg/router"
)

func consoleCmd() *cobra.Command {
	var (
		configPath string
		prefix     string
	)

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Dispatch lines from stdin against the demo router",
		Long: `Read lines from standard input and dispatch each one.

Examples:
  textmux console
  echo 'calc 2 add 3' | textmux console`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(configPath, prefix, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to textmux.json")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Required command prefix")

	return cmd
}

func runConsole(configPath, prefix string, in io.Reader, out io.Writer) error {
	cfg, err := botconfig.Load(configPath)
	if err != nil {
		return err
	}
	if prefix != "" {
		cfg.Prefix = prefix
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := router.NewStore(router.WithLogger(logger))
	if _, err := demo.Load(store); err != nil {
		return err
	}
	d := dispatch.New(store, dispatch.WithPrefix(cfg.Prefix), dispatch.WithLogger(logger))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		result, err := d.InvokeText(line, demo.RouterID)
		switch {
		case err == nil:
			fmt.Fprintln(out, result)
		case isExpected(err):
			fmt.Fprintf(out, "! %s\n", reason(err))
		default:
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
	}
	return scanner.Err()
}

// isExpected reports whether the error is a routine dispatch outcome
// rather than a failure.
func isExpected(err error) bool {
	var halted *dispatch.HaltedError
	return errors.Is(err, dispatch.ErrNoMatch) ||
		errors.Is(err, dispatch.ErrWrongPrefix) ||
		errors.As(err, &halted)
}

func reason(err error) string {
	var halted *dispatch.HaltedError
	if errors.As(err, &halted) {
		if v, ok := halted.Message.Get("error"); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return err.Error()
}
