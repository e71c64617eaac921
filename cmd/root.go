package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile    string
	storageDriver string
	databaseDSN   string
	redisAddr     string
	storageKey    string
	logLevel      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "todo",
		Short:         "Todo list manager",
		Long:          "Create, edit, filter, complete and delete tasks kept in a durable key-value store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "TOML config file (default todo.toml when present)")
	flags.StringVar(&opts.storageDriver, "storage", "", "storage driver: sqlite, redis or memory")
	flags.StringVar(&opts.databaseDSN, "dsn", "", "sqlite database file")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "redis host:port")
	flags.StringVar(&opts.storageKey, "key", "", "storage key holding the task list")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newToggleCmd(opts),
		newDeleteCmd(opts),
		newTUICmd(opts),
	)

	return rootCmd
}

// Run executes the CLI with explicit arguments and streams.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.ExecuteContext(ctx)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
