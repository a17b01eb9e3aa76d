package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dochub/internal/logging"
	"dochub/pkg/client"
)

var (
	configPath string
	mode       string
	output     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "dochub",
	Short:         "Command line client for the DocHub document service",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Run выполняет CLI и возвращает код выхода
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the client config file")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "Backend mode: http or mock (overrides DOCHUB_MODE)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: table (default), json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log client notifications")
}

// configureLogging уводит логи из stdout, чтобы не портить вывод команд.
// Без --verbose остаются только ошибки.
func configureLogging(w io.Writer, verbose bool) error {
	logging.SetOutput(w)
	if verbose {
		return logging.SetLogLevel("info")
	}
	return logging.SetLogLevel("error")
}

// newClient собирает SDK из конфигурации и флагов
func newClient() (*client.Client, error) {
	if err := configureLogging(os.Stderr, verbose); err != nil {
		return nil, err
	}

	cfg, err := client.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if mode != "" {
		cfg.Mode = mode
	}

	var opts []client.Option
	if verbose {
		opts = append(opts, client.WithNotifier(client.NewLogNotifier()))
	}
	return client.New(*cfg, opts...)
}

// withClient выполняет fn с готовым клиентом
func withClient(fn func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return fn(cmd.Context(), cmd, c, args)
	}
}

// requireLogin проверяет сохраненную сессию
func requireLogin(ctx context.Context, c *client.Client) (*client.User, error) {
	if err := c.Session.Restore(ctx); err != nil {
		return nil, fmt.Errorf("session is no longer valid, run `dochub login`: %w", err)
	}
	user := c.Session.User()
	if user == nil {
		return nil, fmt.Errorf("not logged in, run `dochub login`")
	}
	return user, nil
}
