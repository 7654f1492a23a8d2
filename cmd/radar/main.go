package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"token-radar/internal/radar"
	"token-radar/internal/radar/config"
	"token-radar/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	outputDir string
	useReal   bool
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Token radar one-shot runner",
	Long: `Run a single token radar task and write the results to the output directory.

Examples:
  radar discover
  radar trending --output ./out
  radar recommend --real
  radar export --type comparisons --format csv`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "", "output directory (overrides OUTPUT_DIR)")
	rootCmd.PersistentFlags().BoolVar(&useReal, "real", false, "call the real exchange API (overrides USE_REAL_API)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
}

// newCore 按命令行参数覆盖配置后组装组件
func newCore(cmd *cobra.Command) (*radar.Core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if cmd.Flags().Changed("real") {
		cfg.Exchange.UseRealAPI = useReal
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	opts := logger.DefaultOptions()
	opts.Dir = cfg.Log.Dir
	tl := logger.NewLoggerWithOptions("radar", opts)
	logger.SetLogLevel(cfg.Log.Level)

	return radar.New(cfg, tl)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
