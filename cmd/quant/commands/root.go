package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
	workers    int
	monthFlag  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Haugen - 9팩터 주식 스코어링 파이프라인",
	Long: `Haugen Factor Model CLI

재무제표와 가격 데이터에서 9개 팩터를 계산하고
가중 z-score로 종목을 평가한 뒤 예측력을 측정합니다.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant validate
  go run ./cmd/quant pipeline
  go run ./cmd/quant stage score --month 2013-03
  go run ./cmd/quant api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "model YAML (default is $MODEL_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "per-ticker concurrency (default is $WORKERS)")
	rootCmd.PersistentFlags().StringVar(&monthFlag, "month", "", "training month YYYY-MM (default is the model month)")
}
