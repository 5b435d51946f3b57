package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tacore/config"
	"tacore/internal/logger"
	"tacore/internal/model"
	"tacore/pkg/indicator"
)

// cfg is loaded once per invocation, before any subcommand runs.
var (
	v   *viper.Viper
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tacli",
	Short: "technical analysis indicator toolkit",

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		v = config.New(envFile)
		if err := bindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		cfg = config.Load(v)

		if _, err := logger.InitTo("tacli", cfg.LogLevel, "stderr"); err != nil {
			return err
		}
		zap.L().Debug("config loaded", zap.String("sqlite", cfg.SQLitePath), zap.String("check", cfg.Check))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file to load")
	rootCmd.PersistentFlags().String("log-level", "", "log level")
	rootCmd.PersistentFlags().String("check", "", "validation depth: off, basic or strict")
	rootCmd.PersistentFlags().String("sqlite-path", "", "candle database")
	rootCmd.PersistentFlags().String("redis-addr", "", "redis address for checkpoints and publishing")

	rootCmd.AddCommand(catalogCmd, computeCmd, verifyCmd, benchCmd)
}

// bindFlags binds every flag to its config key (dashes become
// underscores). viper only prefers a flag over env and defaults when it was
// set on the command line.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Name == "env-file" {
			return
		}
		err = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	return errors.Wrap(err, "bind flags")
}

func newCalc() (indicator.Calc[model.Float], error) {
	check, err := indicator.ParseCheck(cfg.Check)
	if err != nil {
		return indicator.Calc[model.Float]{}, err
	}
	return indicator.New[model.Float](check), nil
}
