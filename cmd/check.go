package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/ai"
	"github.com/spigell/jobmatch/internal/ai/gemini"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/utils"
)

var (
	checkAttempts int
	checkTimeout  time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the configured AI provider answers for both tiers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			return err
		}
		defer log.Sync()

		config, err := getConfig()
		if err != nil {
			log.Error("failed to read configuration", zap.Error(err))
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()

		generator, err := newGenerator(ctx, config.AI)
		if err != nil {
			log.Error("failed to create ai client", zap.Error(err))
			return err
		}

		ranker := gemini.NewRanker(generator, config.AI.Gemini.Config, nil, log)
		for _, tier := range []ai.Tier{ai.TierFast, ai.TierPremium} {
			model := ranker.Model(tier)
			l := logger.WithModelFields(log, gemini.ProviderName, model, string(tier))

			err := utils.Retry(ctx, checkAttempts, time.Second, func(ctx context.Context) error {
				return generator.Ping(ctx, model)
			})
			if err != nil {
				l.Error("ai provider check failed", zap.Error(err))
				return fmt.Errorf("%s model %s: %w", tier, model, err)
			}
			l.Info("ai provider answered")
		}

		return nil
	},
}

func init() {
	checkCmd.Flags().IntVar(&checkAttempts, "attempts", 3, "ping attempts per model")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", time.Minute, "overall check timeout")

	rootCmd.AddCommand(checkCmd)
}
