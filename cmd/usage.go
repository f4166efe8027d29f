package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/budget"
	"github.com/spigell/jobmatch/internal/logger"
)

var usageSince time.Duration

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Print AI spend per identity recorded in the budget ledger",
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
		if config.Budget.LedgerPath == "" {
			return errors.New("budget.ledger-path is not configured")
		}

		ledger, err := budget.OpenLedger(config.Budget.LedgerPath)
		if err != nil {
			return err
		}
		defer ledger.Close()

		since := time.Time{}
		if usageSince > 0 {
			since = time.Now().Add(-usageSince)
		}

		totals, err := ledger.Totals(cmd.Context(), since)
		if err != nil {
			return err
		}

		var cost float64
		for _, t := range totals {
			cost += t.Cost
		}
		log.Info("ledger totals", zap.Int("identities", len(totals)), zap.Float64("cost", cost))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(totals)
	},
}

func init() {
	usageCmd.Flags().DurationVar(&usageSince, "since", 24*time.Hour, "look back window, 0 for the whole ledger")

	rootCmd.AddCommand(usageCmd)
}
