package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/filtering"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/matching"
	"github.com/spigell/jobmatch/internal/pool"
	"github.com/spigell/jobmatch/internal/profile"
)

const maxParallelProfiles = 4

var (
	jobsFile     string
	profilesFile string
	profileEmail string
	matchAll     bool
	rulesOnly    bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a job pool against one or more candidate profiles",
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runMatch(ctx, config, log); err != nil {
			log.Error("match failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&jobsFile, "jobs", "", "yaml file with the job pool")
	matchCmd.Flags().StringVar(&profilesFile, "profiles", "", "yaml file with candidate profiles")
	matchCmd.Flags().StringVar(&profileEmail, "profile", "", "email of the profile to match")
	matchCmd.Flags().BoolVar(&matchAll, "all", false, "match every profile concurrently")
	matchCmd.Flags().BoolVar(&rulesOnly, "rules-only", false, "skip the ai ranker")

	matchCmd.MarkFlagRequired("jobs")
	matchCmd.MarkFlagRequired("profiles")
	matchCmd.MarkFlagsMutuallyExclusive("profile", "all")

	rootCmd.AddCommand(matchCmd)
}

type matchResult struct {
	Profile string            `json:"profile"`
	Outcome *matching.Outcome `json:"outcome"`
}

func runMatch(ctx context.Context, config *Config, log *zap.Logger) error {
	jobs, err := pool.LoadJobs(jobsFile)
	if err != nil {
		return err
	}

	steps := filtering.Default()
	jobs, err = filtering.Run(ctx, config.Pool, filtering.Deps{Logger: log}, steps, jobs)
	if err != nil {
		return fmt.Errorf("filtering pool: %w", err)
	}
	log.Info("pool ready", zap.Int("jobs", len(jobs)))

	profiles, err := pool.LoadProfiles(profilesFile)
	if err != nil {
		return err
	}

	selected, err := selectProfiles(profiles)
	if err != nil {
		return err
	}

	rt, err := newSession(ctx, config, log, rulesOnly)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn("closing resources", zap.Error(err))
		}
	}()

	results := matchProfiles(ctx, rt.engine, jobs, selected, matching.Options{ForceRules: rulesOnly})

	for tier, usage := range rt.usage.Snapshot() {
		log.Info("ai usage",
			zap.String(logger.FieldTier, string(tier)),
			zap.Int("calls", usage.Calls),
			zap.Int("tokens", usage.Tokens),
		)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if matchAll {
		return enc.Encode(results)
	}
	return enc.Encode(results[0])
}

// matchProfiles runs every profile through one engine so they share its cache.
func matchProfiles(ctx context.Context, engine *matching.Engine, jobs []domain.Job, profiles []*profile.Profile, opts matching.Options) []matchResult {
	results := make([]matchResult, len(profiles))

	var g errgroup.Group
	g.SetLimit(maxParallelProfiles)
	for i, p := range profiles {
		g.Go(func() error {
			results[i] = matchResult{
				Profile: p.Identity(),
				Outcome: engine.Match(ctx, jobs, p, opts),
			}
			return nil
		})
	}
	// Match does not fail, so Wait only joins.
	_ = g.Wait()

	return results
}

func selectProfiles(profiles []*profile.Profile) ([]*profile.Profile, error) {
	if len(profiles) == 0 {
		return nil, errors.New("no profiles found")
	}

	switch {
	case matchAll:
		return profiles, nil
	case profileEmail != "":
		p, err := pool.FindProfile(profiles, profileEmail)
		if err != nil {
			return nil, err
		}
		return []*profile.Profile{p}, nil
	case len(profiles) == 1:
		return profiles, nil
	}

	p, err := chooseProfile(profiles)
	if err != nil {
		return nil, err
	}
	return []*profile.Profile{p}, nil
}

func chooseProfile(profiles []*profile.Profile) (*profile.Profile, error) {
	items := make([]string, len(profiles))
	for i, p := range profiles {
		items[i] = fmt.Sprintf("%s (%s, %s)", p.Identity(), p.PrimaryCareerPath(), p.EntryLevel)
	}

	prompt := promptui.Select{
		Label: "Select profile",
		Items: items,
		Size:  10,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("profile selection: %w", err)
	}

	return profiles[idx], nil
}
