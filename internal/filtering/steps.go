package filtering

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/jobmatch/internal/domain"
)

type missingHashFilter struct {
	disabled bool
	reason   string
}

// NewMissingHash creates a filter that removes jobs without an identity.
func NewMissingHash() Filter {
	return &missingHashFilter{}
}

func (f *missingHashFilter) Name() string { return "missing_hash" }

func (f *missingHashFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *missingHashFilter) IsEnabled() bool { return !f.disabled }

func (f *missingHashFilter) Validate(*Config) error { return nil }

func (f *missingHashFilter) Apply(_ context.Context, deps Deps, jobs []domain.Job) ([]domain.Job, Step, error) {
	initial := len(jobs)
	left, dropped := keep(jobs, func(j *domain.Job) bool { return strings.TrimSpace(j.JobHash) != "" })
	if len(dropped) > 0 {
		deps.Logger.Info("excluding jobs without hash", zap.Int("jobs_left", len(left)))
	}
	return left, Step{Initial: initial, Dropped: len(dropped), Left: len(left)}, nil
}

func (f *missingHashFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type companiesFilter struct {
	companies []string
}

// NewExcludedCompanies creates a filter that removes jobs by companies configured in the config.
func NewExcludedCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "excluded_companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg == nil {
		return nil
	}
	for _, c := range cfg.ExcludeCompanies {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			f.companies = append(f.companies, c)
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, jobs []domain.Job) ([]domain.Job, Step, error) {
	initial := len(jobs)
	if len(f.companies) == 0 {
		return jobs, Step{Initial: initial, Left: initial}, nil
	}

	left, dropped := keep(jobs, func(j *domain.Job) bool {
		company := strings.ToLower(strings.TrimSpace(j.Company))
		for _, c := range f.companies {
			if company == c {
				return false
			}
		}
		return true
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding jobs by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", len(left)),
		)
	}

	return left, Step{Initial: initial, Dropped: len(dropped), Left: len(left)}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes jobs listed in an exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, jobs []domain.Job) ([]domain.Job, Step, error) {
	initial := len(jobs)
	if f.path == "" {
		return jobs, Step{Initial: initial, Left: initial}, nil
	}

	hashes, err := ReadExcludeFile(f.path)
	if err != nil {
		return jobs, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	left, dropped := keep(jobs, func(j *domain.Job) bool {
		_, excluded := hashes[j.JobHash]
		return !excluded
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding jobs based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", len(left)),
		)
	}

	return left, Step{Initial: initial, Dropped: len(dropped), Left: len(left)}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type excludeDocument struct {
	JobHashes []string `yaml:"job_hashes"`
}

// ReadExcludeFile loads a `job_hashes:` document. A missing or empty file
// excludes nothing.
func ReadExcludeFile(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}

	var doc excludeDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	out := make(map[string]struct{}, len(doc.JobHashes))
	for _, h := range doc.JobHashes {
		if h = strings.TrimSpace(h); h != "" {
			out[h] = struct{}{}
		}
	}
	return out, nil
}
