// Package pool loads job pools and candidate profiles from YAML or JSON files.
package pool

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/profile"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

type jobRecord struct {
	JobHash          string   `yaml:"job_hash"`
	Title            string   `yaml:"title"`
	Company          string   `yaml:"company"`
	Location         string   `yaml:"location"`
	Description      string   `yaml:"description"`
	Categories       []string `yaml:"categories"`
	OriginalPostedAt string   `yaml:"original_posted_at"`
	CreatedAt        string   `yaml:"created_at"`
}

type jobsFile struct {
	Jobs []jobRecord `yaml:"jobs"`
}

type profilesFile struct {
	Profiles []map[string]any `yaml:"profiles"`
}

// LoadJobs reads a `jobs:` document. Pool order is file order.
func LoadJobs(path string) ([]domain.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file %q: %w", path, err)
	}
	return ParseJobs(data)
}

func ParseJobs(data []byte) ([]domain.Job, error) {
	var file jobsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	jobs := make([]domain.Job, 0, len(file.Jobs))
	for i, rec := range file.Jobs {
		posted, err := parseTime(rec.OriginalPostedAt)
		if err != nil {
			return nil, fmt.Errorf("job %d original_posted_at: %w", i+1, err)
		}
		created, err := parseTime(rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("job %d created_at: %w", i+1, err)
		}

		jobs = append(jobs, domain.Job{
			JobHash:          strings.TrimSpace(rec.JobHash),
			Title:            rec.Title,
			Company:          rec.Company,
			Location:         rec.Location,
			Description:      rec.Description,
			Categories:       rec.Categories,
			OriginalPostedAt: posted,
			CreatedAt:        created,
		})
	}

	return jobs, nil
}

// LoadProfiles reads a `profiles:` document. Each entry may use either list or
// comma-separated string values.
func LoadProfiles(path string) ([]*profile.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file %q: %w", path, err)
	}
	return ParseProfiles(data)
}

func ParseProfiles(data []byte) ([]*profile.Profile, error) {
	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	out := make([]*profile.Profile, 0, len(file.Profiles))
	for i, raw := range file.Profiles {
		p, err := profile.FromMap(raw)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i+1, err)
		}
		out = append(out, p)
	}

	return out, nil
}

// FindProfile returns the profile whose identity matches email.
func FindProfile(profiles []*profile.Profile, email string) (*profile.Profile, error) {
	want := strings.ToLower(strings.TrimSpace(email))
	for _, p := range profiles {
		if p.Identity() == want {
			return p, nil
		}
	}
	return nil, fmt.Errorf("profile %q not found", email)
}

func parseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized time format " + v)
}
