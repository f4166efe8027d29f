package pool

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const jobsYAML = `
jobs:
  - job_hash: a1
    title: Graduate Analyst
    company: Deloitte
    location: London
    categories: [finance, graduate]
    original_posted_at: 2026-03-01T10:00:00Z
  - job_hash: " b2 "
    title: Junior Developer
    created_at: "2026-02-27 08:30:00"
  - job_hash: c3
    title: Intern
    created_at: 2026-02-20
`

func TestParseJobs(t *testing.T) {
	t.Parallel()

	jobs, err := ParseJobs([]byte(jobsYAML))
	if err != nil {
		t.Fatalf("ParseJobs error: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}

	if jobs[0].JobHash != "a1" || len(jobs[0].Categories) != 2 {
		t.Fatalf("unexpected first job %+v", jobs[0])
	}
	if !jobs[0].OriginalPostedAt.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected posted date %v", jobs[0].OriginalPostedAt)
	}
	if jobs[1].JobHash != "b2" || jobs[1].CreatedAt.Hour() != 8 || !jobs[1].OriginalPostedAt.IsZero() {
		t.Fatalf("unexpected second job %+v", jobs[1])
	}
	if jobs[2].CreatedAt.Day() != 20 {
		t.Fatalf("unexpected date-only parse %v", jobs[2].CreatedAt)
	}
}

func TestParseJobsRejectsBadDates(t *testing.T) {
	t.Parallel()

	_, err := ParseJobs([]byte("jobs:\n  - job_hash: x\n    created_at: yesterday\n"))
	if err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestLoadProfilesAndFind(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `
profiles:
  - email: Grad@Example.com
    target_cities: "London, Paris"
    career_path: [Tech]
    professional_expertise: software
  - email: other@example.com
    languages_spoken: English
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	profiles, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles error: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}

	p, err := FindProfile(profiles, "grad@example.com")
	if err != nil {
		t.Fatalf("FindProfile error: %v", err)
	}
	if len(p.TargetCities) != 2 || p.TargetCities[1] != "Paris" || p.Expertise != "software" {
		t.Fatalf("unexpected profile %+v", p)
	}

	if _, err := FindProfile(profiles, "missing@example.com"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestLoadJobsMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadJobs(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
