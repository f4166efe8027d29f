package profile

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const anonymousIdentity = "anonymous"

// Profile is the normalized preference set of a single match request.
// Slice fields are never nil after Normalize and contain trimmed, unique values.
type Profile struct {
	Email           string   `mapstructure:"email" json:"email,omitempty"`
	TargetCities    []string `mapstructure:"target_cities" json:"target_cities"`
	Languages       []string `mapstructure:"languages_spoken" json:"languages_spoken"`
	Roles           []string `mapstructure:"roles_selected" json:"roles_selected"`
	CareerPaths     []string `mapstructure:"career_path" json:"career_path"`
	Expertise       string   `mapstructure:"professional_expertise" json:"professional_expertise,omitempty"`
	EntryLevel      string   `mapstructure:"entry_level_preference" json:"entry_level_preference,omitempty"`
	WorkEnvironment string   `mapstructure:"work_environment" json:"work_environment,omitempty"`
	CompanyTypes    []string `mapstructure:"company_types" json:"company_types"`
}

// FromMap decodes loosely shaped preferences (a list or a comma separated string
// for list fields, numbers where strings are expected) into a normalized Profile.
func FromMap(raw map[string]any) (*Profile, error) {
	var p Profile

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return nil, fmt.Errorf("create preferences decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}

	return p.Normalize(), nil
}

// Normalize returns a copy with trimmed strings and cleaned, de-duplicated lists.
func (p *Profile) Normalize() *Profile {
	if p == nil {
		return &Profile{
			TargetCities: []string{},
			Languages:    []string{},
			Roles:        []string{},
			CareerPaths:  []string{},
			CompanyTypes: []string{},
		}
	}

	return &Profile{
		Email:           strings.TrimSpace(p.Email),
		TargetCities:    cleanList(p.TargetCities),
		Languages:       cleanList(p.Languages),
		Roles:           cleanList(p.Roles),
		CareerPaths:     cleanList(p.CareerPaths),
		Expertise:       strings.TrimSpace(p.Expertise),
		EntryLevel:      strings.TrimSpace(p.EntryLevel),
		WorkEnvironment: strings.TrimSpace(p.WorkEnvironment),
		CompanyTypes:    cleanList(p.CompanyTypes),
	}
}

// Identity names the requester for budget accounting.
func (p *Profile) Identity() string {
	if email := strings.TrimSpace(p.Email); email != "" {
		return strings.ToLower(email)
	}
	return anonymousIdentity
}

// IsColdStart reports a user without any expertise or career path signal.
func (p *Profile) IsColdStart() bool {
	return strings.TrimSpace(p.Expertise) == "" && len(p.CareerPaths) == 0
}

// PrimaryCareerPath is the first declared career path, empty when none.
func (p *Profile) PrimaryCareerPath() string {
	if len(p.CareerPaths) == 0 {
		return ""
	}
	return p.CareerPaths[0]
}

// PopulatedFields counts preference fields carrying a value. Email is an
// identity, not a preference, and is not counted.
func (p *Profile) PopulatedFields() int {
	count := 0
	for _, s := range []string{p.Expertise, p.EntryLevel, p.WorkEnvironment} {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	for _, l := range [][]string{p.TargetCities, p.Languages, p.Roles, p.CareerPaths, p.CompanyTypes} {
		if len(l) > 0 {
			count++
		}
	}
	return count
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
