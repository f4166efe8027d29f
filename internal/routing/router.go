// Package routing picks the AI tier for a request from a complexity estimate.
package routing

import (
	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/profile"
)

// Policy holds the complexity thresholds and the points each one adds.
type Policy struct {
	LargePool          int     `mapstructure:"large-pool"`
	LargePoolPoints    float64 `mapstructure:"large-pool-points"`
	MediumPool         int     `mapstructure:"medium-pool"`
	MediumPoolPoints   float64 `mapstructure:"medium-pool-points"`
	ManyFields         int     `mapstructure:"many-fields"`
	ManyFieldsPoints   float64 `mapstructure:"many-fields-points"`
	SomeFields         int     `mapstructure:"some-fields"`
	SomeFieldsPoints   float64 `mapstructure:"some-fields-points"`
	CareerPaths        int     `mapstructure:"career-paths"`
	CareerPathsPoints  float64 `mapstructure:"career-paths-points"`
	Cities             int     `mapstructure:"cities"`
	CitiesPoints       float64 `mapstructure:"cities-points"`
	CompanyTypes       int     `mapstructure:"company-types"`
	CompanyTypesPoints float64 `mapstructure:"company-types-points"`

	// PremiumThreshold is exclusive: a score must exceed it.
	PremiumThreshold float64 `mapstructure:"threshold"`
}

func DefaultPolicy() Policy {
	return Policy{
		LargePool:          100,
		LargePoolPoints:    0.3,
		MediumPool:         50,
		MediumPoolPoints:   0.2,
		ManyFields:         5,
		ManyFieldsPoints:   0.2,
		SomeFields:         3,
		SomeFieldsPoints:   0.1,
		CareerPaths:        2,
		CareerPathsPoints:  0.2,
		Cities:             3,
		CitiesPoints:       0.1,
		CompanyTypes:       2,
		CompanyTypesPoints: 0.2,
		PremiumThreshold:   0.85,
	}
}

// Decision is the routing outcome for one request.
type Decision struct {
	Score   float64
	Premium bool
}

type Router struct {
	policy Policy
}

func New(policy Policy) *Router {
	return &Router{policy: policy}
}

// Score returns the additive complexity estimate in [0, 1].
func (r *Router) Score(jobs []domain.Job, p *profile.Profile) float64 {
	p = p.Normalize()
	pol := r.policy
	score := 0.0

	switch n := len(jobs); {
	case n > pol.LargePool:
		score += pol.LargePoolPoints
	case n > pol.MediumPool:
		score += pol.MediumPoolPoints
	}

	switch n := p.PopulatedFields(); {
	case n > pol.ManyFields:
		score += pol.ManyFieldsPoints
	case n > pol.SomeFields:
		score += pol.SomeFieldsPoints
	}

	if len(p.CareerPaths) > pol.CareerPaths {
		score += pol.CareerPathsPoints
	}
	if len(p.TargetCities) > pol.Cities {
		score += pol.CitiesPoints
	}
	if len(p.CompanyTypes) > pol.CompanyTypes {
		score += pol.CompanyTypesPoints
	}

	return min(score, 1)
}

func (r *Router) Decide(jobs []domain.Job, p *profile.Profile) Decision {
	score := r.Score(jobs, p)
	return Decision{Score: score, Premium: score > r.policy.PremiumThreshold}
}
