package profile

import "strings"

// Vector is a set of taxonomy-derived terms describing a user or a posting.
type Vector struct {
	Skills     map[string]struct{}
	Industries map[string]struct{}
}

func newVector() Vector {
	return Vector{
		Skills:     make(map[string]struct{}),
		Industries: make(map[string]struct{}),
	}
}

// Taxonomy holds the keyword lists the vectorizer draws from.
type Taxonomy struct {
	// FamilySkills maps a career family to the skills implied by it.
	FamilySkills map[string][]string
	// SkillKeywords are looked up verbatim in posting text.
	SkillKeywords []string
	// IndustryKeywords are looked up verbatim in posting text.
	IndustryKeywords []string
}

// DefaultTaxonomy returns the built-in keyword lists.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		FamilySkills: map[string][]string{
			"software":   {"programming", "development", "coding", "engineering"},
			"data":       {"analytics", "statistics", "machine learning", "sql", "python"},
			"marketing":  {"digital marketing", "content creation", "social media", "branding"},
			"sales":      {"relationship building", "negotiation", "lead generation", "crm"},
			"consulting": {"problem solving", "strategic thinking", "presentation", "analysis"},
			"finance":    {"financial modeling", "accounting", "investment analysis", "risk assessment"},
			"product":    {"product strategy", "user research", "roadmapping", "stakeholder management"},
			"design":     {"user experience", "visual design", "prototyping", "design thinking"},
			"operations": {"process improvement", "project management", "supply chain", "logistics"},
		},
		SkillKeywords: []string{
			"programming", "development", "coding", "engineering", "analytics", "statistics",
			"machine learning", "sql", "python", "javascript", "react", "node", "aws",
			"digital marketing", "content creation", "social media", "branding",
			"relationship building", "negotiation", "lead generation", "crm",
			"problem solving", "strategic thinking", "presentation", "analysis",
			"financial modeling", "accounting", "investment analysis", "risk assessment",
			"product strategy", "user research", "roadmapping", "stakeholder management",
			"user experience", "visual design", "prototyping", "design thinking",
			"process improvement", "project management", "supply chain", "logistics",
		},
		IndustryKeywords: []string{
			"technology", "fintech", "healthcare", "e-commerce", "consulting", "finance",
			"marketing", "advertising", "media", "entertainment", "retail", "manufacturing",
			"automotive", "aerospace", "energy", "real estate", "education", "government",
		},
	}
}

// Vectorizer turns free-text preferences and postings into comparable vectors.
type Vectorizer struct {
	taxonomy Taxonomy
}

func NewVectorizer(taxonomy Taxonomy) *Vectorizer {
	return &Vectorizer{taxonomy: taxonomy}
}

// UserVector builds the user's skills from the expertise label (plus skills of
// every family named in it) and the user's industries from the career paths.
func (v *Vectorizer) UserVector(expertise string, careerPaths []string) Vector {
	vec := newVector()

	expertise = strings.ToLower(strings.TrimSpace(expertise))
	if expertise != "" {
		vec.Skills[expertise] = struct{}{}
		for family, skills := range v.taxonomy.FamilySkills {
			if !strings.Contains(expertise, family) {
				continue
			}
			for _, skill := range skills {
				vec.Skills[strings.ToLower(skill)] = struct{}{}
			}
		}
	}

	for _, path := range careerPaths {
		path = strings.ToLower(strings.TrimSpace(path))
		if path != "" {
			vec.Industries[path] = struct{}{}
		}
	}

	return vec
}

// JobVector extracts taxonomy terms found in lower-cased posting text.
func (v *Vectorizer) JobVector(text string) Vector {
	vec := newVector()
	text = strings.ToLower(text)

	for _, skill := range v.taxonomy.SkillKeywords {
		skill = strings.ToLower(skill)
		if strings.Contains(text, skill) {
			vec.Skills[skill] = struct{}{}
		}
	}
	for _, industry := range v.taxonomy.IndustryKeywords {
		industry = strings.ToLower(industry)
		if strings.Contains(text, industry) {
			vec.Industries[industry] = struct{}{}
		}
	}

	return vec
}

// Overlap counts terms shared between two vectors across skills and industries.
func Overlap(a, b Vector) int {
	count := 0
	for term := range a.Skills {
		if _, ok := b.Skills[term]; ok {
			count++
		}
	}
	for term := range a.Industries {
		if _, ok := b.Industries[term]; ok {
			count++
		}
	}
	return count
}
