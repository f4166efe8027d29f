package domain

import "sort"

const (
	MinMatchScore = 50
	MaxMatchScore = 100
)

// Quality is a display label derived from score bands.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// Match is a single ranked job returned to callers.
type Match struct {
	JobHash    string  `json:"job_hash"`
	JobIndex   int     `json:"job_index"`
	Score      float64 `json:"match_score"`
	Reason     string  `json:"match_reason"`
	Confidence float64 `json:"confidence_score"`
	Quality    Quality `json:"match_quality"`
}

// QualityFor maps a score onto its band.
func QualityFor(score float64) Quality {
	switch {
	case score >= 85:
		return QualityExcellent
	case score >= 75:
		return QualityGood
	case score >= 65:
		return QualityFair
	default:
		return QualityPoor
	}
}

// ClampScore bounds a match score into [MinMatchScore, MaxMatchScore].
func ClampScore(score float64) float64 {
	if score < MinMatchScore {
		return MinMatchScore
	}
	if score > MaxMatchScore {
		return MaxMatchScore
	}
	return score
}

// Finalize sorts matches by descending score keeping pool order for ties,
// refreshes quality labels and caps the list at limit (limit <= 0 means no cap).
// The input slice is not modified.
func Finalize(matches []Match, limit int) []Match {
	out := make([]Match, len(matches))
	copy(out, matches)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	for i := range out {
		out[i].Quality = QualityFor(out[i].Score)
	}

	return out
}
