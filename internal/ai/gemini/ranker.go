package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/jobmatch/internal/ai"
	"github.com/spigell/jobmatch/internal/domain"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/profile"
	"github.com/spigell/jobmatch/internal/utils"
)

const (
	ProviderName = "gemini"

	functionName        = "return_job_matches"
	systemInstruction   = "You are an expert career matching AI. Analyze jobs deeply and return highly relevant matches with specific reasoning."
	maxMatches          = 5
	maxReasonLength     = 300
	defaultReason       = "AI match"
	defaultJobsAnalyzed = 50
	defaultTemperature  = 0.2
	defaultMaxTokens    = 1000
	defaultMaxLogLength = 200

	defaultExpertise = "Graduate"
	defaultLevel     = "entry-level"
	defaultLocations = "Europe"
)

//go:embed prompt.md
var promptTemplate string

var errNotInitialized = errors.New("gemini ranker is not initialized")

type contentGenerator interface {
	Generate(ctx context.Context, call Call) (*Reply, error)
}

// Config tunes the Gemini ranker.
type Config struct {
	FastModel        string  `mapstructure:"fast-model"`
	PremiumModel     string  `mapstructure:"premium-model"`
	JobsToAnalyze    int     `mapstructure:"jobs-to-analyze"`
	StructuredOutput bool    `mapstructure:"structured-output"`
	Temperature      float32 `mapstructure:"temperature"`
	MaxOutputTokens  int32   `mapstructure:"max-output-tokens"`
	MaxLogLength     int     `mapstructure:"max-log-length"`
}

func DefaultConfig() Config {
	return Config{
		FastModel:        defaultFastModel,
		PremiumModel:     defaultPremiumModel,
		JobsToAnalyze:    defaultJobsAnalyzed,
		StructuredOutput: true,
		Temperature:      defaultTemperature,
		MaxOutputTokens:  defaultMaxTokens,
		MaxLogLength:     defaultMaxLogLength,
	}
}

// Ranker implements ai.Ranker on top of Gemini.
type Ranker struct {
	generator contentGenerator
	cfg       Config
	usage     *ai.UsageTracker
	logger    *zap.Logger
}

func NewRanker(generator contentGenerator, cfg Config, usage *ai.UsageTracker, log *zap.Logger) *Ranker {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.FastModel) == "" {
		cfg.FastModel = def.FastModel
	}
	if strings.TrimSpace(cfg.PremiumModel) == "" {
		cfg.PremiumModel = def.PremiumModel
	}
	if cfg.JobsToAnalyze <= 0 {
		cfg.JobsToAnalyze = def.JobsToAnalyze
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = def.MaxOutputTokens
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = def.MaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Ranker{
		generator: generator,
		cfg:       cfg,
		usage:     usage,
		logger:    logger.WithModelFields(log, ProviderName, "", ""),
	}
}

// Model returns the model identifier used for tier.
func (r *Ranker) Model(tier ai.Tier) string {
	if tier == ai.TierPremium {
		return r.cfg.PremiumModel
	}
	return r.cfg.FastModel
}

func (r *Ranker) Rank(ctx context.Context, req ai.Request) (*ai.Ranking, error) {
	if r == nil || r.generator == nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrProvider, errNotInitialized)
	}

	analyzed := domain.Leading(req.Jobs, r.cfg.JobsToAnalyze)
	if len(analyzed) == 0 {
		return nil, fmt.Errorf("%w: empty job pool", ai.ErrNoMatches)
	}

	model := r.Model(req.Tier)
	log := logger.WithFields(r.logger, logger.ModelFields("", model, string(req.Tier))...)

	prompt := buildPrompt(req.Profile.Normalize(), analyzed)
	call := Call{
		Model:           model,
		System:          systemInstruction,
		Prompt:          prompt,
		Temperature:     r.cfg.Temperature,
		MaxOutputTokens: r.cfg.MaxOutputTokens,
	}
	if r.cfg.StructuredOutput {
		call.Function = matchesDeclaration()
	}

	log.Debug("gemini generate content request",
		zap.Int("jobs_analyzed", len(analyzed)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.cfg.MaxLogLength)),
	)

	reply, err := r.generator.Generate(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrProvider, err)
	}

	usage := ai.Usage{Tokens: reply.Tokens}
	r.usage.Record(req.Tier, usage)

	log.Debug("gemini generate content response",
		zap.Bool("function_call", reply.Args != nil),
		zap.Int("tokens", reply.Tokens),
		zap.Int("response_length", utf8.RuneCountInString(reply.Text)),
		zap.String("response_preview", utils.TruncateForLog(reply.Text, r.cfg.MaxLogLength)),
	)

	ranking := &ai.Ranking{Model: model, Usage: usage}

	items, err := decodeItems(reply)
	if err != nil {
		return ranking, err
	}

	ranking.Matches = validate(items, len(analyzed))
	if len(ranking.Matches) == 0 {
		return ranking, fmt.Errorf("%w: %d items rejected", ai.ErrNoMatches, len(items))
	}

	return ranking, nil
}

func buildPrompt(p *profile.Profile, jobs []domain.Job) string {
	level := orDefault(p.EntryLevel, defaultLevel)
	expertise := orDefault(p.Expertise, defaultExpertise)
	locations := defaultLocations
	if len(p.TargetCities) > 0 {
		locations = strings.Join(p.TargetCities, ", ")
	}

	var optional strings.Builder
	writeLine := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&optional, "- %s: %s\n", label, value)
	}
	writeLine("Languages", strings.Join(p.Languages, ", "))
	writeLine("Target Roles", strings.Join(p.Roles, ", "))
	writeLine("Career Paths", strings.Join(p.CareerPaths, ", "))
	writeLine("Work Environment Preference", p.WorkEnvironment)

	var list strings.Builder
	for i := range jobs {
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "%d. [%s] %s @ %s | %s", i+1, jobs[i].JobHash, jobs[i].Title, jobs[i].Company, jobs[i].Location)
	}

	prompt := strings.NewReplacer(
		"{{EXPERIENCE_LEVEL}}", level,
		"{{EXPERTISE}}", expertise,
		"{{LOCATIONS}}", locations,
		"{{OPTIONAL_PROFILE}}", optional.String(),
		"{{JOB_LIST}}", list.String(),
		"{{JOB_COUNT}}", fmt.Sprint(len(jobs)),
	).Replace(promptTemplate)

	return prompt
}

func matchesDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        functionName,
		Description: "Return the top 5 most relevant job matches for the user",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"matches": {
					Type:     genai.TypeArray,
					MinItems: genai.Ptr[int64](1),
					MaxItems: genai.Ptr[int64](maxMatches),
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"job_index": {
								Type:        genai.TypeInteger,
								Minimum:     genai.Ptr[float64](1),
								Description: "Index of the job from the list provided",
							},
							"job_hash": {
								Type:        genai.TypeString,
								Description: "Exact job_hash from the job list",
							},
							"match_score": {
								Type:        genai.TypeNumber,
								Minimum:     genai.Ptr[float64](domain.MinMatchScore),
								Maximum:     genai.Ptr[float64](domain.MaxMatchScore),
								Description: "How well this job matches the user (50-100)",
							},
							"match_reason": {
								Type:        genai.TypeString,
								MaxLength:   genai.Ptr[int64](maxReasonLength),
								Description: "Specific reason why this job is a good match for this user",
							},
						},
						Required: []string{"job_index", "job_hash", "match_score", "match_reason"},
					},
				},
			},
			Required: []string{"matches"},
		},
	}
}

// decodeItems prefers the function-call arguments and falls back to the first
// JSON array found in the text.
func decodeItems(reply *Reply) ([]any, error) {
	if reply.Args != nil {
		raw, ok := reply.Args["matches"]
		if !ok {
			return nil, fmt.Errorf("%w: function call without matches", ai.ErrInvalidResponse)
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: matches is %T, not an array", ai.ErrInvalidResponse, raw)
		}
		return items, nil
	}

	return parseLegacy(reply.Text)
}

func parseLegacy(raw string) ([]any, error) {
	cleaned := extractJSON(raw)

	start := strings.Index(cleaned, "[")
	if start == -1 {
		return nil, fmt.Errorf("%w: no json array in response", ai.ErrInvalidResponse)
	}

	var items []any
	dec := json.NewDecoder(strings.NewReader(cleaned[start:]))
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrInvalidResponse, err)
	}

	return items, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// validate keeps well-formed items in answer order, at most maxMatches.
func validate(items []any, analyzed int) []domain.Match {
	out := make([]domain.Match, 0, maxMatches)
	for _, item := range items {
		if len(out) == maxMatches {
			break
		}
		m, ok := toMatch(item, analyzed)
		if ok {
			out = append(out, m)
		}
	}
	return out
}

func toMatch(item any, analyzed int) (domain.Match, bool) {
	obj, ok := item.(map[string]any)
	if !ok {
		return domain.Match{}, false
	}

	index, ok := number(obj["job_index"])
	if !ok || index != math.Trunc(index) || index < 1 || index > float64(analyzed) {
		return domain.Match{}, false
	}

	hash, ok := obj["job_hash"].(string)
	if !ok || strings.TrimSpace(hash) == "" {
		return domain.Match{}, false
	}

	score, ok := number(obj["match_score"])
	if !ok || score < 0 || score > domain.MaxMatchScore {
		return domain.Match{}, false
	}
	score = domain.ClampScore(score)

	reason, _ := obj["match_reason"].(string)
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = defaultReason
	}

	return domain.Match{
		JobHash:    strings.TrimSpace(hash),
		JobIndex:   int(index),
		Score:      score,
		Reason:     reason,
		Confidence: ai.Confidence,
		Quality:    domain.QualityFor(score),
	}, true
}

func number(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

var _ ai.Ranker = (*Ranker)(nil)
