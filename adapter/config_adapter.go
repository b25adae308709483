// Copyright 2025 Attune Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/domaincfg"
)

// Vocabulary is the per-domain keyword knowledge a configAdapter uses for
// classification. Keys and keywords are matched case-insensitively.
type Vocabulary struct {
	// LifeAreaKeywords maps a life area to the query keywords that signal it.
	LifeAreaKeywords map[string][]string

	// MethodologyTriggers maps a query keyword to the methodology it suggests.
	MethodologyTriggers map[string]string

	// BaseConfidence is reported when enhancement added no context;
	// FullConfidence when at least one signal was available.
	BaseConfidence float64
	FullConfidence float64
}

// configAdapter is the generic Adapter implementation driven entirely by a
// DomainConfig plus a Vocabulary. All three coaching domains use it.
type configAdapter struct {
	domain string
	cfg    *domaincfg.DomainConfig
	vocab  Vocabulary
	logger *slog.Logger
}

var _ Adapter = (*configAdapter)(nil)

// New creates an adapter for a domain from its validated config and
// vocabulary. Construction refuses configs that fail validation.
func New(cfg *domaincfg.DomainConfig, vocab Vocabulary) (Adapter, error) {
	if cfg == nil {
		return nil, &core.DomainConfigError{Err: ErrConfigRequired}
	}
	if validation := domaincfg.Validate(cfg); !validation.Valid {
		return nil, &core.DomainConfigError{
			Domain: cfg.Name,
			Err:    fmt.Errorf("%s", strings.Join(validation.Errors, "; ")),
		}
	}
	if vocab.FullConfidence == 0 {
		vocab.FullConfidence = 0.85
	}
	if vocab.BaseConfidence == 0 {
		vocab.BaseConfidence = 0.6
	}
	return &configAdapter{
		domain: cfg.Name,
		cfg:    cfg,
		vocab:  vocab,
		logger: slog.Default().With("component", "adapter", "domain", cfg.Name),
	}, nil
}

func (a *configAdapter) Domain() string { return a.domain }

// EnhanceQuery appends detected context facets as explicit query terms.
func (a *configAdapter) EnhanceQuery(ctx context.Context, query string, dctx *core.DomainContext) (*Enhancement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enhancement := &Enhancement{
		OriginalQuery: query,
		EnhancedQuery: query,
		Escalation:    a.DetectEscalation(query),
	}

	var terms []string
	if methodology := a.GetRecommendedMethodology(query, dctx); methodology != "" {
		terms = append(terms, methodology)
		enhancement.AddedContext = append(enhancement.AddedContext, "methodology: "+methodology)
	}
	if area := a.DetectLifeArea(query, dctx); area != "" {
		terms = append(terms, strings.ReplaceAll(area, "_", " "))
		enhancement.AddedContext = append(enhancement.AddedContext, "life_area: "+area)
	}
	if dctx != nil {
		for _, goal := range dctx.CurrentGoals {
			terms = append(terms, goal)
			enhancement.AddedContext = append(enhancement.AddedContext, "goal: "+goal)
		}
		if focus := dctx.UserProfile["focus"]; focus != "" {
			terms = append(terms, focus)
			enhancement.AddedContext = append(enhancement.AddedContext, "profile focus: "+focus)
		}
	}

	if len(terms) > 0 {
		enhancement.EnhancedQuery = query + " " + strings.Join(terms, " ")
		enhancement.Confidence = a.vocab.FullConfidence
	} else {
		enhancement.Confidence = a.vocab.BaseConfidence
	}
	return enhancement, nil
}

// scoring holds the per-call context facets resolved once so that every
// result is scored against the same signals.
type scoring struct {
	methodology string
	lifeArea    string
	complexity  string
	goals       []string
}

// boostRules is the ordered rule list; each rule applies only when the
// domain config carries a factor under the same name. Application is
// multiplicative, so rule order never changes the outcome.
var boostRules = []struct {
	name    string
	applies func(r *core.SearchResult, s *scoring) bool
}{
	{"methodology_match", func(r *core.SearchResult, s *scoring) bool {
		return s.methodology != "" && r.Metadata[core.MetaMethodology] == s.methodology
	}},
	{"life_area_match", func(r *core.SearchResult, s *scoring) bool {
		return s.lifeArea != "" && r.Metadata[core.MetaLifeArea] == s.lifeArea
	}},
	{"high_evidence", func(r *core.SearchResult, s *scoring) bool {
		return r.Metadata[core.MetaEvidenceLevel] == "high"
	}},
	{"complexity_match", func(r *core.SearchResult, s *scoring) bool {
		return s.complexity != "" && r.Metadata[core.MetaComplexityLevel] == s.complexity
	}},
}

var penaltyRules = []struct {
	name    string
	applies func(r *core.SearchResult, s *scoring) bool
}{
	{"complexity_mismatch", func(r *core.SearchResult, s *scoring) bool {
		level := r.Metadata[core.MetaComplexityLevel]
		return s.complexity != "" && level != "" && level != s.complexity
	}},
}

// FilterResults re-scores raw hits with the domain's boost/penalty factors
// and personalization weights, drops hits below the minimum relevance
// score, and returns the rest sorted by boosted score descending.
func (a *configAdapter) FilterResults(ctx context.Context, results []*core.SearchResult, dctx *core.DomainContext) ([]*core.FilteredResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := a.resolveScoring(dctx)
	filtered := make([]*core.FilteredResult, 0, len(results))

	for _, result := range results {
		fr := &core.FilteredResult{
			SearchResult:   *result,
			OriginalScore:  result.Score,
			AppliedFactors: make(map[string]float64),
		}

		score := float64(result.Score)
		for _, rule := range boostRules {
			factor, ok := a.cfg.FilteringRules.BoostFactors[rule.name]
			if !ok || !rule.applies(result, s) {
				continue
			}
			score *= factor
			fr.AppliedFactors[rule.name] = factor
		}
		for _, rule := range penaltyRules {
			factor, ok := a.cfg.FilteringRules.PenaltyFactors[rule.name]
			if !ok || !rule.applies(result, s) {
				continue
			}
			score *= factor
			fr.AppliedFactors[rule.name] = factor
		}
		score += a.personalization(result, s, fr.AppliedFactors)

		fr.BoostedScore = float32(score)
		fr.Score = fr.BoostedScore

		if score < a.cfg.FilteringRules.MinimumRelevanceScore {
			fr.RejectionReasons = append(fr.RejectionReasons,
				fmt.Sprintf("score %.3f below minimum relevance %.3f",
					score, a.cfg.FilteringRules.MinimumRelevanceScore))
			a.logger.Debug("result rejected",
				"chunk", result.ChunkId, "score", score)
			continue
		}
		filtered = append(filtered, fr)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].BoostedScore > filtered[j].BoostedScore
	})
	return filtered, nil
}

// personalization computes the additive personalization contribution.
// The combined contribution is capped at 1.0.
func (a *configAdapter) personalization(r *core.SearchResult, s *scoring, applied map[string]float64) float64 {
	weights := a.cfg.PersonalizationWeights
	sum := 0.0

	if s.methodology != "" && r.Metadata[core.MetaMethodology] == s.methodology && weights.MethodologyPreference > 0 {
		sum += weights.MethodologyPreference
		applied["personalization.methodology_preference"] = weights.MethodologyPreference
	}
	if s.complexity != "" && r.Metadata[core.MetaComplexityLevel] == s.complexity && weights.ComplexityPreference > 0 {
		sum += weights.ComplexityPreference
		applied["personalization.complexity_preference"] = weights.ComplexityPreference
	}
	if weights.GoalAlignment > 0 && goalAligned(r.Content, s.goals) {
		sum += weights.GoalAlignment
		applied["personalization.goal_alignment"] = weights.GoalAlignment
	}
	if s.lifeArea != "" && r.Metadata[core.MetaLifeArea] == s.lifeArea && weights.LifeAreaBonus > 0 {
		sum += weights.LifeAreaBonus
		applied["personalization.life_area_bonus"] = weights.LifeAreaBonus
	}

	if sum > 1.0 {
		sum = 1.0
	}
	return sum
}

func goalAligned(content string, goals []string) bool {
	if len(goals) == 0 {
		return false
	}
	lowered := strings.ToLower(content)
	for _, goal := range goals {
		for _, word := range strings.Fields(strings.ToLower(goal)) {
			if len(word) >= 4 && strings.Contains(lowered, word) {
				return true
			}
		}
	}
	return false
}

// resolveScoring extracts the context facets every result is scored
// against. Only an explicitly stated methodology preference counts: the
// domain's default methodology is a recommendation fallback, and scoring
// against it would uplift results for users who never asked for it.
func (a *configAdapter) resolveScoring(dctx *core.DomainContext) *scoring {
	s := &scoring{}
	if dctx == nil {
		return s
	}
	if dctx.PreferredMethodology != "" &&
		slices.Contains(a.cfg.Methodologies, dctx.PreferredMethodology) {
		s.methodology = dctx.PreferredMethodology
	}
	s.lifeArea = dctx.LifeArea
	s.complexity = string(dctx.Complexity)
	s.goals = dctx.CurrentGoals
	return s
}

// DetectLifeArea classifies the query by keyword, falling back to the
// context's pre-set life area.
func (a *configAdapter) DetectLifeArea(query string, dctx *core.DomainContext) string {
	lowered := strings.ToLower(query)

	areas := make([]string, 0, len(a.vocab.LifeAreaKeywords))
	for area := range a.vocab.LifeAreaKeywords {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	for _, area := range areas {
		for _, keyword := range a.vocab.LifeAreaKeywords[area] {
			if strings.Contains(lowered, keyword) {
				return area
			}
		}
	}
	if dctx != nil {
		return dctx.LifeArea
	}
	return ""
}

// GetRecommendedMethodology prefers the context's stated preference when
// the domain supports it, then keyword triggers, then the domain's first
// configured methodology.
func (a *configAdapter) GetRecommendedMethodology(query string, dctx *core.DomainContext) string {
	if dctx != nil && dctx.PreferredMethodology != "" &&
		slices.Contains(a.cfg.Methodologies, dctx.PreferredMethodology) {
		return dctx.PreferredMethodology
	}

	if query != "" {
		lowered := strings.ToLower(query)
		triggers := make([]string, 0, len(a.vocab.MethodologyTriggers))
		for keyword := range a.vocab.MethodologyTriggers {
			triggers = append(triggers, keyword)
		}
		sort.Strings(triggers)
		for _, keyword := range triggers {
			if strings.Contains(lowered, keyword) {
				return a.vocab.MethodologyTriggers[keyword]
			}
		}
	}

	if len(a.cfg.Methodologies) > 0 {
		return a.cfg.Methodologies[0]
	}
	return ""
}

// HybridSearchEnabled reports the domain's hybrid search setting.
func (a *configAdapter) HybridSearchEnabled() bool {
	return a.cfg.HybridSearch == nil || *a.cfg.HybridSearch
}

// DetectEscalation matches the query against the domain's escalation
// trigger phrases.
func (a *configAdapter) DetectEscalation(query string) bool {
	lowered := strings.ToLower(query)
	for _, trigger := range a.cfg.EscalationTriggers {
		if trigger != "" && strings.Contains(lowered, strings.ToLower(trigger)) {
			return true
		}
	}
	return false
}
