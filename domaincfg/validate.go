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


package domaincfg

import (
	"fmt"
	"math"
)

// completenessFields is the number of tracked top-level config fields.
const completenessFields = 10

// Validate checks a DomainConfig against the domain schema rules.
// Hard errors make the config unusable; warnings are advisory.
func Validate(cfg *DomainConfig) ValidationResult {
	result := ValidationResult{Valid: true}
	if cfg == nil {
		result.Valid = false
		result.Errors = append(result.Errors, "config: is nil")
		return result
	}

	if cfg.Name == "" {
		result.Errors = append(result.Errors, "name: required")
	}
	if cfg.DisplayName == "" {
		result.Errors = append(result.Errors, "display_name: required")
	}
	if cfg.Description == "" {
		result.Errors = append(result.Errors, "description: required")
	}
	if len(cfg.KnowledgeSources) == 0 {
		result.Errors = append(result.Errors, "knowledge_sources: at least one source required")
	}

	sum := 0.0
	for name, weight := range cfg.RetrievalPreferences {
		if weight < 0 || weight > 1 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("retrieval_preferences: %q weight %v outside [0, 1]", name, weight))
		}
		sum += weight
	}
	if len(cfg.RetrievalPreferences) > 0 && math.Abs(sum-1.0) > 0.01 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("retrieval_preferences: weights sum to %.3f, expected 1.0", sum))
	}

	if score := cfg.FilteringRules.MinimumRelevanceScore; score < 0 || score > 1 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("filtering_rules.minimum_relevance_score: %v outside [0, 1]", score))
	}
	for name, factor := range cfg.FilteringRules.BoostFactors {
		if factor <= 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("filtering_rules.boost_factors: %q must be positive, got %v", name, factor))
		} else if factor < 1 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("filtering_rules.boost_factors: %q is %v, below 1.0 it acts as a penalty", name, factor))
		}
	}
	for name, factor := range cfg.FilteringRules.PenaltyFactors {
		if factor <= 0 || factor > 1 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("filtering_rules.penalty_factors: %q must be in (0, 1], got %v", name, factor))
		}
	}

	weights := map[string]float64{
		"personalization_weights.methodology_preference": cfg.PersonalizationWeights.MethodologyPreference,
		"personalization_weights.complexity_preference":  cfg.PersonalizationWeights.ComplexityPreference,
		"personalization_weights.goal_alignment":         cfg.PersonalizationWeights.GoalAlignment,
		"personalization_weights.life_area_bonus":        cfg.PersonalizationWeights.LifeAreaBonus,
	}
	for name, weight := range weights {
		if weight < 0 || weight > 1 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %v outside [0, 1]", name, weight))
		}
	}

	result.Completeness = completeness(cfg)
	result.Valid = len(result.Errors) == 0
	return result
}

// completeness scores how many tracked fields the config populates.
func completeness(cfg *DomainConfig) float64 {
	present := 0
	if cfg.Name != "" {
		present++
	}
	if cfg.DisplayName != "" {
		present++
	}
	if cfg.Description != "" {
		present++
	}
	if len(cfg.KnowledgeSources) > 0 {
		present++
	}
	if len(cfg.Methodologies) > 0 {
		present++
	}
	if len(cfg.RetrievalPreferences) > 0 {
		present++
	}
	if cfg.FilteringRules.MinimumRelevanceScore > 0 ||
		len(cfg.FilteringRules.BoostFactors) > 0 ||
		len(cfg.FilteringRules.PenaltyFactors) > 0 {
		present++
	}
	if cfg.PersonalizationWeights != (PersonalizationWeights{}) {
		present++
	}
	if len(cfg.MetadataSchema) > 0 {
		present++
	}
	if len(cfg.EscalationTriggers) > 0 {
		present++
	}
	return float64(present) / completenessFields
}
