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

import "time"

// DomainConfig describes how retrieval behaves for one coaching domain.
// Instances are immutable once loaded; callers must not mutate them.
type DomainConfig struct {
	Name                   string                 `yaml:"name"`
	DisplayName            string                 `yaml:"display_name"`
	Description            string                 `yaml:"description"`
	KnowledgeSources       []string               `yaml:"knowledge_sources"`
	Methodologies          []string               `yaml:"methodologies"`
	RetrievalPreferences   map[string]float64     `yaml:"retrieval_preferences"`
	FilteringRules         FilteringRules         `yaml:"filtering_rules"`
	PersonalizationWeights PersonalizationWeights `yaml:"personalization_weights"`
	MetadataSchema         map[string][]string    `yaml:"metadata_schema"`
	EscalationTriggers     []string               `yaml:"escalation_triggers"`

	// HybridSearch controls whether retrieval in this domain fuses the
	// lexical leg into semantic results. Unset means enabled.
	HybridSearch *bool `yaml:"hybrid_search"`
}

// FilteringRules controls how search results are filtered and re-scored.
type FilteringRules struct {
	MinimumRelevanceScore float64            `yaml:"minimum_relevance_score"`
	BoostFactors          map[string]float64 `yaml:"boost_factors"`
	PenaltyFactors        map[string]float64 `yaml:"penalty_factors"`
}

// PersonalizationWeights controls the additive personalization components
// applied on top of the boosted score.
type PersonalizationWeights struct {
	MethodologyPreference float64 `yaml:"methodology_preference"`
	ComplexityPreference  float64 `yaml:"complexity_preference"`
	GoalAlignment         float64 `yaml:"goal_alignment"`
	LifeAreaBonus         float64 `yaml:"life_area_bonus"`
}

// LoadResult carries a loaded config plus load provenance.
type LoadResult struct {
	Config   *DomainConfig
	LoadTime time.Time
	Source   string
	Cached   bool
	Errors   []string
	Warnings []string
}

// ValidationResult reports config validation outcome.
// Completeness is the fraction of tracked fields that are present,
// independent of validity.
type ValidationResult struct {
	Valid        bool
	Errors       []string
	Warnings     []string
	Completeness float64
}
