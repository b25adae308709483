package adapter

import "github.com/attuneworks/groundwork/domaincfg"

// NewLifeCoaching creates the life coaching adapter.
func NewLifeCoaching(cfg *domaincfg.DomainConfig) (Adapter, error) {
	return New(cfg, Vocabulary{
		LifeAreaKeywords: map[string][]string{
			"career": {
				"work", "job", "career", "boss", "colleague", "workplace",
				"promotion", "workload",
			},
			"relationships": {
				"partner", "relationship", "marriage", "friend", "family",
				"spouse", "lonely",
			},
			"health": {
				"health", "sleep", "stress", "anxious", "tired", "exercise",
				"energy", "burnout",
			},
			"personal_growth": {
				"purpose", "meaning", "confidence", "habit", "growth",
				"motivation", "values",
			},
		},
		MethodologyTriggers: map[string]string{
			"goal":     "GROW Model",
			"stuck":    "GROW Model",
			"balance":  "Wheel of Life",
			"habit":    "Atomic Habits",
			"values":   "Values Clarification",
			"strength": "Strengths-Based Coaching",
		},
		BaseConfidence: 0.6,
		FullConfidence: 0.85,
	})
}

// NewCareerCoaching creates the career coaching adapter.
func NewCareerCoaching(cfg *domaincfg.DomainConfig) (Adapter, error) {
	return New(cfg, Vocabulary{
		LifeAreaKeywords: map[string][]string{
			"job_search": {
				"resume", "interview", "application", "job search", "hiring",
				"recruiter",
			},
			"advancement": {
				"promotion", "raise", "leadership", "manager", "advance",
				"senior",
			},
			"transition": {
				"career change", "switch", "pivot", "new field", "transition",
				"retrain",
			},
			"skills": {
				"skill", "learn", "certification", "training", "upskill",
			},
		},
		MethodologyTriggers: map[string]string{
			"purpose":   "Ikigai",
			"strength":  "StrengthsFinder",
			"interview": "STAR Method",
			"network":   "Informational Interviewing",
		},
		BaseConfidence: 0.6,
		FullConfidence: 0.85,
	})
}

// NewRelationshipCoaching creates the relationship coaching adapter.
func NewRelationshipCoaching(cfg *domaincfg.DomainConfig) (Adapter, error) {
	return New(cfg, Vocabulary{
		LifeAreaKeywords: map[string][]string{
			"communication": {
				"communicate", "listen", "argument", "conflict", "misunderstand",
			},
			"intimacy": {
				"intimacy", "closeness", "distant", "affection", "connection",
			},
			"boundaries": {
				"boundary", "boundaries", "space", "respect", "say no",
			},
			"family": {
				"family", "parent", "child", "in-law", "sibling",
			},
		},
		MethodologyTriggers: map[string]string{
			"conflict": "Nonviolent Communication",
			"listen":   "Active Listening",
			"love":     "Five Love Languages",
			"attach":   "Attachment Theory",
		},
		BaseConfidence: 0.6,
		FullConfidence: 0.85,
	})
}
