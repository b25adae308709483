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

	"github.com/attuneworks/groundwork/core"
)

// Enhancement is the outcome of domain-aware query enhancement.
type Enhancement struct {
	EnhancedQuery string
	OriginalQuery string
	AddedContext  []string
	Confidence    float64

	// Escalation is true when the query matched one of the domain's
	// escalation trigger phrases. The calling agent layer is expected
	// to short-circuit to crisis resources instead of retrieval output.
	Escalation bool
}

// Adapter applies one domain's knowledge to retrieval.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Domain returns the domain name this adapter serves.
	Domain() string

	// EnhanceQuery appends detected context facets (life area, preferred
	// methodology, profile attributes) to the query as explicit terms.
	EnhanceQuery(ctx context.Context, query string, dctx *core.DomainContext) (*Enhancement, error)

	// FilterResults applies the domain's boost/penalty rules and
	// personalization weights, drops results below the configured minimum
	// relevance score, and returns the rest sorted by boosted score
	// descending. Scoring is deterministic for a fixed input.
	FilterResults(ctx context.Context, results []*core.SearchResult, dctx *core.DomainContext) ([]*core.FilteredResult, error)

	// DetectLifeArea classifies the query into one of the domain's life
	// areas by keyword, falling back to the context's pre-set area.
	// Returns "" when neither is available.
	DetectLifeArea(query string, dctx *core.DomainContext) string

	// GetRecommendedMethodology picks a methodology for the query:
	// the context's stated preference when supported, else a
	// keyword-triggered default, else the domain's first methodology.
	// Returns "" when the domain configures none.
	GetRecommendedMethodology(query string, dctx *core.DomainContext) string

	// DetectEscalation reports whether the query matches one of the
	// domain's escalation trigger phrases.
	DetectEscalation(query string) bool

	// HybridSearchEnabled reports whether the domain's configuration
	// allows lexical fusion during hybrid search. Defaults to true when
	// the config does not say otherwise.
	HybridSearchEnabled() bool
}
