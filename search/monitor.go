package search

import (
	"github.com/attuneworks/groundwork/adapter"
	"github.com/attuneworks/groundwork/core"
)

// Monitor provides hooks to observe the retrieval pipeline.
// Implement this interface to track intermediate steps and results.
type Monitor interface {
	Start(domain, query string)
	AfterEnhancement(enhancement *adapter.Enhancement)
	AfterSemanticSearch(results []*core.SearchResult)
	AfterLexicalSearch(results []*core.SearchResult)
	AfterFusion(results []*core.SearchResult)
	Finish(results []*core.FilteredResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                             {}
func (n *noopMonitor) AfterEnhancement(_ *adapter.Enhancement)       {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.SearchResult)    {}
func (n *noopMonitor) AfterLexicalSearch(_ []*core.SearchResult)     {}
func (n *noopMonitor) AfterFusion(_ []*core.SearchResult)            {}
func (n *noopMonitor) Finish(_ []*core.FilteredResult)               {}
