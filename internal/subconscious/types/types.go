// Package types holds the data model shared by every layer of the
// cognitive middleware: concepts, associations, memory records, and the
// result shapes returned by the mind orchestrator.
package types

import "time"

// NodeType tags a Concept's role in the cognitive graph.
type NodeType string

const (
	NodeConcept    NodeType = "concept"
	NodeEntity     NodeType = "entity"
	NodeEvent      NodeType = "event"
	NodePattern    NodeType = "pattern"
	NodeHypothesis NodeType = "hypothesis"
)

// EdgeType tags the relationship an Association represents.
type EdgeType string

const (
	EdgeSemantic     EdgeType = "semantic"
	EdgeCausal       EdgeType = "causal"
	EdgeTemporal     EdgeType = "temporal"
	EdgeAnalogical   EdgeType = "analogical"
	EdgeMetaphorical EdgeType = "metaphorical"
	EdgeContradicts  EdgeType = "contradicts"
	EdgeEnables      EdgeType = "enables"
	EdgePartOf       EdgeType = "part_of"
	EdgeCooccurrence EdgeType = "cooccurrence"
)

// MemoryType tags which memory layer a MemoryRecord belongs to.
type MemoryType string

const (
	MemoryWorking    MemoryType = "working"
	MemoryEpisodic   MemoryType = "episodic"
	MemorySemantic   MemoryType = "semantic"
	MemoryProcedural MemoryType = "procedural"
)

// CreativityStrategy names one of the four creative-recombination
// strategies implemented by the creative engine.
type CreativityStrategy string

const (
	StrategyBisociation CreativityStrategy = "bisociation"
	StrategyBlending    CreativityStrategy = "blending"
	StrategyAnalogy     CreativityStrategy = "analogy"
	StrategyLateral     CreativityStrategy = "lateral"
)

// Concept is a node in the cognitive graph. Identifier equals
// Normalize(Name); that normalized form is the sole lookup key.
type Concept struct {
	Name          string         `json:"name"`
	NodeType      NodeType       `json:"node_type"`
	Activation    float64        `json:"activation"`
	Importance    float64        `json:"importance"`
	Frequency     int            `json:"frequency"`
	Domain        string         `json:"domain"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	LastActivated time.Time      `json:"last_activated"`
}

// ID returns the normalized identifier used as the graph lookup key.
func (c *Concept) ID() string {
	return Normalize(c.Name)
}

// Association is a directed, typed, weighted edge between two concepts.
// At most one edge exists per (Source, Target, EdgeType) triple; a repeated
// connect reinforces the existing edge instead of inserting a new one.
type Association struct {
	Source          string    `json:"source"`
	Target          string    `json:"target"`
	EdgeType        EdgeType  `json:"edge_type"`
	Weight          float64   `json:"weight"`
	Confidence      float64   `json:"confidence"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	ReinforcedCount int       `json:"reinforced_count"`
}

// MemoryRecord is a single entry in any of the four memory layers.
// Immutable once stored except for AccessCount and (procedural records)
// SuccessCount, FailCount and Importance.
type MemoryRecord struct {
	MemoryID    string     `json:"memory_id"`
	Content     string     `json:"content"`
	MemoryType  MemoryType `json:"memory_type"`
	Importance  float64    `json:"importance"`
	Domain      string     `json:"domain"`
	Tags        []string   `json:"tags"`
	Source      string     `json:"source"`
	Timestamp   time.Time  `json:"timestamp"`
	AccessCount int        `json:"access_count"`

	// Embedding is held only in memory/transit; it is never round-tripped
	// through the record's public JSON form (mirrors the original's
	// repr=False embedding field).
	Embedding []float32 `json:"-"`

	// Procedural-only bookkeeping.
	SuccessCount int `json:"success_count,omitempty"`
	FailCount    int `json:"fail_count,omitempty"`

	// Similarity is populated by semantic search results only.
	Similarity float64 `json:"similarity,omitempty"`
}

// Insight is a surfaced connection discovered while processing a think call.
type Insight struct {
	Content        string   `json:"content"`
	Confidence     float64  `json:"confidence"`
	SourceConcepts []string `json:"source_concepts"`
	InsightType    string   `json:"insight_type"`
}

// CreativeSpark is one idea produced by the creative engine.
type CreativeSpark struct {
	Idea     string             `json:"idea"`
	Strategy CreativityStrategy `json:"strategy"`
	SourceA  string             `json:"source_a"`
	SourceB  string             `json:"source_b"`
	Novelty  float64            `json:"novelty"`
	Relevance float64           `json:"relevance"`
}

// ThinkResult is the output of the mind orchestrator's Think operation.
type ThinkResult struct {
	Response           string             `json:"response"`
	Associations       []Association      `json:"associations"`
	Insights           []Insight          `json:"insights"`
	CreativeSparks     []CreativeSpark    `json:"creative_sparks"`
	ActivatedConcepts  map[string]float64 `json:"activated_concepts"`
	RecalledMemories   []MemoryRecord     `json:"recalled_memories"`
}

// DreamReport summarizes one pass of the background dream cycle.
type DreamReport struct {
	NewConnections         int       `json:"new_connections"`
	PatternsFound          int       `json:"patterns_found"`
	MemoriesConsolidated   int       `json:"memories_consolidated"`
	MemoriesPruned         int       `json:"memories_pruned"`
	HypothesesGenerated    []string  `json:"hypotheses_generated"`
	DreamThoughts          []string  `json:"dream_thoughts"`
	DurationSeconds        float64   `json:"duration_seconds"`
	Timestamp              time.Time `json:"timestamp"`
}

// RecallResult is the keyed per-layer map returned by a memory fan-out
// recall, one entry per memory layer.
type RecallResult struct {
	Working    []map[string]any `json:"working"`
	Episodic   []MemoryRecord   `json:"episodic"`
	Semantic   []MemoryRecord   `json:"semantic"`
	Procedural []MemoryRecord   `json:"procedural"`
}
