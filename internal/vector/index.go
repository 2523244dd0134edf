// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package vector maintains an in-process HNSW index over catalog
// content and answers nearest-neighbor queries for the search engine.
package vector

import (
	"fmt"
	"sync"

	"github.com/coder/hnsw"

	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/media"
)

// Index is a thread-safe HNSW index keyed by media.Key. Re-upserting a
// key orphans the old graph node rather than deleting it; deleting the
// last node corrupts the underlying graph, so lazy deletion is the
// safe option.
type Index struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[uint64]
	byKey  map[media.Key]uint64
	byID   map[uint64]media.Content
	nextID uint64
	dims   int
}

// Neighbor is a single nearest-neighbor hit.
type Neighbor struct {
	Content media.Content
	// Similarity is 1 - cosine distance, in [0, 1] for normalized
	// vectors.
	Similarity float64
}

// NewIndex builds an empty index for dims-length vectors.
func NewIndex(cfg *config.VectorConfig, dims int) *Index {
	m := cfg.M
	if m <= 0 {
		m = 16
	}
	efSearch := cfg.EfSearch
	if efSearch <= 0 {
		efSearch = 20
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = m
	graph.EfSearch = efSearch

	return &Index{
		graph: graph,
		byKey: make(map[media.Key]uint64),
		byID:  make(map[uint64]media.Content),
		dims:  dims,
	}
}

// Upsert adds or replaces the vector for content.
func (ix *Index) Upsert(content media.Content, vec []float32) error {
	if len(vec) != ix.dims {
		return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(vec), ix.dims)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	key := content.Key()
	if old, ok := ix.byKey[key]; ok {
		delete(ix.byID, old)
	}

	id := ix.nextID
	ix.nextID++

	ix.graph.Add(hnsw.MakeNode(id, vec))
	ix.byKey[key] = id
	ix.byID[id] = content

	return nil
}

// Search returns up to k nearest neighbors to query, best first.
// Orphaned nodes from re-upserts are skipped.
func (ix *Index) Search(query []float32, k int) []Neighbor {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.byID) == 0 {
		return nil
	}

	nodes := ix.graph.Search(query, k)
	out := make([]Neighbor, 0, len(nodes))
	for _, node := range nodes {
		content, ok := ix.byID[node.Key]
		if !ok {
			continue
		}
		sim := 1 - float64(ix.graph.Distance(query, node.Value))
		if sim < 0 {
			sim = 0
		}
		out = append(out, Neighbor{Content: content, Similarity: sim})
	}
	return out
}

// Len reports the number of live entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byID)
}
