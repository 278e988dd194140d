package vectorindex

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("vector index not configured")
	ErrIndexMissing  = errors.New("vector index not found")
)

// Passage is one retrieved chunk with its provenance. Page is zero when unknown.
type Passage struct {
	Text   string
	Source string
	Page   int
	Score  float32
}

// Index returns the passages nearest to a query vector, best first.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Passage, error)
	// Ready reports whether the index exists and can be queried.
	Ready(ctx context.Context) error
}

// Unconfigured never finds anything.
type Unconfigured struct{}

func (Unconfigured) Query(ctx context.Context, vector []float32, topK int) ([]Passage, error) {
	return nil, nil
}

func (Unconfigured) Ready(ctx context.Context) error {
	return ErrNotConfigured
}

// Record is one passage ready to be written to an index.
type Record struct {
	Text   string
	Source string
	Page   int
	Vector []float32
}

// Writer replaces the indexed passages of one source document.
type Writer interface {
	ReplaceSource(ctx context.Context, source string, records []Record) error
}
