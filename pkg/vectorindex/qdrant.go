package vectorindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantIndex queries one Qdrant collection whose points carry text, source
// and page payload fields.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
}

func NewQdrantIndex(cfg QdrantConfig) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &QdrantIndex{client: client, collection: cfg.Collection}, nil
}

func (q *QdrantIndex) Query(ctx context.Context, vector []float32, topK int) ([]Passage, error) {
	if topK <= 0 {
		topK = 4
	}
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query %s: %w", q.collection, err)
	}

	passages := make([]Passage, 0, len(points))
	for _, p := range points {
		passages = append(passages, passageFromPayload(p.GetPayload(), p.GetScore()))
	}
	return passages, nil
}

func (q *QdrantIndex) Ready(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("qdrant collection check: %w", err)
	}
	if !exists {
		return fmt.Errorf("collection '%s': %w", q.collection, ErrIndexMissing)
	}
	return nil
}

// ReplaceSource creates the collection on first use, sized to the first
// vector, then swaps the points of one source document.
func (q *QdrantIndex) ReplaceSource(ctx context.Context, source string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("qdrant collection check: %w", err)
	}
	if !exists {
		err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(len(records[0].Vector)),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("create collection %s: %w", q.collection, err)
		}
	}

	_, err = q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Wait:           qdrant.PtrOf(true),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("source", source)},
		}),
	})
	if err != nil {
		return fmt.Errorf("clear %s from %s: %w", source, q.collection, err)
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         pointsFromRecords(records),
	})
	if err != nil {
		return fmt.Errorf("upsert %d points into %s: %w", len(records), q.collection, err)
	}
	return nil
}

func pointsFromRecords(records []Record) []*qdrant.PointStruct {
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":   r.Text,
				"source": r.Source,
				"page":   int64(r.Page),
			}),
		})
	}
	return points
}

func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

func passageFromPayload(payload map[string]*qdrant.Value, score float32) Passage {
	p := Passage{Score: score}
	if v, ok := payload["text"]; ok {
		p.Text = v.GetStringValue()
	}
	if v, ok := payload["source"]; ok {
		p.Source = v.GetStringValue()
	}
	// ingestion scripts write page as either an integer or a float
	if v, ok := payload["page"]; ok {
		switch v.GetKind().(type) {
		case *qdrant.Value_IntegerValue:
			p.Page = int(v.GetIntegerValue())
		case *qdrant.Value_DoubleValue:
			p.Page = int(v.GetDoubleValue())
		}
	}
	return p
}
