package rag

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig holds Qdrant connection configuration.
type QdrantConfig struct {
	// URL is the Qdrant server address (e.g. "https://example.qdrant.io:6334").
	URL string

	// CollectionName is the policy document collection.
	CollectionName string

	// APIKey is an optional API key for authentication.
	APIKey string

	// VectorSize is the embedding dimension, used when the collection
	// has to be created during ingestion.
	VectorSize uint64
}

// QdrantIndex implements Searcher on a Qdrant collection and exposes
// the upsert side used by ingestion.
type QdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

// NewQdrantIndex creates a Qdrant-backed policy index client.
func NewQdrantIndex(cfg QdrantConfig) (*QdrantIndex, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if cfg.CollectionName == "" {
		return nil, fmt.Errorf("qdrant collection name is required")
	}

	parsedURL := cfg.URL
	if !strings.HasPrefix(parsedURL, "http://") && !strings.HasPrefix(parsedURL, "https://") {
		parsedURL = "https://" + parsedURL
	}

	u, err := url.Parse(parsedURL)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url: %w", err)
	}

	host := u.Hostname()
	port := 6334
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &QdrantIndex{
		client:         client,
		collectionName: cfg.CollectionName,
		vectorSize:     cfg.VectorSize,
	}, nil
}

// Search retrieves the closest policy chunks for a vector. When region
// is non-empty, results are restricted to that region plus GLOBAL
// documents.
func (q *QdrantIndex) Search(ctx context.Context, vector []float32, region string, limit int, minScore float32) ([]Document, error) {
	limitUint64 := uint64(limit)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limitUint64,
		Filter:         regionFilter(region),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	docs := make([]Document, 0, len(points))
	for _, point := range points {
		if minScore > 0 && point.Score < minScore {
			continue
		}

		doc := Document{Score: point.Score}

		if point.Id != nil {
			if id := point.Id.GetUuid(); id != "" {
				doc.ID = id
			} else if num := point.Id.GetNum(); num != 0 {
				doc.ID = fmt.Sprintf("%d", num)
			}
		}

		for k, v := range point.Payload {
			switch k {
			case "content":
				doc.Content = v.GetStringValue()
			case "title":
				doc.Title = v.GetStringValue()
			case "source_path":
				doc.SourcePath = v.GetStringValue()
			case "effective_date":
				doc.EffectiveDate = v.GetStringValue()
			case "region":
				doc.Region = v.GetStringValue()
			}
		}

		docs = append(docs, doc)
	}

	return docs, nil
}

// EnsureCollection creates the collection if it does not exist yet.
func (q *QdrantIndex) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		return nil
	}
	if q.vectorSize == 0 {
		return fmt.Errorf("vector size required to create collection %q", q.collectionName)
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Upsert writes document chunks and their vectors into the collection.
func (q *QdrantIndex) Upsert(ctx context.Context, docs []Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("doc/vector count mismatch: %d vs %d", len(docs), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":        d.Content,
				"title":          d.Title,
				"source_path":    d.SourcePath,
				"effective_date": d.EffectiveDate,
				"region":         d.Region,
			}),
		}
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

func regionFilter(region string) *qdrant.Filter {
	if region == "" {
		return nil
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key: "region",
						Match: &qdrant.Match{
							MatchValue: &qdrant.Match_Keywords{
								Keywords: &qdrant.RepeatedStrings{Strings: []string{region, "GLOBAL"}},
							},
						},
					},
				},
			},
		},
	}
}
