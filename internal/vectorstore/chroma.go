package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// The client library has no constant for it, but the server accepts it.
const includeDistances chroma.Include = "distances"

// ChromaBackend stores records in a Chroma collection. Embeddings are always
// computed by the Store; the collection's own embedding function is never used.
//
// Adding an id that already exists is left to the server, which keeps the
// existing record.
type ChromaBackend struct {
	client     chroma.Client
	name       string
	collection chroma.Collection
}

func NewChromaBackend(ctx context.Context, baseURL, collection string) (*ChromaBackend, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("create chroma client failed: %w", err)
	}
	b := &ChromaBackend{client: client, name: collection}
	if err := b.open(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return b, nil
}

func (b *ChromaBackend) open(ctx context.Context) error {
	col, err := b.client.GetOrCreateCollection(ctx, b.name,
		chroma.WithCollectionMetadataCreate(chroma.NewMetadata(
			chroma.NewStringAttribute("hnsw:space", "cosine"),
			chroma.NewStringAttribute("description", "Network automation documents and configurations"),
		)),
		chroma.WithEmbeddingFunctionCreate(embeddings.NewConsistentHashEmbeddingFunction()),
	)
	if err != nil {
		return fmt.Errorf("open chroma collection %q failed: %w", b.name, err)
	}
	b.collection = col
	return nil
}

func (b *ChromaBackend) Name() string { return "chroma" }

func (b *ChromaBackend) Close() error { return b.client.Close() }

func (b *ChromaBackend) Add(ctx context.Context, records []Record) error {
	ids := make([]chroma.DocumentID, 0, len(records))
	texts := make([]string, 0, len(records))
	metas := make([]chroma.DocumentMetadata, 0, len(records))
	embs := make([]embeddings.Embedding, 0, len(records))
	for _, r := range records {
		md, err := chroma.NewDocumentMetadataFromMap(scalarMetadata(r.Metadata))
		if err != nil {
			return fmt.Errorf("convert metadata for %s failed: %w", r.ID, err)
		}
		ids = append(ids, chroma.DocumentID(r.ID))
		texts = append(texts, r.Content)
		metas = append(metas, md)
		embs = append(embs, embeddings.NewEmbeddingFromFloat32(r.Embedding))
	}
	if err := b.collection.Add(ctx,
		chroma.WithIDs(ids...),
		chroma.WithTexts(texts...),
		chroma.WithMetadatas(metas...),
		chroma.WithEmbeddings(embs...),
	); err != nil {
		return fmt.Errorf("chroma add failed: %w", err)
	}
	return nil
}

func (b *ChromaBackend) Query(ctx context.Context, embedding []float32, k int, where map[string]interface{}) ([]Match, error) {
	opts := []chroma.CollectionQueryOption{
		chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chroma.WithNResults(k),
		chroma.WithIncludeQuery(chroma.IncludeDocuments, chroma.IncludeMetadatas, includeDistances),
	}
	if filter := whereClause(where); filter != nil {
		opts = append(opts, chroma.WithWhereQuery(filter))
	}

	qr, err := b.collection.Query(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("chroma query failed: %w", err)
	}
	idGroups := qr.GetIDGroups()
	if len(idGroups) == 0 {
		return []Match{}, nil
	}
	ids := idGroups[0]
	docs := firstGroup(qr.GetDocumentsGroups())
	metas := firstGroup(qr.GetMetadatasGroups())
	dists := firstGroup(qr.GetDistancesGroups())

	matches := make([]Match, 0, len(ids))
	for i, id := range ids {
		m := Match{Record: Record{ID: string(id)}}
		if i < len(docs) && docs[i] != nil {
			m.Content = docs[i].ContentString()
		}
		if i < len(metas) {
			md, err := decodeMetadata(metas[i])
			if err != nil {
				return nil, err
			}
			m.Metadata = md
		}
		if i < len(dists) {
			m.Distance = float64(dists[i])
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (b *ChromaBackend) Get(ctx context.Context, id string) (*Record, error) {
	res, err := b.collection.Get(ctx,
		chroma.WithIDsGet(chroma.DocumentID(id)),
		chroma.WithIncludeGet(chroma.IncludeDocuments, chroma.IncludeMetadatas),
	)
	if err != nil {
		return nil, fmt.Errorf("chroma get failed: %w", err)
	}
	ids := res.GetIDs()
	if len(ids) == 0 {
		return nil, nil
	}
	rec := &Record{ID: string(ids[0])}
	if docs := res.GetDocuments(); len(docs) > 0 && docs[0] != nil {
		rec.Content = docs[0].ContentString()
	}
	if metas := res.GetMetadatas(); len(metas) > 0 {
		md, err := decodeMetadata(metas[0])
		if err != nil {
			return nil, err
		}
		rec.Metadata = md
	}
	return rec, nil
}

func (b *ChromaBackend) Delete(ctx context.Context, ids ...string) error {
	docIDs := make([]chroma.DocumentID, 0, len(ids))
	for _, id := range ids {
		docIDs = append(docIDs, chroma.DocumentID(id))
	}
	if err := b.collection.Delete(ctx, chroma.WithIDsDelete(docIDs...)); err != nil {
		return fmt.Errorf("chroma delete failed: %w", err)
	}
	return nil
}

func (b *ChromaBackend) Count(ctx context.Context) (int, error) {
	n, err := b.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("chroma count failed: %w", err)
	}
	return n, nil
}

// Reset deletes and recreates the collection.
func (b *ChromaBackend) Reset(ctx context.Context) error {
	if err := b.client.DeleteCollection(ctx, b.name); err != nil {
		return fmt.Errorf("chroma delete collection failed: %w", err)
	}
	return b.open(ctx)
}

func firstGroup[S ~[]E, E any](groups []S) S {
	if len(groups) == 0 {
		return nil
	}
	return groups[0]
}

// scalarMetadata narrows values to the types Chroma accepts.
func scalarMetadata(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string, bool, float64:
			out[k] = val
		case int:
			out[k] = int64(val)
		case int32:
			out[k] = int64(val)
		case int64:
			out[k] = val
		case uint:
			out[k] = int64(val)
		case float32:
			out[k] = float64(val)
		case nil:
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

func whereClause(where map[string]interface{}) chroma.WhereClause {
	clauses := make([]chroma.WhereClause, 0, len(where))
	for k, v := range where {
		switch val := v.(type) {
		case string:
			clauses = append(clauses, chroma.EqString(k, val))
		case bool:
			clauses = append(clauses, chroma.EqBool(k, val))
		case int:
			clauses = append(clauses, chroma.EqInt(k, val))
		case int64:
			clauses = append(clauses, chroma.EqInt(k, int(val)))
		case float64:
			clauses = append(clauses, chroma.EqFloat(k, float32(val)))
		default:
			clauses = append(clauses, chroma.EqString(k, fmt.Sprint(val)))
		}
	}
	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	default:
		return chroma.And(clauses...)
	}
}

// decodeMetadata turns a Chroma metadata value back into a plain map. Whole
// numbers come back as int64.
func decodeMetadata(md chroma.DocumentMetadata) (map[string]interface{}, error) {
	if md == nil {
		return map[string]interface{}{}, nil
	}
	raw, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("encode chroma metadata failed: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode chroma metadata failed: %w", err)
	}
	if out == nil {
		out = map[string]interface{}{}
	}
	for k, v := range out {
		num, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := num.Int64(); err == nil {
			out[k] = i
			continue
		}
		if f, err := num.Float64(); err == nil && !math.IsNaN(f) {
			out[k] = f
		}
	}
	return out, nil
}
