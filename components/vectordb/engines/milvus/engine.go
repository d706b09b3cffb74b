// Package milvus backs vectordb.Engine with a Milvus server. Collections
// are created lazily with an HNSW cosine index; record metadata rides in
// a JSON column.
package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	milvusClient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/krishidhan/sahayak/components/vectordb"
)

type Engine struct {
	db milvusClient.Client

	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

func New(db milvusClient.Client, opts ...vectordb.Option) *Engine {
	ret := &Engine{
		db: db,
	}
	vectordb.WithEngine(vectordb.Milvus)(&ret.Options)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

func (e *Engine) CreateCollection(ctx context.Context, name string, dim int64) error {
	idField := entity.NewField().WithName("id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(36).WithIsPrimaryKey(true).WithIsAutoID(false)
	vectorField := entity.NewField().WithName("embedding").WithDataType(entity.FieldTypeFloatVector).WithDim(dim)
	contentField := entity.NewField().WithName("content").WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)
	metaField := entity.NewField().WithName("meta").WithDataType(entity.FieldTypeJSON)
	schema := entity.NewSchema().WithName(name).WithAutoID(false).WithField(idField).WithField(vectorField).WithField(contentField).WithField(metaField)
	if err := e.db.CreateCollection(ctx, schema, 0); err != nil {
		return err
	}
	idxHnsw, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return err
	}
	return e.db.CreateIndex(ctx, name, "embedding", idxHnsw, true, milvusClient.WithIndexName("embedding_idx"))
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}
	dim := int64(len(records[0].Embedding.Embedding))
	if exists, err := e.db.HasCollection(ctx, collectionName); err != nil {
		return err
	} else if !exists {
		if err := e.CreateCollection(ctx, collectionName, dim); err != nil {
			return err
		}
	}
	count := len(records)
	ids := make([]string, 0, count)
	vectors := make([][]float32, 0, count)
	contents := make([]string, 0, count)
	metas := make([][]byte, 0, count)
	for _, record := range records {
		if record.ID == "" {
			record.ID = record.Embedding.UUID()
		}
		ids = append(ids, record.ID)
		vectors = append(vectors, vectordb.Float32s(record.Embedding.Embedding))
		contents = append(contents, record.Embedding.Object)
		meta := record.Embedding.Meta
		if meta == nil {
			meta = map[string]string{}
		}
		bs, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		metas = append(metas, bs)
	}
	_, err := e.db.Insert(ctx, collectionName, "",
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnFloatVector("embedding", int(dim), vectors),
		entity.NewColumnVarChar("content", contents),
		entity.NewColumnJSONBytes("meta", metas),
	)
	return err
}

// Search performs vector similarity search on a collection.
func (e *Engine) Search(ctx context.Context, vector []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	var option vectordb.SearchOptions
	for _, opt := range opts {
		opt(&option)
	}
	if err := e.db.LoadCollection(ctx, option.Collection, false); err != nil {
		return nil, err
	}
	query := entity.FloatVector(vectordb.Float32s(vector))
	topK := option.TopK
	if topK == 0 {
		topK = e.TopK
	}
	searchParams, err := entity.NewIndexHNSWSearchParam(topK)
	if err != nil {
		return nil, err
	}
	results, err := e.db.Search(ctx, option.Collection, nil, searchExpr(&option),
		[]string{"id", "content", "meta"}, []entity.Vector{query},
		"embedding", entity.COSINE, topK, searchParams)
	if err != nil {
		return nil, err
	}
	var searchResults []vectordb.Record
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			var record vectordb.Record
			if err := rowToRecord(&result, i, &record); err != nil {
				return nil, err
			}
			if record.Score < e.MinScore {
				continue
			}
			searchResults = append(searchResults, record)
		}
	}
	return searchResults, nil
}

// searchExpr renders the meta and content constraints as a Milvus boolean
// expression. Meta keys are sorted so the expression is stable.
func searchExpr(option *vectordb.SearchOptions) string {
	var terms []string
	keys := make([]string, 0, len(option.Meta))
	for k := range option.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		terms = append(terms, fmt.Sprintf("meta[%s] == %s", strconv.Quote(k), strconv.Quote(option.Meta[k])))
	}
	if option.Include != "" {
		terms = append(terms, fmt.Sprintf("content like %s", strconv.Quote("%"+option.Include+"%")))
	}
	if option.Exclude != "" {
		terms = append(terms, fmt.Sprintf("not (content like %s)", strconv.Quote("%"+option.Exclude+"%")))
	}
	return strings.Join(terms, " && ")
}

func rowToRecord(result *milvusClient.SearchResult, row int, record *vectordb.Record) error {
	if row < len(result.Scores) {
		record.Score = float64(result.Scores[row])
	}
	if col := result.IDs; col != nil {
		if id, err := col.GetAsString(row); err == nil {
			record.ID = id
		}
	}
	if col := result.Fields.GetColumn("content"); col != nil {
		if content, err := col.GetAsString(row); err == nil {
			record.Embedding.Object = content
		}
	}
	if col := result.Fields.GetColumn("meta"); col != nil {
		if v, err := col.Get(row); err == nil {
			if bs, ok := v.([]byte); ok {
				if err := json.Unmarshal(bs, &record.Embedding.Meta); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
