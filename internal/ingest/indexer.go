package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

const defaultBatchSize = 500

// conditionsMapping keeps the index shape in one place: question and answer
// are full-text, focus doubles as an exact-match keyword.
const conditionsMapping = `{
  "mappings": {
    "properties": {
      "question": {"type": "text"},
      "answer":   {"type": "text"},
      "focus":    {"type": "text", "fields": {"keyword": {"type": "keyword"}}}
    }
  }
}`

// Indexer loads cleaned records into the conditions search index in bulk.
type Indexer struct {
	client    *elasticsearch.Client
	index     string
	batchSize int
	log       *zap.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log *zap.Logger) *Indexer {
	return &Indexer{client: client, index: index, batchSize: defaultBatchSize, log: log}
}

// EnsureIndex creates the conditions index with its mapping if it does not
// exist yet.
func (ix *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := ix.client.Indices.Exists([]string{ix.index},
		ix.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", ix.index, err)
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = ix.client.Indices.Create(ix.index,
		ix.client.Indices.Create.WithContext(ctx),
		ix.client.Indices.Create.WithBody(strings.NewReader(conditionsMapping)))
	if err != nil {
		return fmt.Errorf("create index %s: %w", ix.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", ix.index, res.Status())
	}

	ix.log.Info("created index", zap.String("index", ix.index))
	return nil
}

// IndexRecords bulk-loads the records in batches and returns the number of
// documents indexed.
func (ix *Indexer) IndexRecords(ctx context.Context, records []Record) (int, error) {
	indexed := 0
	for start := 0; start < len(records); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(records) {
			end = len(records)
		}

		if err := ix.indexBatch(ctx, records[start:end]); err != nil {
			return indexed, err
		}
		indexed = end
		ix.log.Info("indexed batch", zap.Int("indexed", indexed), zap.Int("total", len(records)))
	}
	return indexed, nil
}

func (ix *Indexer) indexBatch(ctx context.Context, batch []Record) error {
	var body bytes.Buffer
	for _, r := range batch {
		meta := fmt.Sprintf(`{"index":{"_index":%q}}`, ix.index)
		body.WriteString(meta)
		body.WriteByte('\n')

		doc, err := json.Marshal(map[string]string{
			"question": r.Question,
			"answer":   r.Answer,
			"focus":    r.Focus,
		})
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		body.Write(doc)
		body.WriteByte('\n')
	}

	res, err := ix.client.Bulk(bytes.NewReader(body.Bytes()),
		ix.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index: %s", res.Status())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int    `json:"status"`
			Error  *struct {
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}

	if bulkResp.Errors {
		for _, item := range bulkResp.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk index item failed: status %d: %s", op.Status, op.Error.Reason)
				}
			}
		}
		return fmt.Errorf("bulk index reported errors")
	}
	return nil
}
