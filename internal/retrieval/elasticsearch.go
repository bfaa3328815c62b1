package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

const defaultTopK = 4

func NewElasticClient(addrs []string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addrs,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}

// Ping tests the Elasticsearch connection.
func Ping(ctx context.Context, client *elasticsearch.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := client.Ping(client.Ping.WithContext(pingCtx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// ElasticRetriever serves condition passages from a lexical index built by
// the index-builder tool.
type ElasticRetriever struct {
	client *elasticsearch.Client
	index  string
	topK   int
}

func NewElasticRetriever(client *elasticsearch.Client, index string) *ElasticRetriever {
	return &ElasticRetriever{
		client: client,
		index:  index,
		topK:   defaultTopK,
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				Question string `json:"question"`
				Answer   string `json:"answer"`
				Focus    string `json:"focus"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r *ElasticRetriever) Query(ctx context.Context, query string) ([]Passage, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"question^2", "answer", "focus"},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(&buf),
		r.client.Search.WithSize(r.topK),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", r.index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	passages := make([]Passage, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		passages = append(passages, Passage{
			Question: hit.Source.Question,
			Content:  hit.Source.Answer,
			Focus:    hit.Source.Focus,
			Score:    hit.Score,
		})
	}

	return passages, nil
}
