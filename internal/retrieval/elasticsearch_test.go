package retrieval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/require"
)

func newStubElastic(t *testing.T, responseBody string) *elasticsearch.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responseBody))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticRetrieverQuery(t *testing.T) {
	client := newStubElastic(t, `{
		"hits": {
			"hits": [
				{"_score": 2.5, "_source": {"question": "What is a migraine?", "answer": "A migraine is a recurring headache.", "focus": "Migraine"}},
				{"_score": 1.1, "_source": {"question": "Headache causes", "answer": "Many headaches are tension related.", "focus": "Headache"}}
			]
		}
	}`)

	r := NewElasticRetriever(client, "conditions")
	passages, err := r.Query(context.Background(), "why does my head hurt")
	require.NoError(t, err)
	require.Len(t, passages, 2)
	require.Equal(t, "A migraine is a recurring headache.", passages[0].Content)
	require.Equal(t, "Migraine", passages[0].Focus)
	require.Greater(t, passages[0].Score, passages[1].Score)
}

func TestElasticRetrieverQueryEmpty(t *testing.T) {
	client := newStubElastic(t, `{"hits": {"hits": []}}`)

	r := NewElasticRetriever(client, "conditions")
	passages, err := r.Query(context.Background(), "anything")
	require.NoError(t, err)
	require.Empty(t, passages)
}
