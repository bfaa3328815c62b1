package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/careloop/care-assistant/internal/ingest"
	"github.com/careloop/care-assistant/internal/retrieval"
)

// index-builder loads the cleaned MedQuAD CSV into the conditions index.
func main() {
	in := flag.String("in", "clean_data/ProcessedData.csv", "input CSV path")
	index := flag.String("index", "conditions", "target index name")
	flag.Parse()

	addrs := strings.Split(envOr("ELASTIC_ADDRS", "http://127.0.0.1:9200"), ",")

	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(*in)
	if err != nil {
		zl.Fatal("open input file", zap.Error(err))
	}
	records, err := ingest.ReadCSV(f)
	f.Close()
	if err != nil {
		zl.Fatal("read csv", zap.Error(err))
	}
	zl.Info("records loaded", zap.Int("count", len(records)))

	es, err := retrieval.NewElasticClient(addrs)
	if err != nil {
		zl.Fatal("elasticsearch client error", zap.Error(err))
	}
	if err := retrieval.Ping(ctx, es); err != nil {
		zl.Fatal("elasticsearch not reachable", zap.Error(err))
	}

	indexer := ingest.NewIndexer(es, *index, zl)
	if err := indexer.EnsureIndex(ctx); err != nil {
		zl.Fatal("ensure index", zap.Error(err))
	}

	indexed, err := indexer.IndexRecords(ctx, records)
	if err != nil {
		zl.Fatal("index records", zap.Int("indexed", indexed), zap.Error(err))
	}

	zl.Info("index build complete", zap.Int("indexed", indexed), zap.String("index", *index))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
