package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/careloop/care-assistant/internal/ingest"
)

// medquad-ingest turns a MedQuAD dataset checkout into the cleaned CSV that
// index-builder loads into the search index.
func main() {
	datasetDir := flag.String("dataset", "raw_data", "path to a MedQuAD checkout")
	out := flag.String("out", "clean_data/ProcessedData.csv", "output CSV path")
	flag.Parse()

	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zl.Sync()

	records, err := ingest.ProcessDataset(*datasetDir, zl)
	if err != nil {
		zl.Fatal("process dataset", zap.Error(err))
	}
	zl.Info("dataset processed", zap.Int("records", len(records)))

	f, err := os.Create(*out)
	if err != nil {
		zl.Fatal("create output file", zap.Error(err))
	}
	defer f.Close()

	if err := ingest.WriteCSV(f, records); err != nil {
		zl.Fatal("write csv", zap.Error(err))
	}
	zl.Info("csv written", zap.String("path", *out))
}
