package ingest

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Record is one cleaned question/answer pair from the MedQuAD corpus.
type Record struct {
	Question string
	Answer   string
	Focus    string
}

// medquadDocument mirrors the per-file XML layout of the MedQuAD dataset:
// a single Focus (the condition) and a list of QAPair elements.
type medquadDocument struct {
	Focus   string `xml:"Focus"`
	QAPairs []struct {
		Question string `xml:"Question"`
		Answer   string `xml:"Answer"`
	} `xml:"QAPairs>QAPair"`
}

// skippedFolders holds dataset subsets whose answer fields are empty, plus
// repo files that carry no QA pairs at all.
var skippedFolders = map[string]bool{
	".git":                        true,
	"10_MPlus_ADAM_QA":            true,
	"11_MPlusDrugs_QA":            true,
	"12_MPlusHerbsSupplements_QA": true,
	"readme.txt":                  true,
	"ProcessedData.csv":           true,
	"QA-TestSet-LiveQA-Med-Qrels-2479-Answers.zip": true,
}

var multiSpace = regexp.MustCompile(" +")

// cleanAnswer normalizes a raw answer to a single line: runs of spaces
// collapse to one, the "Key Points" section marker goes away, and newlines
// and list dashes are stripped.
func cleanAnswer(raw string) string {
	s := multiSpace.ReplaceAllString(raw, " ")
	s = strings.ReplaceAll(s, "Key Points", "")
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// ParseFile extracts the QA pairs of one MedQuAD XML file. Files without a
// focus or without QA pairs yield no records and no error; the dataset has
// plenty of both.
func ParseFile(r io.Reader) ([]Record, error) {
	var doc medquadDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode medquad xml: %w", err)
	}

	focus := strings.TrimSpace(doc.Focus)
	if focus == "" {
		return nil, nil
	}

	var records []Record
	for _, qa := range doc.QAPairs {
		question := strings.TrimSpace(qa.Question)
		if question == "" || strings.TrimSpace(qa.Answer) == "" {
			continue
		}
		records = append(records, Record{
			Question: question,
			Answer:   cleanAnswer(qa.Answer),
			Focus:    focus,
		})
	}
	return records, nil
}

// ProcessDataset walks a MedQuAD checkout and parses every XML file outside
// the skipped subsets. Individual unreadable files are logged and skipped,
// one broken file should not sink an hours-long ingest.
func ProcessDataset(root string, log *zap.Logger) ([]Record, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dataset root: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if !entry.IsDir() || skippedFolders[entry.Name()] {
			continue
		}

		folder := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(folder)
		if err != nil {
			return nil, fmt.Errorf("read dataset folder %s: %w", entry.Name(), err)
		}

		count := 0
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".xml") {
				continue
			}
			recs, err := parsePath(filepath.Join(folder, f.Name()))
			if err != nil {
				log.Warn("skipping file", zap.String("file", f.Name()), zap.Error(err))
				continue
			}
			records = append(records, recs...)
			count += len(recs)
		}
		log.Info("processed folder", zap.String("folder", entry.Name()), zap.Int("records", count))
	}
	return records, nil
}

func parsePath(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFile(f)
}

// WriteCSV writes the records with the Questions/Answers/Focus header the
// downstream tooling expects.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Questions", "Answers", "Focus"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Question, r.Answer, r.Focus}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV loads records produced by WriteCSV.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 3 {
			continue
		}
		records = append(records, Record{Question: row[0], Answer: row[1], Focus: row[2]})
	}
	return records, nil
}
