package scheduler

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"StockOS/internal/importer"
	"StockOS/internal/portfolio"
	"StockOS/internal/recorder"
)

// ImportReport describes a successful import.
type ImportReport struct {
	BatchID string
	Parse   *importer.Result
	Merge   portfolio.MergeResult
}

// Import parses raw file bytes and reconciles them into the store. Every
// attempt is recorded, including failed ones. Structural errors are
// returned unwrapped so callers can match them with errors.As.
func (s *Scheduler) Import(source string, raw []byte, synonyms importer.Synonyms) (*ImportReport, error) {
	rep := &ImportReport{BatchID: uuid.NewString()}
	evt := &recorder.ImportEvent{BatchID: rep.BatchID, Source: source}
	defer func() {
		if err := s.Recorder.RecordImport(evt); err != nil {
			log.Printf("[ERROR] record import: %v", err)
		}
	}()

	res, err := importer.Parse(raw, importer.Options{Synonyms: synonyms, Today: s.Now()})
	if err != nil {
		evt.Error = err.Error()
		log.Printf("[WARN] import %s (%s) failed: %v", rep.BatchID, source, err)
		return nil, err
	}
	rep.Parse = res
	evt.Delimiter = importer.DelimiterName(res.Delimiter)
	evt.Headers = res.Headers
	evt.DataRows = res.DataRows
	evt.Warnings = len(res.Warnings)

	mres, err := s.Store.Merge(res.Candidates)
	if err != nil {
		evt.Error = err.Error()
		return nil, fmt.Errorf("merge: %w", err)
	}
	rep.Merge = mres
	evt.Added = mres.Added
	evt.Updated = mres.Updated

	log.Printf("[INFO] import %s (%s): %d row(s), %d added, %d updated, %d warning(s)",
		rep.BatchID, source, mres.Processed, mres.Added, mres.Updated, len(res.Warnings))
	return rep, nil
}
