package portfolio

import (
	"log"

	"StockOS/internal/importer"
	"StockOS/internal/model"
)

// MergeResult reports a reconciliation.
type MergeResult struct {
	Processed int
	Added     int
	Updated   int
	// OverwrittenEdited lists matched holdings that had been edited by
	// hand. Their narrative fields were replaced by import defaults.
	OverwrittenEdited []string
}

// Merge upserts candidates by exact name. A match is fully replaced by the
// candidate (last write wins) except for its buy date, which is kept; an
// unknown name is appended. An empty candidate list is a NoValidRowsError.
// Nothing is merged if the result cannot be saved.
func (s *Store) Merge(candidates []importer.Candidate) (MergeResult, error) {
	if len(candidates) == 0 {
		return MergeResult{}, &importer.NoValidRowsError{}
	}

	var res MergeResult
	err := s.update(func(p *model.Portfolio) ([]string, error) {
		res = MergeResult{}
		touched := make([]string, 0, len(candidates))
		for _, c := range candidates {
			h := c.Holding
			h.Edited = false

			if i := indexOf(p.Holdings, h.Name); i >= 0 {
				old := p.Holdings[i]
				if old.Edited {
					res.OverwrittenEdited = append(res.OverwrittenEdited, old.Name)
				}
				if old.BuyDate != "" {
					h.BuyDate = old.BuyDate
				}
				p.Holdings[i] = h
				res.Updated++
			} else {
				p.Holdings = append(p.Holdings, h)
				res.Added++
			}
			touched = append(touched, h.Name)
			res.Processed++
		}
		return touched, nil
	})
	if err != nil {
		return MergeResult{}, err
	}

	for _, name := range res.OverwrittenEdited {
		log.Printf("[WARN] import overwrote manually edited holding %q", name)
	}
	return res, nil
}
