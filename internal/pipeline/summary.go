package pipeline

import (
	"github.com/montanaflynn/stats"

	"github.com/maive-lab/mockcsv/internal/record"
)

// Summary describes the records one table produced.
type Summary struct {
	Records     int     `json:"records"`
	MeanEffect  float64 `json:"mean_effect"`
	MinEffect   float64 `json:"min_effect"`
	MaxEffect   float64 `json:"max_effect"`
	MedianSE    float64 `json:"median_se"`
	TotalN      int     `json:"total_n"`
	StudyGroups int     `json:"study_groups"`
}

// Summarize computes descriptive statistics over records. An empty input
// gives a zero Summary.
func Summarize(records []record.Record) (Summary, error) {
	s := Summary{Records: len(records)}
	if len(records) == 0 {
		return s, nil
	}

	effects := make(stats.Float64Data, len(records))
	ses := make(stats.Float64Data, len(records))
	groups := make(map[string]struct{})
	for i, r := range records {
		effects[i] = r.Effect
		ses[i] = r.SE
		s.TotalN += r.N
		groups[r.StudyID] = struct{}{}
	}
	s.StudyGroups = len(groups)

	var err error
	if s.MeanEffect, err = effects.Mean(); err != nil {
		return s, err
	}
	if s.MinEffect, err = effects.Min(); err != nil {
		return s, err
	}
	if s.MaxEffect, err = effects.Max(); err != nil {
		return s, err
	}
	if s.MedianSE, err = stats.Median(ses); err != nil {
		return s, err
	}
	return s, nil
}
