// Package grading implements the scoring engine: per-type scoring
// strategies for objective questions, the similarity-backed essay
// corrector, the finish-attempt scoring pass, and recorrection of
// persisted results.
package grading

import (
	"encoding/json"
	"math"

	"examly/models"
)

// ScoreSelection scores an objective answer. It is a pure function of
// the question type, the set of correct alternative IDs, the student's
// selection, and the points the question is worth in this exam.
//
//   - single_choice / true_false: full points when exactly one
//     alternative is selected and it is correct, otherwise 0.
//   - multiple_choice: net-correct partial credit. With C the correct
//     set and S the selection, net = |C∩S| - |S-C|; score is
//     points * net/|C| when net > 0, otherwise 0. Guessing everything
//     nets zero, and net can never exceed |C|, so the score stays in
//     [0, points].
//
// Essay questions are not scored here; see CorrectEssay.
func ScoreSelection(qt models.QuestionType, correctIDs, selectedIDs []uint, points float64) float64 {
	switch qt {
	case models.SingleChoice, models.TrueFalse:
		if len(selectedIDs) != 1 {
			return 0
		}
		for _, id := range correctIDs {
			if id == selectedIDs[0] {
				return points
			}
		}
		return 0

	case models.MultipleChoice:
		if len(correctIDs) == 0 {
			return 0
		}
		correct := make(map[uint]struct{}, len(correctIDs))
		for _, id := range correctIDs {
			correct[id] = struct{}{}
		}
		selected := make(map[uint]struct{}, len(selectedIDs))
		for _, id := range selectedIDs {
			selected[id] = struct{}{}
		}

		correctSelected := 0
		incorrectSelected := 0
		for id := range selected {
			if _, ok := correct[id]; ok {
				correctSelected++
			} else {
				incorrectSelected++
			}
		}

		net := correctSelected - incorrectSelected
		if net <= 0 {
			return 0
		}
		return points * (float64(net) / float64(len(correctIDs)))

	case models.Essay:
		return 0
	}
	return 0
}

// DecodeSelectedAlternatives parses the stored selected_alternatives
// JSON into alternative IDs. Older rows stored numbers as strings;
// both forms decode. Anything unparsable reads as "no selection".
func DecodeSelectedAlternatives(raw []byte) []uint {
	if len(raw) == 0 {
		return nil
	}
	var generic []json.Number
	if err := json.Unmarshal(raw, &generic); err != nil {
		// Fall back to a mixed array (numbers and/or strings).
		var mixed []interface{}
		if err := json.Unmarshal(raw, &mixed); err != nil {
			return nil
		}
		out := make([]uint, 0, len(mixed))
		for _, v := range mixed {
			switch t := v.(type) {
			case float64:
				if t > 0 {
					out = append(out, uint(t))
				}
			case string:
				if f, err := json.Number(t).Float64(); err == nil && f > 0 {
					out = append(out, uint(f))
				}
			}
		}
		return out
	}
	out := make([]uint, 0, len(generic))
	for _, n := range generic {
		if f, err := n.Float64(); err == nil && f > 0 {
			out = append(out, uint(f))
		}
	}
	return out
}

// round2 rounds to two decimal places, the precision persisted for
// points and percentages.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
