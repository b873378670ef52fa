package score

// Band is one ordered threshold rule: a limit and the score awarded when
// the value crosses it. Bands are checked top to bottom, first match
// wins.
type Band struct {
	Limit float64
	Score int
}

// EvalBelow scores v against bands with strictly-below semantics: the
// first band whose limit v is under wins. A nil input yields nil (no
// data), a value clearing every band yields 0 (confirmed normal).
func EvalBelow(v *float64, bands []Band) *int {
	if v == nil {
		return nil
	}
	for _, b := range bands {
		if *v < b.Limit {
			s := b.Score
			return &s
		}
	}
	zero := 0
	return &zero
}

// EvalAtLeast scores v against bands with at-least semantics: the first
// band whose limit v meets or exceeds wins.
func EvalAtLeast(v *float64, bands []Band) *int {
	if v == nil {
		return nil
	}
	for _, b := range bands {
		if *v >= b.Limit {
			s := b.Score
			return &s
		}
	}
	zero := 0
	return &zero
}
