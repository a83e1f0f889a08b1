package mirror

// Summary aggregates a run's results.
type Summary struct {
	Total   int
	Cloned  int
	Updated int
	Failed  int

	// Failures keeps failing results in the order they completed.
	Failures []Result
}

func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Status == StatusCloned:
			s.Cloned++
		case r.Status == StatusUpdated:
			s.Updated++
		case r.Status.IsFailure():
			s.Failed++
			s.Failures = append(s.Failures, r)
		}
	}
	return s
}
