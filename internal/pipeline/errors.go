package pipeline

import "fmt"

// FatalInputError means the reference document could not be loaded. No
// candidate is extracted after it.
type FatalInputError struct {
	Source string
	Err    error
}

func (e *FatalInputError) Error() string {
	return fmt.Sprintf("loading reference document %s: %v", e.Source, e.Err)
}

func (e *FatalInputError) Unwrap() error { return e.Err }

// CandidateExtractionError wraps a failure to extract one candidate. It is
// recorded on the ignored entry and never fails the run.
type CandidateExtractionError struct {
	Name string
	Path string
	Err  error
}

func (e *CandidateExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Name, e.Err)
}

func (e *CandidateExtractionError) Unwrap() error { return e.Err }
