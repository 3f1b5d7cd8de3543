package domain

// FileOutcome is the per-file result of an ingestion batch.
type FileOutcome struct {
	// FileName is the name the file was submitted under.
	FileName string

	// ChunksAdded is how many chunks were stored for this file.
	ChunksAdded int

	// Err is the failure for this file, nil on success.
	Err error
}

// IngestReport aggregates the outcome of an ingestion batch. A batch
// continues past individual file failures; callers inspect Failed to
// decide whether the batch was clean.
type IngestReport struct {
	// Outcomes holds one entry per submitted file, in submission order.
	Outcomes []FileOutcome

	// ChunksAdded is the total number of chunks stored across the batch.
	ChunksAdded int
}

// Failed returns the outcomes that carry an error.
func (r IngestReport) Failed() []FileOutcome {
	var failed []FileOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
