package slides

// DiagnosticKind classifies a table placeholder that could not be expanded.
type DiagnosticKind int

const (
	// DiagNoData: the key is absent, not an array, or an empty array. The anchor shows the
	// no-data text.
	DiagNoData DiagnosticKind = iota
	// DiagNotRecord: the first array element is not a non-empty object. The table is left alone.
	DiagNotRecord
	// DiagSchemaMismatch: strict mode found elements with a different key set.
	DiagSchemaMismatch
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagNoData:
		return "no_data"
	case DiagNotRecord:
		return "not_record"
	case DiagSchemaMismatch:
		return "schema_mismatch"
	default:
		return "unknown"
	}
}

// Diagnostic describes one table placeholder left unexpanded.
type Diagnostic struct {
	Kind DiagnosticKind
	// Row is the input row index, Slide the 1-based slide number.
	Row         int
	Slide       int
	Shape       string
	Placeholder string
	Err         error
}

// Report summarizes one render.
type Report struct {
	JobID string
	// Rows is the number of input rows; Rendered counts those that were applied.
	Rows     int
	Rendered int
	Skipped  []*RecordError

	Diagnostics []Diagnostic

	Substitutions  int
	Fallbacks      int
	TablesExpanded int
	TablesDegraded int
}

// Summarize adds up reports, e.g. those returned by RenderEach. Nil entries are ignored.
func Summarize(reports []*Report) *Report {
	total := &Report{}
	for _, r := range reports {
		if r == nil {
			continue
		}
		if total.JobID == "" {
			total.JobID = r.JobID
		}
		total.Rows += r.Rows
		total.Rendered += r.Rendered
		total.Skipped = append(total.Skipped, r.Skipped...)
		total.Diagnostics = append(total.Diagnostics, r.Diagnostics...)
		total.Substitutions += r.Substitutions
		total.Fallbacks += r.Fallbacks
		total.TablesExpanded += r.TablesExpanded
		total.TablesDegraded += r.TablesDegraded
	}
	return total
}
