package pkgcat

import "sync"

// Stage identifies the pipeline stage that recorded a defect.
type Stage string

// Pipeline stages.
const (
	StageParse     Stage = "parse"
	StageNormalize Stage = "normalize"
	StageResolve   Stage = "resolve"
	StageValidate  Stage = "validate"
	StageIndex     Stage = "index"
)

// DefectKind classifies a defect.
type DefectKind string

// Defect kinds.
const (
	DefectMissingLink         DefectKind = "MissingLink"
	DefectInvalidURL          DefectKind = "InvalidURL"
	DefectMissingName         DefectKind = "MissingName"
	DefectUnknownCategory     DefectKind = "UnknownCategory"
	DefectDuplicateEntry      DefectKind = "DuplicateEntry"
	DefectCrossListed         DefectKind = "CrossListed"
	DefectUnreachable         DefectKind = "Unreachable"
	DefectRedirected          DefectKind = "Redirected"
	DefectAmbiguous           DefectKind = "Ambiguous"
	DefectBrokenSecondaryLink DefectKind = "BrokenSecondaryLink"
)

// Defect is a non-fatal data or processing anomaly recorded for operator
// review. Ref is the entry id when one exists, otherwise a raw record reference.
type Defect struct {
	Stage  Stage      `json:"stage"`
	Ref    string     `json:"ref"`
	Kind   DefectKind `json:"kind"`
	Detail string     `json:"detail"`
}

// DefectReport accumulates defects across stages. It never blocks
// processing and is drained once at the end of a run.
// It is safe for concurrent use.
type DefectReport struct {
	mu      sync.Mutex
	defects []Defect
}

// Add appends defects to the report.
func (r *DefectReport) Add(defects ...Defect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defects = append(r.defects, defects...)
}

// Len returns the number of pending defects.
func (r *DefectReport) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.defects)
}

// Drain returns all pending defects and empties the report.
func (r *DefectReport) Drain() []Defect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.defects
	r.defects = nil
	return out
}

// CountDefects returns the number of defects per kind.
func CountDefects(defects []Defect) map[DefectKind]int {
	counts := make(map[DefectKind]int)
	for _, d := range defects {
		counts[d.Kind]++
	}
	return counts
}
