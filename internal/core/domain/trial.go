package domain

import (
	"regexp"
	"strings"
)

// Page size bounds for a TrialQuery.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TrialStatus is a registry overall-status value.
type TrialStatus string

// Overall recruitment statuses understood by the registry.
const (
	StatusNotYetRecruiting      TrialStatus = "NOT_YET_RECRUITING"
	StatusRecruiting            TrialStatus = "RECRUITING"
	StatusEnrollingByInvitation TrialStatus = "ENROLLING_BY_INVITATION"
	StatusActiveNotRecruiting   TrialStatus = "ACTIVE_NOT_RECRUITING"
	StatusSuspended             TrialStatus = "SUSPENDED"
	StatusTerminated            TrialStatus = "TERMINATED"
	StatusCompleted             TrialStatus = "COMPLETED"
	StatusWithdrawn             TrialStatus = "WITHDRAWN"
	StatusUnknown               TrialStatus = "UNKNOWN"
)

// TrialStatuses lists every accepted status in registry order.
func TrialStatuses() []TrialStatus {
	return []TrialStatus{
		StatusNotYetRecruiting,
		StatusRecruiting,
		StatusEnrollingByInvitation,
		StatusActiveNotRecruiting,
		StatusSuspended,
		StatusTerminated,
		StatusCompleted,
		StatusWithdrawn,
		StatusUnknown,
	}
}

// Phase is a registry study phase.
type Phase string

// Study phases understood by the registry.
const (
	PhaseEarly1 Phase = "EARLY_PHASE1"
	Phase1      Phase = "PHASE1"
	Phase2      Phase = "PHASE2"
	Phase3      Phase = "PHASE3"
	Phase4      Phase = "PHASE4"
	PhaseNA     Phase = "NA"
)

// Phases lists every accepted phase.
func Phases() []Phase {
	return []Phase{PhaseEarly1, Phase1, Phase2, Phase3, Phase4, PhaseNA}
}

// ParseTrialStatus normalizes loose input ("recruiting", "Active, not recruiting")
// into a TrialStatus. Empty input yields an empty status.
func ParseTrialStatus(s string) (TrialStatus, error) {
	norm := normalizeToken(s)
	if norm == "" {
		return "", nil
	}
	for _, st := range TrialStatuses() {
		if string(st) == norm {
			return st, nil
		}
	}
	return "", &ValidationError{Field: "status", Message: "unsupported status " + quote(s)}
}

// ParsePhase normalizes loose input ("phase 2", "2", "early phase 1", "n/a").
func ParsePhase(s string) (Phase, error) {
	norm := normalizeToken(s)
	switch norm {
	case "":
		return "", nil
	case "N_A", "NOT_APPLICABLE":
		return PhaseNA, nil
	case "EARLY_PHASE_1", "EARLY_1", "0":
		return PhaseEarly1, nil
	}
	norm = strings.ReplaceAll(norm, "_", "")
	if len(norm) == 1 {
		norm = "PHASE" + norm
	}
	for _, p := range Phases() {
		if string(p) == norm || strings.ReplaceAll(string(p), "_", "") == norm {
			return p, nil
		}
	}
	return "", &ValidationError{Field: "phase", Message: "unsupported phase " + quote(s)}
}

func normalizeToken(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(",", " ", "-", " ", "/", "_").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}

func quote(s string) string { return `"` + s + `"` }

// TrialQuery is an immutable search request against the registry.
// Build it with NewTrialQuery so the invariants hold.
type TrialQuery struct {
	Condition string
	Location  string
	Status    TrialStatus
	Phase     Phase
	PageSize  int
	PageToken string
}

// NewTrialQuery validates and normalizes a query. The condition must contain
// non-whitespace text; a zero page size becomes DefaultPageSize.
func NewTrialQuery(condition, location string, status TrialStatus, phase Phase, pageSize int, pageToken string) (TrialQuery, error) {
	q := TrialQuery{
		Condition: strings.TrimSpace(condition),
		Location:  strings.TrimSpace(location),
		Status:    status,
		Phase:     phase,
		PageSize:  pageSize,
		PageToken: strings.TrimSpace(pageToken),
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if err := q.Validate(); err != nil {
		return TrialQuery{}, err
	}
	return q, nil
}

// Validate checks the query without touching the network.
func (q TrialQuery) Validate() error {
	if strings.TrimSpace(q.Condition) == "" {
		return &ValidationError{Field: "condition", Message: "must not be empty"}
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return &ValidationError{Field: "page_size", Message: "must be between 1 and 100"}
	}
	return nil
}

var nctPattern = regexp.MustCompile(`^NCT\d{8}$`)

// ParseNCTID upper-cases and checks a registry identifier such as NCT01234567.
func ParseNCTID(s string) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(s))
	if id == "" {
		return "", &ValidationError{Field: "nct_id", Message: "must not be empty"}
	}
	if !nctPattern.MatchString(id) {
		return "", &ValidationError{Field: "nct_id", Message: "expected NCT followed by 8 digits, got " + quote(s)}
	}
	return id, nil
}

// TrialLocation is one study site.
type TrialLocation struct {
	Facility string `json:"facility,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
}

// TrialRecord is a read-only projection of one registry study.
type TrialRecord struct {
	// NCTID is the registry's primary key, e.g. NCT01234567.
	NCTID string `json:"nct_id"`

	Title         string          `json:"title"`
	OfficialTitle string          `json:"official_title,omitempty"`
	Status        TrialStatus     `json:"status,omitempty"`
	Phases        []Phase         `json:"phases,omitempty"`
	Enrollment    int             `json:"enrollment,omitempty"`
	Summary       string          `json:"summary,omitempty"`
	Conditions    []string        `json:"conditions,omitempty"`
	Sponsor       string          `json:"sponsor,omitempty"`
	StudyType     string          `json:"study_type,omitempty"`
	StartDate     string          `json:"start_date,omitempty"`
	Locations     []TrialLocation `json:"locations,omitempty"`
}

// TrialPage is one page of search results.
type TrialPage struct {
	Trials        []TrialRecord `json:"trials"`
	TotalCount    int           `json:"total_count"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}
