// Package casestore implements the in-memory case management store: cases,
// evidence and case reports seeded with sample records. A Store is an owned
// object; every New call yields a fresh, freshly seeded instance. All methods
// are safe for concurrent use.
package casestore

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/casemesh/internal/storeerr"
	"github.com/hupe1980/casemesh/internal/util"
	"github.com/hupe1980/casemesh/logging"
)

const (
	timestampLayout = "2006-01-02 15:04"
	reportAuthor    = "Sistema de Gestión de Casos"
)

var (
	// CaseStatuses is the closed set of case statuses.
	CaseStatuses = []string{"abierto", "en_investigacion", "cerrado", "archivado"}
	// AnalysisTypes is the closed set of evidence analysis types.
	AnalysisTypes = []string{"forense", "digital", "financiero", "psicológico"}
)

// Options configures a Store.
type Options struct {
	// Now returns the current time; used for all generated timestamps.
	Now func() time.Time
	// NewID generates record identifiers from a prefix and hex length.
	NewID func(prefix string, n int) string
	// Logger receives mutation events.
	Logger logging.Logger
}

// Store owns the case, evidence and report mappings.
type Store struct {
	mu       sync.RWMutex
	cases    map[string]*Case
	evidence map[string]*Evidence
	reports  map[string]*Report

	now    func() time.Time
	newID  func(prefix string, n int) string
	logger logging.Logger
}

// New constructs a Store seeded with the sample cases and evidence.
func New(optFns ...func(o *Options)) *Store {
	opts := Options{
		Now:    time.Now,
		NewID:  util.NewShortID,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Store{
		cases:    make(map[string]*Case),
		evidence: make(map[string]*Evidence),
		reports:  make(map[string]*Report),
		now:      opts.Now,
		newID:    opts.NewID,
		logger:   opts.Logger,
	}

	for _, c := range seedCases() {
		s.cases[c.ID] = &c
	}

	for _, e := range seedEvidence() {
		s.evidence[e.ID] = &e
	}

	return s
}

func caseNotFound(id string) error {
	return storeerr.NotFound("case_id", id, fmt.Sprintf("Caso con ID '%s' no encontrado.", id))
}

func evidenceNotFound(id string) error {
	return storeerr.NotFound("evidence_id", id, fmt.Sprintf("Evidencia con ID '%s' no encontrada.", id))
}

// GetCaseDetails returns the case plus every referenced evidence record that exists.
func (s *Store) GetCaseDetails(caseID string) (*CaseDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cases[caseID]
	if !ok {
		return nil, caseNotFound(caseID)
	}

	details := &CaseDetails{Case: c.clone(), EvidenceDetails: []Evidence{}}

	for _, id := range c.EvidenceIDs {
		if e, ok := s.evidence[id]; ok {
			details.EvidenceDetails = append(details.EvidenceDetails, e.clone())
		}
	}

	return details, nil
}

// SearchByType returns cases whose type matches caseType case-insensitively.
func (s *Store) SearchByType(caseType string) SearchResult {
	res := s.search(func(c *Case) bool { return strings.EqualFold(c.Type, caseType) })
	if res.Count == 0 {
		res.Message = fmt.Sprintf("No se encontraron casos de tipo '%s'.", caseType)
	}

	return res
}

// SearchByStatus returns cases whose status matches status case-insensitively.
func (s *Store) SearchByStatus(status string) SearchResult {
	res := s.search(func(c *Case) bool { return strings.EqualFold(c.Status, status) })
	if res.Count == 0 {
		res.Message = fmt.Sprintf("No se encontraron casos con estado '%s'.", status)
	}

	return res
}

func (s *Store) search(match func(*Case) bool) SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cases := []Case{}

	for _, c := range s.cases {
		if match(c) {
			cases = append(cases, c.clone())
		}
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].ID < cases[j].ID })

	return SearchResult{Cases: cases, Count: len(cases)}
}

// GetEvidence returns a single evidence record.
func (s *Store) GetEvidence(evidenceID string) (*Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.evidence[evidenceID]
	if !ok {
		return nil, evidenceNotFound(evidenceID)
	}

	cp := e.clone()

	return &cp, nil
}

// AnalyzeEvidence runs the canned analysis for analysisType and records the
// outcome on the evidence, marking it "analizado".
func (s *Store) AnalyzeEvidence(evidenceID, analysisType string) (*Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.evidence[evidenceID]
	if !ok {
		return nil, evidenceNotFound(evidenceID)
	}

	kind := strings.ToLower(analysisType)
	if !storeerr.OneOf(kind, AnalysisTypes) {
		return nil, storeerr.InvalidEnum("analysis_type", analysisType, "Tipo de análisis", "Tipos válidos", AnalysisTypes)
	}

	a := Analysis{
		EvidenceID:   evidenceID,
		AnalysisType: analysisType,
		DateAnalyzed: s.now().Format(timestampLayout),
		Analyst:      "Especialista en " + analysisType,
		Status:       "completado",
	}
	a.Findings, a.Confidence = cannedFindings(kind, e.Type)

	stored := a
	e.Status = "analizado"
	e.LastAnalysis = &stored

	if a.Findings != "" {
		findings := a.Findings
		e.AnalysisResults = &findings
	}

	s.logger.Info("casestore.evidence.analyzed", "evidence_id", evidenceID, "analysis_type", kind)

	return &a, nil
}

// cannedFindings selects the fixed findings/confidence pair for an analysis
// kind and evidence type. Unmatched combinations yield empty strings.
func cannedFindings(kind, evidenceType string) (string, string) {
	switch kind {
	case "forense":
		switch evidenceType {
		case "huellas_dactilares":
			return "Huellas parciales identificadas, 12 puntos de comparación disponibles", "85%"
		case "video_seguridad":
			return "Análisis de movimiento y características físicas completado", "70%"
		}
	case "digital":
		return "Metadatos extraídos, análisis de integridad completado", "95%"
	case "financiero":
		return "Patrones de transacción anómalos identificados", "90%"
	}

	return "", ""
}

// CreateReport stores a new draft report snapshotting the case's current status.
func (s *Store) CreateReport(caseID, findings, recommendations string) (*ReportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cases[caseID]
	if !ok {
		return nil, caseNotFound(caseID)
	}

	r := Report{
		ID:                 s.newID("RPT-", 8),
		CaseID:             caseID,
		CaseTitle:          c.Title,
		DateCreated:        s.now().Format(timestampLayout),
		Author:             reportAuthor,
		Findings:           findings,
		Recommendations:    recommendations,
		Status:             "draft",
		CaseStatusAtReport: c.Status,
	}

	stored := r
	s.reports[r.ID] = &stored

	s.logger.Info("casestore.report.created", "report_id", r.ID, "case_id", caseID)

	return &ReportResult{Status: "success", Message: "Informe creado exitosamente", Report: r}, nil
}

// GetReport returns a previously created report.
func (s *Store) GetReport(reportID string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[reportID]
	if !ok {
		return nil, storeerr.NotFound("report_id", reportID, fmt.Sprintf("Informe con ID '%s' no encontrado.", reportID))
	}

	cp := *r

	return &cp, nil
}

// GetCaseStatus returns a status summary for the case.
func (s *Store) GetCaseStatus(caseID string) (*StatusSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cases[caseID]
	if !ok {
		return nil, caseNotFound(caseID)
	}

	return &StatusSummary{
		CaseID:            caseID,
		Title:             c.Title,
		Status:            c.Status,
		Priority:          c.Priority,
		AssignedDetective: c.AssignedDetective,
		DateCreated:       c.DateCreated,
		EvidenceCount:     len(c.EvidenceIDs),
		SuspectCount:      len(c.Suspects),
	}, nil
}

// UpdateCaseStatus sets the case status (lower-cased) and appends one entry
// to the status history. Nothing is mutated when validation fails.
func (s *Store) UpdateCaseStatus(caseID, newStatus, notes string) (*StatusUpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cases[caseID]
	if !ok {
		return nil, caseNotFound(caseID)
	}

	status := strings.ToLower(newStatus)
	if !storeerr.OneOf(status, CaseStatuses) {
		return nil, storeerr.InvalidEnum("new_status", newStatus, "Estado", "Estados válidos", CaseStatuses)
	}

	ts := s.now().Format(timestampLayout)
	old := c.Status

	c.Status = status
	c.LastUpdated = ts
	c.StatusHistory = append(c.StatusHistory, StatusChange{
		Date:      ts,
		OldStatus: old,
		NewStatus: status,
		Notes:     notes,
	})

	s.logger.Info("casestore.case.status_updated", "case_id", caseID, "old_status", old, "new_status", status)

	return &StatusUpdateResult{
		Status:    "success",
		Message:   fmt.Sprintf("Estado del caso %s actualizado de '%s' a '%s'", caseID, old, status),
		CaseID:    caseID,
		NewStatus: status,
		Notes:     notes,
	}, nil
}

// CaseIDs returns all case identifiers in sorted order.
func (s *Store) CaseIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.cases))
	for id := range s.cases {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// EvidenceIDs returns all evidence identifiers in sorted order.
func (s *Store) EvidenceIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.evidence))
	for id := range s.evidence {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
