package casestore

// Case is an investigation record.
type Case struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Type              string         `json:"type"`
	Status            string         `json:"status"`
	Description       string         `json:"description"`
	DateCreated       string         `json:"date_created"`
	Priority          string         `json:"priority"`
	AssignedDetective string         `json:"assigned_detective"`
	EvidenceIDs       []string       `json:"evidence_ids"`
	Suspects          []string       `json:"suspects"`
	Location          string         `json:"location"`
	LastUpdated       string         `json:"last_updated,omitempty"`
	StatusHistory     []StatusChange `json:"status_history,omitempty"`
}

// StatusChange is one entry of a case's status history.
type StatusChange struct {
	Date      string `json:"date"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Notes     string `json:"notes"`
}

// Evidence is a piece of evidence attached (by id) to a case.
type Evidence struct {
	ID              string    `json:"id"`
	CaseID          string    `json:"case_id"`
	Type            string    `json:"type"`
	Description     string    `json:"description"`
	LocationFound   string    `json:"location_found"`
	DateCollected   string    `json:"date_collected"`
	Status          string    `json:"status"`
	ChainOfCustody  []string  `json:"chain_of_custody"`
	AnalysisResults *string   `json:"analysis_results"`
	LastAnalysis    *Analysis `json:"last_analysis,omitempty"`
}

// Analysis is the canned outcome of analyzing a piece of evidence.
type Analysis struct {
	EvidenceID   string `json:"evidence_id"`
	AnalysisType string `json:"analysis_type"`
	DateAnalyzed string `json:"date_analyzed"`
	Analyst      string `json:"analyst"`
	Status       string `json:"status"`
	Findings     string `json:"findings,omitempty"`
	Confidence   string `json:"confidence,omitempty"`
}

// Report is an official case report draft.
type Report struct {
	ID                 string `json:"id"`
	CaseID             string `json:"case_id"`
	CaseTitle          string `json:"case_title"`
	DateCreated        string `json:"date_created"`
	Author             string `json:"author"`
	Findings           string `json:"findings"`
	Recommendations    string `json:"recommendations"`
	Status             string `json:"status"`
	CaseStatusAtReport string `json:"case_status_at_report"`
}

// CaseDetails is a case together with its resolved evidence records.
type CaseDetails struct {
	Case
	EvidenceDetails []Evidence `json:"evidence_details"`
}

// SearchResult is returned by the case search operations. Message is set
// when nothing matched.
type SearchResult struct {
	Cases   []Case `json:"cases"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

// ReportResult is returned by CreateReport.
type ReportResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Report  Report `json:"report"`
}

// StatusSummary is returned by GetCaseStatus.
type StatusSummary struct {
	CaseID            string `json:"case_id"`
	Title             string `json:"title"`
	Status            string `json:"status"`
	Priority          string `json:"priority"`
	AssignedDetective string `json:"assigned_detective"`
	DateCreated       string `json:"date_created"`
	EvidenceCount     int    `json:"evidence_count"`
	SuspectCount      int    `json:"suspect_count"`
}

// StatusUpdateResult is returned by UpdateCaseStatus.
type StatusUpdateResult struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	CaseID    string `json:"case_id"`
	NewStatus string `json:"new_status"`
	Notes     string `json:"notes"`
}

func (c Case) clone() Case {
	c.EvidenceIDs = append([]string{}, c.EvidenceIDs...)
	c.Suspects = append([]string{}, c.Suspects...)
	if c.StatusHistory != nil {
		c.StatusHistory = append([]StatusChange(nil), c.StatusHistory...)
	}

	return c
}

func (e Evidence) clone() Evidence {
	e.ChainOfCustody = append([]string{}, e.ChainOfCustody...)
	if e.AnalysisResults != nil {
		s := *e.AnalysisResults
		e.AnalysisResults = &s
	}

	if e.LastAnalysis != nil {
		a := *e.LastAnalysis
		e.LastAnalysis = &a
	}

	return e
}
