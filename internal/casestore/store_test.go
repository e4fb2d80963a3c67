package casestore

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/casemesh/internal/storeerr"
)

var fixedNow = time.Date(2025, 9, 6, 10, 30, 0, 0, time.UTC)

func newTestStore() *Store {
	return New(func(o *Options) {
		o.Now = func() time.Time { return fixedNow }
	})
}

func TestGetCaseDetails(t *testing.T) {
	s := newTestStore()

	for _, id := range s.CaseIDs() {
		d, err := s.GetCaseDetails(id)
		require.NoError(t, err)
		assert.Equal(t, id, d.ID)
	}

	d, err := s.GetCaseDetails("CASE-001")
	require.NoError(t, err)
	require.Len(t, d.EvidenceDetails, 2)
	assert.Equal(t, "EVID-001", d.EvidenceDetails[0].ID)
	assert.Nil(t, d.EvidenceDetails[0].AnalysisResults)
	assert.Equal(t, "EVID-002", d.EvidenceDetails[1].ID)
}

func TestGetCaseDetails_NotFound(t *testing.T) {
	s := newTestStore()

	_, err := s.GetCaseDetails("CASE-999")
	require.Error(t, err)
	assert.Equal(t, storeerr.KindNotFound, storeerr.KindOf(err))
	assert.Contains(t, err.Error(), "CASE-999")
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := newTestStore()

	d, err := s.GetCaseDetails("CASE-002")
	require.NoError(t, err)
	d.Suspects[0] = "mutated"
	d.Status = "cerrado"

	again, err := s.GetCaseDetails("CASE-002")
	require.NoError(t, err)
	assert.Equal(t, "Carlos Mendoza - CFO", again.Suspects[0])
	assert.Equal(t, "en_investigacion", again.Status)
}

func TestSearchByType(t *testing.T) {
	s := newTestStore()

	res := s.SearchByType("ROBO")
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "CASE-001", res.Cases[0].ID)
	assert.Empty(t, res.Message)

	res = s.SearchByType("homicidio")
	assert.Equal(t, 0, res.Count)
	assert.Empty(t, res.Cases)
	assert.Equal(t, "No se encontraron casos de tipo 'homicidio'.", res.Message)
}

func TestSearchByStatus(t *testing.T) {
	s := newTestStore()

	res := s.SearchByStatus("Abierto")
	require.Equal(t, 2, res.Count)
	assert.Equal(t, "CASE-001", res.Cases[0].ID)
	assert.Equal(t, "CASE-003", res.Cases[1].ID)

	res = s.SearchByStatus("archivado")
	assert.Equal(t, 0, res.Count)
	assert.Contains(t, res.Message, "archivado")
}

func TestGetEvidence(t *testing.T) {
	s := newTestStore()

	for _, id := range s.EvidenceIDs() {
		e, err := s.GetEvidence(id)
		require.NoError(t, err)
		assert.Equal(t, id, e.ID)
	}

	_, err := s.GetEvidence("EVID-404")
	assert.Equal(t, storeerr.KindNotFound, storeerr.KindOf(err))
	assert.Contains(t, err.Error(), "EVID-404")
}

func TestAnalyzeEvidence(t *testing.T) {
	tests := []struct {
		name         string
		evidenceID   string
		analysisType string
		findings     string
		confidence   string
	}{
		{"forense fingerprints", "EVID-001", "forense", "Huellas parciales identificadas, 12 puntos de comparación disponibles", "85%"},
		{"forense video", "EVID-002", "Forense", "Análisis de movimiento y características físicas completado", "70%"},
		{"forense other", "EVID-003", "forense", "", ""},
		{"digital", "EVID-005", "digital", "Metadatos extraídos, análisis de integridad completado", "95%"},
		{"financiero", "EVID-004", "financiero", "Patrones de transacción anómalos identificados", "90%"},
		{"psicologico", "EVID-005", "psicológico", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()

			a, err := s.AnalyzeEvidence(tt.evidenceID, tt.analysisType)
			require.NoError(t, err)
			assert.Equal(t, tt.evidenceID, a.EvidenceID)
			assert.Equal(t, "completado", a.Status)
			assert.Equal(t, "Especialista en "+tt.analysisType, a.Analyst)
			assert.Equal(t, "2025-09-06 10:30", a.DateAnalyzed)
			assert.Equal(t, tt.findings, a.Findings)
			assert.Equal(t, tt.confidence, a.Confidence)

			e, err := s.GetEvidence(tt.evidenceID)
			require.NoError(t, err)
			assert.Equal(t, "analizado", e.Status)
			require.NotNil(t, e.LastAnalysis)
			assert.Equal(t, *a, *e.LastAnalysis)
			if tt.findings != "" {
				require.NotNil(t, e.AnalysisResults)
				assert.Equal(t, tt.findings, *e.AnalysisResults)
			}
		})
	}
}

func TestAnalyzeEvidence_Errors(t *testing.T) {
	s := newTestStore()

	_, err := s.AnalyzeEvidence("EVID-404", "forense")
	assert.Equal(t, storeerr.KindNotFound, storeerr.KindOf(err))

	_, err = s.AnalyzeEvidence("EVID-001", "astrologico")
	assert.Equal(t, storeerr.KindInvalidEnum, storeerr.KindOf(err))

	e, err := s.GetEvidence("EVID-001")
	require.NoError(t, err)
	assert.Equal(t, "pendiente_análisis", e.Status)
	assert.Nil(t, e.LastAnalysis)
}

func TestAnalysisTypes_Exhaustive(t *testing.T) {
	for _, at := range AnalysisTypes {
		_, err := newTestStore().AnalyzeEvidence("EVID-001", at)
		assert.NoError(t, err, at)
	}

	for _, bad := range []string{"", "forensic", "psicologico", "quimico"} {
		_, err := newTestStore().AnalyzeEvidence("EVID-001", bad)
		assert.Equal(t, storeerr.KindInvalidEnum, storeerr.KindOf(err), bad)
	}
}

func TestCreateReport(t *testing.T) {
	s := New(func(o *Options) {
		o.Now = func() time.Time { return fixedNow }
		o.NewID = func(prefix string, n int) string { return prefix + strings.Repeat("A", n) }
	})

	res, err := s.CreateReport("CASE-002", "hallazgos", "recomendaciones")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "Informe creado exitosamente", res.Message)
	assert.Equal(t, "RPT-AAAAAAAA", res.Report.ID)
	assert.Equal(t, "Fraude Empresarial TechCorp", res.Report.CaseTitle)
	assert.Equal(t, "Sistema de Gestión de Casos", res.Report.Author)
	assert.Equal(t, "draft", res.Report.Status)
	assert.Equal(t, "en_investigacion", res.Report.CaseStatusAtReport)

	stored, err := s.GetReport(res.Report.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Report, *stored)
}

func TestCreateReport_DefaultIDFormat(t *testing.T) {
	s := newTestStore()

	res, err := s.CreateReport("CASE-001", "f", "r")
	require.NoError(t, err)
	assert.Regexp(t, `^RPT-[0-9A-F]{8}$`, res.Report.ID)

	_, err = s.CreateReport("CASE-404", "f", "r")
	assert.Equal(t, storeerr.KindNotFound, storeerr.KindOf(err))
}

func TestGetCaseStatus(t *testing.T) {
	s := newTestStore()

	st, err := s.GetCaseStatus("CASE-002")
	require.NoError(t, err)
	assert.Equal(t, &StatusSummary{
		CaseID:            "CASE-002",
		Title:             "Fraude Empresarial TechCorp",
		Status:            "en_investigacion",
		Priority:          "alta",
		AssignedDetective: "Detective Martínez",
		DateCreated:       "2025-08-28",
		EvidenceCount:     2,
		SuspectCount:      2,
	}, st)

	st, err = s.GetCaseStatus("CASE-003")
	require.NoError(t, err)
	assert.Equal(t, 0, st.SuspectCount)
}

func TestUpdateCaseStatus_AppendsHistory(t *testing.T) {
	s := newTestStore()

	res, err := s.UpdateCaseStatus("CASE-001", "EN_INVESTIGACION", "nuevas pistas")
	require.NoError(t, err)
	assert.Equal(t, "en_investigacion", res.NewStatus)
	assert.Equal(t, "Estado del caso CASE-001 actualizado de 'abierto' a 'en_investigacion'", res.Message)

	_, err = s.UpdateCaseStatus("CASE-001", "cerrado", "resuelto")
	require.NoError(t, err)

	d, err := s.GetCaseDetails("CASE-001")
	require.NoError(t, err)
	assert.Equal(t, "cerrado", d.Status)
	assert.Equal(t, "2025-09-06 10:30", d.LastUpdated)
	require.Len(t, d.StatusHistory, 2)
	assert.Equal(t, StatusChange{Date: "2025-09-06 10:30", OldStatus: "abierto", NewStatus: "en_investigacion", Notes: "nuevas pistas"}, d.StatusHistory[0])
	assert.Equal(t, "cerrado", d.StatusHistory[1].NewStatus)
}

func TestUpdateCaseStatus_NoMutationOnError(t *testing.T) {
	s := newTestStore()

	_, err := s.UpdateCaseStatus("CASE-001", "pendiente", "x")
	require.Error(t, err)
	assert.Equal(t, storeerr.KindInvalidEnum, storeerr.KindOf(err))
	assert.Contains(t, err.Error(), "abierto, en_investigacion, cerrado, archivado")

	_, err = s.UpdateCaseStatus("CASE-404", "cerrado", "x")
	assert.Equal(t, storeerr.KindNotFound, storeerr.KindOf(err))
	assert.Contains(t, err.Error(), "CASE-404")

	d, err := s.GetCaseDetails("CASE-001")
	require.NoError(t, err)
	assert.Equal(t, "abierto", d.Status)
	assert.Empty(t, d.StatusHistory)
	assert.Empty(t, d.LastUpdated)
}

func TestCaseStatuses_Exhaustive(t *testing.T) {
	for _, st := range CaseStatuses {
		_, err := newTestStore().UpdateCaseStatus("CASE-001", st, "")
		assert.NoError(t, err, st)
	}

	for _, bad := range []string{"", "open", "closed", "en investigacion"} {
		_, err := newTestStore().UpdateCaseStatus("CASE-001", bad, "")
		assert.Equal(t, storeerr.KindInvalidEnum, storeerr.KindOf(err), bad)
	}
}

func TestNewStoreResetsState(t *testing.T) {
	s := newTestStore()
	_, err := s.UpdateCaseStatus("CASE-003", "cerrado", "")
	require.NoError(t, err)

	fresh := newTestStore()
	st, err := fresh.GetCaseStatus("CASE-003")
	require.NoError(t, err)
	assert.Equal(t, "abierto", st.Status)
}

func TestConcurrentUpdates(t *testing.T) {
	s := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.UpdateCaseStatus("CASE-002", "en_investigacion", "tick")
			_, _ = s.GetCaseDetails("CASE-002")
		}()
	}
	wg.Wait()

	d, err := s.GetCaseDetails("CASE-002")
	require.NoError(t, err)
	assert.Len(t, d.StatusHistory, 50)
}
