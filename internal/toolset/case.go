package toolset

import (
	"encoding/json"
	"strings"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/casestore"
	"github.com/hupe1980/casemesh/tool"
)

// CaseInstructions describes the case server to MCP clients.
const CaseInstructions = "Gestión de casos criminales: consulta de casos y evidencias, análisis de evidencias, informes y actualización de estados."

type caseIDArgs struct {
	CaseID string `json:"case_id" description:"ID del caso, por ejemplo CASE-001"`
}

type caseTypeArgs struct {
	CaseType string `json:"case_type" description:"Tipo de caso"`
}

type caseStatusArgs struct {
	Status string `json:"status" description:"Estado del caso"`
}

type evidenceIDArgs struct {
	EvidenceID string `json:"evidence_id" description:"ID de la evidencia, por ejemplo EVID-001"`
}

type analyzeEvidenceArgs struct {
	EvidenceID   string `json:"evidence_id" description:"ID de la evidencia, por ejemplo EVID-001"`
	AnalysisType string `json:"analysis_type" description:"Tipo de análisis" enum:"forense,digital,financiero,psicológico"`
}

type caseReportArgs struct {
	CaseID          string `json:"case_id" description:"ID del caso, por ejemplo CASE-001"`
	Findings        string `json:"findings" description:"Hallazgos del informe"`
	Recommendations string `json:"recommendations" description:"Recomendaciones del informe"`
}

type updateCaseStatusArgs struct {
	CaseID    string `json:"case_id" description:"ID del caso, por ejemplo CASE-001"`
	NewStatus string `json:"new_status" description:"Nuevo estado del caso" enum:"abierto,en_investigacion,cerrado,archivado"`
	Notes     string `json:"notes" description:"Notas explicativas del cambio"`
}

// CaseTools returns the case management tools backed by store.
func CaseTools(store *casestore.Store) []tool.Tool {
	return []tool.Tool{
		newTool(
			"get_case_details",
			"Obtiene detalles completos de un caso específico por su ID.",
			func(_ *core.ToolContext, a caseIDArgs) (any, error) {
				return store.GetCaseDetails(a.CaseID)
			},
		),
		newTool(
			"search_cases_by_type",
			"Busca casos por tipo (robo, fraude, desaparicion, homicidio, etc.).",
			func(_ *core.ToolContext, a caseTypeArgs) (any, error) {
				return store.SearchByType(a.CaseType), nil
			},
		),
		newTool(
			"search_cases_by_status",
			"Busca casos por estado (abierto, cerrado, en_investigacion, archivado).",
			func(_ *core.ToolContext, a caseStatusArgs) (any, error) {
				return store.SearchByStatus(a.Status), nil
			},
		),
		newTool(
			"get_evidence_details",
			"Obtiene detalles de una evidencia específica por su ID.",
			func(_ *core.ToolContext, a evidenceIDArgs) (any, error) {
				return store.GetEvidence(a.EvidenceID)
			},
		),
		newTool(
			"analyze_evidence",
			"Realiza análisis específico de una evidencia. Tipos de análisis: "+strings.Join(casestore.AnalysisTypes, ", ")+".",
			func(_ *core.ToolContext, a analyzeEvidenceArgs) (any, error) {
				return store.AnalyzeEvidence(a.EvidenceID, a.AnalysisType)
			},
		),
		newTool(
			"create_case_report",
			"Crea un informe oficial del caso con hallazgos y recomendaciones.",
			func(tc *core.ToolContext, a caseReportArgs) (any, error) {
				res, err := store.CreateReport(a.CaseID, a.Findings, a.Recommendations)
				if err != nil {
					return nil, err
				}

				saveReportArtifact(tc, &res.Report)

				return res, nil
			},
		),
		newTool(
			"get_case_status",
			"Verifica el estado actual de un caso.",
			func(_ *core.ToolContext, a caseIDArgs) (any, error) {
				return store.GetCaseStatus(a.CaseID)
			},
		),
		newTool(
			"update_case_status",
			"Actualiza el estado de un caso con notas explicativas. Estados válidos: "+strings.Join(casestore.CaseStatuses, ", ")+".",
			func(_ *core.ToolContext, a updateCaseStatusArgs) (any, error) {
				return store.UpdateCaseStatus(a.CaseID, a.NewStatus, a.Notes)
			},
		),
	}
}

// saveReportArtifact stores the report as {id}.json when the call runs
// inside an agent session. Failures are logged; the report itself exists.
func saveReportArtifact(tc *core.ToolContext, report *casestore.Report) {
	if !tc.HasArtifactStore() {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		tc.LogWarn("toolset.report.marshal_failed", "report_id", report.ID, "error", err.Error())
		return
	}

	if err := tc.SaveArtifact(report.ID+".json", data); err != nil {
		tc.LogWarn("toolset.report.artifact_failed", "report_id", report.ID, "error", err.Error())
		return
	}

	tc.SetState("last_report_id", report.ID)
}
