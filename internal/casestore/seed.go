package casestore

func strPtr(s string) *string { return &s }

func seedCases() []Case {
	return []Case{
		{
			ID:                "CASE-001",
			Title:             "Robo en Joyería El Diamante",
			Type:              "robo",
			Status:            "abierto",
			Description:       "Robo nocturno en joyería del centro. Entrada forzada, caja fuerte abierta.",
			DateCreated:       "2025-09-01",
			Priority:          "alta",
			AssignedDetective: "Detective García",
			EvidenceIDs:       []string{"EVID-001", "EVID-002"},
			Suspects:          []string{"Sospechoso desconocido - huellas dactilares"},
			Location:          "Calle Mayor 15, Centro",
		},
		{
			ID:                "CASE-002",
			Title:             "Fraude Empresarial TechCorp",
			Type:              "fraude",
			Status:            "en_investigacion",
			Description:       "Posible malversación de fondos en empresa tecnológica.",
			DateCreated:       "2025-08-28",
			Priority:          "alta",
			AssignedDetective: "Detective Martínez",
			EvidenceIDs:       []string{"EVID-003", "EVID-004"},
			Suspects:          []string{"Carlos Mendoza - CFO", "Ana López - Contadora"},
			Location:          "TechCorp Offices, Polígono Industrial",
		},
		{
			ID:                "CASE-003",
			Title:             "Desaparición María González",
			Type:              "desaparicion",
			Status:            "abierto",
			Description:       "Mujer de 28 años desaparecida hace 3 días. Última vez vista en centro comercial.",
			DateCreated:       "2025-09-02",
			Priority:          "crítica",
			AssignedDetective: "Detective Ruiz",
			EvidenceIDs:       []string{"EVID-005"},
			Suspects:          []string{},
			Location:          "Centro Comercial Plaza Norte",
		},
	}
}

func seedEvidence() []Evidence {
	return []Evidence{
		{
			ID:             "EVID-001",
			CaseID:         "CASE-001",
			Type:           "huellas_dactilares",
			Description:    "Huellas dactilares encontradas en la caja fuerte",
			LocationFound:  "Caja fuerte principal",
			DateCollected:  "2025-09-01",
			Status:         "pendiente_análisis",
			ChainOfCustody: []string{"Detective García", "Laboratorio Forense"},
		},
		{
			ID:              "EVID-002",
			CaseID:          "CASE-001",
			Type:            "video_seguridad",
			Description:     "Grabación de cámaras de seguridad del exterior",
			LocationFound:   "Cámara exterior calle Mayor",
			DateCollected:   "2025-09-01",
			Status:          "analizado",
			ChainOfCustody:  []string{"Detective García", "Técnico IT"},
			AnalysisResults: strPtr("Figura encapuchada, aproximadamente 1.75m, entrada a las 02:30"),
		},
		{
			ID:              "EVID-003",
			CaseID:          "CASE-002",
			Type:            "documentos_financieros",
			Description:     "Registros contables de los últimos 6 meses",
			LocationFound:   "Oficina de contabilidad TechCorp",
			DateCollected:   "2025-08-28",
			Status:          "en_análisis",
			ChainOfCustody:  []string{"Detective Martínez", "Auditor Forense"},
			AnalysisResults: strPtr("Discrepancias en transferencias por €250,000"),
		},
		{
			ID:              "EVID-004",
			CaseID:          "CASE-002",
			Type:            "registros_bancarios",
			Description:     "Extractos bancarios de cuentas corporativas",
			LocationFound:   "Banco Central",
			DateCollected:   "2025-08-29",
			Status:          "analizado",
			ChainOfCustody:  []string{"Detective Martínez", "Especialista Financiero"},
			AnalysisResults: strPtr("Transferencias no autorizadas a cuentas offshore"),
		},
		{
			ID:              "EVID-005",
			CaseID:          "CASE-003",
			Type:            "video_seguridad",
			Description:     "Última grabación de María González en centro comercial",
			LocationFound:   "Centro Comercial Plaza Norte - Entrada principal",
			DateCollected:   "2025-09-02",
			Status:          "analizado",
			ChainOfCustody:  []string{"Detective Ruiz", "Técnico Seguridad"},
			AnalysisResults: strPtr("Última vez vista a las 18:45, saliendo sola por entrada principal"),
		},
	}
}
