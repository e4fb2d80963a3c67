package informantstore

var (
	// MeetingTimes are the bookable meeting slots.
	MeetingTimes = []string{"08:00", "10:00", "12:00", "14:00", "16:00", "18:00", "20:00", "22:00"}

	// SafeLocations are the vetted meeting places offered as alternatives.
	SafeLocations = []string{
		"Café Central - Mesa del fondo",
		"Parque Municipal - Banco junto al lago",
		"Biblioteca Pública - Sala de lectura",
		"Centro Comercial - Food Court",
		"Estación de Tren - Sala de espera",
		"Hotel Plaza - Lobby",
		"Museo de Arte - Sala Medieval",
	}
)

func seedInformants() []Informant {
	return []Informant{
		{
			ID:               "INF-001",
			CodeName:         "Cuervo",
			Specialty:        "tráfico_drogas",
			ReliabilityLevel: "alto",
			ContactMethod:    "teléfono_seguro",
			DateRegistered:   "2025-01-15",
			Handler:          "Detective García",
			Status:           "activo",
			LocationArea:     "centro_ciudad",
			InformationCount: 12,
			SuccessfulTips:   9,
		},
		{
			ID:               "INF-002",
			CodeName:         "Sombra",
			Specialty:        "fraude_financiero",
			ReliabilityLevel: "medio",
			ContactMethod:    "email_encriptado",
			DateRegistered:   "2025-02-20",
			Handler:          "Detective Martínez",
			Status:           "activo",
			LocationArea:     "distrito_financiero",
			InformationCount: 8,
			SuccessfulTips:   5,
		},
		{
			ID:               "INF-003",
			CodeName:         "Fantasma",
			Specialty:        "robos_joyerías",
			ReliabilityLevel: "alto",
			ContactMethod:    "contacto_presencial",
			DateRegistered:   "2024-11-10",
			Handler:          "Detective Ruiz",
			Status:           "activo",
			LocationArea:     "centro_comercial",
			InformationCount: 15,
			SuccessfulTips:   13,
		},
		{
			ID:               "INF-004",
			CodeName:         "Eco",
			Specialty:        "desapariciones",
			ReliabilityLevel: "bajo",
			ContactMethod:    "teléfono_seguro",
			DateRegistered:   "2025-03-01",
			Handler:          "Detective López",
			Status:           "inactivo",
			LocationArea:     "suburbios",
			InformationCount: 3,
			SuccessfulTips:   1,
		},
	}
}

func seedMeetings() []Meeting {
	return []Meeting{
		{
			ID:                "MEET-001",
			InformantID:       "INF-001",
			InformantCodeName: "Cuervo",
			Date:              "2025-09-05",
			Time:              "18:00",
			Location:          "Café Central - Mesa del fondo",
			Purpose:           "Información sobre red de distribución",
			Status:            "programado",
			Handler:           "Detective García",
			SecurityLevel:     "alto",
		},
		{
			ID:                "MEET-002",
			InformantID:       "INF-002",
			InformantCodeName: "Sombra",
			Date:              "2025-09-04",
			Time:              "14:00",
			Location:          "Biblioteca Pública - Sala de lectura",
			Purpose:           "Seguimiento caso TechCorp",
			Status:            "completado",
			Handler:           "Detective Martínez",
			SecurityLevel:     "medio",
		},
	}
}

func seedInformation() []Information {
	return []Information{
		{
			ID:                 "INFO-001",
			InformantID:        "INF-001",
			InformantCodeName:  "Cuervo",
			InformationType:    "ubicación_sospechoso",
			Content:            "Sospechoso del robo joyería visto en barrio industrial",
			Credibility:        "alta",
			DateReceived:       "2025-09-03",
			CaseRelated:        "CASE-001",
			VerificationStatus: "pendiente",
			Handler:            "Detective García",
		},
		{
			ID:                 "INFO-002",
			InformantID:        "INF-002",
			InformantCodeName:  "Sombra",
			InformationType:    "transacciones_sospechosas",
			Content:            "Movimientos bancarios anómalos en cuentas TechCorp detectados",
			Credibility:        "media",
			DateReceived:       "2025-09-01",
			CaseRelated:        "CASE-002",
			VerificationStatus: "verificado",
			Handler:            "Detective Martínez",
		},
	}
}
