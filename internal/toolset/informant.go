package toolset

import (
	"strings"

	"github.com/hupe1980/casemesh/core"
	"github.com/hupe1980/casemesh/internal/informantstore"
	"github.com/hupe1980/casemesh/tool"
)

// InformantInstructions describes the informant server to MCP clients.
const InformantInstructions = "Gestión de la red de informantes: registro, encuentros, información recibida, credibilidad y estadísticas."

type registerInformantArgs struct {
	CodeName         string `json:"code_name" description:"Nombre en clave, único"`
	Specialty        string `json:"specialty" description:"Área de especialización" enum:"tráfico_drogas,fraude_financiero,robos_joyerías,desapariciones,corrupción,cibercriminalidad"`
	ReliabilityLevel string `json:"reliability_level" description:"Nivel: bajo, medio, alto" enum:"bajo,medio,alto"`
	ContactMethod    string `json:"contact_method" description:"Método de contacto" enum:"teléfono_seguro,email_encriptado,contacto_presencial"`
}

type scheduleMeetingArgs struct {
	InformantID string `json:"informant_id" description:"ID del informante, por ejemplo INF-001"`
	Date        string `json:"date" description:"Fecha en formato YYYY-MM-DD"`
	Time        string `json:"time" description:"Horario del encuentro" enum:"08:00,10:00,12:00,14:00,16:00,18:00,20:00,22:00"`
	Location    string `json:"location" description:"Ubicación del encuentro"`
	Purpose     string `json:"purpose" description:"Propósito del encuentro"`
}

type availabilityArgs struct {
	Date     string `json:"date" description:"Fecha en formato YYYY-MM-DD"`
	Time     string `json:"time" description:"Horario del encuentro" enum:"08:00,10:00,12:00,14:00,16:00,18:00,20:00,22:00"`
	Location string `json:"location" description:"Ubicación del encuentro"`
}

type specialtyArgs struct {
	Specialty string `json:"specialty" description:"Área de especialización"`
}

type informantIDArgs struct {
	InformantID string `json:"informant_id" description:"ID del informante, por ejemplo INF-001"`
}

type reliabilityArgs struct {
	ReliabilityLevel string `json:"reliability_level" description:"Nivel: bajo, medio, alto" enum:"bajo,medio,alto"`
}

type recordInformationArgs struct {
	InformantID     string `json:"informant_id" description:"ID del informante, por ejemplo INF-001"`
	InformationType string `json:"information_type" description:"Tipo de información" enum:"ubicación_sospechoso,transacciones_sospechosas,actividad_criminal,testimonio_testigo"`
	Content         string `json:"content" description:"Contenido de la información"`
	Credibility     string `json:"credibility" description:"Credibilidad: baja, media, alta" enum:"baja,media,alta"`
}

type assessCredibilityArgs struct {
	InformationID      string `json:"information_id" description:"ID de la información, por ejemplo INFO-001"`
	VerificationMethod string `json:"verification_method" description:"Método de verificación" enum:"cruzar_fuentes,verificación_física,análisis_técnico"`
}

type updateReliabilityArgs struct {
	InformantID string `json:"informant_id" description:"ID del informante, por ejemplo INF-001"`
	NewLevel    string `json:"new_level" description:"Nivel: bajo, medio, alto" enum:"bajo,medio,alto"`
	Reason      string `json:"reason" description:"Motivo del cambio"`
}

// InformantTools returns the informant management tools backed by store.
func InformantTools(store *informantstore.Store) []tool.Tool {
	return []tool.Tool{
		newTool(
			"register_new_informant",
			"Registra un nuevo informante en el sistema. Especialidades: "+strings.Join(informantstore.Specialties, ", ")+
				". Niveles de confianza: bajo, medio, alto. Métodos de contacto: "+strings.Join(informantstore.ContactMethods, ", ")+".",
			func(_ *core.ToolContext, a registerInformantArgs) (any, error) {
				return store.Register(a.CodeName, a.Specialty, a.ReliabilityLevel, a.ContactMethod)
			},
		),
		newTool(
			"schedule_informant_meeting",
			"Programa un encuentro con un informante. Formato fecha: YYYY-MM-DD. Horarios disponibles: "+strings.Join(informantstore.MeetingTimes, ", ")+".",
			func(_ *core.ToolContext, a scheduleMeetingArgs) (any, error) {
				return store.ScheduleMeeting(a.InformantID, a.Date, a.Time, a.Location, a.Purpose)
			},
		),
		newTool(
			"check_meeting_availability",
			"Verifica disponibilidad para programar un encuentro en fecha, hora y ubicación específicas.",
			func(_ *core.ToolContext, a availabilityArgs) (any, error) {
				return store.CheckAvailability(a.Date, a.Time, a.Location)
			},
		),
		newTool(
			"find_informants_by_specialty",
			"Busca informantes por área de especialización.",
			func(_ *core.ToolContext, a specialtyArgs) (any, error) {
				return store.FindBySpecialty(a.Specialty), nil
			},
		),
		newTool(
			"get_informant_profile",
			"Obtiene el perfil completo de un informante específico.",
			func(_ *core.ToolContext, a informantIDArgs) (any, error) {
				return store.Profile(a.InformantID)
			},
		),
		newTool(
			"get_informants_by_reliability",
			"Lista informantes activos filtrados por nivel de confiabilidad. Niveles: bajo, medio, alto.",
			func(_ *core.ToolContext, a reliabilityArgs) (any, error) {
				return store.ByReliability(a.ReliabilityLevel)
			},
		),
		newTool(
			"record_information_received",
			"Registra información recibida de un informante. Tipos: "+strings.Join(informantstore.InformationTypes, ", ")+". Credibilidad: baja, media, alta.",
			func(_ *core.ToolContext, a recordInformationArgs) (any, error) {
				return store.RecordInformation(a.InformantID, a.InformationType, a.Content, a.Credibility)
			},
		),
		newTool(
			"assess_information_credibility",
			"Evalúa la credibilidad de información recibida. Métodos de verificación: "+strings.Join(informantstore.VerificationMethods, ", ")+".",
			func(_ *core.ToolContext, a assessCredibilityArgs) (any, error) {
				return store.AssessCredibility(a.InformationID, a.VerificationMethod)
			},
		),
		newTool(
			"update_informant_reliability",
			"Actualiza el nivel de confiabilidad de un informante. Niveles: bajo, medio, alto.",
			func(_ *core.ToolContext, a updateReliabilityArgs) (any, error) {
				return store.UpdateReliability(a.InformantID, a.NewLevel, a.Reason)
			},
		),
		newTool(
			"get_informant_history",
			"Obtiene el historial completo de un informante incluyendo información proporcionada y encuentros.",
			func(_ *core.ToolContext, a informantIDArgs) (any, error) {
				return store.History(a.InformantID)
			},
		),
		newTool(
			"get_network_statistics",
			"Proporciona estadísticas generales sobre la red de informantes.",
			func(*core.ToolContext, noArgs) (any, error) {
				return store.NetworkStatistics(), nil
			},
		),
		newTool(
			"get_active_informants_count",
			"Devuelve el número de informantes activos en el sistema.",
			func(*core.ToolContext, noArgs) (any, error) {
				return store.ActiveCount(), nil
			},
		),
	}
}
