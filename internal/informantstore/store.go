// Package informantstore implements the in-memory informant network store:
// informants, meetings and received information, seeded with sample records.
// Every New call yields a fresh, freshly seeded Store safe for concurrent use.
package informantstore

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/casemesh/internal/storeerr"
	"github.com/hupe1980/casemesh/internal/util"
	"github.com/hupe1980/casemesh/logging"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04"

	statusActive    = "activo"
	statusInactive  = "inactivo"
	statusScheduled = "programado"

	defaultHandler = "Sistema Automático"
	assessor       = "Sistema de Verificación"
)

var (
	// Specialties is the closed set of informant specialties.
	Specialties = []string{"tráfico_drogas", "fraude_financiero", "robos_joyerías", "desapariciones", "corrupción", "cibercriminalidad"}
	// ReliabilityLevels is the closed set of reliability levels.
	ReliabilityLevels = []string{"bajo", "medio", "alto"}
	// ContactMethods is the closed set of contact methods.
	ContactMethods = []string{"teléfono_seguro", "email_encriptado", "contacto_presencial"}
	// InformationTypes is the closed set of information types.
	InformationTypes = []string{"ubicación_sospechoso", "transacciones_sospechosas", "actividad_criminal", "testimonio_testigo"}
	// CredibilityLevels is the closed set of credibility levels.
	CredibilityLevels = []string{"baja", "media", "alta"}
	// VerificationMethods is the closed set of verification methods.
	VerificationMethods = []string{"cruzar_fuentes", "verificación_física", "análisis_técnico"}
)

// Options configures a Store.
type Options struct {
	// Now returns the current time.
	Now func() time.Time
	// NewID generates record identifiers from a prefix and hex length.
	NewID func(prefix string, n int) string
	// Rand samples alternative locations on availability conflicts.
	Rand *rand.Rand
	// Logger receives mutation events.
	Logger logging.Logger
}

// Store owns the informant, meeting and information mappings.
type Store struct {
	mu          sync.RWMutex
	informants  map[string]*Informant
	meetings    map[string]*Meeting
	information map[string]*Information

	randMu sync.Mutex
	rand   *rand.Rand

	now    func() time.Time
	newID  func(prefix string, n int) string
	logger logging.Logger
}

// New constructs a Store seeded with the sample informant network.
func New(optFns ...func(o *Options)) *Store {
	opts := Options{
		Now:    time.Now,
		NewID:  util.NewShortID,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s := &Store{
		informants:  make(map[string]*Informant),
		meetings:    make(map[string]*Meeting),
		information: make(map[string]*Information),
		rand:        opts.Rand,
		now:         opts.Now,
		newID:       opts.NewID,
		logger:      opts.Logger,
	}

	for _, i := range seedInformants() {
		s.informants[i.ID] = &i
	}

	for _, m := range seedMeetings() {
		s.meetings[m.ID] = &m
	}

	for _, info := range seedInformation() {
		s.information[info.ID] = &info
	}

	return s
}

func informantNotFound(id string) error {
	return storeerr.NotFound("informant_id", id, fmt.Sprintf("Informante con ID '%s' no encontrado", id))
}

// SuccessRate formats successful/max(total,1) as a one-decimal percentage.
func SuccessRate(successful, total int) string {
	return percent(successful, total)
}

func percent(n, d int) string {
	return fmt.Sprintf("%.1f%%", float64(n)/float64(max(d, 1))*100)
}

// Register adds a new active informant. Specialty, reliability and contact
// method are validated in that order; code names are unique case-insensitively.
func (s *Store) Register(codeName, specialty, reliabilityLevel, contactMethod string) (*RegisterResult, error) {
	if !storeerr.OneOf(specialty, Specialties) {
		return nil, storeerr.InvalidEnumf("specialty", specialty, Specialties, "Especialidad '%s' no válida. Especialidades válidas: %s")
	}

	if !storeerr.OneOf(reliabilityLevel, ReliabilityLevels) {
		return nil, storeerr.InvalidEnum("reliability_level", reliabilityLevel, "Nivel de confianza", "Niveles válidos", ReliabilityLevels)
	}

	if !storeerr.OneOf(contactMethod, ContactMethods) {
		return nil, storeerr.InvalidEnum("contact_method", contactMethod, "Método de contacto", "Métodos válidos", ContactMethods)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, i := range s.informants {
		if strings.EqualFold(i.CodeName, codeName) {
			return nil, storeerr.Conflict("code_name", codeName, fmt.Sprintf("Ya existe un informante con el nombre clave '%s'", codeName))
		}
	}

	inf := Informant{
		ID:               s.newID("INF-", 3),
		CodeName:         codeName,
		Specialty:        specialty,
		ReliabilityLevel: reliabilityLevel,
		ContactMethod:    contactMethod,
		DateRegistered:   s.now().Format(dateLayout),
		Handler:          defaultHandler,
		Status:           statusActive,
		LocationArea:     "por_determinar",
	}

	stored := inf
	s.informants[inf.ID] = &stored

	s.logger.Info("informantstore.informant.registered", "informant_id", inf.ID, "specialty", specialty)

	return &RegisterResult{
		Status:    "success",
		Message:   fmt.Sprintf("Informante '%s' registrado exitosamente", codeName),
		Informant: inf,
	}, nil
}

func validateSlot(date, slot string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return storeerr.InvalidFormat("date", date, fmt.Sprintf("Formato de fecha '%s' incorrecto. Usa YYYY-MM-DD", date))
	}

	if !storeerr.OneOf(slot, MeetingTimes) {
		return storeerr.InvalidEnumf("time", slot, MeetingTimes, "Horario '%s' no disponible. Horarios válidos: %s")
	}

	return nil
}

// ScheduleMeeting books a meeting with an existing informant. An exact
// date and time collision with another scheduled meeting is a conflict.
func (s *Store) ScheduleMeeting(informantID, date, slot, location, purpose string) (*ScheduleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inf, ok := s.informants[informantID]
	if !ok {
		return nil, informantNotFound(informantID)
	}

	if err := validateSlot(date, slot); err != nil {
		return nil, err
	}

	for _, m := range s.meetings {
		if m.Status == statusScheduled && m.Date == date && m.Time == slot {
			return nil, storeerr.Conflict("time", slot,
				fmt.Sprintf("Ya hay un encuentro programado para %s a las %s con %s", date, slot, m.InformantCodeName))
		}
	}

	m := Meeting{
		ID:                s.newID("MEET-", 3),
		InformantID:       informantID,
		InformantCodeName: inf.CodeName,
		Date:              date,
		Time:              slot,
		Location:          location,
		Purpose:           purpose,
		Status:            statusScheduled,
		Handler:           inf.Handler,
		SecurityLevel:     "medio",
		CreatedAt:         s.now().Format(timestampLayout),
	}

	stored := m
	s.meetings[m.ID] = &stored

	s.logger.Info("informantstore.meeting.scheduled", "meeting_id", m.ID, "informant_id", informantID, "date", date, "time", slot)

	return &ScheduleResult{
		Status:  "success",
		Message: fmt.Sprintf("Encuentro programado con '%s'", inf.CodeName),
		Meeting: m,
		SecurityInstructions: fmt.Sprintf("Código de encuentro: %s. Ubicación: %s. Mantener protocolo de seguridad nivel %s.",
			m.ID, location, m.SecurityLevel),
	}, nil
}

// slotHour returns the hour component of an "HH:MM" slot.
func slotHour(slot string) int {
	t, err := time.Parse("15:04", slot)
	if err != nil {
		return -1
	}

	return t.Hour()
}

// CheckAvailability scans scheduled meetings for an exact date and time
// collision or a same-location booking less than two hours apart.
func (s *Store) CheckAvailability(date, slot, location string) (*Availability, error) {
	if err := validateSlot(date, slot); err != nil {
		return nil, err
	}

	s.mu.RLock()
	meetings := s.sortedMeetings(func(m *Meeting) bool { return m.Status == statusScheduled && m.Date == date })
	s.mu.RUnlock()

	var conflicts []string

	target := slotHour(slot)

	for _, m := range meetings {
		if m.Time == slot {
			conflicts = append(conflicts, fmt.Sprintf("Encuentro con %s ya programado", m.InformantCodeName))
		}

		if m.Location == location {
			diff := slotHour(m.Time) - target
			if diff < 0 {
				diff = -diff
			}

			if diff < 2 {
				conflicts = append(conflicts, fmt.Sprintf("Ubicación ocupada cerca del horario por %s", m.InformantCodeName))
			}
		}
	}

	if len(conflicts) == 0 {
		return &Availability{
			Status:                  "available",
			Message:                 fmt.Sprintf("Disponible para encuentro el %s a las %s en %s", date, slot, location),
			SecurityRecommendations: "Ubicación segura confirmada. Nivel de seguridad recomendado: medio.",
		}, nil
	}

	times := make([]string, 0, 3)

	for _, t := range MeetingTimes {
		if t != slot && len(times) < 3 {
			times = append(times, t)
		}
	}

	return &Availability{
		Status:    "unavailable",
		Conflicts: conflicts,
		SuggestedAlternatives: &Alternatives{
			AlternativeTimes:     times,
			AlternativeLocations: s.sampleLocations(3),
		},
	}, nil
}

func (s *Store) sampleLocations(n int) []string {
	s.randMu.Lock()
	perm := s.rand.Perm(len(SafeLocations))
	s.randMu.Unlock()

	out := make([]string, 0, n)
	for _, idx := range perm[:min(n, len(perm))] {
		out = append(out, SafeLocations[idx])
	}

	return out
}

func summarize(i *Informant) Summary {
	return Summary{
		ID:               i.ID,
		CodeName:         i.CodeName,
		InformationCount: i.InformationCount,
		SuccessfulTips:   i.SuccessfulTips,
		SuccessRate:      SuccessRate(i.SuccessfulTips, i.InformationCount),
	}
}

// FindBySpecialty lists informants whose specialty matches case-insensitively.
func (s *Store) FindBySpecialty(specialty string) ListResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := ListResult{Informants: []Summary{}}

	for _, i := range s.sortedInformants() {
		if strings.EqualFold(i.Specialty, specialty) {
			sum := summarize(i)
			sum.ReliabilityLevel = i.ReliabilityLevel
			sum.Status = i.Status
			res.Informants = append(res.Informants, sum)
		}
	}

	res.Count = len(res.Informants)
	if res.Count == 0 {
		res.Message = fmt.Sprintf("No se encontraron informantes especializados en '%s'", specialty)
	}

	return res
}

// Profile returns an informant with its success rate and up to five most
// recent meetings.
func (s *Store) Profile(informantID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inf, ok := s.informants[informantID]
	if !ok {
		return nil, informantNotFound(informantID)
	}

	meetings := s.sortedMeetings(func(m *Meeting) bool { return m.InformantID == informantID })
	if len(meetings) > 5 {
		meetings = meetings[:5]
	}

	return &Profile{
		Informant:      inf.clone(),
		SuccessRate:    SuccessRate(inf.SuccessfulTips, inf.InformationCount),
		RecentMeetings: meetings,
	}, nil
}

// ByReliability lists active informants at the given reliability level.
func (s *Store) ByReliability(level string) (*ListResult, error) {
	if !storeerr.OneOf(level, ReliabilityLevels) {
		return nil, storeerr.InvalidEnum("reliability_level", level, "Nivel de confiabilidad", "Niveles válidos", ReliabilityLevels)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	res := ListResult{Informants: []Summary{}}

	for _, i := range s.sortedInformants() {
		if i.ReliabilityLevel == level && i.Status == statusActive {
			sum := summarize(i)
			sum.Specialty = i.Specialty
			res.Informants = append(res.Informants, sum)
		}
	}

	res.Count = len(res.Informants)
	if res.Count == 0 {
		res.Message = fmt.Sprintf("No se encontraron informantes activos con confiabilidad '%s'", level)
	}

	return &res, nil
}

// RecordInformation stores intelligence received from an informant and
// increments its information count.
func (s *Store) RecordInformation(informantID, informationType, content, credibility string) (*RecordResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inf, ok := s.informants[informantID]
	if !ok {
		return nil, informantNotFound(informantID)
	}

	if !storeerr.OneOf(informationType, InformationTypes) {
		return nil, storeerr.InvalidEnum("information_type", informationType, "Tipo de información", "Tipos válidos", InformationTypes)
	}

	if !storeerr.OneOf(credibility, CredibilityLevels) {
		return nil, storeerr.InvalidEnum("credibility", credibility, "Nivel de credibilidad", "Niveles válidos", CredibilityLevels)
	}

	info := Information{
		ID:                 s.newID("INFO-", 3),
		InformantID:        informantID,
		InformantCodeName:  inf.CodeName,
		InformationType:    informationType,
		Content:            content,
		Credibility:        credibility,
		DateReceived:       s.now().Format(dateLayout),
		CaseRelated:        "por_determinar",
		VerificationStatus: "pendiente",
		Handler:            inf.Handler,
	}

	stored := info
	s.information[info.ID] = &stored
	inf.InformationCount++

	s.logger.Info("informantstore.information.recorded", "information_id", info.ID, "informant_id", informantID)

	return &RecordResult{
		Status:      "success",
		Message:     fmt.Sprintf("Información registrada de '%s'", inf.CodeName),
		Information: info,
	}, nil
}

// AssessCredibility runs the canned verification for method and records the
// outcome on the information record.
func (s *Store) AssessCredibility(informationID, method string) (*Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.information[informationID]
	if !ok {
		return nil, storeerr.NotFound("information_id", informationID, fmt.Sprintf("Información con ID '%s' no encontrada", informationID))
	}

	if !storeerr.OneOf(method, VerificationMethods) {
		return nil, storeerr.InvalidEnum("verification_method", method, "Método de verificación", "Métodos válidos", VerificationMethods)
	}

	a := Assessment{
		InformationID:       informationID,
		VerificationMethod:  method,
		DateAssessed:        s.now().Format(timestampLayout),
		Assessor:            assessor,
		OriginalCredibility: info.Credibility,
	}

	switch method {
	case "cruzar_fuentes":
		a.VerificationResult, a.ConfidenceLevel = "confirmado_parcialmente", "75%"
	case "verificación_física":
		a.VerificationResult, a.ConfidenceLevel = "confirmado", "90%"
	case "análisis_técnico":
		a.VerificationResult, a.ConfidenceLevel = "pendiente_análisis_adicional", "60%"
	}

	stored := a
	info.VerificationStatus = a.VerificationResult
	info.VerificationDetails = &stored

	s.logger.Info("informantstore.information.assessed", "information_id", informationID, "result", a.VerificationResult)

	return &a, nil
}

// UpdateReliability sets an informant's reliability level and appends one
// entry to its reliability history. Nothing is mutated on failure.
func (s *Store) UpdateReliability(informantID, newLevel, reason string) (*ReliabilityUpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inf, ok := s.informants[informantID]
	if !ok {
		return nil, informantNotFound(informantID)
	}

	if !storeerr.OneOf(newLevel, ReliabilityLevels) {
		return nil, storeerr.InvalidEnum("new_level", newLevel, "Nivel de confiabilidad", "Niveles válidos", ReliabilityLevels)
	}

	ts := s.now().Format(timestampLayout)
	old := inf.ReliabilityLevel

	inf.ReliabilityLevel = newLevel
	inf.LastUpdated = ts
	inf.ReliabilityHistory = append(inf.ReliabilityHistory, ReliabilityChange{
		Date:     ts,
		OldLevel: old,
		NewLevel: newLevel,
		Reason:   reason,
	})

	s.logger.Info("informantstore.informant.reliability_updated", "informant_id", informantID, "old_level", old, "new_level", newLevel)

	return &ReliabilityUpdateResult{
		Status:         "success",
		Message:        fmt.Sprintf("Confiabilidad de '%s' actualizada de '%s' a '%s'", inf.CodeName, old, newLevel),
		InformantID:    informantID,
		CodeName:       inf.CodeName,
		NewReliability: newLevel,
		Reason:         reason,
	}, nil
}

// History returns the informant with all its information records
// (newest first) and meetings (newest first).
func (s *Store) History(informantID string) (*History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inf, ok := s.informants[informantID]
	if !ok {
		return nil, informantNotFound(informantID)
	}

	infos := []Information{}

	for _, info := range s.information {
		if info.InformantID == informantID {
			infos = append(infos, info.clone())
		}
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].DateReceived != infos[j].DateReceived {
			return infos[i].DateReceived > infos[j].DateReceived
		}

		return infos[i].ID < infos[j].ID
	})

	meetings := s.sortedMeetings(func(m *Meeting) bool { return m.InformantID == informantID })

	return &History{
		InformantProfile:      inf.clone(),
		InformationProvided:   infos,
		MeetingHistory:        meetings,
		TotalInformationCount: len(infos),
		TotalMeetings:         len(meetings),
	}, nil
}

// NetworkStatistics aggregates the network. Distributions cover active
// informants only.
func (s *Store) NetworkStatistics() NetworkStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := NetworkStats{
		ReliabilityDistribution: map[string]int{"bajo": 0, "medio": 0, "alto": 0},
		SpecialtyDistribution:   map[string]int{},
	}

	active := 0

	for _, i := range s.informants {
		if i.Status != statusActive {
			continue
		}

		active++
		stats.ReliabilityDistribution[i.ReliabilityLevel]++
		stats.SpecialtyDistribution[i.Specialty]++
	}

	total := len(s.informants)
	stats.NetworkOverview = NetworkOverview{
		TotalInformants:    total,
		ActiveInformants:   active,
		InactiveInformants: total - active,
	}

	avg := float64(len(s.information)) / float64(max(active, 1))
	stats.ActivityStats = ActivityStats{
		TotalInformationReceived: len(s.information),
		TotalMeetingsScheduled:   len(s.meetings),
		AverageInfoPerInformant:  float64(int64(avg*10+0.5)) / 10,
	}

	return stats
}

// ActiveCount counts active and inactive informants.
func (s *Store) ActiveCount() ActiveCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active, inactive int

	for _, i := range s.informants {
		switch i.Status {
		case statusActive:
			active++
		case statusInactive:
			inactive++
		}
	}

	return ActiveCount{
		ActiveInformants:   active,
		InactiveInformants: inactive,
		TotalInformants:    active + inactive,
		ActivityRate:       percent(active, active+inactive),
	}
}

// InformantIDs returns all informant identifiers in sorted order.
func (s *Store) InformantIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.informants))
	for id := range s.informants {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// sortedInformants must be called with s.mu held.
func (s *Store) sortedInformants() []*Informant {
	out := make([]*Informant, 0, len(s.informants))
	for _, i := range s.informants {
		out = append(out, i)
	}

	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })

	return out
}

// sortedMeetings returns copies of matching meetings, newest date first.
// It must be called with s.mu held.
func (s *Store) sortedMeetings(match func(*Meeting) bool) []Meeting {
	out := []Meeting{}

	for _, m := range s.meetings {
		if match(m) {
			out = append(out, *m)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}

		if out[i].Time != out[j].Time {
			return out[i].Time > out[j].Time
		}

		return out[i].ID < out[j].ID
	})

	return out
}
