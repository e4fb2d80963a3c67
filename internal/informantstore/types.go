package informantstore

// Informant is a registered confidential source.
type Informant struct {
	ID                 string              `json:"id"`
	CodeName           string              `json:"code_name"`
	Specialty          string              `json:"specialty"`
	ReliabilityLevel   string              `json:"reliability_level"`
	ContactMethod      string              `json:"contact_method"`
	DateRegistered     string              `json:"date_registered"`
	Handler            string              `json:"handler"`
	Status             string              `json:"status"`
	LocationArea       string              `json:"location_area"`
	InformationCount   int                 `json:"information_count"`
	SuccessfulTips     int                 `json:"successful_tips"`
	LastUpdated        string              `json:"last_updated,omitempty"`
	ReliabilityHistory []ReliabilityChange `json:"reliability_history,omitempty"`
}

// ReliabilityChange is one entry of an informant's reliability history.
type ReliabilityChange struct {
	Date     string `json:"date"`
	OldLevel string `json:"old_level"`
	NewLevel string `json:"new_level"`
	Reason   string `json:"reason"`
}

// Meeting is a scheduled or past meeting with an informant.
type Meeting struct {
	ID                string `json:"id"`
	InformantID       string `json:"informant_id"`
	InformantCodeName string `json:"informant_code_name"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	Location          string `json:"location"`
	Purpose           string `json:"purpose"`
	Status            string `json:"status"`
	Handler           string `json:"handler"`
	SecurityLevel     string `json:"security_level"`
	CreatedAt         string `json:"created_at,omitempty"`
}

// Information is a piece of intelligence received from an informant.
type Information struct {
	ID                  string      `json:"id"`
	InformantID         string      `json:"informant_id"`
	InformantCodeName   string      `json:"informant_code_name"`
	InformationType     string      `json:"information_type"`
	Content             string      `json:"content"`
	Credibility         string      `json:"credibility"`
	DateReceived        string      `json:"date_received"`
	CaseRelated         string      `json:"case_related"`
	VerificationStatus  string      `json:"verification_status"`
	Handler             string      `json:"handler"`
	VerificationDetails *Assessment `json:"verification_details,omitempty"`
}

// Assessment is the canned outcome of verifying an information record.
type Assessment struct {
	InformationID       string `json:"information_id"`
	VerificationMethod  string `json:"verification_method"`
	DateAssessed        string `json:"date_assessed"`
	Assessor            string `json:"assessor"`
	OriginalCredibility string `json:"original_credibility"`
	VerificationResult  string `json:"verification_result"`
	ConfidenceLevel     string `json:"confidence_level"`
}

// RegisterResult is returned by Register.
type RegisterResult struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Informant Informant `json:"informant"`
}

// ScheduleResult is returned by ScheduleMeeting.
type ScheduleResult struct {
	Status               string  `json:"status"`
	Message              string  `json:"message"`
	Meeting              Meeting `json:"meeting"`
	SecurityInstructions string  `json:"security_instructions"`
}

// Alternatives lists other slots and safe locations offered on a conflict.
type Alternatives struct {
	AlternativeTimes     []string `json:"alternative_times"`
	AlternativeLocations []string `json:"alternative_locations"`
}

// Availability is returned by CheckAvailability. Conflicts and
// SuggestedAlternatives are set only when Status is "unavailable".
type Availability struct {
	Status                  string        `json:"status"`
	Message                 string        `json:"message,omitempty"`
	SecurityRecommendations string        `json:"security_recommendations,omitempty"`
	Conflicts               []string      `json:"conflicts,omitempty"`
	SuggestedAlternatives   *Alternatives `json:"suggested_alternatives,omitempty"`
}

// Summary is the abbreviated informant view returned by the list operations.
// Fields not relevant to a given listing are omitted.
type Summary struct {
	ID               string `json:"id"`
	CodeName         string `json:"code_name"`
	Specialty        string `json:"specialty,omitempty"`
	ReliabilityLevel string `json:"reliability_level,omitempty"`
	Status           string `json:"status,omitempty"`
	InformationCount int    `json:"information_count"`
	SuccessfulTips   int    `json:"successful_tips"`
	SuccessRate      string `json:"success_rate"`
}

// ListResult is returned by the list operations. Message is set when empty.
type ListResult struct {
	Informants []Summary `json:"informants"`
	Count      int       `json:"count"`
	Message    string    `json:"message,omitempty"`
}

// Profile is an informant with its success rate and most recent meetings.
type Profile struct {
	Informant
	SuccessRate    string    `json:"success_rate"`
	RecentMeetings []Meeting `json:"recent_meetings"`
}

// RecordResult is returned by RecordInformation.
type RecordResult struct {
	Status      string      `json:"status"`
	Message     string      `json:"message"`
	Information Information `json:"information"`
}

// ReliabilityUpdateResult is returned by UpdateReliability.
type ReliabilityUpdateResult struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	InformantID    string `json:"informant_id"`
	CodeName       string `json:"code_name"`
	NewReliability string `json:"new_reliability"`
	Reason         string `json:"reason"`
}

// History is the complete record of an informant.
type History struct {
	InformantProfile      Informant     `json:"informant_profile"`
	InformationProvided   []Information `json:"information_provided"`
	MeetingHistory        []Meeting     `json:"meeting_history"`
	TotalInformationCount int           `json:"total_information_count"`
	TotalMeetings         int           `json:"total_meetings"`
}

// NetworkOverview counts informants by status.
type NetworkOverview struct {
	TotalInformants    int `json:"total_informants"`
	ActiveInformants   int `json:"active_informants"`
	InactiveInformants int `json:"inactive_informants"`
}

// ActivityStats aggregates information and meeting volume.
type ActivityStats struct {
	TotalInformationReceived int     `json:"total_information_received"`
	TotalMeetingsScheduled   int     `json:"total_meetings_scheduled"`
	AverageInfoPerInformant  float64 `json:"average_info_per_informant"`
}

// NetworkStats is returned by NetworkStatistics.
type NetworkStats struct {
	NetworkOverview         NetworkOverview `json:"network_overview"`
	ReliabilityDistribution map[string]int  `json:"reliability_distribution"`
	SpecialtyDistribution   map[string]int  `json:"specialty_distribution"`
	ActivityStats           ActivityStats   `json:"activity_stats"`
}

// ActiveCount is returned by ActiveCount.
type ActiveCount struct {
	ActiveInformants   int    `json:"active_informants"`
	InactiveInformants int    `json:"inactive_informants"`
	TotalInformants    int    `json:"total_informants"`
	ActivityRate       string `json:"activity_rate"`
}

func (i Informant) clone() Informant {
	if i.ReliabilityHistory != nil {
		i.ReliabilityHistory = append([]ReliabilityChange(nil), i.ReliabilityHistory...)
	}

	return i
}

func (i Information) clone() Information {
	if i.VerificationDetails != nil {
		a := *i.VerificationDetails
		i.VerificationDetails = &a
	}

	return i
}
