package pdf

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// ErrMissingData required form fields are absent. Maps to HTTP 400.
var ErrMissingData = errors.New("missing required form data")

// Each route hand-codes its own payload shape and HTML template. There is
// deliberately no shared schema across form types.

// AdmissionForm full admission-assessment payload.
type AdmissionForm struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DateOfBirth    string `json:"dateOfBirth"`
	NHSNumber      string `json:"nhsNumber"`
	Room           string `json:"room"`
	AdmissionDate  string `json:"admissionDate"`
	GPName         string `json:"gpName"`
	NextOfKin      string `json:"nextOfKin"`
	Allergies      string `json:"allergies"`
	MedicalHistory string `json:"medicalHistory"`
	Medication     string `json:"medication"`
	Mobility       string `json:"mobility"`
	Nutrition      string `json:"nutrition"`
	Communication  string `json:"communication"`
	Notes          string `json:"notes"`
	CompletedBy    string `json:"completedBy"`
}

func (f *AdmissionForm) Validate() error {
	if f.FirstName == "" || f.LastName == "" {
		return fmt.Errorf("firstName and lastName are required: %w", ErrMissingData)
	}
	return nil
}

func (f *AdmissionForm) Filename() string {
	return formFilename("admission-assessment", f.FirstName, f.LastName)
}

func (f *AdmissionForm) HTML() string {
	var b strings.Builder
	writeSection(&b, "Resident Details")
	writeField(&b, "Name", f.FirstName+" "+f.LastName)
	writeField(&b, "Date of Birth", f.DateOfBirth)
	writeField(&b, "NHS Number", f.NHSNumber)
	writeField(&b, "Room", f.Room)
	writeField(&b, "Admission Date", f.AdmissionDate)
	writeField(&b, "GP", f.GPName)
	writeField(&b, "Next of Kin", f.NextOfKin)
	writeSection(&b, "Clinical Background")
	writeField(&b, "Allergies", f.Allergies)
	writeField(&b, "Medical History", f.MedicalHistory)
	writeField(&b, "Medication", f.Medication)
	writeSection(&b, "Care Needs")
	writeField(&b, "Mobility", f.Mobility)
	writeField(&b, "Nutrition", f.Nutrition)
	writeField(&b, "Communication", f.Communication)
	writeField(&b, "Notes", f.Notes)
	writeField(&b, "Completed By", f.CompletedBy)
	return document("Admission Assessment", b.String())
}

// DNACPRForm do-not-attempt-CPR decision record.
type DNACPRForm struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	DateOfBirth       string `json:"dateOfBirth"`
	NHSNumber         string `json:"nhsNumber"`
	DecisionDate      string `json:"decisionDate"`
	DecisionRationale string `json:"decisionRationale"`
	DiscussedWith     string `json:"discussedWith"`
	SeniorClinician   string `json:"seniorClinician"`
	ReviewDate        string `json:"reviewDate"`
}

func (f *DNACPRForm) Validate() error {
	if f.FirstName == "" || f.LastName == "" {
		return fmt.Errorf("firstName and lastName are required: %w", ErrMissingData)
	}
	if f.DecisionDate == "" {
		return fmt.Errorf("decisionDate is required: %w", ErrMissingData)
	}
	return nil
}

func (f *DNACPRForm) Filename() string {
	return formFilename("dnacpr", f.FirstName, f.LastName)
}

func (f *DNACPRForm) HTML() string {
	var b strings.Builder
	writeSection(&b, "Resident Details")
	writeField(&b, "Name", f.FirstName+" "+f.LastName)
	writeField(&b, "Date of Birth", f.DateOfBirth)
	writeField(&b, "NHS Number", f.NHSNumber)
	writeSection(&b, "Decision")
	writeField(&b, "Decision Date", f.DecisionDate)
	writeField(&b, "Rationale", f.DecisionRationale)
	writeField(&b, "Discussed With", f.DiscussedWith)
	writeField(&b, "Senior Clinician", f.SeniorClinician)
	writeField(&b, "Review Date", f.ReviewDate)
	return document("DNACPR Decision Record", b.String())
}

// PEEPForm personal emergency evacuation plan.
type PEEPForm struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Room               string `json:"room"`
	MobilityLevel      string `json:"mobilityLevel"`
	AssistanceRequired string `json:"assistanceRequired"`
	EvacuationMethod   string `json:"evacuationMethod"`
	EquipmentNeeded    string `json:"equipmentNeeded"`
	AssessorName       string `json:"assessorName"`
	AssessmentDate     string `json:"assessmentDate"`
}

func (f *PEEPForm) Validate() error {
	if f.FirstName == "" || f.LastName == "" {
		return fmt.Errorf("firstName and lastName are required: %w", ErrMissingData)
	}
	return nil
}

func (f *PEEPForm) Filename() string {
	return formFilename("peep", f.FirstName, f.LastName)
}

func (f *PEEPForm) HTML() string {
	var b strings.Builder
	writeSection(&b, "Resident Details")
	writeField(&b, "Name", f.FirstName+" "+f.LastName)
	writeField(&b, "Room", f.Room)
	writeSection(&b, "Evacuation Plan")
	writeField(&b, "Mobility Level", f.MobilityLevel)
	writeField(&b, "Assistance Required", f.AssistanceRequired)
	writeField(&b, "Evacuation Method", f.EvacuationMethod)
	writeField(&b, "Equipment Needed", f.EquipmentNeeded)
	writeField(&b, "Assessor", f.AssessorName)
	writeField(&b, "Assessment Date", f.AssessmentDate)
	return document("Personal Emergency Evacuation Plan", b.String())
}

// SkinIntegrityForm Braden-scale pressure risk score sheet.
// The six sub-scores are 1-4 (friction/shear 1-3); total 6-23, lower is
// higher risk.
type SkinIntegrityForm struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Room              string `json:"room"`
	SensoryPerception int    `json:"sensoryPerception"`
	Moisture          int    `json:"moisture"`
	Activity          int    `json:"activity"`
	Mobility          int    `json:"mobility"`
	Nutrition         int    `json:"nutrition"`
	FrictionShear     int    `json:"frictionShear"`
	AssessedBy        string `json:"assessedBy"`
	AssessmentDate    string `json:"assessmentDate"`
}

func (f *SkinIntegrityForm) Validate() error {
	if f.FirstName == "" || f.LastName == "" {
		return fmt.Errorf("firstName and lastName are required: %w", ErrMissingData)
	}
	scores := []int{f.SensoryPerception, f.Moisture, f.Activity, f.Mobility, f.Nutrition, f.FrictionShear}
	for _, s := range scores {
		if s <= 0 {
			return fmt.Errorf("all Braden sub-scores are required: %w", ErrMissingData)
		}
	}
	return nil
}

func (f *SkinIntegrityForm) Total() int {
	return f.SensoryPerception + f.Moisture + f.Activity + f.Mobility + f.Nutrition + f.FrictionShear
}

// RiskBand classifies the total score per standard Braden bands.
func (f *SkinIntegrityForm) RiskBand() string {
	switch total := f.Total(); {
	case total <= 9:
		return "Severe Risk"
	case total <= 12:
		return "High Risk"
	case total <= 14:
		return "Moderate Risk"
	case total <= 18:
		return "Mild Risk"
	default:
		return "No Risk"
	}
}

func (f *SkinIntegrityForm) Filename() string {
	return formFilename("skin-integrity", f.FirstName, f.LastName)
}

func (f *SkinIntegrityForm) HTML() string {
	var b strings.Builder
	writeSection(&b, "Resident Details")
	writeField(&b, "Name", f.FirstName+" "+f.LastName)
	writeField(&b, "Room", f.Room)
	writeSection(&b, "Braden Scale")
	writeField(&b, "Sensory Perception", fmt.Sprintf("%d", f.SensoryPerception))
	writeField(&b, "Moisture", fmt.Sprintf("%d", f.Moisture))
	writeField(&b, "Activity", fmt.Sprintf("%d", f.Activity))
	writeField(&b, "Mobility", fmt.Sprintf("%d", f.Mobility))
	writeField(&b, "Nutrition", fmt.Sprintf("%d", f.Nutrition))
	writeField(&b, "Friction / Shear", fmt.Sprintf("%d", f.FrictionShear))
	writeField(&b, "Total Score", fmt.Sprintf("%d (%s)", f.Total(), f.RiskBand()))
	writeField(&b, "Assessed By", f.AssessedBy)
	writeField(&b, "Assessment Date", f.AssessmentDate)
	return document("Skin Integrity Assessment (Braden Scale)", b.String())
}

// NHSReportForm incident report for the NHS trust. IsBHSCT switches the
// Belfast trust template heading on.
type NHSReportForm struct {
	Incident struct {
		IncidentType string `json:"incidentType"`
		Severity     string `json:"severity"`
		Description  string `json:"description"`
		Location     string `json:"location"`
		OccurredAt   string `json:"occurredAt"`
		ReportedBy   string `json:"reportedBy"`
	} `json:"incident"`
	TrustReport struct {
		ReferenceNumber string `json:"referenceNumber"`
		ActionsTaken    string `json:"actionsTaken"`
		Outcome         string `json:"outcome"`
	} `json:"trustReport"`
	Resident *struct {
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		DateOfBirth string `json:"dateOfBirth"`
		NHSNumber   string `json:"nhsNumber"`
	} `json:"resident"`
	IsBHSCT bool `json:"isBHSCT"`
}

func (f *NHSReportForm) Validate() error {
	if f.Incident.IncidentType == "" || f.Incident.Description == "" {
		return fmt.Errorf("incident type and description are required: %w", ErrMissingData)
	}
	return nil
}

func (f *NHSReportForm) Filename() string {
	if f.Resident != nil {
		return formFilename("nhs-incident-report", f.Resident.FirstName, f.Resident.LastName)
	}
	return "nhs-incident-report.pdf"
}

func (f *NHSReportForm) HTML() string {
	title := "NHS Trust Incident Report"
	if f.IsBHSCT {
		title = "Belfast Health and Social Care Trust Incident Report"
	}

	var b strings.Builder
	if f.Resident != nil {
		writeSection(&b, "Resident Details")
		writeField(&b, "Name", f.Resident.FirstName+" "+f.Resident.LastName)
		writeField(&b, "Date of Birth", f.Resident.DateOfBirth)
		writeField(&b, "NHS Number", f.Resident.NHSNumber)
	}
	writeSection(&b, "Incident")
	writeField(&b, "Type", f.Incident.IncidentType)
	writeField(&b, "Severity", f.Incident.Severity)
	writeField(&b, "Description", f.Incident.Description)
	writeField(&b, "Location", f.Incident.Location)
	writeField(&b, "Occurred At", f.Incident.OccurredAt)
	writeField(&b, "Reported By", f.Incident.ReportedBy)
	writeSection(&b, "Trust Report")
	writeField(&b, "Reference Number", f.TrustReport.ReferenceNumber)
	writeField(&b, "Actions Taken", f.TrustReport.ActionsTaken)
	writeField(&b, "Outcome", f.TrustReport.Outcome)
	return document(title, b.String())
}

// Titles for the fetch-by-id routes, keyed by stored form_type.
var assessmentTitles = map[string]string{
	domain.FormPreAdmission:        "Pre-Admission Assessment",
	domain.FormInfectionPrevention: "Infection Prevention Assessment",
	domain.FormMovingHandling:      "Moving and Handling Assessment",
}

// AssessmentHTML renders a stored assessment's JSON data as a field table.
// Keys are sorted so output is stable; nested values print as JSON.
func AssessmentHTML(assessment *domain.Assessment) string {
	title, ok := assessmentTitles[assessment.FormType]
	if !ok {
		title = "Assessment"
	}

	var fields map[string]any
	if err := json.Unmarshal(assessment.Data, &fields); err != nil {
		fields = map[string]any{}
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	writeSection(&b, title)
	for _, key := range keys {
		writeField(&b, fieldLabel(key), fieldValue(fields[key]))
	}
	return document(title, b.String())
}

// AssessmentFilename builds the download name for a fetch-by-id route.
func AssessmentFilename(assessment *domain.Assessment) string {
	prefix := assessment.FormType
	if prefix == "" {
		prefix = "assessment"
	}
	return sanitizeFilenamePart(prefix) + ".pdf"
}

func formFilename(prefix, firstName, lastName string) string {
	parts := []string{prefix}
	if firstName != "" {
		parts = append(parts, sanitizeFilenamePart(firstName))
	}
	if lastName != "" {
		parts = append(parts, sanitizeFilenamePart(lastName))
	}
	return strings.Join(parts, "-") + ".pdf"
}

func sanitizeFilenamePart(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '_':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "form"
	}
	return b.String()
}

// fieldLabel turns a camelCase or snake_case JSON key into a display label.
func fieldLabel(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case r >= 'A' && r <= 'Z' && i > 0:
			b.WriteRune(' ')
			b.WriteRune(r)
		case i == 0 && r >= 'a' && r <= 'z':
			b.WriteRune(r - 32)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func fieldValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}

func writeSection(b *strings.Builder, heading string) {
	b.WriteString(`<h2>`)
	b.WriteString(html.EscapeString(heading))
	b.WriteString("</h2>\n")
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(`<div class="field"><span class="label">`)
	b.WriteString(html.EscapeString(label))
	b.WriteString(`</span><span class="value">`)
	b.WriteString(html.EscapeString(value))
	b.WriteString("</span></div>\n")
}

// document wraps a form body in the shared print layout. All CSS is inline,
// no external assets, so the renderer never waits on the network.
func document(title, body string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`)
	b.WriteString(html.EscapeString(title))
	b.WriteString(`</title><style>
body { font-family: Arial, Helvetica, sans-serif; font-size: 12px; color: #1a1a1a; margin: 0; }
h1 { font-size: 18px; border-bottom: 2px solid #1a1a1a; padding-bottom: 8px; }
h2 { font-size: 14px; margin: 18px 0 6px; color: #333; }
.field { display: flex; border-bottom: 1px solid #ddd; padding: 4px 0; }
.label { width: 220px; font-weight: bold; flex-shrink: 0; }
.value { flex: 1; white-space: pre-wrap; }
</style></head><body><h1>`)
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h1>\n")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}
