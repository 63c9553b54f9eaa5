package pdf

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

func TestAdmissionFormValidate(t *testing.T) {
	form := &AdmissionForm{FirstName: "Mary", LastName: "Black"}
	require.NoError(t, form.Validate())

	form = &AdmissionForm{FirstName: "Mary"}
	err := form.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingData))
}

func TestAdmissionFormFilename(t *testing.T) {
	form := &AdmissionForm{FirstName: "Mary Ann", LastName: "O'Neill"}
	require.Equal(t, "admission-assessment-mary-ann-oneill.pdf", form.Filename())
}

func TestAdmissionFormHTMLEscapes(t *testing.T) {
	form := &AdmissionForm{
		FirstName: "Mary",
		LastName:  "Black",
		Notes:     `<script>alert("x")</script>`,
	}
	out := form.HTML()
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "&lt;script&gt;")
	require.Contains(t, out, "Mary Black")
	require.Contains(t, out, "Admission Assessment")
}

func TestDNACPRFormRequiresDecisionDate(t *testing.T) {
	form := &DNACPRForm{FirstName: "John", LastName: "Doyle"}
	err := form.Validate()
	require.True(t, errors.Is(err, ErrMissingData))

	form.DecisionDate = "2026-01-10"
	require.NoError(t, form.Validate())
}

func TestSkinIntegrityTotalsAndBands(t *testing.T) {
	form := &SkinIntegrityForm{
		FirstName:         "Anna",
		LastName:          "Reid",
		SensoryPerception: 4,
		Moisture:          4,
		Activity:          4,
		Mobility:          4,
		Nutrition:         4,
		FrictionShear:     3,
	}
	require.NoError(t, form.Validate())
	require.Equal(t, 23, form.Total())
	require.Equal(t, "No Risk", form.RiskBand())

	form.SensoryPerception = 1
	form.Moisture = 1
	form.Activity = 1
	form.Mobility = 1
	form.Nutrition = 1
	form.FrictionShear = 1
	require.Equal(t, 6, form.Total())
	require.Equal(t, "Severe Risk", form.RiskBand())
}

func TestSkinIntegrityMissingScoreFails(t *testing.T) {
	form := &SkinIntegrityForm{FirstName: "Anna", LastName: "Reid", Moisture: 2}
	err := form.Validate()
	require.True(t, errors.Is(err, ErrMissingData))
}

func TestNHSReportTrustHeading(t *testing.T) {
	form := &NHSReportForm{}
	form.Incident.IncidentType = "fall"
	form.Incident.Description = "fall in corridor"
	require.NoError(t, form.Validate())

	require.Contains(t, form.HTML(), "NHS Trust Incident Report")
	form.IsBHSCT = true
	require.Contains(t, form.HTML(), "Belfast Health and Social Care Trust")
}

func TestNHSReportFilenameWithoutResident(t *testing.T) {
	form := &NHSReportForm{}
	require.Equal(t, "nhs-incident-report.pdf", form.Filename())
}

func TestAssessmentHTMLSortsAndLabelsFields(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"mobilityAid":    "walking frame",
		"bed_rails":      true,
		"transfer_count": 3,
	})
	require.NoError(t, err)

	assessment := &domain.Assessment{
		FormType: domain.FormMovingHandling,
		Data:     data,
	}
	out := AssessmentHTML(assessment)
	require.Contains(t, out, "Moving and Handling Assessment")
	require.Contains(t, out, "Mobility Aid")
	require.Contains(t, out, "Bed rails")
	require.Contains(t, out, "Yes")
	require.Contains(t, out, "3")

	// Sorted keys: bed_rails before mobilityAid before transfer_count.
	require.Less(t, strings.Index(out, "Bed rails"), strings.Index(out, "Mobility Aid"))
	require.Less(t, strings.Index(out, "Mobility Aid"), strings.Index(out, "Transfer count"))
}

func TestAssessmentHTMLCorruptDataDegrades(t *testing.T) {
	assessment := &domain.Assessment{
		FormType: domain.FormPreAdmission,
		Data:     json.RawMessage("not json"),
	}
	out := AssessmentHTML(assessment)
	require.Contains(t, out, "Pre-Admission Assessment")
}

func TestAssessmentFilename(t *testing.T) {
	assessment := &domain.Assessment{FormType: domain.FormInfectionPrevention}
	require.Equal(t, "infection-prevention.pdf", AssessmentFilename(assessment))

	require.Equal(t, "assessment.pdf", AssessmentFilename(&domain.Assessment{}))
}
