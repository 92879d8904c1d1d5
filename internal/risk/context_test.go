package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWorkerContext(t *testing.T) {
	age := 34
	older := daysAgo(2, 45)
	older.ShiftDurationHours = 8
	older.PPEItemsRequired = 4
	older.PPEItemsUsed = 3
	older.PPEComplianceRate = 0.75
	older.TotalHazardHours = 2.5
	older.HazardHours = HazardExposure{HazardNoise: 2.5}
	older.Symptoms = []string{"headache", "dizziness"}
	older.IncidentReported = true
	older.IncidentDescription = "minor cut"
	newer := daysAgo(0, 12)
	newer.ShiftDurationHours = 9.5
	newer.Notes = "quiet day"

	text := BuildWorkerContext(ContextProfile{
		Name:     "Jordan",
		Email:    "jordan@example.com",
		Age:      &age,
		JobTitle: "Welder",
	}, []Submission{older, newer})

	assert.Contains(t, text, "## Worker profile\nName: Jordan\nEmail: jordan@example.com\nAge: 34\nGender: Not set\n")
	assert.Contains(t, text, "Years of Experience: Not set")
	assert.Contains(t, text, "## Daily form submissions (most recent first)")

	first := strings.Index(text, "--- Form 1 (10/15/2026) ---")
	second := strings.Index(text, "--- Form 2 (10/13/2026) ---")
	assert.True(t, first > 0 && second > first, "应按日期降序排列")

	assert.Contains(t, text, "Shift duration: 9.5 hours")
	assert.Contains(t, text, "Notes: quiet day")
	assert.Contains(t, text, "PPE compliance: 3/4 (75%)")
	assert.Contains(t, text, `Hazard exposures: {"noise":2.5}`)
	assert.Contains(t, text, "Symptoms: headache, dizziness")
	assert.Contains(t, text, "Risk score: 45 (medium)")
	assert.Contains(t, text, "Incident description: minor cut")
}

func TestBuildWorkerContext_NoSubmissions(t *testing.T) {
	text := BuildWorkerContext(ContextProfile{Email: "a@b.c"}, nil)
	assert.True(t, strings.HasSuffix(text, "No form submissions yet."))
	assert.Contains(t, text, "Name: Not set")
}
