package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleBasedScore_ZeroCase(t *testing.T) {
	score := RuleBasedScore(ScoreInput{FatigueLevel: 1, PPEComplianceRate: 1.0, HazardHours: HazardExposure{}})
	assert.Equal(t, 0, score)
}

func TestRuleBasedScore_SaturatedCase(t *testing.T) {
	score := RuleBasedScore(ScoreInput{
		FatigueLevel:      10,
		PPEComplianceRate: 0,
		HazardHours:       HazardExposure{HazardHeights: 8},
		IncidentReported:  true,
		SymptomCount:      3,
	})
	assert.Equal(t, 100, score)
}

func TestRuleBasedScore_EndToEndScenario(t *testing.T) {
	// 15×(4/8) − 0.5×18 = −1.5 → 截断为 0，再加疲劳 20
	score := RuleBasedScore(ScoreInput{
		FatigueLevel:      5,
		PPEComplianceRate: 0.5,
		HazardHours:       HazardExposure{HazardNoise: 4},
	})
	assert.Equal(t, 20, score)
	assert.Equal(t, LevelLow, Classify(score))
}

func TestRuleBasedScore_PPEReducesHazardOnly(t *testing.T) {
	// 无危害暴露时 PPE 抵扣不会抵消疲劳与事故
	score := RuleBasedScore(ScoreInput{FatigueLevel: 3, PPEComplianceRate: 1.0, IncidentReported: true})
	assert.Equal(t, 30, score)
}

func TestRuleBasedScore_LongExposureNotCapped(t *testing.T) {
	eight := RuleBasedScore(ScoreInput{FatigueLevel: 1, HazardHours: HazardExposure{HazardDust: 8}})
	sixteen := RuleBasedScore(ScoreInput{FatigueLevel: 1, HazardHours: HazardExposure{HazardDust: 16}})
	assert.Equal(t, 12, eight)
	assert.Equal(t, 24, sixteen)
}

func TestRuleBasedScore_UnknownHazardUsesDefault(t *testing.T) {
	score := RuleBasedScore(ScoreInput{FatigueLevel: 1, HazardHours: HazardExposure{"radiation": 8}})
	assert.Equal(t, 10, score)
}

func TestRuleBasedScore_Rounding(t *testing.T) {
	// 22×(3/8) = 8.25 → 8；18×(5/8) = 11.25 → 11；合计 19.5 → 20
	assert.Equal(t, 8, RuleBasedScore(ScoreInput{FatigueLevel: 1, HazardHours: HazardExposure{HazardElectrical: 3}}))
	assert.Equal(t, 20, RuleBasedScore(ScoreInput{FatigueLevel: 1, HazardHours: HazardExposure{HazardElectrical: 3, HazardConfined: 5}}))
}

func TestRuleBasedScore_AlwaysInRange(t *testing.T) {
	hazards := []HazardExposure{
		{},
		{HazardNoise: 2},
		{HazardHeights: 12, HazardChemicals: 12, HazardElectrical: 12},
		{"unknown": 40},
	}
	for fatigue := 1; fatigue <= 10; fatigue++ {
		for _, ppe := range []float64{0, 0.25, 0.5, 1} {
			for _, hz := range hazards {
				for _, incident := range []bool{false, true} {
					for symptoms := 0; symptoms <= 6; symptoms += 3 {
						s := RuleBasedScore(ScoreInput{fatigue, ppe, hz, incident, symptoms})
						assert.GreaterOrEqual(t, s, 0)
						assert.LessOrEqual(t, s, 100)
					}
				}
			}
		}
	}
}

func TestRuleBasedScore_MonotonicInPPE(t *testing.T) {
	hazards := []HazardExposure{
		{HazardNoise: 4},
		{HazardHeights: 8, HazardDust: 2},
		{},
	}
	for _, hz := range hazards {
		prev := 101
		for step := 0; step <= 20; step++ {
			rate := float64(step) / 20
			s := RuleBasedScore(ScoreInput{FatigueLevel: 4, PPEComplianceRate: rate, HazardHours: hz, SymptomCount: 1})
			assert.LessOrEqual(t, s, prev, "PPE=%v 时分数不应上升", rate)
			prev = s
		}
	}
}

func TestRuleBasedScore_PPEAboveRequired(t *testing.T) {
	rate := PPEComplianceRate(2, 3)
	assert.InDelta(t, 1.5, rate, 1e-9)

	// 高处作业 8h 的危害分 25，合规率 1.5 时减免 27，结果不为负
	score := RuleBasedScore(ScoreInput{FatigueLevel: 1, PPEComplianceRate: rate, HazardHours: HazardExposure{HazardHeights: 8}})
	assert.Equal(t, 0, score)
}

func TestPPEComplianceRate(t *testing.T) {
	tests := []struct {
		name     string
		required int
		used     int
		want     float64
	}{
		{"无要求视为完全合规", 0, 0, 1},
		{"部分合规", 4, 1, 0.25},
		{"全部合规", 3, 3, 1},
		{"超出不截断", 2, 5, 2.5},
		{"未使用", 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PPEComplianceRate(tt.required, tt.used), 1e-9)
		})
	}
}

func TestHazardExposure(t *testing.T) {
	h := HazardExposure{HazardNoise: 2.5, HazardDust: 1.5}
	assert.InDelta(t, 4.0, h.TotalHours(), 1e-9)
	assert.Equal(t, []HazardCategory{HazardDust, HazardNoise}, h.Categories())
	assert.NoError(t, h.Validate())
	assert.Error(t, HazardExposure{HazardNoise: -1}.Validate())

	assert.Equal(t, h, ExposureFromMap(h.ToMap()))
	assert.True(t, HazardHeights.IsKnown())
	assert.False(t, HazardCategory("radiation").IsKnown())
	assert.Len(t, KnownHazards(), 6)
}
