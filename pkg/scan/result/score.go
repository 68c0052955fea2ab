package result

import (
	"math"

	"github.com/complyscan/complyscan/pkg/scanner/rules"
)

// principlePenalty is deducted per distinct GDPR principle affected.
const principlePenalty = 3

// skipPenaltyWeight scales the skipped-file ratio into score points.
const skipPenaltyWeight = 25

// Score converts a summary into the 0-100 compliance score. Pure function of
// its inputs: identical summaries always score identically.
//
//	score = 100 + high*impact.High + medium*impact.Medium + low*impact.Low
//	            - 3*principles - round(25 * skipped/total)
//
// Impact values are negative deductions.
func Score(summary Summary, impacts rules.Impacts) int {
	score := 100

	score += summary.HighRiskCount * impacts.High
	score += summary.MediumRiskCount * impacts.Medium
	score += summary.LowRiskCount * impacts.Low
	score -= len(summary.GDPRPrinciplesAffected) * principlePenalty

	if summary.TotalFiles > 0 {
		ratio := float64(summary.SkippedFiles) / float64(summary.TotalFiles)
		score -= int(math.Round(skipPenaltyWeight * ratio))
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
