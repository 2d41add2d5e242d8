package analyzer

import "github.com/verijob/verijob/internal/model"

// Advice builds the recommendation strings shown under an analysis result.
// Risk-band guidance first, then signal-specific notes.
func Advice(out *outcome, isScam bool) []string {
	var recs []string

	switch {
	case out.score >= 70:
		recs = append(recs,
			"Do not share personal or financial information with this poster",
			"Do not pay any fees, deposits, or equipment costs",
			"Report this posting to the platform where you found it",
		)
	case out.score >= 40:
		recs = append(recs,
			"Proceed with caution and verify the company independently",
			"Ask detailed questions about the role before sharing any documents",
		)
	default:
		recs = append(recs,
			"This posting shows no strong fraud signals",
			"Still confirm the company's identity before sharing sensitive information",
		)
	}

	if out.scam.EmailFlagged || out.scam.PhoneFlagged {
		recs = append(recs, "Contact details in this posting match previously reported scams")
	}
	if out.method == model.MethodDetailed && !out.legitimacy.WebsiteExists && !out.legitimacy.LinkedInExists {
		recs = append(recs, "No online presence found for this company, verify it exists before applying")
	}
	if out.method == model.MethodQuickFallback {
		recs = append(recs, "Run a detailed analysis later for an AI-backed second opinion")
	}
	if isScam {
		recs = append(recs, "Use the suggested auto-reply to decline safely")
	}

	return recs
}
