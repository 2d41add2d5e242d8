package model

// Analysis types selectable by the client. The default is quick.
const (
	AnalysisQuick    = "quick"
	AnalysisDetailed = "detailed"
)

// Detection methods reported back to the client. quick_fallback means the
// detailed path failed and the rule-based scan answered instead.
const (
	MethodQuick         = "quick"
	MethodDetailed      = "detailed"
	MethodQuickFallback = "quick_fallback"
)

// Risk levels as rendered on the screens.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// AnalysisRequest is the body of POST /api/analyze. Exactly one of JobText
// and JobURL is non-empty per submission; CompanyName and JobTitle are
// reserved fields the screens leave blank.
type AnalysisRequest struct {
	JobText      string `json:"job_text"`
	JobURL       string `json:"job_url"`
	CompanyName  string `json:"company_name"`
	AnalysisType string `json:"analysis_type"`
	JobTitle     string `json:"job_title"`
}

// AnalysisResponse is the full analyze result. A non-empty Error overrides
// everything else: clients must render the error path even when other
// fields are populated.
type AnalysisResponse struct {
	RiskScore       int             `json:"risk_score"`
	RiskLevel       string          `json:"risk_level"`
	RiskColor       string          `json:"risk_color,omitempty"`
	Verdict         string          `json:"verdict"`
	IsScam          bool            `json:"is_scam"`
	AutoReply       string          `json:"auto_reply,omitempty"`
	Analysis        *AnalysisDetail `json:"analysis,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
	AnalysisType    string          `json:"analysis_type,omitempty"`
	DetectionMethod string          `json:"detection_method,omitempty"`
	Performance     *Performance    `json:"performance,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// AnalysisDetail carries the per-signal breakdown of an analysis.
type AnalysisDetail struct {
	RedFlags          []string          `json:"red_flags"`
	CompanyLegitimacy CompanyLegitimacy `json:"company_legitimacy"`
	ScamDatabaseCheck ScamCheckResult   `json:"scam_database_check"`
	LLMAnalysis       string            `json:"llm_analysis,omitempty"`
	CompanyInfo       CompanyInfo       `json:"company_info"`
}

// CompanyLegitimacy reports best-effort company verification signals.
type CompanyLegitimacy struct {
	WebsiteExists  bool   `json:"website_exists"`
	LinkedInExists bool   `json:"linkedin_exists"`
	Website        string `json:"website,omitempty"`
}

// ScamCheckResult reports lookups against the scam-contact database.
type ScamCheckResult struct {
	EmailFlagged bool   `json:"email_flagged"`
	PhoneFlagged bool   `json:"phone_flagged"`
	FlaggedEmail string `json:"flagged_email,omitempty"`
	FlaggedPhone string `json:"flagged_phone,omitempty"`
}

// CompanyInfo echoes the company the analysis believes it looked at.
type CompanyInfo struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
}

// Performance summarizes how the analysis ran.
type Performance struct {
	AnalysisTime float64 `json:"analysis_time"`
	Method       string  `json:"method"`
}

// RedFlag is a single matched fraud rule with its provenance. The wire
// format only carries Message; ID and Severity feed the stored
// fraud_indicators rows.
type RedFlag struct {
	RuleID   string
	Severity string
	Message  string
}

// Messages flattens flags to the display strings the screens render.
func Messages(flags []RedFlag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Message)
	}
	return out
}
