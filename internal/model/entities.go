package model

import "time"

// User is a registered account. Password holds the bcrypt hash.
type User struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"-"`
	Qualifications   string `json:"qualifications,omitempty"`
	FieldsOfInterest string `json:"fields_of_interest,omitempty"`
	CreatedAt        time.Time
}

// JobPosting is a submitted posting as stored.
type JobPosting struct {
	ID          string
	URL         string
	CompanyName string
	JobTitle    string
	Description string
	SubmittedAt time.Time
	SubmittedBy string // user ID, empty for anonymous submissions
}

// AnalysisRecord is a stored analysis result for a posting.
type AnalysisRecord struct {
	ID              string
	JobID           string
	RiskScore       int
	RiskLevel       string
	Verdict         string
	DetectionMethod string
	CreatedAt       time.Time
}

// FraudIndicator is one stored red flag attached to an analysis.
type FraudIndicator struct {
	ID          string
	AnalysisID  string
	Type        string
	Description string
	Severity    string
}

// CompanyVerification caches company legitimacy lookups.
type CompanyVerification struct {
	ID              string
	CompanyName     string
	WebsiteURL      string
	LinkedInURL     string
	SocialPresence  bool
	ReputationScore float64
	IsVerified      bool
}

// CommunityReport is a user-filed report against a stored posting.
type CommunityReport struct {
	ID         string
	JobID      string
	UserID     string
	Reason     string
	Experience string
	ReportedAt time.Time
}

// TrendingFraudJob tracks report/view counters per posting.
type TrendingFraudJob struct {
	JobID           string
	ReportCount     int
	ViewCount       int
	PopularityScore float64
	LastUpdated     time.Time
}

// Alert is a recent high-risk analysis as served by /api/recent_alerts.
type Alert struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	RiskLevel   string `json:"risk_level"`
	RiskScore   int    `json:"risk_score"`
	Category    string `json:"category"`
	TimeAgo     string `json:"time_ago"`
	URL         string `json:"url,omitempty"`
}

// Stats is the aggregate served by /api/stats.
type Stats struct {
	Success        bool    `json:"success"`
	TotalAnalyzed  int     `json:"total_analyzed"`
	ScamsDetected  int     `json:"scams_detected"`
	AccuracyRate   float64 `json:"accuracy_rate"`
	UsersProtected int     `json:"users_protected"`
	DetectionRate  float64 `json:"detection_rate"`
}
