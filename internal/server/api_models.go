package server

// RegisterRequest is the payload for POST /api/register. Qualifications and
// fields of interest are optional and seed the recommendations ranking.
type RegisterRequest struct {
	Username         string `json:"username" example:"jobhunter42"`
	Email            string `json:"email" example:"hunter@example.com"`
	Password         string `json:"password" example:"correct horse battery"`
	Qualifications   string `json:"qualifications" example:"software engineering"`
	FieldsOfInterest string `json:"fields_of_interest" example:"backend, fintech"`
}

// LoginRequest is the payload for POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" example:"hunter@example.com"`
	Password string `json:"password" example:"correct horse battery"`
}

// AuthResponse returns the session token and the account it belongs to.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// EditProfileRequest updates the signed-in account. Empty fields are left
// unchanged.
type EditProfileRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Qualifications   string `json:"qualifications"`
	FieldsOfInterest string `json:"fields_of_interest"`
}

// ReportScamRequest adds contact details to the scam database.
type ReportScamRequest struct {
	Email string `json:"email" example:"recruiter@scam.example"`
	Phone string `json:"phone" example:"+1 (555) 012-3456"`
}

// ReportRequest files a community report against a stored posting.
type ReportRequest struct {
	JobID      string `json:"job_id"`
	Reason     string `json:"reason" example:"Asked for a deposit before the interview"`
	Experience string `json:"experience"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
