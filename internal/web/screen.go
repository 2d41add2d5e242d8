package web

import (
	"github.com/verijob/verijob/internal/model"
	"github.com/verijob/verijob/internal/recommend"
)

// ScreenKind names the active screen. Exactly one variant of Screen is
// populated per render; the tagged form replaces ad-hoc boolean show-flags
// so two screens can never be active at once.
type ScreenKind string

const (
	ScreenLanding ScreenKind = "landing"
	ScreenSignUp  ScreenKind = "signup"
	ScreenLogin   ScreenKind = "login"
	ScreenProfile ScreenKind = "profile"
)

// Screen is the tagged variant handed to the template layer.
type Screen struct {
	Kind    ScreenKind
	Landing *LandingData
	SignUp  *FormData
	Login   *FormData
	Profile *ProfileData
}

// LandingData drives the main screen: the analyze form, the result panel
// and the sidebar widgets.
type LandingData struct {
	User   *model.User
	Stats  *model.Stats
	Alerts []model.Alert

	// Form state echoed back on re-render.
	Input        string
	AnalysisType string

	// Exactly one of Error and Result is set after a submission; Error wins
	// when both would apply.
	Error    string
	Result   *ResultView
	InFlight bool
}

// ResultView is the rendered analysis outcome.
type ResultView struct {
	Response *model.AnalysisResponse
	// Flags always holds exactly FlagTileCount entries.
	Flags []string
}

// FormData carries auth-form state and a validation error back to the
// template.
type FormData struct {
	User     *model.User
	Username string
	Email    string
	Error    string
}

// Profile sidebar sections.
const (
	SectionHistory   = "history"
	SectionDownloads = "downloads"
	SectionEdit      = "edit"
	SectionLogout    = "logout"
)

// ProfileData drives the profile screen: a fixed sidebar whose selection
// picks the rendered content pane.
type ProfileData struct {
	User    *model.User
	Section string

	Alerts          []model.Alert
	Recommendations []recommend.Recommendation
	Error           string
	Notice          string
}

// NewLanding builds a landing screen; the other constructors mirror it so a
// Screen is always well-formed.
func NewLanding(data *LandingData) Screen {
	return Screen{Kind: ScreenLanding, Landing: data}
}

func NewSignUp(data *FormData) Screen {
	return Screen{Kind: ScreenSignUp, SignUp: data}
}

func NewLogin(data *FormData) Screen {
	return Screen{Kind: ScreenLogin, Login: data}
}

func NewProfile(data *ProfileData) Screen {
	return Screen{Kind: ScreenProfile, Profile: data}
}

// ResultViewFrom applies the fixed-tile rule to a successful response. A
// response with a non-empty Error must not reach here; callers route those
// to the error panel first.
func ResultViewFrom(resp *model.AnalysisResponse) *ResultView {
	var flags []string
	if resp.Analysis != nil {
		flags = resp.Analysis.RedFlags
	}
	return &ResultView{Response: resp, Flags: PadFlags(flags)}
}
