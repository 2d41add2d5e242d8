package web

import (
	"errors"
	"strings"

	"github.com/verijob/verijob/internal/model"
)

// FlagTileCount is how many red-flag tiles the result panel renders. Shorter
// flag lists are padded with placeholders, longer ones truncated.
const FlagTileCount = 8

// NoFlagPlaceholder fills unused flag tiles.
const NoFlagPlaceholder = "No flag"

// ErrEmptyInput means the analyze form was submitted blank; no request is
// built and no analysis starts.
var ErrEmptyInput = errors.New("please enter a job description or URL to analyze")

// BuildAnalysisRequest turns the single analyze-form field into an API
// request. Input starting with http:// or https:// (any case) is treated as
// a URL to scrape, anything else as pasted posting text. An empty analysis
// type defaults to quick.
func BuildAnalysisRequest(input, analysisType string) (*model.AnalysisRequest, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	analysisType = strings.ToLower(strings.TrimSpace(analysisType))
	if analysisType == "" {
		analysisType = model.AnalysisQuick
	}

	req := &model.AnalysisRequest{AnalysisType: analysisType}
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		req.JobURL = input
	} else {
		req.JobText = input
	}
	return req, nil
}

// PadFlags returns exactly FlagTileCount display strings.
func PadFlags(flags []string) []string {
	out := make([]string, 0, FlagTileCount)
	for _, f := range flags {
		if len(out) == FlagTileCount {
			break
		}
		out = append(out, f)
	}
	for len(out) < FlagTileCount {
		out = append(out, NoFlagPlaceholder)
	}
	return out
}
