package reporter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// ErrMissingBuildInfo is returned when a reporter is created without build
// information.
var ErrMissingBuildInfo = errors.New("build info must be specified when reporting to a database")

// BuildInfo identifies the build a set of results belongs to.
type BuildInfo struct {
	Buildbot    int64
	BuildNumber int64
	BuildName   string
	Branch      string
	Revision    string
}

const buildInfoSchema = `{
	"type": "object",
	"required": ["buildbot", "buildnumber", "branch", "revision", "buildname"],
	"properties": {
		"buildbot":    {"type": "integer"},
		"buildnumber": {"type": "integer"},
		"branch":      {"type": "string", "maxLength": 255},
		"revision":    {"type": "string", "maxLength": 40},
		"buildname":   {"type": "string", "maxLength": 40}
	}
}`

var buildInfoLoader = gojsonschema.NewStringLoader(buildInfoSchema)

// ParseBuildInfo parses a JSON object such as
//
//	{"buildbot": 1, "buildnumber": 42, "branch": "main", "revision": "abc123", "buildname": "unit"}
func ParseBuildInfo(raw string) (*BuildInfo, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingBuildInfo
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("build info is not valid JSON")
	}

	result, err := gojsonschema.Validate(buildInfoLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("build info validation error: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("invalid build info: %s", strings.Join(problems, "; "))
	}

	fields := gjson.GetMany(raw, "buildbot", "buildnumber", "buildname", "branch", "revision")
	return &BuildInfo{
		Buildbot:    fields[0].Int(),
		BuildNumber: fields[1].Int(),
		BuildName:   fields[2].String(),
		Branch:      fields[3].String(),
		Revision:    fields[4].String(),
	}, nil
}
