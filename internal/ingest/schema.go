package ingest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"applykit/internal/errors"
	"applykit/internal/types"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed profile.schema.json
var profileSchemaJSON string

var profileSchema = gojsonschema.NewStringLoader(profileSchemaJSON)

// ValidateProfileJSON checks data against the profile schema. The error
// lists every violation.
func ValidateProfileJSON(data []byte) error {
	result, err := gojsonschema.Validate(profileSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, "profile is not valid JSON", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return errors.NewValidationError(errors.ErrCodeInvalidProfile,
		"profile failed schema validation: "+strings.Join(violations, "; "), nil).
		WithContext("violations", violations)
}

// DecodeProfile validates and decodes a JSON profile.
func DecodeProfile(data []byte) (types.CandidateProfile, error) {
	if err := ValidateProfileJSON(data); err != nil {
		return types.CandidateProfile{}, err
	}
	var profile types.CandidateProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return types.CandidateProfile{}, errors.NewValidationError(errors.ErrCodeInvalidFormat, "failed to decode profile", err)
	}
	return profile, nil
}
