package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// SkinType is a normalized (lower-case) skin type label.
type SkinType string

// Known skin types, in the order the question text is scanned.
const (
	SkinTypeOily        SkinType = "oily"
	SkinTypeDry         SkinType = "dry"
	SkinTypeNormal      SkinType = "normal"
	SkinTypeCombination SkinType = "combination"
	SkinTypeSensitive   SkinType = "sensitive"
)

// SkinTypes lists the closed set of skin types.
var SkinTypes = []SkinType{SkinTypeOily, SkinTypeDry, SkinTypeNormal, SkinTypeCombination, SkinTypeSensitive}

// ErrUnknownSkinType is returned by ParseSkinType for labels outside the closed set.
var ErrUnknownSkinType = errors.New("unknown skin type")

// ParseSkinType parses a skin type case-insensitively.
func ParseSkinType(s string) (SkinType, error) {
	st := SkinType(strings.ToLower(strings.TrimSpace(s)))
	if st.IsValid() {
		return st, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownSkinType, s)
}

// IsValid reports whether st is one of the known skin types.
func (st SkinType) IsValid() bool {
	switch st {
	case SkinTypeOily, SkinTypeDry, SkinTypeNormal, SkinTypeCombination, SkinTypeSensitive:
		return true
	}

	return false
}

// Title returns the display form ("Oily", "Combination").
func (st SkinType) Title() string {
	words := strings.Fields(string(st))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}

	return strings.Join(words, " ")
}

// Sensitivity is a tri-state answer to "is your skin sensitive?".
type Sensitivity string

// Sensitivity values. The zero value means the user didn't say.
const (
	SensitivityUnknown Sensitivity = ""
	SensitivityYes     Sensitivity = "yes"
	SensitivityNo      Sensitivity = "no"
)

// Concern is a skincare issue tag such as "acne" or "sun_damage".
type Concern string

// Known concern tags.
const (
	ConcernAcne         Concern = "acne"
	ConcernDryness      Concern = "dryness"
	ConcernAging        Concern = "aging"
	ConcernPigmentation Concern = "pigmentation"
	ConcernSensitivity  Concern = "sensitivity"
	ConcernBlackheads   Concern = "blackheads"
	ConcernSunDamage    Concern = "sun_damage"
)

// Profile is the typed view of a user's intake answers.
// Concerns are lower-cased, trimmed and unique, in the order given.
type Profile struct {
	SkinType  SkinType
	Sensitive Sensitivity
	Concerns  []Concern
}

// HasSkinType reports whether the profile names a skin type.
func (p *Profile) HasSkinType() bool {
	return p != nil && p.SkinType != ""
}

// IsSensitive reports whether the user answered "yes" to sensitivity.
func (p *Profile) IsSensitive() bool {
	return p != nil && p.Sensitive == SensitivityYes
}

// ConcernStrings returns the concerns as plain strings.
func ConcernStrings(concerns []Concern) []string {
	out := make([]string, len(concerns))
	for i, c := range concerns {
		out[i] = string(c)
	}

	return out
}

// ConcernList accepts either a JSON array of strings or a single comma-separated string.
type ConcernList []string

// UnmarshalJSON implements json.Unmarshaler.
func (c *ConcernList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = nil

		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*c = list

		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return errors.New("concerns must be a string or an array of strings")
	}

	if strings.TrimSpace(joined) == "" {
		*c = nil

		return nil
	}

	*c = strings.Split(joined, ",")

	return nil
}

// IntakeData is the wire form of a user profile as sent by clients.
type IntakeData struct {
	SkinType  string      `json:"skin_type,omitempty" validate:"omitempty,max=50,no_null_bytes"`
	Sensitive string      `json:"sensitive,omitempty" validate:"omitempty,max=10,no_null_bytes"`
	Concerns  ConcernList `json:"concerns,omitempty" validate:"omitempty,max=20,dive,max=100,no_null_bytes"`
}

// Profile converts intake data into a normalized Profile. A nil receiver yields nil.
// Skin types outside the known set are kept (lower-cased) so they still drive the catalog filter.
func (d *IntakeData) Profile() *Profile {
	if d == nil {
		return nil
	}

	p := &Profile{
		SkinType: SkinType(strings.ToLower(strings.TrimSpace(d.SkinType))),
	}

	switch strings.ToLower(strings.TrimSpace(d.Sensitive)) {
	case "yes":
		p.Sensitive = SensitivityYes
	case "no":
		p.Sensitive = SensitivityNo
	}

	seen := make(map[Concern]struct{}, len(d.Concerns))

	for _, raw := range d.Concerns {
		c := Concern(strings.ToLower(strings.TrimSpace(raw)))
		if c == "" {
			continue
		}

		if _, dup := seen[c]; dup {
			continue
		}

		seen[c] = struct{}{}
		p.Concerns = append(p.Concerns, c)
	}

	return p
}

// IntakeSubmission is the body of POST /api/chat/intake.
type IntakeSubmission struct {
	SkinType  string      `json:"skin_type" validate:"required,skin_type"`
	Sensitive string      `json:"sensitive" validate:"required,oneof=yes no"`
	Concerns  ConcernList `json:"concerns,omitempty" validate:"omitempty,max=20,dive,max=100,no_null_bytes"`
}

// IntakeData returns the submission as generic intake data.
func (s *IntakeSubmission) IntakeData() *IntakeData {
	return &IntakeData{
		SkinType:  s.SkinType,
		Sensitive: s.Sensitive,
		Concerns:  s.Concerns,
	}
}

// IntakeResponse is returned after a successful intake submission.
type IntakeResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	IntakeID string `json:"intake_id"`
}
