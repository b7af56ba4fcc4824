package model

import "strings"

// Claim represents a verifiable assertion extracted from a resume
type Claim struct {
	Text       string   `json:"claim"`      // The claim text itself, also its identity
	Category   Category `json:"category"`   // Kind of assertion
	Importance int      `json:"importance"` // 1 (minor) to 5 (headline role)
}

// Category classifies the nature of the claim
type Category string

const (
	CategoryEmployment    Category = "employment"
	CategoryEducation     Category = "education"
	CategorySkill         Category = "skill"
	CategoryCertification Category = "certification"
	CategoryAchievement   Category = "achievement"
	CategoryProject       Category = "project"
)

// Categories lists every accepted category in display order
var Categories = []Category{
	CategoryEmployment,
	CategoryEducation,
	CategorySkill,
	CategoryCertification,
	CategoryAchievement,
	CategoryProject,
}

// ParseCategory maps a loose category string onto the fixed set
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.Trim(s, "'\" ")))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

const (
	MinImportance = 1
	MaxImportance = 5
)

// ClampImportance forces an importance value into [MinImportance, MaxImportance]
func ClampImportance(v int) int {
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return v
}

// Identity is the candidate's name and known social profiles.
// Extracted once per document and never mutated afterwards.
type Identity struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	SocialLinks []string `json:"social_links"`
}

// FullName returns "First Last" without stray spaces when a part is missing
func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}
