package model

import "math"

// ClaimResult is the scored outcome of one claim
type ClaimResult struct {
	Claim       string     `json:"claim"`
	Category    Category   `json:"category"`
	Importance  int        `json:"importance"`
	Score       int        `json:"score"` // 0-100
	Evidence    []Evidence `json:"evidence"`
	Explanation string     `json:"explanation"`
}

// VerificationResult is the terminal artifact of one verification run.
// It is written once to the cache, keyed by the document content hash.
type VerificationResult struct {
	Success      bool          `json:"success"`
	OverallScore int           `json:"overall_score"`
	Claims       []ClaimResult `json:"claims"`
	ResumeName   string        `json:"resume_name"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	SocialLinks  []string      `json:"social_links"`
}

// Identity reconstructs the candidate identity stored in the result
func (r VerificationResult) Identity() Identity {
	return Identity{FirstName: r.FirstName, LastName: r.LastName, SocialLinks: r.SocialLinks}
}

// OverallScore is the importance-weighted mean of the claim scores,
// rounded half to even. It is 0 for an empty set or zero total importance.
func OverallScore(results []ClaimResult) int {
	if len(results) == 0 {
		return 0
	}

	totalWeight := 0
	weightedSum := 0
	for _, r := range results {
		totalWeight += r.Importance
		weightedSum += r.Score * r.Importance
	}
	if totalWeight == 0 {
		return 0
	}

	return int(math.RoundToEven(float64(weightedSum) / float64(totalWeight)))
}
