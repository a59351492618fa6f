package models

// ReviewResult is the analysis returned by POST /review-resume/.
type ReviewResult struct {
	AtsFriendliness      *AtsFriendliness    `json:"ats_friendliness"`
	Improvements         []string            `json:"improvements"`
	Mistakes             []string            `json:"mistakes"`
	KeywordSuitability   *KeywordSuitability `json:"keyword_suitability"`
	LinkedinOptimization []string            `json:"linkedin_optimization"`
}

type AtsFriendliness struct {
	// Score is nil when the API omitted it; zero is a valid score.
	Score       *int     `json:"score"`
	Suggestions []string `json:"suggestions"`
}

type KeywordSuitability struct {
	Explanation       string   `json:"explanation"`
	SuggestedKeywords []string `json:"suggested_keywords"`
}

// ATSScore returns the score and whether it was present.
func (r *ReviewResult) ATSScore() (int, bool) {
	if r == nil || r.AtsFriendliness == nil || r.AtsFriendliness.Score == nil {
		return 0, false
	}
	return *r.AtsFriendliness.Score, true
}

// ErrorResponse is the error body of the review API.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
