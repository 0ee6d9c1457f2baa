package usage

// Free-tier caps per feature. Features not listed here are blocked outright
// (limit 0) rather than rejected with an error.
var featureLimits = map[string]int{
	"ai_resume_generate":    3,
	"resume_download":       3,
	"job_fit_analysis":      3,
	"cover_letter_generate": 1,
	"cover_letter_download": 1,
	"ats_check":             1,
}

func LimitFor(feature string) int {
	return featureLimits[feature]
}
