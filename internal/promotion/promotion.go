// Package promotion evaluates promotion eligibility against role rules.
package promotion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ashford-hq/hr-assistant/internal/domain"
)

// ratingOrder is the ordinal performance scale, worst to best.
var ratingOrder = []string{"Below", "Meets", "Exceeds"}

func ratingIndex(r string) int {
	for i, v := range ratingOrder {
		if v == r {
			return i
		}
	}
	return -1
}

// ratingMeets reports whether the actual rating clears the required bar.
// An unrecognized rating on either side never clears it.
func ratingMeets(required, actual string) bool {
	req := ratingIndex(required)
	act := ratingIndex(actual)
	if req < 0 || act < 0 {
		return false
	}
	return act >= req
}

// InferTargetLevel returns the level the employee would be promoted
// into. Levels of the form L<digits> advance numerically; anything else
// is returned unchanged since no progression is inferable.
func InferTargetLevel(e *domain.Employee) string {
	lvl := e.Level
	// Atoi accepts signed forms like "+2", so require bare digits.
	if strings.HasPrefix(lvl, "L") && isDigits(lvl[1:]) {
		n, _ := strconv.Atoi(lvl[1:])
		return fmt.Sprintf("L%d", n+1)
	}
	return lvl
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Evaluate compares progress against the rule and renders the gap
// report: restated criteria, restated progress, then either the "Still
// needed" list or the eligibility sentence. Pure and deterministic.
func Evaluate(rule *domain.PromotionRule, progress *domain.PromotionProgress) string {
	var missing []string

	requiredRating := rule.RequiredPerformanceRating
	if requiredRating == "" {
		requiredRating = "Meets"
	}

	if progress.MonthsInLevel < rule.MinMonthsInLevel {
		missing = append(missing, fmt.Sprintf("- Months in level: %d/%d", progress.MonthsInLevel, rule.MinMonthsInLevel))
	}

	if !ratingMeets(requiredRating, progress.LastRating) {
		missing = append(missing, fmt.Sprintf("- Performance rating: %s (needs %s)", progress.LastRating, requiredRating))
	}

	if progress.ProjectsDone < rule.RequiredProjects {
		missing = append(missing, fmt.Sprintf("- Projects: %d/%d", progress.ProjectsDone, rule.RequiredProjects))
	}

	if progress.CompetencyScore < rule.RequiredCompetencyScore {
		missing = append(missing, fmt.Sprintf("- Competency score: %d/%d", progress.CompetencyScore, rule.RequiredCompetencyScore))
	}

	criteria := fmt.Sprintf(
		"Promotion criteria:\n"+
			"- Minimum months in level: %d\n"+
			"- Performance rating: %s\n"+
			"- Projects completed: %d\n"+
			"- Competency score: %d\n",
		rule.MinMonthsInLevel, requiredRating,
		rule.RequiredProjects, rule.RequiredCompetencyScore,
	)

	progressBlock := fmt.Sprintf(
		"Your current progress:\n"+
			"- Months in level: %d\n"+
			"- Performance rating: %s\n"+
			"- Projects completed: %d\n"+
			"- Competency score: %d\n",
		progress.MonthsInLevel, progress.LastRating,
		progress.ProjectsDone, progress.CompetencyScore,
	)

	if len(missing) > 0 {
		return criteria + "\n" + progressBlock + "\nStill needed:\n" + strings.Join(missing, "\n")
	}

	return criteria + "\n" + progressBlock + "\nYou appear eligible to proceed with a promotion request."
}
