package courseville

import (
	"regexp"
	"strconv"
)

// The portal embeds every identifier in a url shape instead of a data
// attribute. These patterns are the primary source of breakage when
// the portal changes, so each one is named and tested on its own.
var (
	// trailing pair of the global assignment feed hrefs:
	// .../<mcv_course_id>/<assignment_id>
	assignmentHrefPattern = regexp.MustCompile(`/(\d+)/(\d+)$`)
	// worksheet links on the per-course assignment table:
	// .../worksheet/<mcv_course_id>/<assignment_id>
	worksheetHrefPattern = regexp.MustCompile(`/worksheet/(\d+)/(\d+)`)
	// material node identifier embedded in view urls
	contentNodePattern = regexp.MustCompile(`view_content_node_(\d+)`)
	// "2567/1" year/semester labels on the homepage
	yearSemPattern = regexp.MustCompile(`(\d{4})/(\d)`)
	// due date inside the worksheet's screen-reader-only text
	dueOnPattern = regexp.MustCompile(`Due on (.+)`)
)

func parseAssignmentHref(href string) (courseId, assignmentId int, ok bool) {
	return parseIdPair(assignmentHrefPattern, href)
}

func parseWorksheetHref(href string) (courseId, assignmentId int, ok bool) {
	return parseIdPair(worksheetHrefPattern, href)
}

func parseIdPair(pattern *regexp.Regexp, href string) (int, int, bool) {
	groups := pattern.FindStringSubmatch(href)
	if len(groups) < 3 {
		return 0, 0, false
	}
	first, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, 0, false
	}
	second, err := strconv.Atoi(groups[2])
	if err != nil {
		return 0, 0, false
	}
	return first, second, true
}

func parseContentNodeId(href string) (int, bool) {
	groups := contentNodePattern.FindStringSubmatch(href)
	if len(groups) < 2 {
		return 0, false
	}
	id, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

func parseYearSem(text string) (year, semester int, ok bool) {
	groups := yearSemPattern.FindStringSubmatch(text)
	if len(groups) < 3 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, 0, false
	}
	semester, err = strconv.Atoi(groups[2])
	if err != nil {
		return 0, 0, false
	}
	return year, semester, true
}

func parseDueDate(text string) string {
	groups := dueOnPattern.FindStringSubmatch(text)
	if len(groups) < 2 {
		return ""
	}
	return groups[1]
}
