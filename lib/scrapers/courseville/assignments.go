package courseville

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"mcvassist-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type Assignment struct {
	McvCourseId    int    `json:"mcv_course_id"`
	AssignmentId   int    `json:"assignment_id"`
	AssignmentName string `json:"assignment_name"`
	CourseNo       string `json:"course_no,omitempty"`
}

const loadMorePath = "/?q=courseville/ajax/loadmoreassignmentrows"

// The two listings page through the same endpoint with different step
// sizes and termination signals. That is how the portal behaves, not
// an inconsistency to unify: the global feed renders 10 rows a round
// and flags the end itself, the per-course table renders 5 and
// advertises its total up front.
const (
	globalFeedStep = 10
	courseListStep = 5
)

func assignmentFromLink(link *goquery.Selection, parseHref func(string) (int, int, bool)) (Assignment, bool) {
	courseId, assignmentId, ok := parseHref(link.AttrOr("href", ""))
	if !ok {
		return Assignment{}, false
	}
	return Assignment{
		McvCourseId:    courseId,
		AssignmentId:   assignmentId,
		AssignmentName: htmlutil.CleanText(link.Text()),
	}, true
}

// assignmentsFromRows parses the bare <tr> fragment a load-more
// response carries. The fragment has no table around it, so one is
// added before parsing.
func assignmentsFromRows(fragment string, parseHref func(string) (int, int, bool)) []Assignment {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<table><tbody>" + fragment + "</tbody></table>",
	))
	if err != nil {
		return nil
	}

	var assignments []Assignment
	doc.Find("tbody tr td:nth-child(2) a").Each(func(_ int, link *goquery.Selection) {
		if assignment, ok := assignmentFromLink(link, parseHref); ok {
			assignments = append(assignments, assignment)
		}
	})
	return assignments
}

// RecentAssignments pages through the global assignment feed until the
// portal signals the end or `limit` rows have been collected. Failures
// mid-feed return whatever was collected so far.
func (c *Client) RecentAssignments(ctx context.Context, limit int) ([]Assignment, error) {
	ctx, span := tracer.Start(ctx, "client:RecentAssignments")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	assignments := []Assignment{}
	for next := 0; len(assignments) < limit; next += globalFeedStep {
		res, err := c.Http.R().
			SetContext(ctx).
			SetFormData(map[string]string{"next": strconv.Itoa(next)}).
			Post(loadMorePath)
		if err != nil {
			span.RecordError(err)
			span.AddEvent("stopping collection on transport error")
			break
		}

		envelope, err := decodeLoadMore(res.Body())
		if err != nil {
			span.RecordError(err)
			span.AddEvent("stopping collection on bad envelope")
			break
		}
		if envelope.Status == 0 || envelope.Data.Html == "" {
			break
		}

		assignments = append(assignments, assignmentsFromRows(envelope.Data.Html, parseAssignmentHref)...)

		if envelope.All {
			break
		}
	}

	if len(assignments) > limit {
		assignments = assignments[:limit]
	}
	return assignments, nil
}

// CourseAssignments lists every assignment of one course: the rows
// rendered into the assignment page plus any the load-more panel still
// holds back.
func (c *Client) CourseAssignments(ctx context.Context, cvCid int) ([]Assignment, error) {
	ctx, span := tracer.Start(ctx, "client:CourseAssignments")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/courseville/course/%d/assignment", cvCid))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch assignment page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	assignments := []Assignment{}
	doc.Find("#cv-assignment-table tbody tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("td:nth-child(2) a").First()
		if link.Length() == 0 {
			return
		}
		if assignment, ok := assignmentFromLink(link, parseWorksheetHref); ok {
			assignments = append(assignments, assignment)
		}
	})

	// no panel means the page already holds every row
	panel := doc.Find("#courseville-assignment-list-loadmore-panel").First()
	if panel.Length() == 0 {
		return assignments, nil
	}
	total, _ := strconv.Atoi(panel.AttrOr("data-total", "0"))
	next, _ := strconv.Atoi(panel.AttrOr("data-next", "0"))

	for ; next < total; next += courseListStep {
		res, err := c.Http.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"cv_cid": strconv.Itoa(cvCid),
				"next":   strconv.Itoa(next),
			}).
			Post(loadMorePath)
		if err != nil {
			span.RecordError(err)
			span.AddEvent("stopping collection on transport error")
			break
		}

		envelope, err := decodeLoadMore(res.Body())
		if err != nil {
			span.RecordError(err)
			span.AddEvent("stopping collection on bad envelope")
			break
		}
		if envelope.Status != 1 {
			break
		}
		if envelope.Data.Html != "" {
			assignments = append(assignments, assignmentsFromRows(envelope.Data.Html, parseWorksheetHref)...)
		}
		if envelope.All {
			break
		}
	}

	return assignments, nil
}

// CourseAssignmentsRaw returns the head of the raw assignment page
// html for debugging selector drift.
func (c *Client) CourseAssignmentsRaw(ctx context.Context, cvCid int) (string, error) {
	ctx, span := tracer.Start(ctx, "client:CourseAssignmentsRaw")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/courseville/course/%d/assignment", cvCid))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch assignment page")
		return "", err
	}

	text := res.String()
	if len(text) > 5000 {
		text = text[:5000]
	}
	return text, nil
}
