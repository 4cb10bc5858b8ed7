package courseville

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

type Course struct {
	CvCid    int    `json:"cv_cid"`
	CourseNo string `json:"course_no"`
	Title    string `json:"title"`
	Year     int    `json:"year"`
	Semester int    `json:"semester"`
}

// flexInt accepts both 123 and "123". The portal emits either form
// depending on the endpoint revision.
type flexInt int

func (f *flexInt) UnmarshalJSON(raw []byte) error {
	s := strings.Trim(string(raw), `"`)
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

type courseFilterEnvelope struct {
	Status int `json:"status"`
	Data   []struct {
		CvCid    flexInt `json:"cv_cid"`
		CourseNo string  `json:"course_no"`
		Title    string  `json:"title"`
		Year     flexInt `json:"year"`
		Semester flexInt `json:"semester"`
	} `json:"data"`
}

func (c *Client) postCourseFilter(ctx context.Context, year, semester int) (*resty.Response, error) {
	return c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"yearsem": fmt.Sprintf("%d/%d", year, semester),
			"role":    "student",
			"type":    "course",
		}).
		Post("/courseville/ajax/cvhomepanel_get_filter")
}

// Courses returns the enrolled courses for the given year/semester.
// Pass zero for either to infer the current semester from the homepage.
func (c *Client) Courses(ctx context.Context, year, semester int) ([]Course, error) {
	ctx, span := tracer.Start(ctx, "client:Courses")
	defer span.End()

	if year <= 0 || semester <= 0 {
		var err error
		year, semester, err = c.resolveYearSem(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to resolve current semester")
			return nil, err
		}
	}

	res, err := c.postCourseFilter(ctx, year, semester)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course filter")
		return nil, err
	}

	var envelope courseFilterEnvelope
	if err := json.Unmarshal(res.Body(), &envelope); err != nil {
		// an expired session answers with an html login page, which
		// reads the same as having no courses
		span.AddEvent("course filter response is not json")
		return []Course{}, nil
	}
	if envelope.Status != 1 {
		return []Course{}, nil
	}

	courses := make([]Course, 0, len(envelope.Data))
	for _, entry := range envelope.Data {
		courses = append(courses, Course{
			CvCid:    int(entry.CvCid),
			CourseNo: strings.TrimSpace(entry.CourseNo),
			Title:    strings.TrimSpace(entry.Title),
			Year:     int(entry.Year),
			Semester: int(entry.Semester),
		})
	}
	return courses, nil
}

// CoursesRaw returns the undecoded course filter payload for
// debugging. A non-json body yields an explicit error marker rather
// than an error value, so the caller can inspect what came back.
func (c *Client) CoursesRaw(ctx context.Context, year, semester int) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "client:CoursesRaw")
	defer span.End()

	res, err := c.postCourseFilter(ctx, year, semester)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course filter")
		return nil, err
	}

	body := res.Body()
	if json.Valid(body) {
		return json.RawMessage(body), nil
	}

	text := res.String()
	if len(text) > 500 {
		text = text[:500]
	}
	marker, err := json.Marshal(map[string]string{
		"error": "Failed to parse JSON",
		"text":  text,
	})
	if err != nil {
		return nil, err
	}
	return marker, nil
}

// resolveYearSem infers the active year/semester from the homepage's
// semester dropdown, falling back to the first course group header and
// finally to the wall clock.
func (c *Client) resolveYearSem(ctx context.Context) (int, int, error) {
	ctx, span := tracer.Start(ctx, "resolveYearSem")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch homepage")
		return 0, 0, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse homepage html")
		return 0, 0, err
	}

	if option := doc.Find("#student-yearsem-select option").First(); option.Length() > 0 {
		if year, semester, ok := parseYearSem(option.Text()); ok {
			return year, semester, nil
		}
	}

	header := doc.Find("section.courseville-courseicongroup").First().
		Find("div.courseville-header").First()
	if header.Length() > 0 {
		if year, semester, ok := parseYearSem(header.Text()); ok {
			return year, semester, nil
		}
	}

	year, semester := currentYearSem(time.Now())
	return year, semester, nil
}

// currentYearSem maps the wall clock onto the portal's trimester
// scheme. The year is CE, not BE.
func currentYearSem(now time.Time) (int, int) {
	switch {
	case now.Month() >= 8:
		return now.Year(), 1
	case now.Month() <= 5:
		return now.Year(), 2
	default:
		return now.Year(), 3
	}
}

// FindCourse fuzzy-matches a course number or title against the
// current course list. It exists so tool callers can say "software eng"
// instead of memorizing cv_cid values.
func (c *Client) FindCourse(ctx context.Context, query string) (Course, bool, error) {
	ctx, span := tracer.Start(ctx, "client:FindCourse")
	defer span.End()

	courses, err := c.Courses(ctx, 0, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list courses")
		return Course{}, false, err
	}

	best, bestScore := Course{}, 0.0
	needle := strings.ToLower(strings.TrimSpace(query))
	for _, course := range courses {
		score := matchr.JaroWinkler(needle, strings.ToLower(course.CourseNo), false)
		if titleScore := matchr.JaroWinkler(needle, strings.ToLower(course.Title), false); titleScore > score {
			score = titleScore
		}
		if score > bestScore {
			best, bestScore = course, score
		}
	}

	const matchThreshold = 0.75
	return best, bestScore >= matchThreshold, nil
}
