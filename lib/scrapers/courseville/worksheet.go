package courseville

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"mcvassist-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionOpenText       QuestionType = "open_text"
	QuestionUnknown        QuestionType = "unknown"
)

type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Question struct {
	// portal node identifier, distinct from Number
	Id string `json:"id"`
	// 1-based position in document order, the ordering key
	Number   int          `json:"number"`
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`
	Choices  []Choice     `json:"choices"`
	Points   int          `json:"points"`
	Summary  string       `json:"summary"`
}

type AssignmentDetail struct {
	CvCid        int    `json:"cv_cid"`
	AssignmentId int    `json:"assignment_id"`
	Title        string `json:"title"`
	// free text as printed by the portal, empty when absent
	DueDate        string     `json:"due_date"`
	Instruction    string     `json:"instruction"`
	Questions      []Question `json:"questions"`
	TotalQuestions int        `json:"total_questions"`
	HumanSummary   string     `json:"human_summary"`
}

// AssignmentDetail scrapes a worksheet page: header fields plus every
// question wrapper in document order.
func (c *Client) AssignmentDetail(ctx context.Context, cvCid, assignmentId int) (AssignmentDetail, error) {
	ctx, span := tracer.Start(ctx, "client:AssignmentDetail")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/?q=courseville/worksheet/%d/%d", cvCid, assignmentId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch worksheet page")
		return AssignmentDetail{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return AssignmentDetail{}, err
	}

	detail := AssignmentDetail{
		CvCid:        cvCid,
		AssignmentId: assignmentId,
		Title:        htmlutil.CleanText(doc.Find("#courseville-worksheet-title").First().Text()),
		// the due date only exists as screen-reader text
		DueDate:     strings.TrimSpace(parseDueDate(doc.Find(".sr-only").First().Text())),
		Instruction: strings.TrimSpace(doc.Find("#courseville-worksheet-instruction-body").First().Text()),
	}

	doc.Find(".cvqs-qstn-wrapper").Each(func(i int, wrapper *goquery.Selection) {
		detail.Questions = append(detail.Questions, questionFromWrapper(i+1, wrapper))
	})

	detail.TotalQuestions = len(detail.Questions)
	detail.HumanSummary = detail.RenderSummary()
	return detail, nil
}

func questionFromWrapper(number int, wrapper *goquery.Selection) Question {
	q := Question{
		Id:       wrapper.AttrOr("qstn_nid", ""),
		Number:   number,
		Question: htmlutil.CleanText(wrapper.Find(".cvqs-qstn-question").First().Text()),
		Type:     QuestionUnknown,
		Choices:  []Choice{},
		Points:   1,
	}

	if mc := wrapper.Find(".cvqs-answer-multiplechoice").First(); mc.Length() > 0 {
		q.Type = QuestionMultipleChoice
		mc.Find(".cvqs-answer-multiplechoice-choiceitem").Each(func(_ int, item *goquery.Selection) {
			input := item.Find("input[type='radio']").First()
			label := item.Find(".cvqs-answer-multiplechoice-content").First()
			if input.Length() == 0 || label.Length() == 0 {
				return
			}
			q.Choices = append(q.Choices, Choice{
				Value: input.AttrOr("value", ""),
				Label: htmlutil.CleanText(label.Text()),
			})
		})
	}
	// an open-text answer block wins over a multiple-choice one when a
	// wrapper somehow carries both, matching the portal's own renderer
	if wrapper.Find(".cvqs-answer-opentext").Length() > 0 {
		q.Type = QuestionOpenText
	}

	if pointText := wrapper.Find("[data-part='point']").First().Text(); pointText != "" {
		if points, err := strconv.Atoi(strings.TrimSpace(pointText)); err == nil {
			q.Points = points
		}
	}

	q.Summary = q.renderSummary()
	return q
}

func (q Question) renderSummary() string {
	head := fmt.Sprintf("Q%d. %s (%d pt)", q.Number, q.Question, q.Points)
	switch q.Type {
	case QuestionMultipleChoice:
		lines := make([]string, 0, len(q.Choices)+1)
		lines = append(lines, head)
		for i, choice := range q.Choices {
			// letters are positional display labels, they are not part
			// of the choice record
			lines = append(lines, fmt.Sprintf("  %c) %s", rune('A'+i), choice.Label))
		}
		return strings.Join(lines, "\n")
	case QuestionOpenText:
		return head + " [Text Answer]"
	default:
		return head
	}
}

// RenderSummary produces the deterministic human-readable rendering of
// the worksheet. It is a pure function of the structured fields.
func (d AssignmentDetail) RenderSummary() string {
	lines := []string{
		"📝 " + d.Title,
		"⏰ Due: " + d.DueDate,
		fmt.Sprintf("📊 Total: %d questions", len(d.Questions)),
		"",
	}
	if d.Instruction != "" && d.Instruction != "undefined" {
		lines = append(lines, "📋 Instructions: "+d.Instruction, "")
	}
	lines = append(lines, strings.Repeat("─", 40))

	questions := slices.Clone(d.Questions)
	slices.SortStableFunc(questions, func(a, b Question) int {
		return a.Number - b.Number
	})
	for _, q := range questions {
		lines = append(lines, q.Summary, "")
	}
	return strings.Join(lines, "\n")
}
