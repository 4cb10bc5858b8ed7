package courseville

import (
	"bytes"
	"context"
	"fmt"

	"mcvassist-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type Announcement struct {
	Title string `json:"title"`
	// empty when the item has no body element, never omitted
	Content string `json:"content"`
}

// Announcements lists a course's announcements. Items without a
// recognizable title element are skipped, items without a body keep an
// empty content string.
func (c *Client) Announcements(ctx context.Context, cvCid int) ([]Announcement, error) {
	ctx, span := tracer.Start(ctx, "client:Announcements")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/courseville/course/%d/announcement", cvCid))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch announcement page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	announcements := []Announcement{}
	doc.Find(".announcement-item, .cv-announcement, article").Each(func(_ int, item *goquery.Selection) {
		title := item.Find(".announcement-title, h3, h4, a").First()
		if title.Length() == 0 {
			return
		}
		content := item.Find(".announcement-content, .content, p").First()

		announcements = append(announcements, Announcement{
			Title:   htmlutil.CleanText(title.Text()),
			Content: htmlutil.CleanText(content.Text()),
		})
	})

	return announcements, nil
}
