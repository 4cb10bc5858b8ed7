package courseville

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"mcvassist-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type Material struct {
	// grouping label, empty means ungrouped
	Folder         string `json:"folder"`
	Title          string `json:"title"`
	ViewUrl        string `json:"view_url"`
	MaterialNodeId int    `json:"material_node_id"`
}

// materialSink accumulates candidates across extraction strategies,
// deduplicating on the resolved view url so a broader later pass never
// re-adds what an earlier one already found.
type materialSink struct {
	base      *Client
	seen      map[string]bool
	materials []Material
}

func newMaterialSink(c *Client) *materialSink {
	return &materialSink{
		base:      c,
		seen:      map[string]bool{},
		materials: []Material{},
	}
}

// add keeps a candidate link only when it carries both display text
// and a parsable node identifier; anything else is portal chrome.
func (s *materialSink) add(folder string, link *goquery.Selection) {
	href := link.AttrOr("href", "")
	title := htmlutil.CleanText(link.Text())

	nodeId, ok := parseContentNodeId(href)
	if !ok || title == "" {
		return
	}
	viewUrl := htmlutil.ResolveHref(s.base.BaseUrl, href)
	if viewUrl == "" || s.seen[viewUrl] {
		return
	}

	s.seen[viewUrl] = true
	s.materials = append(s.materials, Material{
		Folder:         folder,
		Title:          title,
		ViewUrl:        viewUrl,
		MaterialNodeId: nodeId,
	})
}

// CourseMaterials extracts the materials listed on a course homepage.
// The portal has shipped at least three markup generations for this
// page, so three strategies run in order and accumulate: folder
// containers first, then loose view_content_node links, and only when
// both come up empty, the dedicated materials page.
func (c *Client) CourseMaterials(ctx context.Context, cvCid int) ([]Material, error) {
	ctx, span := tracer.Start(ctx, "client:CourseMaterials")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/?q=courseville/course/%d", cvCid))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course homepage")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	sink := newMaterialSink(c)

	doc.Find(".cv-course-material-folder-container, .courseville-material-folder").
		Each(func(_ int, folder *goquery.Selection) {
			folderName := htmlutil.CleanText(
				folder.Find(".cv-course-material-folder-header, .folder-header, h3, h4").First().Text(),
			)
			folder.Find(".cv-course-material-item, .material-item, a[href*='view_content_node']").
				Each(func(_ int, item *goquery.Selection) {
					if goquery.NodeName(item) == "a" {
						sink.add(folderName, item)
						return
					}
					link := item.Find("a[href*='view_content_node'], .material-title a, a").First()
					if link.Length() == 0 {
						return
					}
					sink.add(folderName, link)
				})
		})

	doc.Find("a[href*='view_content_node'][href*='material']").
		Each(func(_ int, link *goquery.Selection) {
			sink.add("", link)
		})

	if len(sink.materials) > 0 {
		return sink.materials, nil
	}

	res, err = c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/?q=courseville/course/%d/material", cvCid))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch materials page")
		return nil, err
	}
	doc, err = goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	doc.Find("a[href*='view_content_node']").
		Each(func(_ int, link *goquery.Selection) {
			sink.add("", link)
		})

	return sink.materials, nil
}

// CourseMaterialsRaw returns the raw course homepage html for
// debugging selector drift.
func (c *Client) CourseMaterialsRaw(ctx context.Context, cvCid int) (string, error) {
	ctx, span := tracer.Start(ctx, "client:CourseMaterialsRaw")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/?q=courseville/course/%d", cvCid))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course homepage")
		return "", err
	}
	return res.String(), nil
}

type MaterialContent struct {
	CvCid          int    `json:"cv_cid"`
	MaterialNodeId int    `json:"material_node_id"`
	Title          string `json:"title"`
	DownloadUrl    string `json:"download_url"`
	PageUrl        string `json:"page_url"`
}

// MaterialContent opens a material's view page and hunts for the
// download url behind it, which is usually a presigned S3 link in an
// anchor or an embedded pdf iframe.
func (c *Client) MaterialContent(ctx context.Context, cvCid, materialNodeId int) (MaterialContent, error) {
	ctx, span := tracer.Start(ctx, "client:MaterialContent")
	defer span.End()

	path := fmt.Sprintf("/?q=courseville/course/%d/view_content_node_%d_material", cvCid, materialNodeId)
	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch material view page")
		return MaterialContent{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return MaterialContent{}, err
	}

	title := htmlutil.CleanText(doc.Find(".cv-course-material-view-title").First().Text())

	downloadUrl := ""
	if link := doc.Find("a[href*='s3.'], a[href*='amazonaws.com']").First(); link.Length() > 0 {
		downloadUrl = link.AttrOr("href", "")
	}
	if iframe := doc.Find("iframe[src*='s3.'], iframe[src*='amazonaws.com']").First(); iframe.Length() > 0 {
		downloadUrl = iframe.AttrOr("src", "")
	}
	if downloadUrl == "" {
		doc.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			href := link.AttrOr("href", "")
			if strings.Contains(strings.ToLower(href), "download") ||
				strings.Contains(href, "s3") ||
				strings.Contains(href, "amazonaws") {
				downloadUrl = href
				return false
			}
			return true
		})
	}

	return MaterialContent{
		CvCid:          cvCid,
		MaterialNodeId: materialNodeId,
		Title:          title,
		DownloadUrl:    downloadUrl,
		PageUrl:        htmlutil.ResolveHref(c.BaseUrl, path),
	}, nil
}
