// Package courseville scrapes the MyCourseVille web portal through a
// pre-authenticated session cookie. The portal renders most data
// server-side with inconsistent markup and loads the rest through ajax
// "load more" endpoints, so every extraction here degrades gracefully:
// a missing element skips the item, a bad envelope ends the page loop.
package courseville

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mcvassist-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/courseville")

const DefaultBaseUrl = "https://www.mycourseville.com"

// the portal replies with html (usually a login redirect page) where
// json is expected once the session cookie has expired
var errEnvelopeDecode = errors.New("portal returned a non-json ajax response")

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl when empty
	BaseUrl string
	// a pre-authenticated browser session cookie, semicolon-separated
	// key=value pairs as produced by document.cookie
	Cookie string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetCookies(parseCookieString(opts.Cookie, baseUrl.Hostname()))
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/courseville/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

func parseCookieString(cookie, hostname string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, part := range strings.Split(cookie, ";") {
		part = strings.TrimSpace(part)
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:   strings.TrimSpace(key),
			Value:  strings.TrimSpace(value),
			Domain: "." + hostname,
			Path:   "/",
		})
	}
	return cookies
}

// ValidateSession reports whether the session cookie still maps to a
// logged-in account. The homepage shows a logout control only when it
// does.
func (c *Client) ValidateSession(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:ValidateSession")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch homepage")
		return false, err
	}
	return strings.Contains(strings.ToLower(res.String()), "logout"), nil
}

// loadMoreEnvelope is the json envelope of the portal's ajax
// endpoints: status 1 means success, 0 means failure or end of data,
// and `all` flags that every row has been rendered.
type loadMoreEnvelope struct {
	Status int  `json:"status"`
	All    bool `json:"all"`
	Data   struct {
		Html string `json:"html"`
	} `json:"data"`
}

func decodeLoadMore(body []byte) (loadMoreEnvelope, error) {
	var envelope loadMoreEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return loadMoreEnvelope{}, fmt.Errorf("%w: %s", errEnvelopeDecode, err)
	}
	return envelope, nil
}
