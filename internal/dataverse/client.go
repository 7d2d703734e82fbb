// Package dataverse retrieves input rows from a Microsoft Dataverse Web API entity set.
package dataverse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/benjaminschreck/go-slides/pkg/slides/content"
)

// DefaultAuthorityHost is the Microsoft Entra ID login endpoint.
const DefaultAuthorityHost = "https://login.microsoftonline.com"

// maxPages stops runaway @odata.nextLink chains.
const maxPages = 1000

// Config holds the Dataverse connection settings
type Config struct {
	AuthorityHost string `yaml:"authority_host"`
	TenantID      string `yaml:"tenant_id"`
	ClientID      string `yaml:"client_id"`
	ClientSecret  string `yaml:"client_secret"`

	// ResourceURL is the environment URL the token is scoped to, e.g. https://org.crm.dynamics.com.
	ResourceURL string `yaml:"resource_url"`
	// APIURL is the Web API root, e.g. https://org.crm.dynamics.com/api/data/v9.2.
	APIURL string `yaml:"api_url"`

	Entity       string        `yaml:"entity"`
	Columns      []string      `yaml:"columns"`
	FilterColumn string        `yaml:"filter_column"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Validate checks that the settings needed to fetch rows are present.
func (c Config) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"tenant_id":     c.TenantID,
		"resource_url":  c.ResourceURL,
		"api_url":       c.APIURL,
		"entity":        c.Entity,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("dataverse config incomplete, missing: %s", strings.Join(missing, ", "))
	}
	if c.Timeout < 0 {
		return errors.New("dataverse timeout cannot be negative")
	}
	return nil
}

// TokenURL returns the v2 token endpoint for the tenant.
func (c Config) TokenURL() string {
	host := c.AuthorityHost
	if host == "" {
		host = DefaultAuthorityHost
	}
	return strings.TrimRight(host, "/") + "/" + c.TenantID + "/oauth2/v2.0/token"
}

// Scope returns the application scope for the resource.
func (c Config) Scope() string {
	return strings.Trim(c.ResourceURL, "/") + "/.default"
}

// TokenSource returns a client-credentials token source for cfg.
func TokenSource(ctx context.Context, cfg Config) oauth2.TokenSource {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL(),
		Scopes:       []string{cfg.Scope()},
	}
	return cc.TokenSource(ctx)
}

// Client reads rows from one entity set.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient returns a client authenticating with client credentials.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	httpClient := oauth2.NewClient(ctx, TokenSource(ctx, cfg))
	httpClient.Timeout = cfg.Timeout
	return NewClientWithHTTP(cfg, httpClient, logger), nil
}

// NewClientWithHTTP returns a client sending requests through httpClient, which is
// expected to add authorization itself.
func NewClientWithHTTP(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger}
}

// Filter builds an OData equality filter, doubling single quotes in value.
func Filter(column, value string) string {
	return column + " eq '" + strings.ReplaceAll(value, "'", "''") + "'"
}

// EntityURL returns the first page URL, selecting the configured columns and, when
// both a filter column and value are set, filtering on value.
func (c *Client) EntityURL(filterValue string) string {
	u := strings.TrimRight(c.cfg.APIURL, "/") + "/" + c.cfg.Entity

	params := url.Values{}
	if len(c.cfg.Columns) > 0 {
		params.Set("$select", strings.Join(c.cfg.Columns, ","))
	}
	if c.cfg.FilterColumn != "" && filterValue != "" {
		params.Set("$filter", Filter(c.cfg.FilterColumn, filterValue))
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Fetch retrieves every row matching filterValue, following @odata.nextLink.
func (c *Client) Fetch(ctx context.Context, filterValue string) ([]content.Row, error) {
	var rows []content.Row
	next := c.EntityURL(filterValue)

	for page := 0; next != ""; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("dataverse paging exceeded %d pages", maxPages)
		}

		body, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		pageRows, link, err := parsePage(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		rows = append(rows, pageRows...)
		if link != "" {
			if err := c.checkNextLink(link); err != nil {
				return nil, err
			}
		}
		next = link

		c.logger.Debug("dataverse page fetched",
			zap.String("entity", c.cfg.Entity),
			zap.Int("page", page),
			zap.Int("rows", len(pageRows)))
	}

	c.logger.Info("dataverse rows fetched",
		zap.String("entity", c.cfg.Entity),
		zap.Int("rows", len(rows)))
	return rows, nil
}

// checkNextLink rejects a nextLink that leaves the API origin, so the bearer
// token is only ever sent to APIURL's host.
func (c *Client) checkNextLink(link string) error {
	api, err := url.Parse(c.cfg.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid @odata.nextLink: %w", err)
	}
	if u.Scheme != api.Scheme || !strings.EqualFold(u.Host, api.Host) {
		return fmt.Errorf("refusing @odata.nextLink to %s://%s outside %s://%s", u.Scheme, u.Host, api.Scheme, api.Host)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 512)}
	}
	return body, nil
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dataverse returned status %d: %s", e.Code, e.Body)
}

// parsePage extracts the "value" rows and the next page link.
func parsePage(body []byte) ([]content.Row, string, error) {
	if !gjson.ValidBytes(body) {
		return nil, "", errors.New("invalid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, "", errors.New("expected a JSON object")
	}

	var (
		rows   []content.Row
		next   string
		rowErr error
	)
	doc.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "value":
			if !value.IsArray() {
				rowErr = errors.New(`"value" is not an array`)
				return false
			}
			rows, rowErr = RowsFromJSON(value)
		case "@odata.nextLink":
			next = value.String()
		}
		return rowErr == nil
	})
	if rowErr != nil {
		return nil, "", rowErr
	}
	return rows, next, nil
}

// RowsFromJSON converts an array of JSON objects into rows.
func RowsFromJSON(arr gjson.Result) ([]content.Row, error) {
	rows := []content.Row{}
	var err error
	arr.ForEach(func(_, item gjson.Result) bool {
		obj, ok := item.Value().(map[string]interface{})
		if !ok {
			err = fmt.Errorf("row %d is not an object", len(rows))
			return false
		}
		rows = append(rows, content.Row(obj))
		return true
	})
	return rows, err
}

// Source adapts a Client to a row source filtered by one job id.
type Source struct {
	Client *Client
	JobID  string
}

// Fetch retrieves the job's rows.
func (s *Source) Fetch(ctx context.Context) ([]content.Row, error) {
	return s.Client.Fetch(ctx, s.JobID)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
