// Package socrata queries a Socrata Open Data (SODA) dataset of buildings, such as the NYC
// building footprint and unit datasets.
package socrata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/s2"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/landmark/config"
	"go.viam.com/landmark/logging"
	"go.viam.com/landmark/services/buildings"
	rutils "go.viam.com/landmark/utils"
)

// AppTokenHeader carries the optional application token.
const AppTokenHeader = "X-App-Token"

// locationColumn is the point column within_box filters on.
const locationColumn = "location"

const maxErrorBody = 4 << 10

// Client queries one SODA resource.
type Client struct {
	httpClient *http.Client
	resource   *url.URL
	appToken   string
	timeout    time.Duration
	logger     logging.Logger
}

// NewClient returns a Client for the resource at cfg.URL.
func NewClient(cfg *config.RegistryConfig, httpClient *http.Client, logger logging.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, utils.NewConfigValidationFieldRequiredError("registry", "url")
	}
	resource, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, utils.NewConfigValidationError("registry", errors.Wrap(err, "error validating url"))
	}
	if resource.Scheme != "http" && resource.Scheme != "https" {
		return nil, utils.NewConfigValidationError("registry", errors.Errorf("url must be http or https, got %q", cfg.URL))
	}
	return &Client{
		httpClient: httpClient,
		resource:   resource,
		appToken:   cfg.AppToken,
		timeout:    cfg.Timeout,
		logger:     logger.Sublogger("socrata"),
	}, nil
}

var _ buildings.Registry = (*Client)(nil)

// QueryURL returns the request URL selecting fields of the rows located inside box. A box crossing
// the antimeridian is queried as its two halves.
func (c *Client) QueryURL(box s2.Rect, fields []string) string {
	minLat, minLon, maxLat, maxLon := buildings.Bounds(box)
	where := withinBox(minLat, minLon, maxLat, maxLon)
	if buildings.CrossesAntimeridian(box) {
		where = withinBox(minLat, minLon, maxLat, 180) + " OR " + withinBox(minLat, -180, maxLat, maxLon)
	}
	query := c.resource.Query()
	query.Set("$select", strings.Join(fields, ","))
	query.Set("$where", where)
	u := *c.resource
	u.RawQuery = query.Encode()
	return u.String()
}

// withinBox takes the north west corner then the south east corner.
func withinBox(minLat, minLon, maxLat, maxLon float64) string {
	return fmt.Sprintf("within_box(%s,%s,%s,%s,%s)",
		locationColumn, formatDegrees(maxLat), formatDegrees(minLon), formatDegrees(minLat), formatDegrees(maxLon))
}

func formatDegrees(deg float64) string {
	return strconv.FormatFloat(deg, 'f', 9, 64)
}

// Query returns the rows located inside box. Numbers are kept as json.Number or, as SODA sends
// most numeric columns, as strings.
func (c *Client) Query(ctx context.Context, box s2.Rect, fields []string) ([]map[string]interface{}, error) {
	if c.timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.QueryURL(box, fields), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", rutils.MimeTypeJSON)
	if c.appToken != "" {
		req.Header.Set(AppTokenHeader, c.appToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "registry request failed")
	}
	defer utils.UncheckedErrorFunc(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return nil, errors.Wrapf(err, "registry returned %s", resp.Status)
		}
		return nil, errors.Errorf("registry returned %s: %s", resp.Status, bytes.TrimSpace(raw))
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	var records []map[string]interface{}
	if err := decoder.Decode(&records); err != nil {
		return nil, errors.Wrap(err, "cannot decode registry response")
	}
	c.logger.Debugw("registry answered", "records", len(records))
	if records == nil {
		records = []map[string]interface{}{}
	}
	return records, nil
}
