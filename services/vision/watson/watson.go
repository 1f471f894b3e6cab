// Package watson is a client for the Watson Visual Recognition v3 classify endpoint.
package watson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/landmark/config"
	"go.viam.com/landmark/logging"
	"go.viam.com/landmark/services/vision"
	rutils "go.viam.com/landmark/utils"
	"go.viam.com/landmark/vision/classification"
)

// ClassifierType is the config type of the Watson classifier.
const ClassifierType = "watson"

// basicAuthUser is the fixed user name of IAM api key authentication.
const basicAuthUser = "apikey"

// maxErrorBody bounds how much of an error response is read into the returned error.
const maxErrorBody = 4 << 10

func init() {
	vision.RegisterClassifier(ClassifierType, func(cfg *config.ClassifierConfig, logger logging.Logger) (vision.Classifier, error) {
		return NewClient(cfg, http.DefaultClient, logger)
	})
}

// Client calls the classify endpoint with a fixed classifier id and threshold.
type Client struct {
	httpClient   *http.Client
	endpoint     string
	apiKey       string
	classifierID string
	threshold    float64
	logger       logging.Logger
}

// NewClient returns a Client for the service at cfg.URL. url and api_key are required.
func NewClient(cfg *config.ClassifierConfig, httpClient *http.Client, logger logging.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, utils.NewConfigValidationFieldRequiredError("classifier", "url")
	}
	if cfg.APIKey == "" {
		return nil, utils.NewConfigValidationFieldRequiredError("classifier", "api_key")
	}
	endpoint, err := url.JoinPath(cfg.URL, "v3", "classify")
	if err != nil {
		return nil, utils.NewConfigValidationError("classifier", errors.Wrap(err, "error validating url"))
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, utils.NewConfigValidationError("classifier", errors.Wrap(err, "error validating url"))
	}
	query := parsed.Query()
	query.Set("version", cfg.Version)
	parsed.RawQuery = query.Encode()

	return &Client{
		httpClient:   httpClient,
		endpoint:     parsed.String(),
		apiKey:       cfg.APIKey,
		classifierID: cfg.ClassifierID,
		threshold:    cfg.Threshold,
		logger:       logger.Sublogger("watson"),
	}, nil
}

type classifyResponse struct {
	Images []classifiedImage `json:"images"`
}

type classifiedImage struct {
	Classifiers []classifierResult `json:"classifiers"`
	Error       *errorInfo         `json:"error"`
}

type classifierResult struct {
	ClassifierID string        `json:"classifier_id"`
	Classes      []classResult `json:"classes"`
}

type classResult struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
}

type errorInfo struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	ErrorID     string `json:"error_id"`
}

type errorResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// Classify uploads one image and returns the classifier results of the first classified image.
// A response without images or classifiers yields no results.
func (c *Client) Classify(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error) {
	body, contentType, err := c.multipartBody(image, mimeType)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", rutils.MimeTypeJSON)
	req.SetBasicAuth(basicAuthUser, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "classify request failed")
	}
	defer utils.UncheckedErrorFunc(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var decoded classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "cannot decode classify response")
	}
	if len(decoded.Images) == 0 {
		c.logger.Debug("classify response has no images")
		return []classification.ClassifierResult{}, nil
	}
	classified := decoded.Images[0]
	if classified.Error != nil {
		return nil, errors.Errorf("image not classified (code %d): %s", classified.Error.Code, classified.Error.Description)
	}

	results := make([]classification.ClassifierResult, 0, len(classified.Classifiers))
	for _, classifier := range classified.Classifiers {
		classes := make(classification.Classifications, 0, len(classifier.Classes))
		for _, class := range classifier.Classes {
			classes = append(classes, classification.NewClassification(class.Score, class.Class))
		}
		results = append(results, classification.ClassifierResult{ClassifierID: classifier.ClassifierID, Classes: classes})
	}
	return results, nil
}

func (c *Client) multipartBody(image []byte, mimeType string) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images_file"; filename="tile.%s"`, extension(mimeType)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("threshold", strconv.FormatFloat(c.threshold, 'f', -1, 64)); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("classifier_ids", c.classifierID); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func extension(mimeType string) string {
	if mimeType == rutils.MimeTypeJPEG {
		return "jpg"
	}
	return "png"
}

func readError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return errors.Wrapf(err, "classify returned %s", resp.Status)
	}
	var decoded errorResponse
	if json.Unmarshal(raw, &decoded) == nil && decoded.Error != "" {
		return errors.Errorf("classify returned %s: %s", resp.Status, decoded.Error)
	}
	return errors.Errorf("classify returned %s: %s", resp.Status, bytes.TrimSpace(raw))
}
