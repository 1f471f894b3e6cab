package testutils

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

var (
	waitDur = 5 * time.Second
	pollDur = 10 * time.Millisecond
)

// WaitHealthy polls GET baseURL/health until the landmark server answers 200 OK.
func WaitHealthy(baseURL string) error {
	healthURL, err := url.JoinPath(baseURL, "health")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), waitDur)
	defer cancel()

	lastErr := errors.New("timed out")
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			utils.UncheckedError(resp.Body.Close())
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			err = errors.Errorf("health check returned %s", resp.Status)
		}
		lastErr = err
		if !utils.SelectContextOrWait(ctx, pollDur) {
			return errors.Wrapf(lastErr, "%s never became healthy", baseURL)
		}
	}
}
