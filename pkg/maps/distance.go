package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/types"
)

// Distance returns the road distance in kilometers between two points. A
// failure here is recoverable; callers fall back to straight-line distance.
func (c *Client) Distance(ctx context.Context, from, to types.LatLng) (float64, error) {
	if c == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "maps client not configured")
	}
	if from.IsZero() || to.IsZero() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "both coordinates are required")
	}

	query := url.Values{}
	query.Set("origins", fmt.Sprintf("%f,%f", from.Lat, from.Lng))
	query.Set("destinations", fmt.Sprintf("%f,%f", to.Lat, to.Lng))
	query.Set("key", c.apiKey)

	endpoint := fmt.Sprintf("%s/distancematrix/json?%s", strings.TrimRight(c.baseURL, "/"), query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build distance request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute distance request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "distance request failed")
	}

	var apiResp struct {
		Status string `json:"status"`
		Rows   []struct {
			Elements []struct {
				Status   string `json:"status"`
				Distance struct {
					Meters int `json:"value"`
				} `json:"distance"`
			} `json:"elements"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode distance response")
	}

	if apiResp.Status != "OK" || len(apiResp.Rows) == 0 || len(apiResp.Rows[0].Elements) == 0 {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("distance status %s", apiResp.Status), "distance request failed")
	}
	element := apiResp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("element status %s", element.Status), "route not found")
	}

	return float64(element.Distance.Meters) / 1000.0, nil
}
