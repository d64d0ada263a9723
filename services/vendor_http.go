package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"speecheval/models"
	"speecheval/utils"
)

// maxResponseBytes bounds how much of a vendor response is read.
const maxResponseBytes = 4 << 20

// doVendorRequest sends req and returns the body of a 2xx response.
// Transport failures and non-2xx statuses come back as *VendorError.
func doVendorRequest(ctx context.Context, client *http.Client, vendor string, req *http.Request, size int) ([]byte, error) {
	utils.VendorRequest(ctx, vendor, req.Method, req.URL.String(), size)

	resp, err := client.Do(req)
	if err != nil {
		utils.VendorResponse(ctx, vendor, 0, "", err)
		return nil, transportError(vendor, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		utils.VendorResponse(ctx, vendor, resp.StatusCode, "", err)
		return nil, transportError(vendor, err)
	}
	utils.VendorResponse(ctx, vendor, resp.StatusCode, string(body), nil)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(vendor, resp.StatusCode, body)
	}
	return body, nil
}

// orDefault returns s unless it is empty.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// scoreOrDefault passes a decoded vendor score through, substituting the
// placeholder when the field was absent.
func scoreOrDefault(v any) any {
	if v == nil {
		return models.ScoreUnavailable
	}
	return v
}

// textOrDefault renders an optional text field. Vendors occasionally send
// another JSON type; it is rendered rather than failing the whole response.
func textOrDefault(v any, def string) string {
	if v == nil {
		return def
	}
	return describeValue(v)
}

// describeValue renders objects and arrays as JSON and scalars like scores.
func describeValue(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return models.FormatScore(v)
}
