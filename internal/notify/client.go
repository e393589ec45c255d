package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client calls a remote notify-yes endpoint.
type Client struct {
	URL  string
	HTTP *http.Client
}

func NewClient(url string) *Client {
	return &Client{URL: url, HTTP: &http.Client{}}
}

func (c *Client) NotifyAcceptance(ctx context.Context, pageID string, screenshotURL, receiverName *string) error {
	body, err := json.Marshal(Request{PageID: pageID, ScreenshotURL: screenshotURL, ReceiverName: receiverName})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("notify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
