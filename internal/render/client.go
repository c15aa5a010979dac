package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

// PromotionRequest describes the graphic the external renderer composes
type PromotionRequest struct {
	Username      string `json:"username"`
	AvatarURL     string `json:"avatarUrl"`
	RoleName      string `json:"roleName"`
	IconURL       string `json:"iconUrl"`
	BackgroundURL string `json:"backgroundUrl"`
}

// Renderer is the external image-rendering collaborator. Rendering failures
// are never fatal to the role grant that triggered them.
type Renderer interface {
	RenderPromotion(ctx context.Context, req PromotionRequest) ([]byte, error)
}

type client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string) Renderer {
	return &client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *client) RenderPromotion(ctx context.Context, req PromotionRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal render request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build render request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "render request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("renderer returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Disabled is a renderer that produces no image, used when no renderer
// endpoint is configured. Announcements fall back to a plain embed.
type Disabled struct{}

func (Disabled) RenderPromotion(context.Context, PromotionRequest) ([]byte, error) {
	return nil, nil
}
