package client

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"time"

	"digital-goods-store/internal/config"
)

// ImageHost is the thumbnail storage boundary. The catalog keeps only the
// returned URL and public id.
type ImageHost interface {
	Upload(ctx context.Context, data []byte, filename string) (*ImageUploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

type ImageUploadResult struct {
	URL      string
	PublicID string
}

type cloudinaryClientImpl struct {
	httpClient *http.Client
	cloudName  string
	apiKey     string
	apiSecret  string
}

func NewCloudinaryClient(cfg *config.Cloudinary) ImageHost {
	return &cloudinaryClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
	}
}

// sign builds the Cloudinary request signature: sha1 over the sorted
// key=value pairs joined with "&", with the API secret appended.
func (c *cloudinaryClientImpl) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(params[k])
	}
	buf.WriteString(c.apiSecret)

	sum := sha1.Sum(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

func (c *cloudinaryClientImpl) Upload(ctx context.Context, data []byte, filename string) (*ImageUploadResult, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{"timestamp": timestamp}
	signature := c.sign(params)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	writer.WriteField("api_key", c.apiKey)
	writer.WriteField("timestamp", timestamp)
	writer.WriteField("signature", signature)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	url := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cloudinary upload failed (%d): %s", resp.StatusCode, string(msg))
	}

	var res struct {
		SecureURL string `json:"secure_url"`
		PublicID  string `json:"public_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	return &ImageUploadResult{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (c *cloudinaryClientImpl) Destroy(ctx context.Context, publicID string) error {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}
	signature := c.sign(params)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("public_id", publicID)
	writer.WriteField("api_key", c.apiKey)
	writer.WriteField("timestamp", timestamp)
	writer.WriteField("signature", signature)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	url := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cloudinary destroy failed (%d): %s", resp.StatusCode, string(msg))
	}
	return nil
}
