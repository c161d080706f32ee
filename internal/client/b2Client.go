package client

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"digital-goods-store/internal/config"
)

// FileStore is the e-book binary storage boundary (Backblaze B2 native API).
// The catalog stores only the returned handle, never bytes.
type FileStore interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (*FileUploadResult, error)
	Delete(ctx context.Context, fileID, fileName string) error
}

type FileUploadResult struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
	BucketID string `json:"bucketId"`
}

type b2ClientImpl struct {
	httpClient     *http.Client
	baseApiURL     string
	keyID          string
	applicationKey string
	bucketID       string
}

func NewB2Client(cfg *config.Backblaze) FileStore {
	return &b2ClientImpl{
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // document uploads can be large
		},
		baseApiURL:     cfg.BaseApiURL,
		keyID:          cfg.KeyID,
		applicationKey: cfg.ApplicationKey,
		bucketID:       cfg.BucketID,
	}
}

type b2Auth struct {
	AuthorizationToken string `json:"authorizationToken"`
	ApiUrl             string `json:"apiUrl"`
}

func (c *b2ClientImpl) authorize(ctx context.Context) (*b2Auth, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.keyID + ":" + c.applicationKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseApiURL+"/b2api/v2/b2_authorize_account", nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("b2 authorize failed (%d): %s", resp.StatusCode, string(msg))
	}

	var res b2Auth
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode authorize response: %w", err)
	}
	return &res, nil
}

func (c *b2ClientImpl) getUploadURL(ctx context.Context, auth *b2Auth) (uploadURL, token string, err error) {
	body, _ := json.Marshal(map[string]string{"bucketId": c.bucketID})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		auth.ApiUrl+"/b2api/v2/b2_get_upload_url", bytes.NewBuffer(body))
	if err != nil {
		return "", "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", auth.AuthorizationToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("b2 get upload url failed (%d): %s", resp.StatusCode, string(msg))
	}

	var res struct {
		UploadUrl          string `json:"uploadUrl"`
		AuthorizationToken string `json:"authorizationToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", "", fmt.Errorf("decode upload url response: %w", err)
	}
	return res.UploadUrl, res.AuthorizationToken, nil
}

func (c *b2ClientImpl) Upload(ctx context.Context, data []byte, filename, contentType string) (*FileUploadResult, error) {
	auth, err := c.authorize(ctx)
	if err != nil {
		return nil, fmt.Errorf("b2 authorize: %w", err)
	}

	uploadURL, token, err := c.getUploadURL(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("b2 upload url: %w", err)
	}

	sum := sha1.Sum(data)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("X-Bz-File-Name", url.PathEscape(filename))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Bz-Content-Sha1", hex.EncodeToString(sum[:]))
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("b2 upload failed (%d): %s", resp.StatusCode, string(msg))
	}

	var res FileUploadResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &res, nil
}

func (c *b2ClientImpl) Delete(ctx context.Context, fileID, fileName string) error {
	auth, err := c.authorize(ctx)
	if err != nil {
		return fmt.Errorf("b2 authorize: %w", err)
	}

	body, _ := json.Marshal(map[string]string{
		"fileId":   fileID,
		"fileName": fileName,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		auth.ApiUrl+"/b2api/v2/b2_delete_file_version", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", auth.AuthorizationToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("b2 delete failed (%d): %s", resp.StatusCode, string(msg))
	}
	return nil
}
