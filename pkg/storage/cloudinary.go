package storage

import (
	"context"
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/escolinha-api/pkg/config"
)

// CloudinaryStore hosts photos on Cloudinary through its signed REST upload API.
type CloudinaryStore struct {
	client    *resty.Client
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	logger    *zap.Logger
	now       func() time.Time
}

type cloudinaryUploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

type cloudinaryDestroyResult struct {
	Result string `json:"result"`
}

type cloudinaryError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewCloudinaryStore builds a client for the configured cloud. Requests are not retried.
func NewCloudinaryStore(cfg config.CloudinaryConfig, folder string, logger *zap.Logger) (*CloudinaryStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are incomplete")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.cloudinary.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &CloudinaryStore{
		client:    client,
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		folder:    strings.Trim(folder, "/"),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Upload sends the image to Cloudinary under folder.
func (s *CloudinaryStore) Upload(ctx context.Context, blob Blob, folder string) (BlobRef, error) {
	if folder == "" {
		folder = s.folder
	}
	params := map[string]string{
		"folder":    folder,
		"timestamp": strconv.FormatInt(s.now().Unix(), 10),
	}
	form := s.signedForm(params)

	var result cloudinaryUploadResult
	var apiErr cloudinaryError
	resp, err := s.client.R().
		SetContext(ctx).
		SetFileReader("file", blob.Filename, blob.Content).
		SetFormData(form).
		SetResult(&result).
		SetError(&apiErr).
		Post(s.endpoint("upload"))
	if err != nil {
		return BlobRef{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.IsError() {
		return BlobRef{}, fmt.Errorf("cloudinary upload: status %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}

	ref := BlobRef{URL: result.SecureURL, ID: result.PublicID}
	if ref.URL == "" {
		ref.URL = result.URL
	}
	if ref.ID == "" {
		ref.ID = s.IDFromURL(ref.URL)
	}
	s.logger.Debug("photo uploaded", zap.String("public_id", ref.ID))
	return ref, nil
}

// Delete destroys the image with the given public id. A missing image is not an error.
func (s *CloudinaryStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	params := map[string]string{
		"public_id": id,
		"timestamp": strconv.FormatInt(s.now().Unix(), 10),
	}

	var result cloudinaryDestroyResult
	var apiErr cloudinaryError
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(s.signedForm(params)).
		SetResult(&result).
		SetError(&apiErr).
		Post(s.endpoint("destroy"))
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", id, err)
	}
	if resp.IsError() {
		return fmt.Errorf("cloudinary destroy %s: status %d: %s", id, resp.StatusCode(), apiErr.Error.Message)
	}
	switch result.Result {
	case "ok", "not found":
		return nil
	default:
		return fmt.Errorf("cloudinary destroy %s: unexpected result %q", id, result.Result)
	}
}

// IDFromURL derives the public id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v17/racing_dashboard/alunos/abc.jpg.
func (s *CloudinaryStore) IDFromURL(rawURL string) string {
	if strings.TrimSpace(rawURL) == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err == nil {
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		for i, seg := range segments {
			if seg != "upload" || i+1 >= len(segments) {
				continue
			}
			rest := segments[i+1:]
			if isVersionSegment(rest[0]) {
				rest = rest[1:]
			}
			if len(rest) == 0 {
				break
			}
			joined := strings.Join(rest, "/")
			return strings.TrimSuffix(joined, path.Ext(joined))
		}
	}
	name := lastSegmentWithoutExt(rawURL)
	if name == "" {
		return ""
	}
	if s.folder == "" {
		return name
	}
	return s.folder + "/" + name
}

func (s *CloudinaryStore) endpoint(action string) string {
	return fmt.Sprintf("/v1_1/%s/image/%s", s.cloudName, action)
}

func (s *CloudinaryStore) signedForm(params map[string]string) map[string]string {
	form := make(map[string]string, len(params)+2)
	for k, v := range params {
		form[k] = v
	}
	form["api_key"] = s.apiKey
	form["signature"] = signParams(params, s.apiSecret)
	return form
}

// signParams implements Cloudinary's request signature: the sorted key=value
// pairs joined by '&', suffixed with the API secret, hashed with SHA-1.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

func isVersionSegment(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	_, err := strconv.ParseUint(seg[1:], 10, 64)
	return err == nil
}
