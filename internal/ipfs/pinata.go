// internal/ipfs/pinata.go
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/rovshanmuradov/clanker-launchpad/internal/upstream"
	"go.uber.org/zap"
)

const (
	pinFilePath = "/pinning/pinFileToIPFS"
	serviceName = "pinata"
)

var ErrMissingJWT = errors.New("pinata jwt is not configured")

// PinResult describes a pinned file.
type PinResult struct {
	CID        string      `json:"cid"`
	URI        string      `json:"uri"`
	GatewayURL string      `json:"gatewayUrl"`
	Size       int64       `json:"size"`
	Format     ImageFormat `json:"format"`
}

type pinFileResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// PinataClient uploads token images to Pinata.
type PinataClient struct {
	baseURL  string
	gateway  string
	jwt      string
	maxBytes int64
	http     *upstream.Client
	logger   *zap.Logger
}

func NewPinataClient(baseURL, gateway, jwt string, maxBytes int64, httpClient *upstream.Client, logger *zap.Logger) *PinataClient {
	return &PinataClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		gateway:  strings.TrimRight(gateway, "/"),
		jwt:      jwt,
		maxBytes: maxBytes,
		http:     httpClient,
		logger:   logger.Named("pinata"),
	}
}

// Upload validates data and pins it. Server errors are retried, client
// errors are returned as *upstream.Error.
func (p *PinataClient) Upload(ctx context.Context, filename string, data []byte) (*PinResult, error) {
	if p.jwt == "" {
		return nil, ErrMissingJWT
	}

	format, err := ValidateImage(data, p.maxBytes)
	if err != nil {
		return nil, err
	}

	filename = sanitizeFilename(filename, format)
	build := func(ctx context.Context) (*http.Request, error) {
		body, contentType, err := encodeMultipart(filename, format, data)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+pinFilePath, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+p.jwt)
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}

	start := time.Now()
	var resp pinFileResponse
	if err := p.http.DoJSON(ctx, serviceName, build, &resp); err != nil {
		return nil, err
	}
	if resp.IpfsHash == "" {
		return nil, fmt.Errorf("pinata: response has no IpfsHash")
	}

	size := resp.PinSize
	if size == 0 {
		size = int64(len(data))
	}
	result := &PinResult{
		CID:        resp.IpfsHash,
		URI:        "ipfs://" + resp.IpfsHash,
		GatewayURL: p.gateway + "/" + resp.IpfsHash,
		Size:       size,
		Format:     format,
	}

	p.logger.Info("Image pinned",
		zap.String("cid", result.CID),
		zap.String("file", filename),
		zap.Int64("size", size),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

func encodeMultipart(filename string, format ImageFormat, data []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", format.ContentType())
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	meta, err := json.Marshal(map[string]interface{}{
		"name":      filename,
		"keyvalues": map[string]string{"source": "clanker-launchpad"},
	})
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("pinataMetadata", string(meta)); err != nil {
		return nil, "", fmt.Errorf("write metadata: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

// sanitizeFilename strips directories and forces the detected extension.
func sanitizeFilename(name string, format ImageFormat) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "token-image"
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base = "token-image"
	}
	return base + format.Extension()
}
