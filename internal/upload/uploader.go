// Package upload は外部アセットホストへの画像アップロードを提供する。
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/hitoshi/salvore/internal/metrics"
	"github.com/hitoshi/salvore/internal/model"
	"github.com/hitoshi/salvore/internal/security"
)

// Config は画像アップロードの設定。
// Endpointが空の場合、アップロード機能は無効化される。
type Config struct {
	Endpoint        string
	APIKey          string
	Timeout         time.Duration
	MaxResponseSize int64
}

// Uploader は画像を外部アセットホストへ送信する。
// 送信にはSSRF防止機能付きのHTTPクライアントを使用する。
type Uploader struct {
	config    Config
	client    *http.Client
	guard     security.SSRFGuardService
	collector metrics.MetricsCollector
}

// NewUploader はUploaderの新しいインスタンスを生成する。
func NewUploader(config Config, guard security.SSRFGuardService, collector metrics.MetricsCollector) *Uploader {
	u := &Uploader{
		config:    config,
		guard:     guard,
		collector: collector,
	}
	if config.Endpoint != "" {
		u.client = guard.NewSafeClient(config.Timeout, config.MaxResponseSize)
	}
	return u
}

// Enabled はアップロード機能が有効かどうかを返す。
func (u *Uploader) Enabled() bool {
	return u.config.Endpoint != ""
}

// uploadResponse はアセットホストのレスポンスボディ。
type uploadResponse struct {
	URL string `json:"url"`
}

// Upload はファイルをアセットホストへmultipart POSTし、ホスト側のURLを返す。
// ファイル名は拡張子を除いた形で送信され、返されたURLのスキームはhttpsに書き換えられる。
// 429/5xxとネットワークエラーは指数バックオフで再試行する。
func (u *Uploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	if !u.Enabled() {
		return "", model.NewUploadDisabledError()
	}
	if err := u.guard.ValidateURL(u.config.Endpoint); err != nil {
		return "", model.NewUploadFailedError(fmt.Sprintf("不正なアップロード先です: %v", err))
	}

	contentType, body, err := buildMultipartBody(filename, content)
	if err != nil {
		u.collector.RecordUploadFailure("request")
		return "", err
	}

	start := time.Now()
	var hostedURL string
	var transient bool
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			slog.Warn("画像アップロードを再試行します",
				slog.Int("attempt", attempt+1),
				slog.String("error", err.Error()),
			)
			if waitErr := waitBackoff(ctx, attempt-1); waitErr != nil {
				err = model.NewUploadFailedError(waitErr.Error())
				break
			}
		}

		hostedURL, transient, err = u.post(ctx, contentType, body)
		if err == nil || !transient {
			break
		}
	}
	u.collector.RecordUploadLatency(time.Since(start))

	if err != nil {
		u.collector.RecordUploadFailure("request")
		slog.Warn("画像アップロードに失敗しました", slog.String("error", err.Error()))
		return "", err
	}

	u.collector.RecordUploadSuccess()
	slog.Info("画像をアップロードしました", slog.String("url", hostedURL))
	return hostedURL, nil
}

// buildMultipartBody はimageフィールド1つのmultipartボディを構築する。
// 再試行で同じボディを送れるよう、全体をメモリに保持する。
func buildMultipartBody(filename string, content io.Reader) (string, []byte, error) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", name)
	if err != nil {
		return "", nil, model.NewUploadFailedError(err.Error())
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", nil, model.NewUploadFailedError(err.Error())
	}
	if err := writer.Close(); err != nil {
		return "", nil, model.NewUploadFailedError(err.Error())
	}

	return writer.FormDataContentType(), body.Bytes(), nil
}

// post はボディを1回送信する。第2戻り値は失敗が再試行に値するかを示す。
func (u *Uploader) post(ctx context.Context, contentType string, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, model.NewUploadFailedError(err.Error())
	}
	req.Header.Set("Content-Type", contentType)
	if u.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.config.APIKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		// ネットワークエラーは再試行対象
		return "", true, model.NewUploadFailedError(err.Error())
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, u.config.MaxResponseSize)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return "", true, model.NewUploadFailedError(err.Error())
	}
	if result := classifyStatus(resp.StatusCode); result != postResultOK {
		return "", result == postResultTransient,
			model.NewUploadFailedError(fmt.Sprintf("アセットホストがステータス %d を返しました", resp.StatusCode))
	}

	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.URL == "" {
		// JSONでない場合はボディ全体をURLとして扱う。
		parsed.URL = strings.TrimSpace(string(raw))
	}
	if parsed.URL == "" {
		return "", false, model.NewUploadFailedError("アセットホストのレスポンスにURLが含まれていません")
	}

	return forceHTTPS(parsed.URL), false, nil
}

// forceHTTPS はURLのスキームをhttpsに書き換える。
func forceHTTPS(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") {
		return "https://" + strings.TrimPrefix(rawURL, "http://")
	}
	return rawURL
}
