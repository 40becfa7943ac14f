package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/hitoshi/salvore/internal/model"
)

// 受け付ける画像の最大サイズ(バイト)。
const maxUploadSize = 10 << 20

// UploaderInterface はアップロードハンドラーが必要とするインターフェース。
type UploaderInterface interface {
	// Enabled はアップロード先が設定されているかどうかを返す。
	Enabled() bool
	// Upload は画像を外部ストレージへ転送し、公開URLを返す。
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// UploadHandler は商品画像アップロードのHTTPハンドラー。
type UploadHandler struct {
	uploader UploaderInterface
}

// NewUploadHandler はUploadHandlerを生成する。
func NewUploadHandler(uploader UploaderInterface) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// uploadResponse はアップロード成功時のレスポンス。
type uploadResponse struct {
	URL string `json:"url"`
}

// Upload はmultipartフォームの"image"フィールドを受け取りアップロードする。
// POST /api/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.uploader.Enabled() {
		handleServiceError(w, model.NewUploadDisabledError())
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "multipartフォームの解析に失敗しました。",
			Category: "validation",
			Action:   "imageフィールドに画像ファイルを指定してください",
		})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "imageフィールドが見つかりません。",
			Category: "validation",
			Action:   "imageフィールドに画像ファイルを指定してください",
		})
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{URL: url})
}
