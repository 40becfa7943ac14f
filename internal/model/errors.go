package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, catalog, cart, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeCartItemNotFound = "CART_ITEM_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeDuplicateEmail   = "DUPLICATE_EMAIL"
	ErrCodeInvalidEmail     = "INVALID_EMAIL"
	ErrCodeInvalidPrice     = "INVALID_PRICE"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeEmptyCart        = "EMPTY_CART"
	ErrCodeInvalidDelivery  = "INVALID_DELIVERY_OPTION"
	ErrCodeUploadDisabled   = "UPLOAD_DISABLED"
	ErrCodeUploadFailed     = "UPLOAD_FAILED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeCSRFValidation   = "CSRF_VALIDATION_FAILED"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
)

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError(productID string) *APIError {
	return &APIError{
		Code:     ErrCodeProductNotFound,
		Message:  fmt.Sprintf("指定された商品が見つかりません: %s", productID),
		Category: "catalog",
		Action:   "商品IDを確認してください。",
	}
}

// NewCartItemNotFoundError はカート明細未検出エラーを生成する。
func NewCartItemNotFoundError(productID string) *APIError {
	return &APIError{
		Code:     ErrCodeCartItemNotFound,
		Message:  fmt.Sprintf("カートに該当する商品がありません: %s", productID),
		Category: "cart",
		Action:   "カートの内容を確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
// 重複チェックは登録時のみ行われる。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "validation",
		Action:   "別のメールアドレスで登録するか、ログインしてください。",
	}
}

// NewInvalidEmailError はログイン時のメールアドレス不一致エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスが正しくありません。",
		Category: "auth",
		Action:   "登録済みのメールアドレスを入力してください。",
	}
}

// NewInvalidPriceError は価格の数値変換に失敗した場合のエラーを生成する。
func NewInvalidPriceError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPrice,
		Message:  fmt.Sprintf("価格を数値として解釈できません: %s", raw),
		Category: "validation",
		Action:   "価格には0以上の数値を指定してください。",
	}
}

// NewInvalidQuantityError は数量が不正な場合のエラーを生成する。
func NewInvalidQuantityError(quantity int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidQuantity,
		Message:  fmt.Sprintf("数量が不正です: %d", quantity),
		Category: "validation",
		Action:   "数量には1以上の整数を指定してください。",
	}
}

// NewEmptyCartError はカートが空のまま注文しようとした場合のエラーを生成する。
func NewEmptyCartError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyCart,
		Message:  "カートが空です。",
		Category: "cart",
		Action:   "商品をカートに追加してから注文してください。",
	}
}

// NewInvalidDeliveryOptionError は配送方法が不正な場合のエラーを生成する。
func NewInvalidDeliveryOptionError(option string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDelivery,
		Message:  fmt.Sprintf("無効な配送方法です: %s", option),
		Category: "validation",
		Action:   "配送方法には delivery または pickup を指定してください。",
	}
}

// NewUploadDisabledError は画像アップロードが未設定の場合のエラーを生成する。
func NewUploadDisabledError() *APIError {
	return &APIError{
		Code:     ErrCodeUploadDisabled,
		Message:  "画像アップロードは現在利用できません。",
		Category: "system",
		Action:   "アップロード先エンドポイントの設定を確認してください。",
	}
}

// NewUploadFailedError はアップロード失敗エラーを生成する。
func NewUploadFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUploadFailed,
		Message:  fmt.Sprintf("画像のアップロードに失敗しました: %s", reason),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewCSRFValidationError はCSRFトークン検証失敗のエラーを生成する。
func NewCSRFValidationError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFValidation,
		Message:  "CSRFトークンの検証に失敗しました。",
		Category: "auth",
		Action:   "CSRFトークンを取得し直してください。",
	}
}

// NewRateLimitError はレート制限超過のエラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}
