package repository

import (
	"errors"

	"github.com/hitoshi/salvore/internal/model"
)

// asAPIError はerrors.Asの薄いラッパー。テストの検証を短く書くためのヘルパー。
func asAPIError(err error, target **model.APIError) bool {
	return errors.As(err, target)
}
