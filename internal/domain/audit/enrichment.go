package audit

import (
	"context"

	appctx "metalstock/internal/core/context"
)

// EnrichCreatedBy sets *createdBy from the request principal when it is nil.
func EnrichCreatedBy(ctx context.Context, createdBy **string) {
	if createdBy == nil || *createdBy != nil {
		return
	}
	if uid := appctx.GetUserID(ctx); uid != "" {
		*createdBy = &uid
	}
}
