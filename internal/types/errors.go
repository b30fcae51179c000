package types

import "errors"

// Error kinds shared by the controllers. Handlers map them to status codes
// with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrPreviewMode  = errors.New("preview mode")
)

const (
	PreviewModeBanner     = "Preview Mode"
	GameNotFoundMessage   = "Game not found"
	DatabaseErrorMessage  = "Database Error"
	AuthRequiredMessage   = "Authentication required"
	LikesPreviewMessage   = "Database not configured. Likes are not available in preview mode."
	CommentPreviewMessage = "Comments are not available in preview mode. Please set up the database."
	ReplyPreviewMessage   = "Replies are not available in preview mode. Please set up the database."
	PlaysPreviewMessage   = "Recently played games are not available in preview mode."
	PushPreviewMessage    = "Push subscriptions are not available in preview mode."
)
