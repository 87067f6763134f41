package uploads

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("only JPEG and PNG images are allowed")
	ErrForbidden            = errors.New("not allowed to modify this user")
	ErrMissingImage         = errors.New("image file is required")
)
