package access

import (
	"net/http"
	apperrors "parkbook/pkg/errors"
)

const CodeAccessDenied = "ACCESS_DENIED"

// ErrAccessDenied is returned by every Require* predicate.
var ErrAccessDenied = apperrors.New(CodeAccessDenied, "You are not allowed to perform this action", http.StatusForbidden)
