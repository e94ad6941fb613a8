package apiclient

import (
	"encoding/json"
	"sort"

	"github.com/sendgrid/rest"

	"github.com/kymanga/vifaa/core"
)

// apiErrorBody covers the error shapes the backend emits: a "detail" string
// (mutating endpoints), an "error" string, or an "errors" field map.
type apiErrorBody struct {
	Detail string            `json:"detail"`
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors"`
}

func decodeAPIError(res *rest.Response) error {
	var body apiErrorBody
	_ = json.Unmarshal([]byte(res.Body), &body) // non-JSON bodies fall back to the status text

	detail := body.Detail
	if detail == "" {
		detail = body.Error
	}

	fields := make([]string, 0, len(body.Errors))
	for field := range body.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	fldErrs := make([]core.FieldError, 0, len(fields))
	for _, field := range fields {
		fldErrs = append(fldErrs, core.FieldError{Field: field, Error: body.Errors[field]})
	}
	return core.NewAPIError(res.StatusCode, detail, fldErrs...)
}
