package api

import (
	"context"
	"net/http"

	"tripspend/internal/core"
	applog "tripspend/internal/log"
)

// ProcessReceipt sends a receipt through the OCR collaborator and returns
// whatever subset of fields it recognized. The OCR method and model come
// from client configuration; "builtin" needs no model. OCR gets a longer
// budget than CRUD calls.
func (c *Client) ProcessReceipt(ctx context.Context, f core.ReceiptFile) (core.ExtractedFields, error) {
	fields := [][2]string{
		{"ocrMethod", c.ocrMethod},
	}
	if c.ocrModel != "" {
		fields = append(fields, [2]string{"model", c.ocrModel})
	}

	body, contentType, err := multipartForm(fields, &f)
	if err != nil {
		return core.ExtractedFields{}, &core.CollaboratorError{Op: "process receipt", Err: err}
	}

	var out core.ExtractedFields
	if err := c.do(ctx, call{
		op:          "process receipt",
		method:      http.MethodPost,
		path:        "/ocr/process",
		body:        body,
		contentType: contentType,
		authed:      true,
		timeout:     c.ocrTimeout,
		out:         &out,
	}); err != nil {
		return core.ExtractedFields{}, err
	}

	c.logger.Info("receipt processed",
		applog.FieldFileName, f.Name,
		applog.FieldFileType, f.ContentType,
	)
	return out, nil
}
