package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"tripspend/internal/core"
)

// multipartForm builds a multipart/form-data body from ordered field pairs
// plus an optional receipt file part. The returned content type carries the
// boundary and must go on the request verbatim.
func multipartForm(fields [][2]string, receipt *core.ReceiptFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", kv[0], err)
		}
	}

	if receipt != nil {
		part, err := createFilePart(w, "receipt", receipt)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(receipt.Data); err != nil {
			return nil, "", fmt.Errorf("write receipt part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// createFilePart is CreateFormFile with the file's real content type
// instead of application/octet-stream; the backend routes PDFs and images
// differently.
func createFilePart(w *multipart.Writer, field string, f *core.ReceiptFile) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(f.Name)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	return w.CreatePart(h)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// expenseFields flattens an expense into the form fields the backend
// expects, cost normalized to a two-decimal string. An empty trip name is
// omitted rather than sent blank: updates of existing expenses may leave it
// out and the backend keeps the stored value. Comments are optional.
func expenseFields(e core.Expense) [][2]string {
	var fields [][2]string
	if e.TripName != "" {
		fields = append(fields, [2]string{"tripName", e.TripName})
	}
	fields = append(fields,
		[2]string{"type", e.Type},
		[2]string{"date", e.Date},
		[2]string{"vendor", e.Vendor},
		[2]string{"location", e.Location},
		[2]string{"cost", e.Cost.String()},
	)
	if e.Comments != "" {
		fields = append(fields, [2]string{"comments", e.Comments})
	}
	return fields
}
