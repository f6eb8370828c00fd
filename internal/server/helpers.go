package server

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"newsdesk/internal/models"
	"newsdesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// mapServiceError translates the error taxonomy into HTTP status codes.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case "VALIDATION_ERROR", "UPLOAD_ERROR":
		return fiber.StatusBadRequest
	case "NOT_FOUND":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// formFields returns the text fields of the request body. Multipart and
// urlencoded forms are both supported; presence in the map is what
// distinguishes "supplied" from "absent" for partial updates.
func formFields(c *fiber.Ctx) map[string][]string {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		return form.Value
	}
	fields := make(map[string][]string)
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		fields[k] = append(fields[k], string(value))
	})
	return fields
}

// fieldValue returns the first value for key and whether the field was
// supplied at all.
func fieldValue(fields map[string][]string, key string) (string, bool) {
	vals, ok := fields[key]
	if !ok || len(vals) == 0 {
		return "", ok
	}
	return vals[0], true
}

// fieldPtr returns a pointer to the first value for key, or nil when the
// field was not supplied.
func fieldPtr(fields map[string][]string, key string) *string {
	if v, ok := fieldValue(fields, key); ok {
		return &v
	}
	return nil
}

// readUpload materializes one multipart file header into an UploadedFile.
func readUpload(field string, header *multipart.FileHeader) (*service.UploadedFile, error) {
	src, err := header.Open()
	if err != nil {
		return nil, models.NewUploadError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, models.NewUploadError("Unable to read uploaded file")
	}
	return &service.UploadedFile{
		Field:    field,
		Filename: header.Filename,
		Content:  content,
	}, nil
}

// fileUploads extracts the named file field from a multipart request.
// A non-multipart request yields no files.
func fileUploads(c *fiber.Ctx, field string) ([]service.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	uploads := make([]service.UploadedFile, 0, len(headers))
	for _, header := range headers {
		upload, err := readUpload(field, header)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *upload)
	}
	return uploads, nil
}

func isJSONRequest(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}
