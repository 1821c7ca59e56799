package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rpupo63/studio-portfolio-backend/errs"
	"github.com/rpupo63/studio-portfolio-backend/services"
)

const (
	multipartMemory     = 32 << 20
	numberedImagePrefix = "projectImage-"
	galleryImagesField  = "galleryImages"
	coverImageField     = "coverImage"
	singleGalleryField  = "galleryImage"
)

// parseMultipart reads a multipart body of at most maxBytes.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return errs.NewInvalidContentTypeError(r.Header.Get("Content-Type"))
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewMaxBodySizeExceededError("body", maxBytes)
		}
		return errs.NewMalformedPayloadError("multipart", err)
	}
	return nil
}

func assetFromHeader(field string, fh *multipart.FileHeader) services.Asset {
	return services.Asset{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func formFile(r *http.Request, field string) *services.Asset {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	a := assetFromHeader(field, files[0])
	return &a
}

// galleryFiles collects repeated galleryImages parts followed by
// projectImage-0, projectImage-1, ... in numeric order.
func galleryFiles(r *http.Request) []services.Asset {
	if r.MultipartForm == nil {
		return nil
	}

	var assets []services.Asset
	for _, fh := range r.MultipartForm.File[galleryImagesField] {
		assets = append(assets, assetFromHeader(galleryImagesField, fh))
	}

	type numbered struct {
		n     int
		field string
	}
	var fields []numbered
	for field := range r.MultipartForm.File {
		suffix, ok := strings.CutPrefix(field, numberedImagePrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		fields = append(fields, numbered{n, field})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].n < fields[j].n })

	for _, f := range fields {
		for _, fh := range r.MultipartForm.File[f.field] {
			assets = append(assets, assetFromHeader(f.field, fh))
		}
	}
	return assets
}

// jsonListField decodes a form value holding a JSON string array.
// A missing or empty value gives nil.
func jsonListField(r *http.Request, field string) ([]string, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, errs.NewInvalidJSONError(field, err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func projectFields(r *http.Request) (services.ProjectFields, error) {
	tags, err := jsonListField(r, "tags")
	if err != nil {
		return services.ProjectFields{}, err
	}

	return services.ProjectFields{
		Title:       r.FormValue("title"),
		Location:    r.FormValue("location"),
		Type:        r.FormValue("type"),
		Category:    r.FormValue("category"),
		Program:     r.FormValue("program"),
		Client:      r.FormValue("client"),
		SiteArea:    r.FormValue("siteArea"),
		BuiltArea:   r.FormValue("builtArea"),
		Design:      r.FormValue("design"),
		Completion:  r.FormValue("completion"),
		Description: r.FormValue("description"),
		Tags:        tags,
	}, nil
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, errs.NewMissingRequiredFieldError(field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid " + field)
	}
	return id, nil
}

func projectIDParam(r *http.Request) (uuid.UUID, error) {
	return parseUUID(chi.URLParam(r, "projectID"), "projectID")
}
