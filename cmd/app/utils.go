package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/imagestore"
)

type envelope map[string]any

func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	json, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(json)

	return nil
}

// writeSuccess writes data with "success": true merged in.
func (app *application) writeSuccess(w http.ResponseWriter, r *http.Request, status int, data envelope) {
	env := envelope{"success": true}
	for key, value := range data {
		env[key] = value
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("request body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("request body contains an invalid value for the %q field", unmarshalTypeError.Field)
			}
			return fmt.Errorf("request body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("request body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("request body contains unknown field %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}
	err = decoder.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("request body must only contain a single JSON value")
	}
	return nil
}

// readIDParam parses the named path parameter. A malformed id is reported as common.ErrRecordNotFound.
func (app *application) readIDParam(r *http.Request, key string) (uuid.UUID, error) {
	params := httprouter.ParamsFromContext(r.Context())

	return common.ParseID(params.ByName(key))
}

func (app *application) readLimitOffsetParams(r *http.Request) (*int, *int, error) {
	params := r.URL.Query()

	var limit, offset *int

	if params.Get("limit") != "" {
		l, err := strconv.Atoi(params.Get("limit"))
		if err != nil {
			return nil, nil, errors.New("invalid limit parameter")
		}
		limit = &l
	}

	if params.Get("offset") != "" {
		o, err := strconv.Atoi(params.Get("offset"))
		if err != nil {
			return nil, nil, errors.New("invalid offset parameter")
		}
		offset = &o
	}

	return limit, offset, nil
}

type blogForm struct {
	Title       string
	Description string
	Image       *imagestore.Upload
}

// parseBlogForm reads a multipart blog submission. The image part is optional here; callers decide whether it is required.
func (app *application) parseBlogForm(w http.ResponseWriter, r *http.Request) (*blogForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, imagestore.MaxImageSize+1_048_576)

	err := r.ParseMultipartForm(imagestore.MaxImageSize)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesError):
			return nil, imagestore.ErrImageTooLarge
		case errors.Is(err, http.ErrNotMultipart):
			return nil, errors.New("request body must be multipart/form-data")
		default:
			return nil, err
		}
	}

	form := &blogForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return form, nil
		}
		return nil, err
	}
	defer file.Close()

	if header.Size > imagestore.MaxImageSize {
		return nil, imagestore.ErrImageTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, imagestore.MaxImageSize+1))
	if err != nil {
		return nil, err
	}

	form.Image = &imagestore.Upload{
		Filename:    filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	return form, nil
}

type updateBlogRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// parseBlogUpdate reads an update as multipart or JSON. Any other body, or none, carries no fields.
// The returned form is never nil, even alongside an error.
func (app *application) parseBlogUpdate(w http.ResponseWriter, r *http.Request) (*blogForm, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		form, err := app.parseBlogForm(w, r)
		if err != nil {
			return &blogForm{}, err
		}
		return form, nil
	case "application/json":
		if r.ContentLength == 0 {
			return &blogForm{}, nil
		}

		var input updateBlogRequest

		err := app.parseJSON(w, r, &input)
		if err != nil {
			return &blogForm{}, err
		}
		return &blogForm{Title: input.Title, Description: input.Description}, nil
	default:
		return &blogForm{}, nil
	}
}
