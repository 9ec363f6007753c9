package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"

	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/domain/label"
	appLogger "github.com/prasetyowira/qrlabel/infrastructure/logger"
	"github.com/prasetyowira/qrlabel/infrastructure/preview"
	"github.com/prasetyowira/qrlabel/infrastructure/qrcode"
)

// LabelService is the part of label.Service the handlers use
type LabelService interface {
	Generate(ctx context.Context, req label.GenerateRequest) (*label.Result, error)
	GenerateFromImage(ctx context.Context, img image.Image, req label.GenerateRequest) (*label.Result, error)
	Decode(ctx context.Context, img image.Image) (string, error)
	Preview(ctx context.Context, req label.GenerateRequest) (*label.Label, error)
	PreviewFromImage(ctx context.Context, img image.Image, req label.GenerateRequest) (*label.Label, error)
	ListRuns(ctx context.Context, limit int) ([]label.Run, error)
}

// QRGenerator renders a standalone QR code PNG
type QRGenerator interface {
	RenderPNG(payload string, size int) ([]byte, error)
}

// Handler contains service dependencies for API handlers
type Handler struct {
	service        LabelService
	qrGenerator    QRGenerator
	maxUploadBytes int64
}

// CreateLabelsRequest is the request object for CreateLabels endpoint.
// A missing count means a single label.
type CreateLabelsRequest struct {
	Text   string `json:"text"`
	Count  *int   `json:"count,omitempty"`
	Layout string `json:"layout,omitempty"`
	label.Options
}

// DecodeResponse is the response for the decode endpoint
type DecodeResponse struct {
	Text string `json:"text"`
}

// RunsResponse is the response for the run history endpoint
type RunsResponse struct {
	Runs []label.Run `json:"runs"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// NewHandler creates a new API handler
func NewHandler(service LabelService, qrGenerator QRGenerator, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		qrGenerator:    qrGenerator,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateLabels handles label generation from typed text. With
// ?format=png it returns a preview of the first label instead of the PDF.
func (h *Handler) CreateLabels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appLogger.CtxDebug(ctx, constant.MsgHandlingCreateRequest, appLogger.LoggerInfo{
		ContextFunction: constant.CtxCreateLabels,
		Data: map[string]interface{}{
			constant.DataFormat: responseFormat(r),
		},
	})

	var body CreateLabelsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		appLogger.CtxError(ctx, "Error decoding request body", appLogger.LoggerInfo{
			ContextFunction: constant.CtxCreateLabels,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIDecodeRequest,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})

		WriteJSONError(w, constant.RespInvalidRequest, http.StatusBadRequest)
		return
	}

	count := 1
	if body.Count != nil {
		count = *body.Count
	}
	req, err := newGenerateRequest(body.Text, count, body.Layout, body.Options)
	if err != nil {
		h.writeServiceError(ctx, w, constant.CtxCreateLabels, err)
		return
	}

	if isPreview(r) {
		lbl, err := h.service.Preview(ctx, req)
		if err != nil {
			h.writeServiceError(ctx, w, constant.CtxCreateLabels, err)
			return
		}
		h.writePreview(ctx, w, constant.CtxCreateLabels, lbl)
		return
	}

	result, err := h.service.Generate(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, constant.CtxCreateLabels, err)
		return
	}
	h.writePDF(ctx, w, constant.CtxCreateLabels, result)
}

// UploadLabels handles label generation from an uploaded QR image. The
// multipart form carries the image plus the same fields as CreateLabels.
func (h *Handler) UploadLabels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appLogger.CtxDebug(ctx, constant.MsgHandlingUploadRequest, appLogger.LoggerInfo{
		ContextFunction: constant.CtxUploadLabels,
		Data: map[string]interface{}{
			constant.DataFormat: responseFormat(r),
		},
	})

	img, ok := h.readUpload(w, r, constant.CtxUploadLabels)
	if !ok {
		return
	}

	req, err := formGenerateRequest(r)
	if err != nil {
		h.writeServiceError(ctx, w, constant.CtxUploadLabels, err)
		return
	}

	if isPreview(r) {
		lbl, err := h.service.PreviewFromImage(ctx, img, req)
		if err != nil {
			h.writeServiceError(ctx, w, constant.CtxUploadLabels, err)
			return
		}
		h.writePreview(ctx, w, constant.CtxUploadLabels, lbl)
		return
	}

	result, err := h.service.GenerateFromImage(ctx, img, req)
	if err != nil {
		h.writeServiceError(ctx, w, constant.CtxUploadLabels, err)
		return
	}
	h.writePDF(ctx, w, constant.CtxUploadLabels, result)
}

// DecodeUpload returns the payload of the QR code in an uploaded image
func (h *Handler) DecodeUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appLogger.CtxDebug(ctx, constant.MsgHandlingDecodeRequest, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDecodeUpload,
	})

	img, ok := h.readUpload(w, r, constant.CtxDecodeUpload)
	if !ok {
		return
	}

	text, err := h.service.Decode(ctx, img)
	if err != nil {
		h.writeServiceError(ctx, w, constant.CtxDecodeUpload, err)
		return
	}

	WriteJSON(w, DecodeResponse{Text: text}, http.StatusOK)
}

// ListRuns returns the most recent runs, newest first
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appLogger.CtxDebug(ctx, constant.MsgHandlingRunsRequest, appLogger.LoggerInfo{
		ContextFunction: constant.CtxListRunsHandler,
	})

	limit := constant.DefaultRunsListLimit
	if v := r.URL.Query().Get(constant.QueryLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteJSONError(w, fmt.Sprintf("limit must be a positive integer, got %q", v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.service.ListRuns(ctx, limit)
	if err != nil {
		appLogger.CtxError(ctx, "Error listing runs", appLogger.LoggerInfo{
			ContextFunction: constant.CtxListRunsHandler,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIServiceError,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})

		WriteJSONError(w, constant.RespListRunsFailed, http.StatusInternalServerError)
		return
	}

	WriteJSON(w, RunsResponse{Runs: runs}, http.StatusOK)
}

// QRCode renders a bare QR code PNG for ?text=, sized by ?size=
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	text := query.Get(constant.FieldText)

	appLogger.CtxDebug(ctx, constant.MsgHandlingQRCodeRequest, appLogger.LoggerInfo{
		ContextFunction: constant.CtxQRCodeHandler,
		Data: map[string]interface{}{
			constant.DataPayload: text,
		},
	})

	if text == "" {
		WriteJSONError(w, constant.ErrEmptyBase, http.StatusBadRequest)
		return
	}

	size := constant.DefaultQRCodeSize
	if v := query.Get(constant.FieldSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < constant.MinQRCodeSize || n > constant.MaxQRCodeSize {
			WriteJSONError(w, fmt.Sprintf("size must be between %d and %d", constant.MinQRCodeSize, constant.MaxQRCodeSize), http.StatusBadRequest)
			return
		}
		size = n
	}

	png, err := h.qrGenerator.RenderPNG(text, size)
	if err != nil {
		appLogger.CtxError(ctx, "Failed to generate QR code", appLogger.LoggerInfo{
			ContextFunction: constant.CtxQRCodeHandler,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeQREncode,
				Message: err.Error(),
				Type:    constant.ErrTypeRender,
			},
			Data: map[string]interface{}{
				constant.DataPayload: text,
				constant.DataSize:    size,
			},
		})

		WriteJSONError(w, constant.RespQRCodeFailed, http.StatusInternalServerError)
		return
	}

	w.Header().Set(constant.HeaderContentType, constant.ContentTypePNG)
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// readUpload parses the multipart form and decodes the image field. On
// failure it writes the error response and returns false.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request, fn string) (image.Image, bool) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		appLogger.CtxWarn(ctx, "Error parsing multipart form", appLogger.LoggerInfo{
			ContextFunction: fn,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIUpload,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteJSONError(w, constant.RespUploadTooLarge, http.StatusRequestEntityTooLarge)
			return nil, false
		}
		WriteJSONError(w, constant.RespInvalidRequest, http.StatusBadRequest)
		return nil, false
	}

	file, header, err := r.FormFile(constant.FieldImage)
	if err != nil {
		WriteJSONError(w, constant.RespImageRequired, http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	img, err := qrcode.DecodeImage(file)
	if err != nil {
		appLogger.CtxWarn(ctx, "Uploaded file is not a readable image", appLogger.LoggerInfo{
			ContextFunction: fn,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeQRImage,
				Message: err.Error(),
				Type:    constant.ErrTypeDecode,
			},
			Data: map[string]interface{}{
				constant.DataPath: header.Filename,
				constant.DataSize: header.Size,
			},
		})

		h.writeServiceError(ctx, w, fn, err)
		return nil, false
	}

	return img, true
}

// writeServiceError maps pipeline errors onto HTTP statuses
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, fn string, err error) {
	switch {
	case errors.Is(err, label.ErrInvalidInput):
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, label.ErrNotFound):
		WriteJSONError(w, constant.ErrQRNotFound, http.StatusUnprocessableEntity)
	default:
		appLogger.CtxError(ctx, "Error generating labels", appLogger.LoggerInfo{
			ContextFunction: fn,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIServiceError,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})

		WriteJSONError(w, constant.RespGenerateFailed, http.StatusInternalServerError)
	}
}

func (h *Handler) writePDF(ctx context.Context, w http.ResponseWriter, fn string, result *label.Result) {
	w.Header().Set(constant.HeaderContentType, constant.ContentTypePDF)
	w.Header().Set(constant.HeaderContentDisposition, attachment(constant.FileNameLabelsPDF))
	w.Header().Set(constant.HeaderRunID, result.RunID)
	w.Header().Set(constant.HeaderLabelCount, strconv.Itoa(len(result.Payloads)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(result.Bytes); err != nil {
		appLogger.CtxWarn(ctx, constant.RespWriteFailed, appLogger.LoggerInfo{
			ContextFunction: fn,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIWriteResponse,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
			Data: map[string]interface{}{
				constant.DataRunID: result.RunID,
			},
		})
	}
}

func (h *Handler) writePreview(ctx context.Context, w http.ResponseWriter, fn string, lbl *label.Label) {
	var buf bytes.Buffer
	if err := preview.EncodePNG(&buf, lbl.Canvas, preview.DefaultMaxSide); err != nil {
		appLogger.CtxError(ctx, "Failed to encode preview", appLogger.LoggerInfo{
			ContextFunction: fn,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIWriteResponse,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})

		WriteJSONError(w, constant.RespGenerateFailed, http.StatusInternalServerError)
		return
	}

	w.Header().Set(constant.HeaderContentType, constant.ContentTypePNG)
	w.Header().Set(constant.HeaderContentDisposition, "inline; filename=\""+constant.FileNamePreviewPNG+"\"")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func isPreview(r *http.Request) bool {
	return responseFormat(r) == constant.FormatPNG
}

// responseFormat is FormatPNG for ?format=png and FormatPDF otherwise
func responseFormat(r *http.Request) string {
	if r.URL.Query().Get(constant.QueryFormat) == constant.FormatPNG {
		return constant.FormatPNG
	}
	return constant.FormatPDF
}

func attachment(filename string) string {
	return "attachment; filename=\"" + filename + "\""
}

// newGenerateRequest validates the transport-level fields
func newGenerateRequest(text string, count int, layout string, opts label.Options) (label.GenerateRequest, error) {
	l, err := label.ParseLayout(layout)
	if err != nil {
		return label.GenerateRequest{}, err
	}
	return label.GenerateRequest{
		Text:    text,
		Count:   count,
		Layout:  l,
		Options: opts,
	}, nil
}

// formGenerateRequest reads count, layout and slider fields from a
// parsed multipart form
func formGenerateRequest(r *http.Request) (label.GenerateRequest, error) {
	count := 1
	if v := r.FormValue(constant.FieldCount); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return label.GenerateRequest{}, badField(constant.FieldCount, v)
		}
		count = n
	}

	var opts label.Options
	var err error
	if opts.QRWidthRatio, err = formFloat(r, constant.FieldQRWidthRatio); err != nil {
		return label.GenerateRequest{}, err
	}
	if opts.FontWidthRatio, err = formFloat(r, constant.FieldFontWidthRatio); err != nil {
		return label.GenerateRequest{}, err
	}
	if opts.BorderThickness, err = formInt(r, constant.FieldBorderThickness); err != nil {
		return label.GenerateRequest{}, err
	}
	if opts.VerticalSpacing, err = formInt(r, constant.FieldVerticalSpacing); err != nil {
		return label.GenerateRequest{}, err
	}

	return newGenerateRequest(r.FormValue(constant.FieldText), count, r.FormValue(constant.FieldLayout), opts)
}

func formFloat(r *http.Request, field string) (*float64, error) {
	v := r.FormValue(field)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, badField(field, v)
	}
	return &f, nil
}

func formInt(r *http.Request, field string) (*int, error) {
	v := r.FormValue(field)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, badField(field, v)
	}
	return &n, nil
}

func badField(field, value string) error {
	return fmt.Errorf("%w: %s must be a number, got %q", label.ErrInvalidInput, field, value)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set(constant.HeaderContentType, constant.ContentTypeJSON)
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

// WriteJSONError writes a JSON error response
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, ErrorResponse{
		Error: message,
		Code:  statusCode,
	}, statusCode)
}
