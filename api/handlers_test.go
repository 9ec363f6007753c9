package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/domain/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock service for testing
type MockService struct {
	mock.Mock
}

func (m *MockService) Generate(ctx context.Context, req label.GenerateRequest) (*label.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*label.Result), args.Error(1)
}

func (m *MockService) GenerateFromImage(ctx context.Context, img image.Image, req label.GenerateRequest) (*label.Result, error) {
	args := m.Called(ctx, img, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*label.Result), args.Error(1)
}

func (m *MockService) Decode(ctx context.Context, img image.Image) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

func (m *MockService) Preview(ctx context.Context, req label.GenerateRequest) (*label.Label, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*label.Label), args.Error(1)
}

func (m *MockService) PreviewFromImage(ctx context.Context, img image.Image, req label.GenerateRequest) (*label.Label, error) {
	args := m.Called(ctx, img, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*label.Label), args.Error(1)
}

func (m *MockService) ListRuns(ctx context.Context, limit int) ([]label.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]label.Run), args.Error(1)
}

// Mock QR code generator for testing
type MockQRGenerator struct {
	mock.Mock
}

func (m *MockQRGenerator) RenderPNG(payload string, size int) ([]byte, error) {
	args := m.Called(payload, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

const testMaxUpload = 1 << 20

var fakePDF = []byte("%PDF-1.4 fake")

func newTestHandler() (*Handler, *MockService, *MockQRGenerator) {
	svc := new(MockService)
	gen := new(MockQRGenerator)
	return NewHandler(svc, gen, testMaxUpload), svc, gen
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// multipartRequest builds an upload request; a nil file omits the image field
func multipartRequest(t *testing.T, target string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile(constant.FieldImage, "code.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(constant.HeaderContentType, mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestNewHandler(t *testing.T) {
	// Arrange
	mockService := new(MockService)
	mockQRGenerator := new(MockQRGenerator)

	// Act
	handler := NewHandler(mockService, mockQRGenerator, testMaxUpload)

	// Assert
	assert.NotNil(t, handler)
	assert.Equal(t, mockService, handler.service)
	assert.Equal(t, mockQRGenerator, handler.qrGenerator)
	assert.Equal(t, int64(testMaxUpload), handler.maxUploadBytes)
}

func TestCreateLabels_Success(t *testing.T) {
	// Arrange
	handler, svc, _ := newTestHandler()
	want := label.GenerateRequest{Text: "ABC", Count: 3, Layout: label.LayoutPage}
	svc.On("Generate", mock.Anything, want).Return(&label.Result{
		RunID:    "run-1",
		Payloads: []string{"ABC-1", "ABC-2", "ABC-3"},
		Bytes:    fakePDF,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, constant.RouteCreateLabels, strings.NewReader(`{"text":"ABC","count":3}`))
	w := httptest.NewRecorder()

	// Act
	handler.CreateLabels(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.ContentTypePDF, w.Header().Get(constant.HeaderContentType))
	assert.Contains(t, w.Header().Get(constant.HeaderContentDisposition), constant.FileNameLabelsPDF)
	assert.Equal(t, "run-1", w.Header().Get(constant.HeaderRunID))
	assert.Equal(t, "3", w.Header().Get(constant.HeaderLabelCount))
	assert.Equal(t, fakePDF, w.Body.Bytes())
	svc.AssertExpectations(t)
}

func TestCreateLabels_DefaultsAndOptions(t *testing.T) {
	// Arrange
	handler, svc, _ := newTestHandler()
	ratio := 0.8
	want := label.GenerateRequest{
		Text:    "SKU",
		Count:   1,
		Layout:  label.LayoutStack,
		Options: label.Options{QRWidthRatio: &ratio},
	}
	svc.On("Generate", mock.Anything, want).Return(&label.Result{RunID: "r", Payloads: []string{"SKU"}, Bytes: fakePDF}, nil)

	req := httptest.NewRequest(http.MethodPost, constant.RouteCreateLabels,
		strings.NewReader(`{"text":"SKU","layout":"stack","qr_width_ratio":0.8}`))
	w := httptest.NewRecorder()

	// Act
	handler.CreateLabels(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get(constant.HeaderLabelCount))
	svc.AssertExpectations(t)
}

func TestCreateLabels_InvalidJSON(t *testing.T) {
	handler, svc, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, constant.RouteCreateLabels, strings.NewReader(`{"text":`))
	w := httptest.NewRecorder()

	handler.CreateLabels(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, constant.RespInvalidRequest, decodeError(t, w).Error)
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestCreateLabels_UnknownLayout(t *testing.T) {
	handler, svc, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, constant.RouteCreateLabels, strings.NewReader(`{"text":"A","layout":"spiral"}`))
	w := httptest.NewRecorder()

	handler.CreateLabels(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestCreateLabels_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid input",
			err:        fmt.Errorf("%w: %s", label.ErrInvalidInput, constant.ErrEmptyBase),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid input: " + constant.ErrEmptyBase,
		},
		{
			name:       "not found",
			err:        label.ErrNotFound,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    constant.ErrQRNotFound,
		},
		{
			name:       "internal",
			err:        errors.New("export document: disk full"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    constant.RespGenerateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler, svc, _ := newTestHandler()
			svc.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.err)
			req := httptest.NewRequest(http.MethodPost, constant.RouteCreateLabels, strings.NewReader(`{"text":"  ","count":1}`))
			w := httptest.NewRecorder()

			// Act
			handler.CreateLabels(w, req)

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.Equal(t, tt.wantStatus, resp.Code)
		})
	}
}

func TestCreateLabels_Preview(t *testing.T) {
	// Arrange
	handler, svc, _ := newTestHandler()
	svc.On("Preview", mock.Anything, label.GenerateRequest{Text: "ABC", Count: 2, Layout: label.LayoutPage}).
		Return(&label.Label{Payload: "ABC-1", Canvas: image.NewRGBA(image.Rect(0, 0, 30, 75))}, nil)

	req := httptest.NewRequest(http.MethodPost, constant.RouteCreateLabels+"?format=png", strings.NewReader(`{"text":"ABC","count":2}`))
	w := httptest.NewRecorder()

	// Act
	handler.CreateLabels(w, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.ContentTypePNG, w.Header().Get(constant.HeaderContentType))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 75, img.Bounds().Dy())
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestUploadLabels_Success(t *testing.T) {
	// Arrange
	handler, svc, _ := newTestHandler()
	ratio := 0.6
	spacing := 10
	want := label.GenerateRequest{
		Count:   2,
		Layout:  label.LayoutGrid,
		Options: label.Options{QRWidthRatio: &ratio, VerticalSpacing: &spacing},
	}
	svc.On("GenerateFromImage", mock.Anything, mock.Anything, want).Return(&label.Result{
		RunID:    "run-2",
		Payloads: []string{"X-1", "X-2"},
		Bytes:    fakePDF,
	}, nil)

	req := multipartRequest(t, constant.RouteUploadLabels, map[string]string{
		constant.FieldCount:           "2",
		constant.FieldLayout:          "grid",
		constant.FieldQRWidthRatio:    "0.6",
		constant.FieldVerticalSpacing: "10",
	}, pngBytes(t, 40, 40))
	w := httptest.NewRecorder()

	// Act
	handler.UploadLabels(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "run-2", w.Header().Get(constant.HeaderRunID))
	assert.Equal(t, "2", w.Header().Get(constant.HeaderLabelCount))
	assert.Equal(t, fakePDF, w.Body.Bytes())
	svc.AssertExpectations(t)
}

func TestUploadLabels_NotFound(t *testing.T) {
	// Arrange
	handler, svc, _ := newTestHandler()
	svc.On("GenerateFromImage", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: no finder pattern", label.ErrNotFound))
	req := multipartRequest(t, constant.RouteUploadLabels, nil, pngBytes(t, 40, 40))
	w := httptest.NewRecorder()

	// Act
	handler.UploadLabels(w, req)

	// Assert
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, constant.ErrQRNotFound, decodeError(t, w).Error)
}

func TestUploadLabels_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		file   []byte
	}{
		{name: "missing image"},
		{name: "not an image", file: []byte("definitely not a png")},
		{name: "bad count", fields: map[string]string{constant.FieldCount: "three"}, file: []byte{}},
		{name: "bad ratio", fields: map[string]string{constant.FieldFontWidthRatio: "wide"}, file: []byte{}},
		{name: "bad border", fields: map[string]string{constant.FieldBorderThickness: "1.5"}, file: []byte{}},
		{name: "bad layout", fields: map[string]string{constant.FieldLayout: "spiral"}, file: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler, svc, _ := newTestHandler()
			file := tt.file
			if file != nil && len(file) == 0 {
				file = pngBytes(t, 8, 8)
			}
			req := multipartRequest(t, constant.RouteUploadLabels, tt.fields, file)
			w := httptest.NewRecorder()

			// Act
			handler.UploadLabels(w, req)

			// Assert
			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "GenerateFromImage", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUploadLabels_NotMultipart(t *testing.T) {
	handler, _, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, constant.RouteUploadLabels, strings.NewReader(`{}`))
	req.Header.Set(constant.HeaderContentType, constant.ContentTypeJSON)
	w := httptest.NewRecorder()

	handler.UploadLabels(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadLabels_Preview(t *testing.T) {
	handler, svc, _ := newTestHandler()
	svc.On("PreviewFromImage", mock.Anything, mock.Anything, mock.Anything).
		Return(&label.Label{Canvas: image.NewRGBA(image.Rect(0, 0, 10, 25))}, nil)
	req := multipartRequest(t, constant.RouteUploadLabels+"?format=png", nil, pngBytes(t, 16, 16))
	w := httptest.NewRecorder()

	handler.UploadLabels(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.ContentTypePNG, w.Header().Get(constant.HeaderContentType))
	svc.AssertNotCalled(t, "GenerateFromImage", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecodeUpload(t *testing.T) {
	// Arrange
	handler, svc, _ := newTestHandler()
	svc.On("Decode", mock.Anything, mock.Anything).Return("LOT-7", nil)
	req := multipartRequest(t, constant.RouteDecode, nil, pngBytes(t, 16, 16))
	w := httptest.NewRecorder()

	// Act
	handler.DecodeUpload(w, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var resp DecodeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "LOT-7", resp.Text)
}

func TestDecodeUpload_NotFound(t *testing.T) {
	handler, svc, _ := newTestHandler()
	svc.On("Decode", mock.Anything, mock.Anything).Return("", label.ErrNotFound)
	req := multipartRequest(t, constant.RouteDecode, nil, pngBytes(t, 16, 16))
	w := httptest.NewRecorder()

	handler.DecodeUpload(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListRuns(t *testing.T) {
	// Arrange
	handler, svc, _ := newTestHandler()
	runs := []label.Run{{ID: "b", Base: "ABC", Count: 3}, {ID: "a"}}
	svc.On("ListRuns", mock.Anything, constant.DefaultRunsListLimit).Return(runs, nil)
	req := httptest.NewRequest(http.MethodGet, constant.RouteRuns, nil)
	w := httptest.NewRecorder()

	// Act
	handler.ListRuns(w, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var resp RunsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, "b", resp.Runs[0].ID)
	assert.Equal(t, 3, resp.Runs[0].Count)
}

func TestListRuns_Limit(t *testing.T) {
	handler, svc, _ := newTestHandler()
	svc.On("ListRuns", mock.Anything, 5).Return([]label.Run{}, nil)

	w := httptest.NewRecorder()
	handler.ListRuns(w, httptest.NewRequest(http.MethodGet, constant.RouteRuns+"?limit=5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestListRuns_BadLimit(t *testing.T) {
	handler, svc, _ := newTestHandler()

	w := httptest.NewRecorder()
	handler.ListRuns(w, httptest.NewRequest(http.MethodGet, constant.RouteRuns+"?limit=0", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListRuns", mock.Anything, mock.Anything)
}

func TestListRuns_Error(t *testing.T) {
	handler, svc, _ := newTestHandler()
	svc.On("ListRuns", mock.Anything, mock.Anything).Return(nil, errors.New("db closed"))

	w := httptest.NewRecorder()
	handler.ListRuns(w, httptest.NewRequest(http.MethodGet, constant.RouteRuns, nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, constant.RespListRunsFailed, decodeError(t, w).Error)
}

func TestQRCode_Success(t *testing.T) {
	// Arrange
	handler, _, gen := newTestHandler()
	body := []byte("\x89PNG fake")
	gen.On("RenderPNG", "ABC-1", constant.DefaultQRCodeSize).Return(body, nil)
	req := httptest.NewRequest(http.MethodGet, constant.RouteQRCode+"?text=ABC-1", nil)
	w := httptest.NewRecorder()

	// Act
	handler.QRCode(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.ContentTypePNG, w.Header().Get(constant.HeaderContentType))
	assert.Equal(t, body, w.Body.Bytes())
}

func TestQRCode_BadRequests(t *testing.T) {
	for _, query := range []string{"", "?size=512", "?text=A&size=10", "?text=A&size=big"} {
		handler, _, gen := newTestHandler()

		w := httptest.NewRecorder()
		handler.QRCode(w, httptest.NewRequest(http.MethodGet, constant.RouteQRCode+query, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		gen.AssertNotCalled(t, "RenderPNG", mock.Anything, mock.Anything)
	}
}

func TestQRCode_GeneratorError(t *testing.T) {
	handler, _, gen := newTestHandler()
	gen.On("RenderPNG", "A", 512).Return(nil, errors.New("content too long"))

	w := httptest.NewRecorder()
	handler.QRCode(w, httptest.NewRequest(http.MethodGet, constant.RouteQRCode+"?text=A&size=512", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, constant.RespQRCodeFailed, decodeError(t, w).Error)
}

func TestResponseFormat(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "", want: constant.FormatPDF},
		{query: "?format=png", want: constant.FormatPNG},
		{query: "?format=pdf", want: constant.FormatPDF},
		{query: "?format=gif", want: constant.FormatPDF},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, constant.RouteCreateLabels+tt.query, nil)

			assert.Equal(t, tt.want, responseFormat(req))
		})
	}
}
