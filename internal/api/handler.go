package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"StockForecaster/internal/algorithm"
	"StockForecaster/internal/calculator"
	"StockForecaster/internal/logger"
	"StockForecaster/internal/model"
	"StockForecaster/internal/predictor"
	"StockForecaster/internal/recorder"
)

const (
	serviceName    = "Stock Prediction API"
	serviceVersion = "1.0.0"

	// room for multipart boundaries, part headers and the params field
	formOverheadBytes = 64 << 10
)

// Forecaster is the predictor surface the handlers use.
type Forecaster interface {
	Predict(symbol, name string) ([]float64, error)
	ListAlgorithms() []string
	Describe() []predictor.AlgorithmInfo
	PredictWith(symbol, name string, params algorithm.Params) ([]float64, algorithm.Params, error)
	HistoricalData(symbol string) ([]model.StockRecord, error)
}

// Uploads stores and discards uploaded series.
type Uploads interface {
	SaveUpload(content []byte) (string, error)
	ValidateHeader(symbol string) bool
	Remove(symbol string) error
}

// Handler serves the prediction endpoints.
type Handler struct {
	forecaster     Forecaster
	uploads        Uploads
	runs           recorder.Recorder
	log            *logger.Logger
	maxUploadBytes int64
}

// NewHandler creates a Handler.
func NewHandler(f Forecaster, u Uploads, runs recorder.Recorder, l *logger.Logger, maxUploadBytes int64) *Handler {
	if runs == nil {
		runs = recorder.NewNoopRecorder()
	}
	return &Handler{forecaster: f, uploads: u, runs: runs, log: l, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Health)
	g := e.Group("/api")
	g.GET("/stocks/:symbol", h.History)
	g.POST("/predict", h.Predict)
	g.POST("/analyze", h.Analyze, h.uploadLimit()...)
	g.GET("/algorithms", h.Algorithms)
	g.GET("/runs", h.Runs)
}

// uploadLimit rejects oversized request bodies before the multipart form is parsed.
func (h *Handler) uploadLimit() []echo.MiddlewareFunc {
	if h.maxUploadBytes <= 0 {
		return nil
	}
	return []echo.MiddlewareFunc{middleware.BodyLimit(fmt.Sprintf("%dB", h.maxUploadBytes+formOverheadBytes))}
}

type endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Health reports service status and the endpoint list.
func (h *Handler) Health(c echo.Context) error {
	return SuccessResponse(c, map[string]interface{}{
		"status":  "running",
		"message": serviceName,
		"version": serviceVersion,
		"endpoints": []endpoint{
			{http.MethodGet, "/", "Health check"},
			{http.MethodGet, "/api/stocks/{symbol}", "Get historical stock data"},
			{http.MethodPost, "/api/predict", "Get stock predictions"},
			{http.MethodPost, "/api/analyze", "Upload CSV file and get predictions"},
			{http.MethodGet, "/api/algorithms", "List available algorithms"},
			{http.MethodGet, "/api/runs", "List recent prediction runs"},
		},
	})
}

type historyRequest struct {
	Symbol string `param:"symbol" validate:"required,symbol"`
}

// HistoryResponse carries a symbol's stored series and its price range.
type HistoryResponse struct {
	Symbol   string              `json:"symbol"`
	Count    int                 `json:"count"`
	High     *float64            `json:"high,omitempty"`
	Low      *float64            `json:"low,omitempty"`
	Position *float64            `json:"position,omitempty"` // last close within [Low, High]
	Records  []model.StockRecord `json:"records"`
}

// History returns the stored records of a symbol.
func (h *Handler) History(c echo.Context) error {
	req := &historyRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}

	records, err := h.forecaster.HistoricalData(req.Symbol)
	if err != nil {
		h.log.Warn("history lookup failed", logger.String("symbol", req.Symbol), logger.Error(err))
		return AppErrorResponse(c, err)
	}

	res := HistoryResponse{Symbol: req.Symbol, Count: len(records), Records: records}
	if res.Records == nil {
		res.Records = []model.StockRecord{}
	}
	if high, low, err := calculator.SeriesRange(records, 0); err == nil {
		res.High, res.Low = &high, &low
		if pos, err := calculator.RangePosition(records[len(records)-1].Close, high, low); err == nil {
			res.Position = &pos
		}
	}
	return SuccessResponse(c, res)
}

type predictRequest struct {
	Symbol    string `json:"symbol" validate:"required,symbol"`
	Algorithm string `json:"algorithm" default:"SMA" validate:"required,max=64"`
}

// PredictResponse carries one algorithm's forecast for a symbol.
type PredictResponse struct {
	Symbol      string    `json:"symbol"`
	Algorithm   string    `json:"algorithm"`
	Predictions []float64 `json:"predictions"`
}

// Predict runs one algorithm over a stored symbol.
func (h *Handler) Predict(c echo.Context) error {
	req := &predictRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}

	values, err := h.forecaster.Predict(req.Symbol, req.Algorithm)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, PredictResponse{Symbol: req.Symbol, Algorithm: req.Algorithm, Predictions: values})
}

type algorithmSpec struct {
	Name       string           `json:"name" validate:"required"`
	Parameters algorithm.Params `json:"parameters,omitempty"`
}

type analyzeParams struct {
	Algorithms []algorithmSpec `json:"algorithms" validate:"required,min=1,dive"`
}

// AnalyzeResponse aggregates per-algorithm outcomes for an uploaded series.
type AnalyzeResponse struct {
	Predictions map[string][]float64 `json:"predictions"`
	Validations []AlgorithmConfig    `json:"validations"`
	Errors      []AlgorithmError     `json:"errors"`
}

// AlgorithmConfig reports the parameters an algorithm ran with.
type AlgorithmConfig struct {
	Algorithm  string           `json:"algorithm"`
	Parameters algorithm.Params `json:"parameters"`
}

// AlgorithmError reports why one requested algorithm produced no forecast.
type AlgorithmError struct {
	Algorithm string `json:"algorithm"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}

// Analyze accepts a CSV upload ("csv_file") plus a JSON "params" form field,
// runs each requested algorithm over it and reports every outcome. One
// failing algorithm does not stop the others.
func (h *Handler) Analyze(c echo.Context) error {
	fh, err := c.FormFile("csv_file")
	if err != nil {
		return BadRequestResponse(c, []*AppError{BadRequestError("No CSV file uploaded")})
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return BadRequestResponse(c, []*AppError{BadRequestError(fmt.Sprintf("CSV file exceeds %d bytes", h.maxUploadBytes))})
	}

	params := &analyzeParams{}
	if err := json.Unmarshal([]byte(c.FormValue("params")), params); err != nil {
		return BadRequestResponse(c, []*AppError{BadRequestError("params must be a JSON object").WithError(err)})
	}
	if err := validate.StructCtx(c.Request().Context(), params); err != nil {
		return BadRequestResponse(c, validatorDefaultRules(err))
	}

	content, err := readFormFile(fh)
	if err != nil {
		return BadRequestResponse(c, []*AppError{BadRequestError("Could not read CSV file").WithError(err)})
	}

	symbol, err := h.uploads.SaveUpload(content)
	if err != nil {
		h.log.Error("save upload", logger.Error(err))
		return AppErrorResponse(c, err)
	}
	defer func() {
		if err := h.uploads.Remove(symbol); err != nil {
			h.log.Warn("remove upload", logger.String("symbol", symbol), logger.Error(err))
		}
	}()

	if !h.uploads.ValidateHeader(symbol) {
		return BadRequestResponse(c, []*AppError{BadRequestError("CSV header must contain Date, Open, High, Low, Close and Volume")})
	}

	res := AnalyzeResponse{
		Predictions: make(map[string][]float64),
		Validations: []AlgorithmConfig{},
		Errors:      []AlgorithmError{},
	}
	for _, spec := range params.Algorithms {
		values, cfg, err := h.analyzeOne(symbol, spec)
		if err != nil {
			appErr := FromDomain(err)
			res.Errors = append(res.Errors, AlgorithmError{Algorithm: spec.Name, Code: appErr.Code, Error: err.Error()})
			continue
		}
		res.Validations = append(res.Validations, AlgorithmConfig{Algorithm: spec.Name, Parameters: cfg})
		res.Predictions[spec.Name] = values
	}

	h.log.Info("upload analyzed",
		logger.String("symbol", symbol),
		logger.Int("algorithms", len(params.Algorithms)),
		logger.Int("errors", len(res.Errors)),
	)
	return SuccessResponse(c, res)
}

func (h *Handler) analyzeOne(symbol string, spec algorithmSpec) ([]float64, algorithm.Params, error) {
	return h.forecaster.PredictWith(symbol, spec.Name, spec.Parameters)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Algorithms lists registered algorithm names, or full descriptions with ?verbose=true.
func (h *Handler) Algorithms(c echo.Context) error {
	if c.QueryParam("verbose") == "true" {
		return SuccessResponse(c, h.forecaster.Describe())
	}
	return SuccessResponse(c, h.forecaster.ListAlgorithms())
}

type runsRequest struct {
	Limit int `query:"limit" default:"20" validate:"min=1,max=500"`
}

// Runs lists recent prediction runs, newest first.
func (h *Handler) Runs(c echo.Context) error {
	req := &runsRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	runs, err := h.runs.RecentRuns(req.Limit)
	if err != nil {
		h.log.Error("list runs", logger.Error(err))
		return AppErrorResponse(c, err)
	}
	if runs == nil {
		runs = []model.PredictionRun{}
	}
	return SuccessResponse(c, runs)
}
