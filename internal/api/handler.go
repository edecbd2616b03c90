package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Zuo-Peng/igfa/internal/analyze"
	"github.com/Zuo-Peng/igfa/internal/archive"
	"github.com/Zuo-Peng/igfa/internal/config"
	"github.com/Zuo-Peng/igfa/internal/index"
	"github.com/Zuo-Peng/igfa/internal/search"
)

// multipartMemory is how much of a multipart upload is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// AnalyzeHandler handles export uploads.
type AnalyzeHandler struct {
	analyzer *analyze.Analyzer
	opts     config.Analysis
	maxBytes int64
	logger   *slog.Logger
}

func NewAnalyzeHandler(analyzer *analyze.Analyzer, opts config.Analysis, maxBytes int64, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		opts:     opts,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// RegisterRoutes registers analysis routes
func (h *AnalyzeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.Analyze())
}

// AnalyzeResponse is the body of a successful upload.
type AnalyzeResponse struct {
	Report       *analyze.Report `json:"report"`
	Summary      search.Summary  `json:"summary"`
	TopFriends   []search.Result `json:"top_friends"`
	SlowRepliers []search.Result `json:"slow_repliers"`
}

// Analyze handles POST /analyze. The export is either the "file" field of a
// multipart form or the raw request body.
func (h *AnalyzeHandler) Analyze() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := h.logger.With("request_id", middleware.GetReqID(r.Context()))
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

		data, err := h.readUpload(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				TooLarge(w, fmt.Sprintf("upload exceeds %d bytes", h.maxBytes))
				return
			}
			BadRequest(w, err.Error())
			return
		}
		if len(data) == 0 {
			BadRequest(w, "empty upload")
			return
		}

		report, err := h.analyzer.Analyze(data)
		switch {
		case errors.Is(err, archive.ErrInvalidArchive), errors.Is(err, archive.ErrEmptyArchive):
			BadRequest(w, err.Error())
			return
		case errors.Is(err, archive.ErrAccountNotDetected):
			Unprocessable(w, err.Error())
			return
		case err != nil:
			logger.Error("analyze upload", "error", err)
			InternalError(w, "analysis failed")
			return
		}

		resp, err := h.insights(report)
		if err != nil {
			logger.Error("build insights", "session", report.SessionID, "error", err)
			InternalError(w, "analysis failed")
			return
		}

		logger.Info("analyzed upload",
			"session", report.SessionID,
			"bytes", len(data),
			"contacts", len(report.Contacts),
		)
		OK(w, resp)
	}
}

func (h *AnalyzeHandler) readUpload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("missing file in request")
	}
	defer file.Close()

	return io.ReadAll(file)
}

// insights loads the report into a session index and runs the summary
// queries on it.
func (h *AnalyzeHandler) insights(report *analyze.Report) (*AnalyzeResponse, error) {
	db, _, err := index.Build(report)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	resp := &AnalyzeResponse{Report: report}
	if resp.Summary, err = search.Summarize(db); err != nil {
		return nil, err
	}
	opts := search.InsightOptions{MoreThan: h.opts.MinMessages, Limit: h.opts.TopN}
	if resp.TopFriends, err = search.TopFriends(db, opts); err != nil {
		return nil, err
	}
	if resp.SlowRepliers, err = search.SlowRepliers(db, opts); err != nil {
		return nil, err
	}
	return resp, nil
}
