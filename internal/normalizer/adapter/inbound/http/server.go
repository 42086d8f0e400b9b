package http_handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/config"
	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/domain"
	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/port"
	"github.com/anthanhphan/go-pptx-normalizer/pkg/resilience"
	sdklogger "github.com/anthanhphan/gosdk/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	fileField = "file"
	modeField = "mode"

	// maxFieldSize caps non-file form values.
	maxFieldSize = 256
)

type Server struct {
	app     *fiber.App
	cfg     *config.Config
	service port.NormalizeService
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	JobID    string `json:"job_id,omitempty"`
	Pass     int    `json:"pass,omitempty"`
	ExitCode *int   `json:"exit_code,omitempty"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
}

func NewServer(cfg *config.Config, service port.NormalizeService) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             int(cfg.Normalizer.MaxFileSize),
		StreamRequestBody:     true,
		ReadTimeout:           cfg.Server.ReadTimeout(),
		WriteTimeout:          cfg.Server.WriteTimeout(),
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	s := &Server{
		app:     app,
		cfg:     cfg,
		service: service,
	}

	// Routes
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Post("/normaliza", s.handleNormalize)
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/ready", s.handleReady)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) sendJSONError(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(errorResponse{Error: kind, Message: message})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleReady(c *fiber.Ctx) error {
	status := s.service.Status()
	if status.ConverterState == string(resilience.CircuitOpen) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	return c.JSON(status)
}

func (s *Server) handleNormalize(c *fiber.Ctx) error {
	if limit := s.cfg.Normalizer.MaxFileSize; limit > 0 && int64(c.Request().Header.ContentLength()) > limit {
		return s.sendJSONError(c, fiber.StatusRequestEntityTooLarge, domain.KindInvalidRequest,
			fmt.Sprintf("Upload exceeds %d bytes", limit))
	}

	contentType := c.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return s.sendJSONError(c, fiber.StatusBadRequest, domain.KindInvalidRequest, "Content-Type must be multipart/form-data")
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, domain.KindInvalidRequest, "Invalid Content-Type")
	}
	boundary, ok := params["boundary"]
	if !ok {
		return s.sendJSONError(c, fiber.StatusBadRequest, domain.KindInvalidRequest, "Missing boundary in Content-Type")
	}

	// Use raw request body stream
	bodyStream := c.Context().RequestBodyStream()
	if bodyStream == nil {
		bodyStream = bytes.NewReader(c.Body())
	}
	mr := multipart.NewReader(bodyStream, boundary)

	rawMode := c.Query(modeField)
	var fileName string
	var src io.Reader

	// Form fields before the file part are read; the file part is streamed.
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s.sendJSONError(c, fiber.StatusBadRequest, domain.KindInvalidRequest, fmt.Sprintf("Failed to read multipart: %v", err))
		}

		if part.FileName() != "" {
			fileName = part.FileName()
			src = part
			break
		}
		if part.FormName() == modeField {
			value, err := io.ReadAll(io.LimitReader(part, maxFieldSize))
			if err != nil {
				return s.sendJSONError(c, fiber.StatusBadRequest, domain.KindInvalidRequest, fmt.Sprintf("Failed to read %q field: %v", modeField, err))
			}
			rawMode = string(value)
		}
		_ = part.Close()
	}

	if src == nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, domain.KindInvalidRequest, fmt.Sprintf("Missing '%s' part", fileField))
	}

	mode, err := domain.ParseMode(rawMode, "")
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, domain.KindInvalidRequest, err.Error())
	}

	result, err := s.service.Normalize(c.UserContext(), domain.NormalizeRequest{
		FileName: fileName,
		Content:  src,
		Mode:     mode,
	})
	if err != nil {
		sdklogger.Errorw("Normalize failed", "file_name", fileName, "job_id", domain.JobID(err), "error", err.Error())
		return s.sendNormalizeError(c, err)
	}

	c.Set(fiber.HeaderContentType, domain.PresentationMIME)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", downloadName(fileName)))
	c.Set("X-Job-ID", result.JobID)
	c.Set(fiber.HeaderETag, strconv.Quote(result.Digest))
	if result.Slides > 0 {
		c.Set("X-Slide-Count", strconv.Itoa(result.Slides))
	}
	return c.Status(fiber.StatusOK).Send(result.Data)
}

func (s *Server) sendNormalizeError(c *fiber.Ctx, err error) error {
	kind := domain.Kind(err)
	resp := errorResponse{
		Error:   kind,
		Message: err.Error(),
		JobID:   domain.JobID(err),
	}

	var convErr *domain.ConversionError
	if errors.As(err, &convErr) {
		resp.Pass = convErr.Pass
		resp.Stdout = convErr.Stdout
		resp.Stderr = convErr.Stderr
		if convErr.Started && !convErr.TimedOut {
			exitCode := convErr.ExitCode
			resp.ExitCode = &exitCode
		}
	}
	var missingErr *domain.OutputMissingError
	if errors.As(err, &missingErr) {
		resp.Pass = missingErr.Pass
	}

	var openErr *resilience.CircuitOpenError
	if errors.As(err, &openErr) {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds(openErr.RetryAfter)))
	}

	return c.Status(statusForKind(kind)).JSON(resp)
}

func statusForKind(kind string) int {
	switch kind {
	case domain.KindInvalidRequest:
		return fiber.StatusBadRequest
	case domain.KindConverterUnavailable:
		return fiber.StatusServiceUnavailable
	case domain.KindConversionTimedOut:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	return int(math.Ceil(d.Seconds()))
}

// downloadName derives the attachment name from the uploaded one.
func downloadName(uploaded string) string {
	base := filepath.Base(strings.ReplaceAll(uploaded, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' || r == 0x7f {
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == "/" {
		base = "normalized"
	}
	return base + ".pptx"
}
