package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/statement-ledger/internal/buildinfo"
	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/convert"
	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/ledger"
	"github.com/insightdelivered/statement-ledger/internal/models"
	"github.com/insightdelivered/statement-ledger/internal/writer"
)

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool          `json:"success"`
	ID           string        `json:"id,omitempty"`
	Error        string        `json:"error,omitempty"`
	Row          *models.Row   `json:"row,omitempty"`
	Layout       models.Layout `json:"layout,omitempty"`
	Transactions int           `json:"transactions"`
	Postings     int           `json:"postings"`
	Ledger       string        `json:"ledger,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Config *config.Config
	// Source extracts uploaded PDFs. Defaults to a PDFSource.
	Source extractor.Source
	Log    logrus.FieldLogger
}

// NewApp returns a fiber app with the API routes registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             h.Config.Server.BodyLimit,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert", h.HandleConvert)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": buildinfo.Version,
		"engine":  "fiber",
	})
}

// HandleConvert converts an uploaded statement (form field "file") or raw
// statement text (form field "text") to ledger text.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	id := uuid.NewString()
	log := h.logger().WithField("request_id", id)

	text, status, err := h.statementText(c.UserContext(), c)
	if err != nil {
		log.WithError(err).Warn("rejected convert request")
		return writeError(c, status, id, err)
	}

	var buf bytes.Buffer
	summary, err := convert.Convert(c.UserContext(), text, h.Config, writer.NewLedgerWriter(&buf, h.Config), log)
	if err != nil {
		status := fiber.StatusInternalServerError
		if convert.IsInputError(err) {
			status = fiber.StatusUnprocessableEntity
		}
		log.WithError(err).Warn("conversion failed")
		return writeError(c, status, id, err)
	}

	return c.JSON(ConvertResponse{
		Success:      true,
		ID:           id,
		Layout:       summary.Layout,
		Transactions: summary.Transactions,
		Postings:     summary.Postings,
		Ledger:       buf.String(),
	})
}

// statementText returns the text to convert and the status to use when it
// cannot be obtained.
func (h *Handler) statementText(ctx context.Context, c *fiber.Ctx) (string, int, error) {
	if text := c.FormValue("text"); text != "" {
		return text, 0, nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return "", fiber.StatusBadRequest, errors.New("no statement uploaded, use form field 'file' or 'text'")
	}
	name := strings.ToLower(header.Filename)

	file, err := header.Open()
	if err != nil {
		return "", fiber.StatusBadRequest, fmt.Errorf("reading upload: %w", err)
	}
	defer file.Close()

	switch {
	case strings.HasSuffix(name, ".txt"):
		data, err := io.ReadAll(file)
		if err != nil {
			return "", fiber.StatusBadRequest, fmt.Errorf("reading upload: %w", err)
		}
		return string(data), 0, nil

	case strings.HasSuffix(name, ".pdf"):
		tmpFile, err := os.CreateTemp("", "statement-*.pdf")
		if err != nil {
			return "", fiber.StatusInternalServerError, errors.New("failed to create temp file")
		}
		defer os.Remove(tmpFile.Name())
		defer tmpFile.Close()

		if _, err := io.Copy(tmpFile, file); err != nil {
			return "", fiber.StatusInternalServerError, errors.New("failed to save uploaded file")
		}
		tmpFile.Close()

		pages, err := h.source().Extract(ctx, tmpFile.Name())
		if err != nil {
			return "", fiber.StatusUnprocessableEntity, fmt.Errorf("PDF extraction failed: %w", err)
		}
		return strings.Join(pages, "\n"), 0, nil

	default:
		return "", fiber.StatusBadRequest, fmt.Errorf("unsupported file type %q, upload a .pdf or .txt statement", filepath.Ext(name))
	}
}

func (h *Handler) source() extractor.Source {
	if h.Source != nil {
		return h.Source
	}
	return &extractor.PDFSource{OCR: h.Config.OCR, Log: h.logger()}
}

func (h *Handler) logger() logrus.FieldLogger {
	if h.Log == nil {
		return logrus.StandardLogger()
	}
	return h.Log
}

func writeError(c *fiber.Ctx, status int, id string, err error) error {
	resp := ConvertResponse{Success: false, ID: id, Error: err.Error()}
	var perr *ledger.PostingError
	if errors.As(err, &perr) {
		resp.Row = &perr.Row
	}
	return c.Status(status).JSON(resp)
}
