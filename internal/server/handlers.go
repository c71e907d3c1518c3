package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/open-wander/samplerate/internal/config"
	"github.com/open-wander/samplerate/internal/rowsource"
	"github.com/open-wander/samplerate/internal/samplerate"
	"github.com/open-wander/samplerate/internal/store"
	"github.com/open-wander/samplerate/internal/timeguess"
)

const maxListLimit = 500

// estimateResponse is a Result plus the history ID when it was saved.
type estimateResponse struct {
	ID string `json:"id,omitempty"`
	*samplerate.Result
}

func errorJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handlePatterns lists the supported timestamp patterns in guess order
func (s *Server) handlePatterns(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"patterns": timeguess.Patterns()})
}

// handleGuess detects the pattern of a single timestamp
func (s *Server) handleGuess(c *fiber.Ctx) error {
	var req struct {
		Timestamp string `json:"timestamp"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
	}

	p, err := timeguess.GuessFormat(strings.TrimSpace(req.Timestamp))
	if err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, err)
	}

	return c.JSON(fiber.Map{"timestamp": req.Timestamp, "pattern": p})
}

// handleEstimate estimates the samplerate of an uploaded dataset. The dataset
// is either the raw request body or the multipart field "file"; its first
// line is a header.
func (s *Server) handleEstimate(c *fiber.Ctx) error {
	opts, err := s.estimateOptions(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	save, err := queryBool(c, "save", false)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	source := c.Query("source")
	var body io.Reader

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, fmt.Errorf("missing multipart field \"file\": %w", err))
		}
		f, err := fh.Open()
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
		defer f.Close()
		body = f
		if source == "" {
			source = fh.Filename
		}
	} else {
		body = bytes.NewReader(c.Body())
	}
	if source == "" {
		source = "upload"
	}

	rows, err := rowsource.Read(body, opts.MaxRows)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	res, err := samplerate.Estimate(rows, opts)
	if err != nil {
		s.logger.Debug("estimation failed", "source", source, "error", err)
		return errorJSON(c, fiber.StatusUnprocessableEntity, err)
	}
	res.Source = source

	resp := estimateResponse{Result: res}
	if save {
		if s.store == nil {
			return errorJSON(c, fiber.StatusServiceUnavailable, errors.New("estimate history is disabled"))
		}
		e := store.NewEstimate(res, opts)
		if err := s.store.Save(c.UserContext(), e); err != nil {
			s.logger.Error("saving estimate", "error", err)
			return errorJSON(c, fiber.StatusInternalServerError, errors.New("failed to save estimate"))
		}
		resp.ID = e.ID
	}

	return c.JSON(resp)
}

// handleListEstimates returns stored estimates, newest first
func (s *Server) handleListEstimates(c *fiber.Ctx) error {
	if s.store == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, errors.New("estimate history is disabled"))
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errorJSON(c, fiber.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
		}
		limit = min(n, maxListLimit)
	}

	estimates, err := s.store.List(c.UserContext(), limit)
	if err != nil {
		s.logger.Error("listing estimates", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, errors.New("failed to list estimates"))
	}
	if estimates == nil {
		estimates = []store.Estimate{}
	}

	return c.JSON(fiber.Map{"estimates": estimates})
}

// handleGetEstimate returns one stored estimate
func (s *Server) handleGetEstimate(c *fiber.Ctx) error {
	if s.store == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, errors.New("estimate history is disabled"))
	}

	e, err := s.store.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, err)
	}
	if err != nil {
		s.logger.Error("loading estimate", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, errors.New("failed to load estimate"))
	}

	return c.JSON(e)
}

// estimateOptions starts from the configured defaults and applies the
// delimiter, column, rows, guess_once, lenient and pattern query parameters.
func (s *Server) estimateOptions(c *fiber.Ctx) (samplerate.Options, error) {
	opts := s.config.Options()

	if v := c.Query("delimiter"); v != "" {
		d, err := config.ParseDelimiter(v)
		if err != nil {
			return opts, err
		}
		opts.Delimiter = d
	}

	if v := c.Query("column"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid column %q", v)
		}
		opts.Column = n
	}

	if v := c.Query("rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, fmt.Errorf("invalid rows %q", v)
		}
		opts.MaxRows = n
	}

	var err error
	if opts.GuessOnce, err = queryBool(c, "guess_once", opts.GuessOnce); err != nil {
		return opts, err
	}
	if opts.Lenient, err = queryBool(c, "lenient", opts.Lenient); err != nil {
		return opts, err
	}

	if v := c.Query("pattern"); v != "" {
		p, ok := timeguess.Lookup(v)
		if !ok {
			return opts, fmt.Errorf("unknown pattern %q", v)
		}
		opts.Pattern = p
	}

	return opts, nil
}

func queryBool(c *fiber.Ctx, key string, def bool) (bool, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}
