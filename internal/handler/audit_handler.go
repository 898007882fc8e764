package handler

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/essay-auditor-api/internal/auditor"
	"github.com/noah-isme/essay-auditor-api/internal/dto"
	"github.com/noah-isme/essay-auditor-api/internal/service"
	"github.com/noah-isme/essay-auditor-api/internal/utils"
)

// DefaultMaxEssayUploadBytes bounds uploaded essay files.
const DefaultMaxEssayUploadBytes = 256 << 10

var (
	errEssayFileTooLarge = errors.New("arquivo muito grande")
	errEssayFileNotText  = errors.New("o arquivo deve ser texto puro (.txt)")
)

// AuditHandler exposes the essay audit endpoint.
type AuditHandler struct {
	service        service.AuditService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewAuditHandler creates a new handler instance.
func NewAuditHandler(service service.AuditService, maxUploadBytes int64, logger zerolog.Logger) *AuditHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxEssayUploadBytes
	}

	return &AuditHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches the audit endpoint. Authentication is checked by the
// audit service, so the route only needs the optional JWT middleware.
func (h *AuditHandler) Register(router fiber.Router, middlewares ...fiber.Handler) {
	router.Post("/audits", chain(middlewares, h.create)...)
}

func (h *AuditHandler) create(c *fiber.Ctx) error {
	essay, err := h.readEssay(c)
	if err != nil {
		switch {
		case errors.Is(err, errEssayFileTooLarge):
			return utils.FailWithCode(c, fiber.StatusRequestEntityTooLarge, "validation", err.Error(), nil)
		case errors.Is(err, errEssayFileNotText):
			return utils.FailWithCode(c, fiber.StatusUnsupportedMediaType, "validation", err.Error(), nil)
		default:
			return utils.FailWithCode(c, fiber.StatusBadRequest, "validation", "invalid request body", nil)
		}
	}

	response, err := h.service.Audit(c.UserContext(), userIDFromContext(c), essay)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "essay audited", response)
}

// fail converts pipeline errors into the public envelope. Only the
// user-facing message of an AuditError ever reaches the client.
func (h *AuditHandler) fail(c *fiber.Ctx, err error) error {
	var auditErr *service.AuditError
	if !errors.As(err, &auditErr) {
		requestLogger(h.logger, c).Error().Err(err).Msg("unexpected audit failure")
		return utils.FailWithCode(c, fiber.StatusInternalServerError, "internal", service.MessageAuditFailed, nil)
	}

	switch {
	case errors.Is(err, service.ErrAuthentication):
		return utils.FailWithCode(c, fiber.StatusUnauthorized, "authentication", auditErr.Message, nil)
	case errors.Is(err, service.ErrSessionUnavailable):
		return utils.FailWithCode(c, fiber.StatusServiceUnavailable, "unavailable", auditErr.Message, nil)
	case errors.Is(err, service.ErrValidation):
		var details interface{}
		var validationErr *auditor.ValidationError
		if errors.As(err, &validationErr) {
			details = fiber.Map{"lines": validationErr.Lines, "characters": validationErr.Characters}
		}
		return utils.FailWithCode(c, fiber.StatusUnprocessableEntity, "validation", auditErr.Message, details)
	case errors.Is(err, service.ErrInferenceTransport), errors.Is(err, service.ErrInferenceContract):
		return utils.FailWithCode(c, fiber.StatusBadGateway, "inference", auditErr.Message, nil)
	case errors.Is(err, service.ErrPersistence):
		return utils.FailWithCode(c, fiber.StatusInternalServerError, "persistence", auditErr.Message, nil)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("unclassified audit failure")
		return utils.FailWithCode(c, fiber.StatusInternalServerError, "internal", auditErr.Message, nil)
	}
}

// readEssay accepts a JSON body, a form field or a plain-text upload named
// "file".
func (h *AuditHandler) readEssay(c *fiber.Ctx) (string, error) {
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		if file, err := c.FormFile("file"); err == nil {
			return h.readEssayFile(file.Size, func() (io.ReadCloser, error) { return file.Open() })
		}
	}

	var payload dto.AuditRequest
	if err := c.BodyParser(&payload); err != nil {
		return "", err
	}
	return payload.Essay, nil
}

func (h *AuditHandler) readEssayFile(size int64, open func() (io.ReadCloser, error)) (string, error) {
	if size > h.maxUploadBytes {
		return "", errEssayFileTooLarge
	}

	handle, err := open()
	if err != nil {
		return "", err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, h.maxUploadBytes+1)); err != nil {
		return "", err
	}
	if int64(buf.Len()) > h.maxUploadBytes {
		return "", errEssayFileTooLarge
	}

	if !isPlainText(mimetype.Detect(buf.Bytes())) {
		return "", errEssayFileNotText
	}

	return strings.TrimPrefix(buf.String(), "\ufeff"), nil
}

// isPlainText accepts text/plain plus the tabular text types an essay with
// many commas or tabs may be sniffed as.
func isPlainText(mime *mimetype.MIME) bool {
	return mime.Is("text/plain") || mime.Is("text/csv") || mime.Is("text/tab-separated-values")
}
