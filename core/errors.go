package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	QueueErrorBadInput     = "QUEUE_BAD_INPUT"
	QueueErrorJobNotFound  = "QUEUE_JOB_NOT_FOUND"
	QueueErrorUnknownTopic = "QUEUE_UNKNOWN_TOPIC"
	QueueErrorConflict     = "QUEUE_CONFLICT"
	QueueErrorInternal     = "QUEUE_INTERNAL_ERROR"
)

// ErrJobNotFound marks lookups for job ids the store has never seen.
var ErrJobNotFound = errors.New("core: webhook job not found")

// QueueErrorMapper lifts arbitrary errors into goerrors envelopes with the
// queue's category, HTTP status and text code conventions.
func QueueErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureQueueErrorEnvelope(richErr)
	}

	if errors.Is(err, ErrJobNotFound) {
		return newQueueError(err.Error(), goerrors.CategoryNotFound, QueueErrorJobNotFound)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newQueueError(err.Error(), goerrors.CategoryNotFound, QueueErrorJobNotFound)
	case strings.Contains(msg, "unknown webhook topic"), strings.Contains(msg, "no handler registered"):
		return newQueueError(err.Error(), goerrors.CategoryOperation, QueueErrorUnknownTopic)
	case strings.Contains(msg, "already registered"), strings.Contains(msg, "already running"):
		return newQueueError(err.Error(), goerrors.CategoryConflict, QueueErrorConflict)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newQueueError(err.Error(), goerrors.CategoryBadInput, QueueErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureQueueErrorEnvelope(mapped)
}

func newQueueError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureQueueErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureQueueErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = queueHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultQueueTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultQueueTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return QueueErrorBadInput
	case goerrors.CategoryNotFound:
		return QueueErrorJobNotFound
	case goerrors.CategoryConflict:
		return QueueErrorConflict
	case goerrors.CategoryOperation:
		return QueueErrorUnknownTopic
	default:
		return QueueErrorInternal
	}
}

func queueHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
