// Package analyzer issues the authoritative analysis request for a resolved
// asset and maps every outcome onto the user-facing error taxonomy.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nforb26-art/tradeanalyser/internal/dataflows"
	"github.com/nforb26-art/tradeanalyser/internal/logger"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

const unknownError = "Unknown error occurred"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Backend performs the analyze call.
type Backend interface {
	Analyze(ctx context.Context, payload models.AnalyzePayload) (*models.AnalysisResult, error)
}

type Requester struct {
	backend Backend
	baseURL string
	log     *logger.Logger
}

func New(backend Backend, baseURL string, log *logger.Logger) *Requester {
	if log == nil {
		log = logger.Nop()
	}
	return &Requester{backend: backend, baseURL: baseURL, log: log}
}

// Analyze validates req and sends exactly one analyze call for it. Failures
// are *models.ErrorState, except cancellation which returns ctx.Err().
func (r *Requester) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	payload := req.Payload()
	if err := validate.StructCtx(ctx, payload); err != nil {
		return nil, models.WrapError(models.ValidationFailure, validationMessage(err), err)
	}

	start := time.Now()
	result, err := r.backend.Analyze(ctx, payload)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		es := r.mapError(err)
		r.log.Warn("analysis failed",
			logger.String("crypto_id", payload.CryptoID),
			logger.String("kind", es.Kind.String()),
			logger.Error(err),
		)
		return nil, es
	}

	if result.CryptoID == "" {
		result.CryptoID = payload.CryptoID
	}
	r.log.Info("analysis completed",
		logger.String("crypto_id", payload.CryptoID),
		logger.String("pair", result.Pair),
		logger.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (r *Requester) mapError(err error) *models.ErrorState {
	var apiErr *dataflows.APIError
	if errors.As(err, &apiErr) {
		return models.WrapError(models.ServerFailure, "Analysis failed: "+apiErr.DetailOr(unknownError), err)
	}

	var tErr *dataflows.TransportError
	if errors.As(err, &tErr) {
		return models.WrapError(models.NetworkFailure, dataflows.NetworkMessage(err, r.baseURL), err)
	}
	return models.WrapError(models.ServerFailure, "Analysis failed: "+err.Error(), err)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid analysis request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return "Invalid analysis request: " + strings.Join(msgs, "; ")
}
