package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/internal/domain/validation"
	"github.com/okian/portfolio/pkg/logger"
	"github.com/okian/portfolio/pkg/metrics"
)

// SubmitRequest is the body of a portfolio request.
type SubmitRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	Email        string `json:"email" validate:"required,portfolioemail"`
	ResumeHeader string `json:"resumeHeader" validate:"required"`
	Skills       string `json:"skills" validate:"required"`
	Honeypot     string `json:"_gotcha"`
}

// Outcome classifies a submission.
type Outcome string

// Submission outcomes, shared with the metrics labels.
const (
	OutcomeAccepted   Outcome = metrics.OutcomeAccepted
	OutcomeInvalid    Outcome = metrics.OutcomeInvalid
	OutcomeSpam       Outcome = metrics.OutcomeSpam
	OutcomeStoreError Outcome = metrics.OutcomeStoreError
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("portfolioemail", func(fl validator.FieldLevel) bool {
		return validation.IsEmail(fl.Field().String())
	})
	return v
}

// Submit validates and persists one request. Requests with the honeypot
// filled are reported as accepted but never stored.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Outcome, error) {
	if err := s.check(req); err != nil {
		metrics.RecordSubmission(metrics.OutcomeInvalid)
		s.logger.Info(ctx, "submission rejected", logger.String("reason", err.Error()))
		return OutcomeInvalid, err
	}
	if req.Honeypot != "" {
		metrics.RecordSubmission(metrics.OutcomeSpam)
		s.logger.Info(ctx, "spam submission ignored")
		return OutcomeSpam, nil
	}

	rec := model.SubmissionRecord{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		ResumeHeader: req.ResumeHeader,
		Skills:       req.Skills,
		SubmittedAt:  s.now().UTC().Format(model.SubmissionTimeLayout),
	}
	total, err := s.store.Append(ctx, rec)
	if err != nil {
		metrics.RecordSubmission(metrics.OutcomeStoreError)
		metrics.RecordErrorByType("store_failure", "high")
		s.logger.Error(ctx, "failed to store submission", logger.Error(err))
		return OutcomeStoreError, fmt.Errorf("%w: %w", ErrStore, err)
	}

	metrics.RecordSubmission(metrics.OutcomeAccepted)
	s.logger.Info(ctx, "submission accepted",
		logger.String("resumeHeader", rec.ResumeHeader),
		logger.Int("records", total),
	)
	return OutcomeAccepted, nil
}

// check maps validator failures onto the two submitter messages. A missing
// field anywhere wins over a malformed email.
func (s *Service) check(req SubmitRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return validation.NewError("", err.Error())
	}
	for _, fe := range fields {
		if fe.Tag() == "required" {
			return validation.NewError(fe.Field(), MsgFieldsRequired)
		}
	}
	return validation.NewError(fields[0].Field(), MsgInvalidEmail)
}
