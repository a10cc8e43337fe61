package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/betcleverde/betclever-landing-hub/internal/apperr"
)

// SubmitInput carries the wizard's field values. URL fields hold what the
// upload step produced; empty strings leave existing values untouched on
// update.
type SubmitInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`

	IDFrontURL       string   `json:"id_front_url"`
	IDBackURL        string   `json:"id_back_url"`
	IDSelfieURL      string   `json:"id_selfie_url"`
	GiroFrontURL     string   `json:"giro_front_url"`
	GiroBackURL      string   `json:"giro_back_url"`
	CreditFrontURL   string   `json:"credit_front_url"`
	CreditBackURL    string   `json:"credit_back_url"`
	BankDocumentURLs []string `json:"bank_documents_urls"`
}

type Service struct {
	repo Repository
	log  *zap.SugaredLogger
}

func NewService(repo Repository, log *zap.SugaredLogger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) GetByUser(ctx context.Context, userID string) (*Application, error) {
	a, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]Application, error) {
	apps, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}
	return apps, nil
}

// Submit creates the user's application, or re-submits an existing one. On
// every user-initiated update the unlock-set is cleared and a
// changes-requested status returns to submitted, re-locking everything until
// the admin acts again. Approved applications are terminal.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (*Application, error) {
	existing, err := s.repo.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}

	if existing == nil {
		if err := validateRequired(in); err != nil {
			return nil, err
		}
		a := &Application{
			ID:             uuid.NewString(),
			UserID:         userID,
			Status:         StatusSubmitted,
			UnlockedFields: []string{},
		}
		applyInput(a, in, nil)
		if err := s.repo.Create(ctx, a); err != nil {
			s.log.Errorw("create application", "user_id", userID, "err", err)
			return nil, fmt.Errorf("%w: %v", apperr.ErrSend, err)
		}
		return a, nil
	}

	if existing.Status == StatusApproved {
		return nil, fmt.Errorf("%w: application already approved", apperr.ErrValidation)
	}

	applyInput(existing, in, existing)
	existing.UnlockedFields = []string{}
	if existing.Status == StatusChangesRequested {
		existing.Status = StatusSubmitted
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		s.log.Errorw("update application", "user_id", userID, "err", err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrSend, err)
	}
	return existing, nil
}

// Approve moves the application to its terminal state. Feedback is optional;
// the unlock-set is forced empty.
func (s *Service) Approve(ctx context.Context, id, feedback string) (*Application, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: application", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}
	if a.Status == StatusApproved {
		return nil, fmt.Errorf("%w: already approved", apperr.ErrValidation)
	}

	a.Status = StatusApproved
	a.AdminFeedback = strings.TrimSpace(feedback)
	a.UnlockedFields = []string{}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrSend, err)
	}
	return a, nil
}

// RequestChanges demands a non-empty feedback note and a non-empty unlock-set
// naming which fields the user may now edit.
func (s *Service) RequestChanges(ctx context.Context, id, feedback string, unlocked []string) (*Application, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, fmt.Errorf("%w: feedback required", apperr.ErrValidation)
	}
	if len(unlocked) == 0 {
		return nil, fmt.Errorf("%w: unlock-set required", apperr.ErrValidation)
	}
	for _, f := range unlocked {
		if !validFieldName(f) {
			return nil, fmt.Errorf("%w: unknown field %q", apperr.ErrValidation, f)
		}
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: application", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}
	if a.Status == StatusChangesRequested {
		return nil, fmt.Errorf("%w: changes already requested", apperr.ErrValidation)
	}

	a.Status = StatusChangesRequested
	a.AdminFeedback = feedback
	a.UnlockedFields = unlocked
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrSend, err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: application", apperr.ErrNotFound)
		}
		return fmt.Errorf("%w: %v", apperr.ErrDelete, err)
	}
	return nil
}

func validateRequired(in SubmitInput) error {
	required := map[string]string{
		"first_name":   in.FirstName,
		"last_name":    in.LastName,
		"email":        in.Email,
		"phone":        in.Phone,
		"street":       in.Street,
		"house_number": in.HouseNumber,
		"postal_code":  in.PostalCode,
		"city":         in.City,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s required", apperr.ErrValidation, name)
		}
	}
	return nil
}

// applyInput writes input values into the record. With a prior submission,
// only fields in the unlock-set are applied; the rule runs per field,
// independently.
func applyInput(a *Application, in SubmitInput, prior *Application) {
	set := func(field string, dst *string, val string) {
		if prior != nil && !FieldEditable(prior, field) {
			return
		}
		if prior == nil || val != "" {
			*dst = val
		}
	}
	set("first_name", &a.FirstName, in.FirstName)
	set("last_name", &a.LastName, in.LastName)
	set("email", &a.Email, in.Email)
	set("phone", &a.Phone, in.Phone)
	set("street", &a.Street, in.Street)
	set("house_number", &a.HouseNumber, in.HouseNumber)
	set("postal_code", &a.PostalCode, in.PostalCode)
	set("city", &a.City, in.City)
	set("id_front_url", &a.IDFrontURL, in.IDFrontURL)
	set("id_back_url", &a.IDBackURL, in.IDBackURL)
	set("id_selfie_url", &a.IDSelfieURL, in.IDSelfieURL)
	set("giro_front_url", &a.GiroFrontURL, in.GiroFrontURL)
	set("giro_back_url", &a.GiroBackURL, in.GiroBackURL)
	set("credit_front_url", &a.CreditFrontURL, in.CreditFrontURL)
	set("credit_back_url", &a.CreditBackURL, in.CreditBackURL)

	if prior == nil || FieldEditable(prior, "bank_documents_urls") {
		if prior == nil || in.BankDocumentURLs != nil {
			a.BankDocumentURLs = in.BankDocumentURLs
		}
	}
	if a.BankDocumentURLs == nil {
		a.BankDocumentURLs = []string{}
	}
}
