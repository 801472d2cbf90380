package rider

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/dto"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/messaging"
	userrepo "github.com/Additional-Code/fleet/internal/repository/user"
	"github.com/Additional-Code/fleet/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/fleet/service/rider")

// Service manages rider onboarding profiles.
type Service struct {
	users  UserStore
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Users  UserStore
	Events EventPublisher `optional:"true"`
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  p.Users,
		events: p.Events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// GetProfile returns a rider record.
func (s *Service) GetProfile(ctx context.Context, id string) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "RiderService.GetProfile", trace.WithAttributes(attribute.String("rider.id", id)))
	defer span.End()

	return s.load(ctx, span, id)
}

// Register creates a rider with every onboarding section filled in and the
// profile already submitted for review.
func (s *Service) Register(ctx context.Context, reg dto.Registration) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "RiderService.Register")
	defer span.End()

	now := s.now()
	u := &entity.User{
		ID:              s.newID(),
		Number:          reg.Number,
		Role:            entity.RoleRider,
		Name:            reg.PersonalDetails.FullName,
		Email:           reg.PersonalDetails.Email,
		PersonalDetails: reg.PersonalDetails,
		BankDetails:     pendingBank(reg.BankDetails),
		Documents:       pendingDocuments(reg.Documents),
		ProfileStatus: entity.ProfileStatus{
			PersonalInfoCompleted: true,
			BankDetailsCompleted:  true,
			DocumentsCompleted:    true,
		},
		ReviewStatus: entity.ReviewStatusPending,
		SubmittedAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	span.SetAttributes(attribute.String("rider.id", u.ID))

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrDuplicate) {
			return nil, errorbank.Conflict("rider already registered", errorbank.WithDetail("number", reg.Number))
		}
		return nil, s.internal(span, "failed to register rider", err)
	}

	s.publishSubmitted(ctx, u.ID)
	return u, nil
}

// CreateOnFirstSignIn returns the user registered for number, creating an
// empty rider record when none exists yet.
func (s *Service) CreateOnFirstSignIn(ctx context.Context, number string) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "RiderService.CreateOnFirstSignIn")
	defer span.End()

	u, err := s.users.GetByNumber(ctx, number)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, userrepo.ErrNotFound) {
		return nil, s.internal(span, "failed to load rider", err)
	}

	now := s.now()
	u = &entity.User{
		ID:           s.newID(),
		Number:       number,
		Role:         entity.RoleRider,
		Documents:    []entity.Document{},
		ReviewStatus: entity.ReviewStatusNotSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.users.Create(ctx, u)
	if errors.Is(err, userrepo.ErrDuplicate) {
		// A concurrent first sign-in won the insert.
		existing, getErr := s.users.GetByNumber(ctx, number)
		if getErr != nil {
			return nil, s.internal(span, "failed to load rider", getErr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, s.internal(span, "failed to create rider", err)
	}
	s.logger.Info("rider created on first sign-in", zap.String("riderId", u.ID))
	return u, nil
}

// UpdatePersonal replaces the personal section and marks it complete.
func (s *Service) UpdatePersonal(ctx context.Context, id string, details entity.PersonalDetails) (*entity.User, error) {
	return s.updateSection(ctx, "RiderService.UpdatePersonal", id, func(u *entity.User) []string {
		u.PersonalDetails = details
		u.ProfileStatus.PersonalInfoCompleted = true
		return []string{"personal_details"}
	})
}

// UpdateBank replaces the bank section and queues it for verification.
func (s *Service) UpdateBank(ctx context.Context, id string, details entity.BankDetails) (*entity.User, error) {
	return s.updateSection(ctx, "RiderService.UpdateBank", id, func(u *entity.User) []string {
		u.BankDetails = pendingBank(details)
		u.ProfileStatus.BankDetailsCompleted = true
		return []string{"bank_details"}
	})
}

// UpdateDocuments replaces every document and queues them for verification.
func (s *Service) UpdateDocuments(ctx context.Context, id string, docs []entity.Document) (*entity.User, error) {
	return s.updateSection(ctx, "RiderService.UpdateDocuments", id, func(u *entity.User) []string {
		u.Documents = pendingDocuments(docs)
		u.ProfileStatus.DocumentsCompleted = true
		return []string{"documents"}
	})
}

// UpdateDocument replaces the document with the same name, appending it when
// the rider has none by that name.
func (s *Service) UpdateDocument(ctx context.Context, id string, doc entity.Document) (*entity.User, error) {
	return s.updateSection(ctx, "RiderService.UpdateDocument", id, func(u *entity.User) []string {
		doc = pendingDocuments([]entity.Document{doc})[0]
		replaced := false
		for i := range u.Documents {
			if u.Documents[i].Name == doc.Name {
				u.Documents[i] = doc
				replaced = true
			}
		}
		if !replaced {
			u.Documents = append(u.Documents, doc)
		}
		u.ProfileStatus.DocumentsCompleted = true
		return []string{"documents"}
	})
}

// SubmitProfile sends a completed profile for back-office review.
func (s *Service) SubmitProfile(ctx context.Context, id string) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "RiderService.SubmitProfile", trace.WithAttributes(attribute.String("rider.id", id)))
	defer span.End()

	u, err := s.load(ctx, span, id)
	if err != nil {
		return nil, err
	}
	if !u.ProfileStatus.Complete() {
		return nil, errorbank.InvalidOperation("need to completed profile first", errorbank.WithDetail("profileStatus", u.ProfileStatus))
	}

	now := s.now()
	u.ReviewStatus = entity.ReviewStatusPending
	u.SubmittedAt = &now
	u.UpdatedAt = now
	if err := s.save(ctx, span, u, "review_status", "submitted_at", "updated_at"); err != nil {
		return nil, err
	}

	s.publishSubmitted(ctx, id)
	return u, nil
}

func (s *Service) updateSection(ctx context.Context, spanName, id string, apply func(u *entity.User) []string) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, spanName, trace.WithAttributes(attribute.String("rider.id", id)))
	defer span.End()

	u, err := s.load(ctx, span, id)
	if err != nil {
		return nil, err
	}
	columns := apply(u)
	u.UpdatedAt = s.now()
	columns = append(columns, "profile_status", "updated_at")
	if err := s.save(ctx, span, u, columns...); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) load(ctx context.Context, span trace.Span, id string) (*entity.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, errorbank.NotFound("rider not found", errorbank.WithDetail("riderId", id))
	}
	if err != nil {
		return nil, s.internal(span, "failed to load rider", err)
	}
	return u, nil
}

func (s *Service) save(ctx context.Context, span trace.Span, u *entity.User, columns ...string) error {
	err := s.users.UpdateColumns(ctx, u, columns...)
	if errors.Is(err, userrepo.ErrNotFound) {
		return errorbank.NotFound("rider not found", errorbank.WithDetail("riderId", u.ID))
	}
	if err != nil {
		return s.internal(span, "failed to update rider", err)
	}
	return nil
}

func (s *Service) publishSubmitted(ctx context.Context, id string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, messaging.Event{
		Type:    messaging.EventRiderSubmitted,
		RiderID: id,
		Status:  entity.ReviewStatusPending,
	})
}

func (s *Service) internal(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.Error(msg, zap.Error(err))
	return errorbank.Internal(msg, errorbank.WithCause(err))
}

func pendingBank(b entity.BankDetails) entity.BankDetails {
	b.Status = entity.VerificationPending
	return b
}

func pendingDocuments(docs []entity.Document) []entity.Document {
	out := make([]entity.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, entity.Document{Name: d.Name, Image: d.Image, Verified: entity.VerificationPending})
	}
	return out
}
