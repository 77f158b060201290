package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/techversity/crm-api/internal/mailer"
	"github.com/techversity/crm-api/internal/models"
	"github.com/techversity/crm-api/internal/observability"
	"github.com/techversity/crm-api/internal/repository"
)

// The scan looks at follow-ups due in the one-minute slice starting ten
// minutes from tick time, so staff get the nudge shortly before the call.
const (
	reminderLeadTime    = 10 * time.Minute
	reminderWindowWidth = time.Minute
)

// ReminderService scans the pipeline for due follow-ups and notifies the
// responsible attender by email.
type ReminderService interface {
	ProcessDueFollowUps(ctx context.Context) error
}

type reminderService struct {
	enquiries repository.EnquiryRepository
	users     repository.UserRepository
	mail      mailer.Mailer
	events    EventPublisher
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewReminderService builds the follow-up reminder scanner.
func NewReminderService(enquiries repository.EnquiryRepository, users repository.UserRepository, mail mailer.Mailer, events EventPublisher, logger zerolog.Logger) ReminderService {
	if events == nil {
		events = NopEventPublisher{}
	}

	return &reminderService{
		enquiries: enquiries,
		users:     users,
		mail:      mail,
		events:    events,
		logger:    logger.With().Str("component", "reminder_service").Logger(),
		tracer:    otel.Tracer("github.com/techversity/crm-api/internal/service/reminder"),
		now:       time.Now,
	}
}

// ProcessDueFollowUps runs one scan tick. For every history entry that is a
// pending follow-up inside the window it resolves the attender, sends the
// reminder mail and flips reminder_sent; each touched record is saved once.
// An entry whose attender cannot be resolved is skipped silently; an entry
// whose mail fails stays unsent.
func (s *reminderService) ProcessDueFollowUps(ctx context.Context) error {
	now := s.now()
	windowStart := now.Add(reminderLeadTime)
	windowEnd := windowStart.Add(reminderWindowWidth)

	spanCtx, span := s.tracer.Start(ctx, "reminders.scan", trace.WithAttributes(
		attribute.String("window_start", windowStart.Format(time.RFC3339)),
		attribute.String("window_end", windowEnd.Format(time.RFC3339)),
	))
	defer span.End()

	observability.ReminderScans().Inc()

	enquiries, err := s.enquiries.ListWithHistory(spanCtx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	for i := range enquiries {
		enquiry := &enquiries[i]
		updated := false

		for j := range enquiry.History {
			entry := &enquiry.History[j]
			if !followUpDue(*entry, windowStart, windowEnd) {
				continue
			}

			attender := entry.Attender
			if attender == "" {
				attender = enquiry.Attender
			}

			user, err := s.users.GetByName(spanCtx, attender)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				span.RecordError(err)
				return err
			}

			body := mailer.FollowUpReminderBody(attender, enquiry.Name, enquiry.Phone, enquiry.Course, *entry.FollowUpDate, entry.Note)
			if err := s.mail.Send(user.Email, mailer.FollowUpReminderSubject(enquiry.Name), body); err != nil {
				observability.ReminderSendFailures().Inc()
				s.logger.Error().Err(err).
					Uint("enquiry_id", enquiry.ID).
					Str("attender", attender).
					Msg("failed to send follow-up reminder")
				continue
			}

			entry.ReminderSent = true
			updated = true

			observability.RemindersSent().Inc()
			s.events.PublishReminderSent(spanCtx, *enquiry, attender)
			s.logger.Info().
				Uint("enquiry_id", enquiry.ID).
				Str("attender", attender).
				Time("follow_up_at", *entry.FollowUpDate).
				Msg("follow-up reminder sent")
		}

		if updated {
			if err := s.enquiries.Save(spanCtx, enquiry); err != nil {
				span.RecordError(err)
				return err
			}
		}
	}

	return nil
}

// followUpDue matches a history entry against the half-open reminder window.
func followUpDue(entry models.HistoryEntry, windowStart, windowEnd time.Time) bool {
	if entry.Status != models.StatusFollowUp || entry.ReminderSent || entry.FollowUpDate == nil {
		return false
	}
	due := *entry.FollowUpDate
	return !due.Before(windowStart) && due.Before(windowEnd)
}
