package interest

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/awesomegic/gicbank/internal/calendar"
	"github.com/awesomegic/gicbank/internal/notification"
)

// Service manages the interest rule table.
type Service struct {
	table    Table
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds an interest rule service.
func NewService(table Table, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{table: table, notifier: notifier, logger: logger}
}

// DefineInput captures a rule definition request.
type DefineInput struct {
	Date   civil.Date
	RuleID string
	Rate   decimal.Decimal
}

// Define upserts a rule and returns the resulting table.
func (s *Service) Define(ctx context.Context, input DefineInput) ([]Rule, error) {
	rule := Rule{Date: input.Date, ID: input.RuleID, Rate: input.Rate}
	if err := s.table.Upsert(ctx, rule); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("interest.upsert",
			slog.String("rule_id", rule.ID),
			slog.String("effective_date", rule.Date.String()),
			slog.String("rate", rule.Rate.String()),
		)
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindRateChanged,
			Destination: rule.ID,
			Body:        fmt.Sprintf("Rate %s%% effective from %s", rule.Rate.StringFixed(2), calendar.Compact(rule.Date)),
		})
	}

	return s.table.Rules(ctx)
}

// Rules lists all rules ascending by effective date.
func (s *Service) Rules(ctx context.Context) ([]Rule, error) {
	return s.table.Rules(ctx)
}
