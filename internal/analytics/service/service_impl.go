package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/menuboard/internal/analytics/domain"
	"github.com/smallbiznis/menuboard/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("analytics.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) StartSession(ctx context.Context, req domain.StartRequest) (*domain.SessionResponse, error) {
	displayType := strings.ToLower(strings.TrimSpace(req.DisplayType))
	if !domain.ValidDisplayType(displayType) {
		return nil, domain.ErrInvalidDisplayType
	}

	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		clientID = uuid.NewString()
	}

	now := s.clock.Now()
	session := &domain.DisplaySession{
		ID:          s.genID.Generate().Int64(),
		DisplayType: displayType,
		ClientID:    clientID,
		StartedAt:   now,
		LastSeenAt:  now,
	}

	if err := s.repo.CreateSession(ctx, s.db, session); err != nil {
		return nil, err
	}

	resp := toSessionResponse(session)
	return &resp, nil
}

func (s *Service) Heartbeat(ctx context.Context, id string) error {
	session, err := s.findSession(ctx, id)
	if err != nil {
		return err
	}
	if session.EndedAt != nil {
		return nil
	}

	session.LastSeenAt = s.clock.Now()
	return s.repo.UpdateSession(ctx, s.db, session)
}

// EndSession closes the session and records its duration. Ending an
// already-ended session is a no-op returning the stored result.
func (s *Service) EndSession(ctx context.Context, id string) (*domain.SessionResponse, error) {
	session, err := s.findSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.EndedAt == nil {
		now := s.clock.Now()
		if now.Before(session.StartedAt) {
			now = session.StartedAt
		}
		session.EndedAt = &now
		session.LastSeenAt = now
		session.DurationSeconds = int64(now.Sub(session.StartedAt) / time.Second)

		if err := s.repo.UpdateSession(ctx, s.db, session); err != nil {
			return nil, err
		}
	}

	resp := toSessionResponse(session)
	return &resp, nil
}

func (s *Service) AggregateDaily(ctx context.Context, date string) ([]domain.AggregateResponse, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	from := day
	to := day.Add(24 * time.Hour)

	sessions, err := s.repo.FindSessionsInRange(ctx, s.db, from, to)
	if err != nil {
		return nil, err
	}

	dateKey := day.Format(dateLayout)
	now := s.clock.Now()

	out := make([]domain.AggregateResponse, 0, 2)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, displayType := range []string{domain.DisplayTypeMobile, domain.DisplayTypeTV} {
			agg := rollup(sessions, displayType)
			agg.ID = s.genID.Generate().Int64()
			agg.Date = dateKey
			agg.DisplayType = displayType
			agg.CreatedAt = now
			agg.UpdatedAt = now

			if err := s.repo.UpsertAggregate(ctx, tx, agg); err != nil {
				return err
			}
			out = append(out, toAggregateResponse(agg))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("daily analytics rolled up",
		zap.String("date", dateKey),
		zap.Int("sessions", len(sessions)),
	)
	return out, nil
}

func (s *Service) Aggregates(ctx context.Context, date string) ([]domain.AggregateResponse, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	aggs, err := s.repo.FindAggregates(ctx, s.db, day.Format(dateLayout))
	if err != nil {
		return nil, err
	}

	out := make([]domain.AggregateResponse, 0, len(aggs))
	for i := range aggs {
		out = append(out, toAggregateResponse(&aggs[i]))
	}
	return out, nil
}

func (s *Service) findSession(ctx context.Context, id string) (*domain.DisplaySession, error) {
	sessionID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	session, err := s.repo.FindSessionByID(ctx, s.db, sessionID.Int64())
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

// resolveDate returns midnight UTC for the given day, defaulting to
// today when the date is empty.
func (s *Service) resolveDate(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		now := s.clock.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return day, nil
}

// rollup computes one day's totals for a display type. Sessions still
// open count their elapsed time up to last_seen_at.
func rollup(sessions []domain.DisplaySession, displayType string) *domain.DailyAggregate {
	agg := &domain.DailyAggregate{}
	var byHour [24]int

	for i := range sessions {
		session := &sessions[i]
		if session.DisplayType != displayType {
			continue
		}

		agg.TotalSessions++
		byHour[session.StartedAt.UTC().Hour()]++

		if session.EndedAt != nil {
			agg.TotalDurationSeconds += session.DurationSeconds
		} else if session.LastSeenAt.After(session.StartedAt) {
			agg.TotalDurationSeconds += int64(session.LastSeenAt.Sub(session.StartedAt) / time.Second)
		}
	}

	for hour, count := range byHour {
		if count > byHour[agg.PeakHour] {
			agg.PeakHour = hour
		}
	}
	return agg
}

func toSessionResponse(session *domain.DisplaySession) domain.SessionResponse {
	return domain.SessionResponse{
		ID:              snowflake.ID(session.ID).String(),
		DisplayType:     session.DisplayType,
		ClientID:        session.ClientID,
		StartedAt:       session.StartedAt,
		EndedAt:         session.EndedAt,
		DurationSeconds: session.DurationSeconds,
	}
}

func toAggregateResponse(agg *domain.DailyAggregate) domain.AggregateResponse {
	return domain.AggregateResponse{
		Date:                 agg.Date,
		DisplayType:          agg.DisplayType,
		TotalSessions:        agg.TotalSessions,
		TotalDurationSeconds: agg.TotalDurationSeconds,
		PeakHour:             agg.PeakHour,
	}
}
