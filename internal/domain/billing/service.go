package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/billing-dashboard/internal/domain/auth"
	apperrors "github.com/yanqian/billing-dashboard/pkg/errors"
	"github.com/yanqian/billing-dashboard/pkg/util"
)

// Service exposes the billing dashboard.
type Service interface {
	Dashboard(ctx context.Context) (Dashboard, error)
}

// IdentityResolver yields the caller behind ctx, or false when there is none.
type IdentityResolver interface {
	CurrentUser(ctx context.Context) (auth.User, bool, error)
}

// Repository reads a user's monthly billing rows ordered by month ascending.
type Repository interface {
	ListMonthly(ctx context.Context, userID string) ([]Record, error)
}

// ViewTracker hands out generations per dashboard view. A view activated
// again bumps its generation, so older activations can tell they lost.
type ViewTracker interface {
	Begin(ctx context.Context, viewKey string) (uint64, error)
	Current(ctx context.Context, viewKey string) (uint64, error)
}

// Analyst explains a detected hike.
type Analyst interface {
	Explain(ctx context.Context, hike Hike) string
}

type service struct {
	cfg      Config
	identity IdentityResolver
	repo     Repository
	views    ViewTracker
	analyst  Analyst
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the billing domain.
func NewService(cfg Config, identity IdentityResolver, repo Repository, views ViewTracker, analyst Analyst, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		identity: identity,
		repo:     repo,
		views:    views,
		analyst:  analyst,
		logger:   logger.With("component", "billing.service"),
		now:      util.NowUTC,
	}
}

type activation struct {
	key        string
	generation uint64
	tracked    bool
}

// Dashboard runs one view activation. Identity and query failures degrade to
// an empty dashboard. An activation superseded by a newer one for the same
// view still renders its chart but skips the hike analysis. Only a cancelled
// request returns an error.
func (s *service) Dashboard(ctx context.Context) (Dashboard, error) {
	empty := Dashboard{Records: []Record{}, GeneratedAt: s.now()}

	user, ok, err := s.identity.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("identity lookup failed", "code", apperrors.CodeOf(err), "error", err)
		return empty, nil
	}
	if !ok {
		s.logger.Warn("user not logged in or token expired")
		return empty, nil
	}

	view := s.beginView(ctx, user.ID)

	records, err := s.repo.ListMonthly(ctx, user.ID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Dashboard{}, cancelled(ctxErr)
		}
		s.logger.Error("billing fetch failed", "user_id", user.ID, "code", apperrors.CodeOf(err), "error", err)
		return empty, nil
	}

	dash := Dashboard{Records: records, GeneratedAt: s.now()}
	if dash.Records == nil {
		dash.Records = []Record{}
	}
	s.logger.Info("billing rows fetched", "user_id", user.ID, "rows", len(records))

	if hike, found := DetectHike(records, s.cfg.RequireConsecutiveMonths); found {
		s.logger.Info("bill hike detected", "user_id", user.ID, "month", hike.CurrentMonth, "current", hike.Current, "average", hike.Average)
		if s.superseded(ctx, view) {
			s.logger.Info("view activated again, skipping hike analysis", "user_id", user.ID, "view", view.key, "generation", view.generation)
			return dash, nil
		}
		dash.Hike = &hike
		dash.Advisory = s.analyst.Explain(ctx, hike)
	}

	if err := ctx.Err(); err != nil {
		s.logger.Info("discarding dashboard for cancelled request", "user_id", user.ID)
		return Dashboard{}, cancelled(err)
	}
	return dash, nil
}

func (s *service) beginView(ctx context.Context, userID string) activation {
	viewID, ok := ViewIDFrom(ctx)
	if !ok {
		return activation{}
	}
	key := userID + ":" + viewID
	generation, err := s.views.Begin(ctx, key)
	if err != nil {
		s.logger.Warn("view generation unavailable, re-activations will not be detected", "view", key, "error", err)
		return activation{key: key}
	}
	return activation{key: key, generation: generation, tracked: true}
}

func (s *service) superseded(ctx context.Context, view activation) bool {
	if !view.tracked {
		return false
	}
	latest, err := s.views.Current(ctx, view.key)
	if err != nil {
		s.logger.Warn("view generation lookup failed", "view", view.key, "error", err)
		return false
	}
	return latest != view.generation
}

func cancelled(err error) error {
	return apperrors.Wrap(apperrors.CodeStaleView, "dashboard request cancelled", err)
}
