package chart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/seatforge/seatforge/backend-go/internal/db"
	"github.com/seatforge/seatforge/backend-go/internal/ident"
	"github.com/seatforge/seatforge/backend-go/internal/layout"
)

var (
	ErrNotFound  = errors.New("chart not found")
	ErrForbidden = errors.New("forbidden")
	ErrNotMember = errors.New("not a chart member")
)

const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
)

type Service struct {
	queries *db.Queries
}

func NewService(queries *db.Queries) *Service {
	return &Service{queries: queries}
}

type Chart struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Create makes a new chart owned by the user, with the default two-section
// layout stored as snapshot version 1.
func (s *Service) Create(ctx context.Context, name, ownerID string) (*Chart, error) {
	chartID := ident.NewChartID()

	dbChart, err := s.queries.CreateChart(ctx, db.CreateChartParams{
		ID:      chartID,
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create chart: %w", err)
	}

	err = s.queries.AddChartMember(ctx, db.AddChartMemberParams{
		ChartID: chartID,
		UserID:  ownerID,
		Role:    RoleOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	initial := layout.NewDefaultLayout()
	docJSON, err := json.Marshal(initial)
	if err != nil {
		return nil, fmt.Errorf("marshal default layout: %w", err)
	}

	_, err = s.queries.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:       ident.NewSnapshotID(),
		ChartID:  chartID,
		Version:  1,
		Document: docJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return dbChartToChart(dbChart), nil
}

func (s *Service) Get(ctx context.Context, chartID, userID string) (*Chart, error) {
	if err := s.checkMembership(ctx, chartID, userID); err != nil {
		return nil, err
	}

	dbChart, err := s.queries.GetChart(ctx, chartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get chart: %w", err)
	}

	return dbChartToChart(dbChart), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Chart, error) {
	dbCharts, err := s.queries.ListChartsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}

	charts := make([]Chart, len(dbCharts))
	for i, c := range dbCharts {
		charts[i] = *dbChartToChart(c)
	}

	return charts, nil
}

func (s *Service) Delete(ctx context.Context, chartID, userID string) error {
	dbChart, err := s.queries.GetChart(ctx, chartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get chart: %w", err)
	}

	if dbChart.OwnerID != userID {
		return ErrForbidden
	}

	return s.queries.DeleteChart(ctx, chartID)
}

func (s *Service) InviteByEmail(ctx context.Context, chartID, ownerID, inviteeEmail string) error {
	dbChart, err := s.queries.GetChart(ctx, chartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get chart: %w", err)
	}

	if dbChart.OwnerID != ownerID {
		return ErrForbidden
	}

	invitee, err := s.queries.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.New("user not found")
		}
		return fmt.Errorf("find user: %w", err)
	}

	return s.queries.AddChartMember(ctx, db.AddChartMemberParams{
		ChartID: chartID,
		UserID:  invitee.ID,
		Role:    RoleEditor,
	})
}

func (s *Service) ListMembers(ctx context.Context, chartID, userID string) ([]Member, error) {
	if err := s.checkMembership(ctx, chartID, userID); err != nil {
		return nil, err
	}

	dbMembers, err := s.queries.ListChartMembers(ctx, chartID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(dbMembers))
	for i, m := range dbMembers {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        m.Role,
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}

	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, chartID, ownerID, targetUserID string) error {
	dbChart, err := s.queries.GetChart(ctx, chartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get chart: %w", err)
	}

	if dbChart.OwnerID != ownerID {
		return ErrForbidden
	}

	if targetUserID == ownerID {
		return errors.New("cannot remove chart owner")
	}

	return s.queries.RemoveChartMember(ctx, db.RemoveChartMemberParams{
		ChartID: chartID,
		UserID:  targetUserID,
	})
}

// GetLatestSnapshot returns the newest persisted layout document as raw JSON.
func (s *Service) GetLatestSnapshot(ctx context.Context, chartID, userID string) (json.RawMessage, error) {
	if err := s.checkMembership(ctx, chartID, userID); err != nil {
		return nil, err
	}

	snap, err := s.queries.GetLatestSnapshot(ctx, chartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	return snap.Document, nil
}

// GetLatestLayout returns the newest persisted layout, decoded.
func (s *Service) GetLatestLayout(ctx context.Context, chartID, userID string) (*layout.Layout, string, error) {
	if err := s.checkMembership(ctx, chartID, userID); err != nil {
		return nil, "", err
	}

	dbChart, err := s.queries.GetChart(ctx, chartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("get chart: %w", err)
	}

	snap, err := s.queries.GetLatestSnapshot(ctx, chartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("get snapshot: %w", err)
	}

	var l layout.Layout
	if err := json.Unmarshal(snap.Document, &l); err != nil {
		return nil, "", fmt.Errorf("decode layout: %w", err)
	}

	return &l, dbChart.Name, nil
}

func (s *Service) checkMembership(ctx context.Context, chartID, userID string) error {
	_, err := s.queries.GetChartMember(ctx, db.GetChartMemberParams{
		ChartID: chartID,
		UserID:  userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func dbChartToChart(c db.Chart) *Chart {
	return &Chart{
		ID:        c.ID,
		Name:      c.Name,
		OwnerID:   c.OwnerID,
		CreatedAt: c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: c.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
