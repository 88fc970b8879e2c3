package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries is the hand-written query layer over the connection pool.
type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

type Chart struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ChartMember struct {
	ChartID string
	UserID  string
	Role    string
}

type Snapshot struct {
	ID        string
	ChartID   string
	Version   int32
	Document  []byte
	CreatedAt time.Time
}

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password, display_name, created_at`,
		arg.ID, arg.Email, arg.Password, arg.DisplayName)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE email = $1`, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE id = $1`, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

type CreateChartParams struct {
	ID      string
	Name    string
	OwnerID string
}

func (q *Queries) CreateChart(ctx context.Context, arg CreateChartParams) (Chart, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO charts (id, name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, owner_id, created_at, updated_at`,
		arg.ID, arg.Name, arg.OwnerID)
	var c Chart
	err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) GetChart(ctx context.Context, id string) (Chart, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at, updated_at
		FROM charts WHERE id = $1`, id)
	var c Chart
	err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) ListChartsByUser(ctx context.Context, userID string) ([]Chart, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT c.id, c.name, c.owner_id, c.created_at, c.updated_at
		FROM charts c
		JOIN chart_members m ON m.chart_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charts []Chart
	for rows.Next() {
		var c Chart
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, rows.Err()
}

func (q *Queries) DeleteChart(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM charts WHERE id = $1`, id)
	return err
}

type AddChartMemberParams struct {
	ChartID string
	UserID  string
	Role    string
}

func (q *Queries) AddChartMember(ctx context.Context, arg AddChartMemberParams) error {
	_, err := q.pool.Exec(ctx, `
		INSERT INTO chart_members (chart_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (chart_id, user_id) DO UPDATE SET role = EXCLUDED.role`,
		arg.ChartID, arg.UserID, arg.Role)
	return err
}

type GetChartMemberParams struct {
	ChartID string
	UserID  string
}

func (q *Queries) GetChartMember(ctx context.Context, arg GetChartMemberParams) (ChartMember, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT chart_id, user_id, role
		FROM chart_members WHERE chart_id = $1 AND user_id = $2`,
		arg.ChartID, arg.UserID)
	var m ChartMember
	err := row.Scan(&m.ChartID, &m.UserID, &m.Role)
	return m, err
}

type ChartMemberDetail struct {
	ChartID     string
	UserID      string
	Role        string
	DisplayName string
	Email       string
}

func (q *Queries) ListChartMembers(ctx context.Context, chartID string) ([]ChartMemberDetail, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT m.chart_id, m.user_id, m.role, u.display_name, u.email
		FROM chart_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.chart_id = $1`, chartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []ChartMemberDetail
	for rows.Next() {
		var m ChartMemberDetail
		if err := rows.Scan(&m.ChartID, &m.UserID, &m.Role, &m.DisplayName, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

type RemoveChartMemberParams struct {
	ChartID string
	UserID  string
}

func (q *Queries) RemoveChartMember(ctx context.Context, arg RemoveChartMemberParams) error {
	_, err := q.pool.Exec(ctx, `
		DELETE FROM chart_members WHERE chart_id = $1 AND user_id = $2`,
		arg.ChartID, arg.UserID)
	return err
}

type CreateSnapshotParams struct {
	ID       string
	ChartID  string
	Version  int32
	Document []byte
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (Snapshot, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO snapshots (id, chart_id, version, document)
		VALUES ($1, $2, $3, $4)
		RETURNING id, chart_id, version, document, created_at`,
		arg.ID, arg.ChartID, arg.Version, arg.Document)
	var s Snapshot
	err := row.Scan(&s.ID, &s.ChartID, &s.Version, &s.Document, &s.CreatedAt)
	return s, err
}

func (q *Queries) GetLatestSnapshot(ctx context.Context, chartID string) (Snapshot, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, chart_id, version, document, created_at
		FROM snapshots WHERE chart_id = $1
		ORDER BY version DESC LIMIT 1`, chartID)
	var s Snapshot
	err := row.Scan(&s.ID, &s.ChartID, &s.Version, &s.Document, &s.CreatedAt)
	return s, err
}
