package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // goqu dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // goqu dialect registration
	"github.com/gobuffalo/nulls"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/types"
)

// Supported database drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// timeLayout is fixed width so that text ordering equals time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const pqUniqueViolation = "23505"

var (
	tableMembers    = goqu.T("members")
	tableFormations = goqu.T("formations")
	memberColumns   = []any{
		goqu.C("id"), goqu.C("full_name"), goqu.C("position"),
		goqu.C("membership_type"), goqu.C("jersey_number"), goqu.C("created_at"),
	}
	formationColumns = []any{
		goqu.C("id"), goqu.C("club_id"), goqu.C("name"),
		goqu.C("strategy"), goqu.C("teams"), goqu.C("created_at"),
	}
)

// SQLStore is a Store backed by a database/sql connection. Queries are built
// with goqu for the connection's dialect.
type SQLStore struct {
	db      *sql.DB
	dialect goqu.DialectWrapper
	backend string
	cfg     storeConfig
}

// NewSQLStore wraps an open database. driver selects the SQL dialect and must
// be DriverSQLite or DriverPostgres.
func NewSQLStore(db *sql.DB, driver string, opts ...Option) (*SQLStore, error) {
	var dialect string
	switch driver {
	case DriverSQLite:
		dialect = "sqlite3"
	case DriverPostgres:
		dialect = "postgres"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, driver)
	}
	return &SQLStore{
		db:      db,
		dialect: goqu.Dialect(dialect),
		backend: driver,
		cfg:     defaultStoreConfig(opts),
	}, nil
}

// Open connects to the database, creates the schema and returns the store.
// A DriverMemory driver returns a MemoryStore.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	var sqlDriver string
	switch driver {
	case DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverSQLite:
		sqlDriver = "sqlite"
	case DriverPostgres:
		sqlDriver = "postgres"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// sqlite allows one writer; an in-memory database also exists per connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := CreateSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLStore(db, driver, opts...)
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func closeRows(rows *sql.Rows) {
	_ = rows.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (model.Member, error) {
	var (
		m                          model.Member
		position, membership, when string
	)
	if err := row.Scan(&m.ID, &m.FullName, &position, &membership, &m.JerseyNumber, &when); err != nil {
		return model.Member{}, err
	}
	var err error
	if m.Position, err = model.ParsePosition(position); err != nil {
		return model.Member{}, err
	}
	if m.MembershipType, err = model.ParseMembershipType(membership); err != nil {
		return model.Member{}, err
	}
	if m.CreatedAt, err = time.Parse(timeLayout, when); err != nil {
		return model.Member{}, fmt.Errorf("parse created_at: %w", err)
	}
	return m, nil
}

// CreateMember implements MemberRegistry.
func (s *SQLStore) CreateMember(ctx context.Context, m model.Member) (out model.Member, err error) {
	defer func(start time.Time) { observe(s.backend, "create_member", start, err) }(time.Now())

	if m, err = normalizeMember(m); err != nil {
		return model.Member{}, err
	}
	if m.ID == "" {
		m.ID = s.cfg.newID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.cfg.now()
	}
	m.CreatedAt = m.CreatedAt.UTC()

	q, _, err := s.dialect.Insert(tableMembers).Rows(goqu.Record{
		"id":              m.ID,
		"full_name":       m.FullName,
		"position":        m.Position.String(),
		"membership_type": string(m.MembershipType),
		"jersey_number":   m.JerseyNumber,
		"created_at":      m.CreatedAt.Format(timeLayout),
	}).ToSQL()
	if err != nil {
		return model.Member{}, fmt.Errorf("member insert to sql: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		if isUniqueViolation(err) {
			return model.Member{}, fmt.Errorf("%w: member %q already exists", ErrInvalidRecord, m.ID)
		}
		return model.Member{}, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

// GetMember implements MemberRegistry.
func (s *SQLStore) GetMember(ctx context.Context, id string) (out model.Member, err error) {
	defer func(start time.Time) { observe(s.backend, "get_member", start, err) }(time.Now())

	q, _, err := s.dialect.From(tableMembers).
		Select(memberColumns...).
		Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return model.Member{}, fmt.Errorf("member select to sql: %w", err)
	}
	m, err := scanMember(s.db.QueryRowContext(ctx, q))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Member{}, fmt.Errorf("%w: member %q", ErrNotFound, id)
	}
	if err != nil {
		return model.Member{}, fmt.Errorf("scan member: %w", err)
	}
	return m, nil
}

func (s *SQLStore) queryMembers(ctx context.Context, ds *goqu.SelectDataset) ([]model.Member, error) {
	q, _, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("member select to sql: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer closeRows(rows)
	members := make([]model.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// ListMembers implements MemberRegistry.
func (s *SQLStore) ListMembers(ctx context.Context) (out []model.Member, err error) {
	defer func(start time.Time) { observe(s.backend, "list_members", start, err) }(time.Now())

	return s.queryMembers(ctx, s.dialect.From(tableMembers).
		Select(memberColumns...).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()))
}

// FindMembers implements MemberRegistry.
func (s *SQLStore) FindMembers(ctx context.Context, ids []string) (out []model.Member, err error) {
	defer func(start time.Time) { observe(s.backend, "find_members", start, err) }(time.Now())

	if len(ids) == 0 {
		return []model.Member{}, nil
	}
	found, err := s.queryMembers(ctx, s.dialect.From(tableMembers).
		Select(memberColumns...).
		Where(goqu.C("id").In(ids)))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Member, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	out = make([]model.Member, 0, len(ids))
	var missing []string
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, m)
	}
	if len(missing) > 0 {
		return nil, missingError(missing)
	}
	return out, nil
}

// CountMembers implements MemberRegistry.
func (s *SQLStore) CountMembers(ctx context.Context) (int, error) {
	q, _, err := s.dialect.From(tableMembers).Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("member count to sql: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

func scanFormation(row rowScanner) (types.Formation, error) {
	var (
		f           types.Formation
		strategy    nulls.String
		teams, when string
	)
	if err := row.Scan(&f.ID, &f.ClubID, &f.Name, &strategy, &teams, &when); err != nil {
		return types.Formation{}, err
	}
	f.Strategy = strategy.String
	if err := json.Unmarshal([]byte(teams), &f.Teams); err != nil {
		return types.Formation{}, fmt.Errorf("decode teams: %w", err)
	}
	var err error
	if f.CreatedAt, err = time.Parse(timeLayout, when); err != nil {
		return types.Formation{}, fmt.Errorf("parse created_at: %w", err)
	}
	return f, nil
}

// SaveFormation implements FormationStore.
func (s *SQLStore) SaveFormation(ctx context.Context, f types.Formation) (out types.Formation, err error) {
	defer func(start time.Time) { observe(s.backend, "save_formation", start, err) }(time.Now())

	if err := validateFormation(f); err != nil {
		return types.Formation{}, err
	}
	if f.ID == "" {
		f.ID = s.cfg.newID()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.cfg.now()
	}
	f.CreatedAt = f.CreatedAt.UTC()

	teams, err := json.Marshal(f.Teams)
	if err != nil {
		return types.Formation{}, fmt.Errorf("encode teams: %w", err)
	}
	strategy := nulls.String{}
	if f.Strategy != "" {
		strategy = nulls.NewString(f.Strategy)
	}
	q, _, err := s.dialect.Insert(tableFormations).Rows(goqu.Record{
		"id":         f.ID,
		"club_id":    f.ClubID,
		"name":       f.Name,
		"strategy":   strategy,
		"teams":      string(teams),
		"created_at": f.CreatedAt.Format(timeLayout),
	}).ToSQL()
	if err != nil {
		return types.Formation{}, fmt.Errorf("formation insert to sql: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		if isUniqueViolation(err) {
			return types.Formation{}, fmt.Errorf("%w: %q", ErrDuplicateName, f.Name)
		}
		return types.Formation{}, fmt.Errorf("insert formation: %w", err)
	}
	return f, nil
}

// GetFormation implements FormationStore.
func (s *SQLStore) GetFormation(ctx context.Context, id string) (out types.Formation, err error) {
	defer func(start time.Time) { observe(s.backend, "get_formation", start, err) }(time.Now())

	q, _, err := s.dialect.From(tableFormations).
		Select(formationColumns...).
		Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return types.Formation{}, fmt.Errorf("formation select to sql: %w", err)
	}
	f, err := scanFormation(s.db.QueryRowContext(ctx, q))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Formation{}, fmt.Errorf("%w: formation %q", ErrNotFound, id)
	}
	if err != nil {
		return types.Formation{}, fmt.Errorf("scan formation: %w", err)
	}
	return f, nil
}

// ListFormations implements FormationStore.
func (s *SQLStore) ListFormations(ctx context.Context, clubID string) (out []types.Formation, err error) {
	defer func(start time.Time) { observe(s.backend, "list_formations", start, err) }(time.Now())

	ds := s.dialect.From(tableFormations).
		Select(formationColumns...).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc())
	if clubID != "" {
		ds = ds.Where(goqu.C("club_id").Eq(clubID))
	}
	q, _, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("formation select to sql: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query formations: %w", err)
	}
	defer closeRows(rows)
	out = make([]types.Formation, 0)
	for rows.Next() {
		f, err := scanFormation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan formation: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate formations: %w", err)
	}
	return out, nil
}

// DeleteFormation implements FormationStore.
func (s *SQLStore) DeleteFormation(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe(s.backend, "delete_formation", start, err) }(time.Now())

	q, _, err := s.dialect.Delete(tableFormations).
		Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return fmt.Errorf("formation delete to sql: %w", err)
	}
	res, err := s.db.ExecContext(ctx, q)
	if err != nil {
		return fmt.Errorf("delete formation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: formation %q", ErrNotFound, id)
	}
	return nil
}

// CreateSchema (re)applies the schema on the store's database.
func (s *SQLStore) CreateSchema(ctx context.Context) error {
	return CreateSchema(ctx, s.db)
}
