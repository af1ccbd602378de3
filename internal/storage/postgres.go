package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dchamindu826/Rider-App/internal/errs"
	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PostgresStorage struct {
	db     *pgxpool.Pool
	logger *zap.SugaredLogger
}

func (store *PostgresStorage) initSchema(ctx context.Context) error {
	const initSchemaQuery = `
	CREATE TABLE IF NOT EXISTS riders (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		phone TEXT NOT NULL,
		vehicle_type TEXT NOT NULL,
		vehicle_number TEXT NOT NULL DEFAULT '',
		availability TEXT NOT NULL DEFAULT 'offline',
		wallet_balance NUMERIC(12,2) NOT NULL DEFAULT 0,
		current_lat DOUBLE PRECISION,
		current_lng DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS bank_accounts (
		key TEXT PRIMARY KEY,
		rider_id TEXT NOT NULL REFERENCES riders(id) ON DELETE CASCADE,
		bank_name TEXT NOT NULL,
		account_number TEXT NOT NULL,
		account_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'available',
		food_total NUMERIC(12,2) NOT NULL DEFAULT 0,
		delivery_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
		customer_name TEXT NOT NULL DEFAULT '',
		pickup_name TEXT NOT NULL DEFAULT '',
		pickup_address TEXT NOT NULL DEFAULT '',
		pickup_phone TEXT NOT NULL DEFAULT '',
		pickup_lat DOUBLE PRECISION,
		pickup_lng DOUBLE PRECISION,
		dropoff_name TEXT NOT NULL DEFAULT '',
		dropoff_contact TEXT NOT NULL DEFAULT '',
		dropoff_address TEXT NOT NULL DEFAULT '',
		dropoff_lat DOUBLE PRECISION,
		dropoff_lng DOUBLE PRECISION,
		assigned_rider TEXT REFERENCES riders(id),
		cancellation_reason TEXT NOT NULL DEFAULT '',
		cancelled_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS orders_available_idx ON orders (created_at, id) WHERE status = 'available';
	CREATE UNIQUE INDEX IF NOT EXISTS orders_one_active_per_rider ON orders (assigned_rider) WHERE status IN ('assigned', 'en_route');
	CREATE TABLE IF NOT EXISTS withdrawal_requests (
		id TEXT PRIMARY KEY,
		rider_id TEXT NOT NULL REFERENCES riders(id),
		amount NUMERIC(12,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		bank_name TEXT NOT NULL,
		account_number TEXT NOT NULL,
		account_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS announcements (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		target TEXT NOT NULL DEFAULT 'all',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE OR REPLACE FUNCTION notify_order_change() RETURNS trigger AS $$
	DECLARE
		transition TEXT;
	BEGIN
		IF NEW.status = 'available' AND (TG_OP = 'INSERT' OR OLD.status <> 'available') THEN
			transition := 'appear';
		ELSIF TG_OP = 'UPDATE' AND OLD.status = 'available' AND NEW.status <> 'available' THEN
			transition := 'disappear';
		ELSIF TG_OP = 'UPDATE' AND NEW.status = 'available' THEN
			transition := 'update';
		ELSE
			RETURN NEW;
		END IF;
		PERFORM pg_notify('` + OrdersChannel + `', json_build_object('order_id', NEW.id, 'transition', transition)::text);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;
	DROP TRIGGER IF EXISTS orders_notify ON orders;
	CREATE TRIGGER orders_notify AFTER INSERT OR UPDATE ON orders
		FOR EACH ROW EXECUTE FUNCTION notify_order_change();`

	_, err := store.db.Exec(ctx, initSchemaQuery)
	return err
}

func NewPostgreStorage(ctx context.Context, DatabaseURI string, logger *zap.SugaredLogger) (*PostgresStorage, error) {
	db, err := pgxpool.New(ctx, DatabaseURI)
	if err != nil {
		return nil, err
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := storage.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return storage, nil
}

func (store *PostgresStorage) Ping(ctx context.Context) error {
	return store.db.Ping(ctx)
}

func (store *PostgresStorage) Close() {
	store.db.Close()
}

const riderColumns = `id, username, full_name, phone, vehicle_type, vehicle_number,
	availability, wallet_balance, current_lat, current_lng`

func scanRider(row pgx.Row, extra ...any) (model.Rider, error) {
	var r model.Rider
	var lat, lng *float64

	dest := []any{&r.ID, &r.Username, &r.FullName, &r.Phone, &r.VehicleType, &r.VehicleNumber,
		&r.Availability, &r.WalletBalance, &lat, &lng}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return model.Rider{}, err
	}
	r.CurrentLocation = point(lat, lng)
	return r, nil
}

func (s *PostgresStorage) CreateRider(ctx context.Context, reg model.Registration, passwordHash string) (model.Rider, error) {
	query := `
		INSERT INTO riders (id, username, password_hash, full_name, phone, vehicle_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + riderColumns

	row := s.db.QueryRow(ctx, query, uuid.NewString(), reg.Username, passwordHash, reg.FullName, reg.Phone, reg.VehicleType)
	rider, err := scanRider(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.Rider{}, errs.ErrUsernameTaken
		}
		return model.Rider{}, fmt.Errorf("insert rider: %w", err)
	}

	return rider, nil
}

func (s *PostgresStorage) GetRiderByUsername(ctx context.Context, username string) (model.Rider, string, error) {
	query := `SELECT ` + riderColumns + `, password_hash FROM riders WHERE username = $1`

	var hash string
	rider, err := scanRider(s.db.QueryRow(ctx, query, username), &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Rider{}, "", errs.ErrRiderNotFound
		}
		return model.Rider{}, "", fmt.Errorf("get rider by username: %w", err)
	}

	return rider, hash, nil
}

func (s *PostgresStorage) GetRiderByID(ctx context.Context, id string) (model.Rider, error) {
	query := `SELECT ` + riderColumns + ` FROM riders WHERE id = $1`

	rider, err := scanRider(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Rider{}, errs.ErrRiderNotFound
		}
		return model.Rider{}, fmt.Errorf("get rider by id: %w", err)
	}

	rider.BankAccounts, err = s.getBankAccounts(ctx, id)
	if err != nil {
		return model.Rider{}, err
	}

	return rider, nil
}

func (s *PostgresStorage) UpdateProfile(ctx context.Context, riderID string, p model.ProfileUpdate) error {
	const query = `
		UPDATE riders
		SET full_name = $2, phone = $3, vehicle_number = $4
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, riderID, p.FullName, p.Phone, p.VehicleNumber)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrRiderNotFound
	}

	return nil
}

func (s *PostgresStorage) SetAvailability(ctx context.Context, riderID string, availability model.Availability) error {
	const query = `UPDATE riders SET availability = $2 WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, riderID, availability)
	if err != nil {
		return fmt.Errorf("set availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrRiderNotFound
	}

	return nil
}

func (s *PostgresStorage) UpdateLocation(ctx context.Context, riderID string, p model.GeoPoint) error {
	const query = `UPDATE riders SET current_lat = $2, current_lng = $3 WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, riderID, p.Lat, p.Lng)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrRiderNotFound
	}

	return nil
}

func (s *PostgresStorage) GetWalletBalance(ctx context.Context, riderID string) (decimal.Decimal, error) {
	const query = `SELECT wallet_balance FROM riders WHERE id = $1`

	var balance decimal.Decimal
	err := s.db.QueryRow(ctx, query, riderID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, errs.ErrRiderNotFound
		}
		return decimal.Zero, fmt.Errorf("get wallet balance: %w", err)
	}

	return balance, nil
}

func (s *PostgresStorage) getBankAccounts(ctx context.Context, riderID string) ([]model.BankAccount, error) {
	const query = `
		SELECT key, bank_name, account_number, account_name
		FROM bank_accounts
		WHERE rider_id = $1
		ORDER BY created_at`

	rows, err := s.db.Query(ctx, query, riderID)
	if err != nil {
		return nil, fmt.Errorf("get bank accounts: %w", err)
	}
	defer rows.Close()

	list := []model.BankAccount{}
	for rows.Next() {
		var acc model.BankAccount
		if err := rows.Scan(&acc.Key, &acc.BankName, &acc.AccountNumber, &acc.AccountName); err != nil {
			return nil, fmt.Errorf("scan bank account: %w", err)
		}
		list = append(list, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return list, nil
}

func (s *PostgresStorage) AddBankAccount(ctx context.Context, riderID string, req model.BankAccountRequest) (model.BankAccount, error) {
	const query = `
		INSERT INTO bank_accounts (key, rider_id, bank_name, account_number, account_name)
		VALUES ($1, $2, $3, $4, $5)`

	acc := model.BankAccount{
		Key:           uuid.NewString(),
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	}

	_, err := s.db.Exec(ctx, query, acc.Key, riderID, acc.BankName, acc.AccountNumber, acc.AccountName)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.BankAccount{}, errs.ErrRiderNotFound
		}
		return model.BankAccount{}, fmt.Errorf("insert bank account: %w", err)
	}

	return acc, nil
}

func (s *PostgresStorage) RemoveBankAccount(ctx context.Context, riderID, key string) error {
	const query = `DELETE FROM bank_accounts WHERE rider_id = $1 AND key = $2`

	tag, err := s.db.Exec(ctx, query, riderID, key)
	if err != nil {
		return fmt.Errorf("delete bank account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrBankAccountNotFound
	}

	return nil
}

func (s *PostgresStorage) CreateWithdrawal(ctx context.Context, w model.WithdrawalRequest) (model.WithdrawalRequest, error) {
	const query = `
		INSERT INTO withdrawal_requests (id, rider_id, amount, status, bank_name, account_number, account_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	w.ID = uuid.NewString()
	err := s.db.QueryRow(ctx, query, w.ID, w.RiderID, w.Amount, w.Status, w.BankName, w.AccountNumber, w.AccountName).
		Scan(&w.CreatedAt)
	if err != nil {
		return model.WithdrawalRequest{}, fmt.Errorf("insert withdrawal: %w", err)
	}

	return w, nil
}

func (s *PostgresStorage) GetWithdrawals(ctx context.Context, riderID string) ([]model.WithdrawalRequest, error) {
	const query = `
		SELECT id, rider_id, amount, status, bank_name, account_number, account_name, created_at
		FROM withdrawal_requests
		WHERE rider_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, riderID)
	if err != nil {
		return nil, fmt.Errorf("get withdrawals: %w", err)
	}
	defer rows.Close()

	var list []model.WithdrawalRequest
	for rows.Next() {
		var w model.WithdrawalRequest
		err := rows.Scan(&w.ID, &w.RiderID, &w.Amount, &w.Status, &w.BankName, &w.AccountNumber, &w.AccountName, &w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		list = append(list, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return list, nil
}

func (s *PostgresStorage) GetAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	const query = `
		SELECT id, title, message, target, created_at
		FROM announcements
		WHERE target IN ('all', 'riders')
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get announcements: %w", err)
	}
	defer rows.Close()

	var list []model.Announcement
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Message, &a.Target, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		list = append(list, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return list, nil
}

// GetDashboard gathers the home screen in one round of queries. Recent
// deliveries are the last three completed orders.
func (s *PostgresStorage) GetDashboard(ctx context.Context, riderID string) (model.Dashboard, error) {
	const summaryQuery = `
		SELECT
			r.wallet_balance,
			(SELECT COUNT(*) FROM orders WHERE status = 'available'),
			EXISTS (SELECT 1 FROM orders WHERE assigned_rider = r.id AND status IN ('assigned', 'en_route')),
			COALESCE((SELECT id FROM announcements WHERE target IN ('all', 'riders') ORDER BY created_at DESC LIMIT 1), '')
		FROM riders r
		WHERE r.id = $1`

	var d model.Dashboard
	err := s.db.QueryRow(ctx, summaryQuery, riderID).
		Scan(&d.WalletBalance, &d.PendingOrders, &d.HasActiveOrder, &d.NewestAnnouncement)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Dashboard{}, errs.ErrRiderNotFound
		}
		return model.Dashboard{}, fmt.Errorf("get dashboard: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE assigned_rider = $1 AND status = 'completed'
		ORDER BY updated_at DESC
		LIMIT 3`

	d.RecentDeliveries, err = s.queryOrders(ctx, query, riderID)
	if err != nil {
		return model.Dashboard{}, err
	}

	return d, nil
}

func point(lat, lng *float64) *model.GeoPoint {
	if lat == nil || lng == nil {
		return nil
	}
	return &model.GeoPoint{Lat: *lat, Lng: *lng}
}

func statusList(statuses []model.OrderStatus) string {
	quoted := make([]string, len(statuses))
	for i, st := range statuses {
		quoted[i] = "'" + string(st) + "'"
	}
	return strings.Join(quoted, ", ")
}
