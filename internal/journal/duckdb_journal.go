package journal

import (
	"database/sql"
	"io"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"go.uber.org/zap"
)

var recordColumns = []string{
	"cycle_id", "signal_id", "recorded_at", "signal_time", "symbol", "direction", "strategy",
	"price", "regime", "bias", "confidence", "rsi", "breakout_level", "outcome", "error",
}

// DuckDBJournal records signal outcomes in an in-memory DuckDB database.
type DuckDBJournal struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBJournal creates a new in-memory journal.
func NewDuckDBJournal(log *logger.Logger) (*DuckDBJournal, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open database", err)
	}

	// Test connection to ensure database is properly initialized
	if err := db.Ping(); err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		closeDatabase(db, log)

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to connect to database", err)
	}

	journal := &DuckDBJournal{
		db:     db,
		logger: log.Named("journal"),
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := journal.initialize(); err != nil {
		closeDatabase(db, log)

		return nil, err
	}

	return journal, nil
}

// closeDatabase releases a database that failed setup.
func closeDatabase(db io.Closer, log *logger.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("Failed to close database", zap.Error(err))
	}
}

// Record implements Journal.
func (j *DuckDBJournal) Record(record types.SignalRecord) error {
	if j == nil || j.db == nil {
		return errors.New(errors.ErrCodeDataSourceUnavailable, "journal or database is nil")
	}

	var nextID int

	if err := j.db.QueryRow("SELECT nextval('signal_record_id_seq')").Scan(&nextID); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to get next ID from sequence", err)
	}

	s := record.Signal

	insertQuery := j.sq.
		Insert("signal_records").
		Columns(append([]string{"id"}, recordColumns...)...).
		Values(
			nextID,
			record.CycleID,
			s.ID,
			record.RecordedAt.UTC(),
			s.Time.UTC(),
			s.Symbol,
			string(s.Direction),
			string(s.Strategy),
			s.Price,
			string(s.Regime),
			string(s.Bias),
			string(s.Confidence),
			nullable(s.RSI),
			nullable(s.BreakoutLevel),
			string(record.Outcome),
			record.Error,
		).
		RunWith(j.db)

	if _, err := insertQuery.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert signal record", err)
	}

	return nil
}

// Query implements Journal.
func (j *DuckDBJournal) Query(filter Filter) ([]types.SignalRecord, error) {
	if j == nil || j.db == nil {
		return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "journal or database is nil")
	}

	selectQuery := j.sq.
		Select(recordColumns...).
		From("signal_records").
		OrderBy("recorded_at DESC", "id DESC")

	if filter.Symbol != "" {
		selectQuery = selectQuery.Where(squirrel.Eq{"symbol": filter.Symbol})
	}

	if filter.Outcome != "" {
		selectQuery = selectQuery.Where(squirrel.Eq{"outcome": string(filter.Outcome)})
	}

	if !filter.Since.IsZero() {
		selectQuery = selectQuery.Where(squirrel.GtOrEq{"recorded_at": filter.Since.UTC()})
	}

	if filter.Limit > 0 {
		selectQuery = selectQuery.Limit(uint64(filter.Limit))
	}

	rows, err := selectQuery.RunWith(j.db).Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query signal records", err)
	}
	defer rows.Close()

	var records []types.SignalRecord

	for rows.Next() {
		var record types.SignalRecord

		var direction, strategy, regime, bias, confidence, outcome string

		var rsi, level sql.NullFloat64

		err := rows.Scan(
			&record.CycleID,
			&record.Signal.ID,
			&record.RecordedAt,
			&record.Signal.Time,
			&record.Signal.Symbol,
			&direction,
			&strategy,
			&record.Signal.Price,
			&regime,
			&bias,
			&confidence,
			&rsi,
			&level,
			&outcome,
			&record.Error,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan signal record", err)
		}

		record.RecordedAt = record.RecordedAt.UTC()
		record.Signal.Time = record.Signal.Time.UTC()
		record.Signal.Direction = types.Direction(direction)
		record.Signal.Strategy = types.StrategyName(strategy)
		record.Signal.Regime = types.Regime(regime)
		record.Signal.Bias = types.Bias(bias)
		record.Signal.Confidence = types.Confidence(confidence)
		record.Signal.RSI = fromNullable(rsi)
		record.Signal.BreakoutLevel = fromNullable(level)
		record.Outcome = types.SignalOutcome(outcome)

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating signal records", err)
	}

	return records, nil
}

// Counts implements Journal.
func (j *DuckDBJournal) Counts() (map[types.SignalOutcome]int, error) {
	if j == nil || j.db == nil {
		return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "journal or database is nil")
	}

	rows, err := j.sq.
		Select("outcome", "COUNT(*)").
		From("signal_records").
		GroupBy("outcome").
		RunWith(j.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count signal records", err)
	}
	defer rows.Close()

	counts := make(map[types.SignalOutcome]int)

	for rows.Next() {
		var outcome string

		var count int

		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan count", err)
		}

		counts[types.SignalOutcome(outcome)] = count
	}

	return counts, rows.Err()
}

// Prune implements Journal.
func (j *DuckDBJournal) Prune(before time.Time) (int, error) {
	if j == nil || j.db == nil {
		return 0, errors.New(errors.ErrCodeDataSourceUnavailable, "journal or database is nil")
	}

	result, err := j.sq.
		Delete("signal_records").
		Where(squirrel.Lt{"recorded_at": before.UTC()}).
		RunWith(j.db).
		Exec()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to prune signal records", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read pruned row count", err)
	}

	if removed > 0 {
		j.logger.Debug("Pruned signal records", zap.Int64("removed", removed), zap.Time("before", before))
	}

	return int(removed), nil
}

// Close closes the database connection.
func (j *DuckDBJournal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}

	return j.db.Close()
}

// initialize creates the sequence and table for signal records.
func (j *DuckDBJournal) initialize() error {
	_, err := j.db.Exec(`CREATE SEQUENCE IF NOT EXISTS signal_record_id_seq`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create sequence", err)
	}

	_, err = j.db.Exec(`
		CREATE TABLE IF NOT EXISTS signal_records (
			id INTEGER PRIMARY KEY,
			cycle_id TEXT,
			signal_id TEXT,
			recorded_at TIMESTAMP,
			signal_time TIMESTAMP,
			symbol TEXT,
			direction TEXT,
			strategy TEXT,
			price DOUBLE,
			regime TEXT,
			bias TEXT,
			confidence TEXT,
			rsi DOUBLE,
			breakout_level DOUBLE,
			outcome TEXT,
			error TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create signal_records table", err)
	}

	return nil
}

func nullable(v optional.Option[float64]) any {
	if v.IsNone() {
		return nil
	}

	return v.Unwrap()
}

func fromNullable(v sql.NullFloat64) optional.Option[float64] {
	if !v.Valid {
		return optional.None[float64]()
	}

	return optional.Some(v.Float64)
}
