package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

type Mysql struct {
	db *sql.DB
}

func NewMysql(connString string) (*Mysql, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	instance := Mysql{
		db: db,
	}

	if err = instance.createSchemaIfNotExists(); err != nil {
		return nil, err
	}

	return &instance, nil
}

func (s *Mysql) Close() error {
	return s.db.Close()
}

func (s *Mysql) AddOrderEvent(ctx context.Context, event OrderEvent) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO order_events (
            exchange,
            market_id,
            order_id,
            client_order_id,
            action,
            order_type,
            quantity,
            price,
            simulated,
            created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		event.Exchange,
		event.MarketID,
		event.OrderID,
		event.ClientOrderID,
		event.Action,
		event.OrderType,
		event.Quantity,
		event.Price,
		event.Simulated,
		createdAt.UnixMilli(),
	)

	return err
}

func (s *Mysql) OrderEvents(ctx context.Context, marketID string) ([]OrderEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT
            id,
            exchange,
            market_id,
            order_id,
            client_order_id,
            action,
            order_type,
            quantity,
            price,
            simulated,
            created_at
        FROM order_events
        WHERE market_id = ?
        ORDER BY id
    `, marketID)
	if err != nil {
		return []OrderEvent{}, err
	}
	defer rows.Close()

	var events []OrderEvent

	for rows.Next() {
		var event OrderEvent
		var createdAt int64

		err := rows.Scan(
			&event.ID,
			&event.Exchange,
			&event.MarketID,
			&event.OrderID,
			&event.ClientOrderID,
			&event.Action,
			&event.OrderType,
			&event.Quantity,
			&event.Price,
			&event.Simulated,
			&createdAt,
		)
		if err != nil {
			return []OrderEvent{}, err
		}
		event.CreatedAt = time.UnixMilli(createdAt).UTC()

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return []OrderEvent{}, err
	}

	return events, nil
}

func (s *Mysql) createSchemaIfNotExists() error {
	q := `
        CREATE TABLE IF NOT EXISTS order_events (
            id BIGINT PRIMARY KEY AUTO_INCREMENT,
            exchange VARCHAR(32),
            market_id VARCHAR(32),
            order_id VARCHAR(64),
            client_order_id VARCHAR(64),
            action VARCHAR(32),
            order_type VARCHAR(8),
            quantity VARCHAR(32),
            price VARCHAR(32),
            simulated TINYINT(1),
            created_at BIGINT,
            INDEX idx_market_id (market_id)
        )
    `

	stmt, err := s.db.Prepare(q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec()
	if err != nil {
		return err
	}

	return nil
}
