package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/tradecoach/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateTradesTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		auth_provider TEXT DEFAULT 'local',
		is_email_verified BOOLEAN DEFAULT FALSE,
		email_verification_token TEXT,
		email_verification_token_expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		trade_id TEXT NOT NULL,
		trade_date TEXT NOT NULL,
		side TEXT NOT NULL,
		instrument TEXT NOT NULL,
		isin TEXT,
		quantity REAL,
		price REAL,
		total_fees REAL,
		fee_currency TEXT,
		amount REAL,
		amount_currency TEXT,
		amount_nok REAL,
		currency TEXT,
		exchange_rate REAL,
		FOREIGN KEY(user_id) REFERENCES users(id),
		UNIQUE(user_id, trade_id)
	);

	CREATE TABLE IF NOT EXISTS ticker_mappings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		isin TEXT NOT NULL,
		instrument TEXT NOT NULL,
		ticker TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		is_norwegian_fund BOOLEAN DEFAULT FALSE,
		FOREIGN KEY(user_id) REFERENCES users(id),
		UNIQUE(user_id, isin)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateTradesTable adds columns introduced after the first release to
// existing trades tables.
func migrateTradesTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='trades'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return // table will be created with the full schema
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'trades' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'trades' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(trades)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'trades'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'trades': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'trades'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'trades': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'trades'", "error", err)
		}
		return
	}

	if _, ok := columnExists["exchange_rate"]; !ok {
		if _, err := DB.Exec("ALTER TABLE trades ADD COLUMN exchange_rate REAL DEFAULT 0"); err != nil {
			logger.L.Error("Error adding 'exchange_rate' column to 'trades' table", "error", err)
		} else {
			logger.L.Info("Added 'exchange_rate' column to 'trades' table")
		}
	}
	if _, ok := columnExists["fee_currency"]; !ok {
		if _, err := DB.Exec("ALTER TABLE trades ADD COLUMN fee_currency TEXT DEFAULT 'NOK'"); err != nil {
			logger.L.Error("Error adding 'fee_currency' column to 'trades' table", "error", err)
		} else {
			logger.L.Info("Added 'fee_currency' column to 'trades' table")
		}
	}
	if _, ok := columnExists["amount_currency"]; !ok {
		if _, err := DB.Exec("ALTER TABLE trades ADD COLUMN amount_currency TEXT DEFAULT 'NOK'"); err != nil {
			logger.L.Error("Error adding 'amount_currency' column to 'trades' table", "error", err)
		} else {
			logger.L.Info("Added 'amount_currency' column to 'trades' table")
		}
	}
}
