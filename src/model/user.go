package model

import (
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID                              int            `json:"id"`
	Username                        string         `json:"username"`
	Email                           string         `json:"email"`
	Password                        string         `json:"-"`
	AuthProvider                    string         `json:"auth_provider"`
	IsEmailVerified                 bool           `json:"is_email_verified"`
	EmailVerificationToken          sql.NullString `json:"-"`
	EmailVerificationTokenExpiresAt sql.NullTime   `json:"-"`
	CreatedAt                       time.Time      `json:"created_at"`
	UpdatedAt                       time.Time      `json:"updated_at"`
}

type Session struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	UserAgent    string    `json:"user_agent"`
	ClientIP     string    `json:"client_ip"`
	IsBlocked    bool      `json:"is_blocked"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

var ErrUserNotFound = errors.New("user not found")

// HashPassword hashes the user's password using bcrypt.
func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a given password with the user's hashed password.
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// CreateUser inserts a new user into the database and sets u.ID.
func (u *User) CreateUser(db *sql.DB) error {
	query := `
	INSERT INTO users (username, password, email, auth_provider, is_email_verified, email_verification_token, email_verification_token_expires_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	if u.AuthProvider == "" {
		u.AuthProvider = "local"
	}

	res, err := db.Exec(query,
		u.Username,
		u.Password,
		u.Email,
		u.AuthProvider,
		u.IsEmailVerified,
		u.EmailVerificationToken,
		u.EmailVerificationTokenExpiresAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = int(id)
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Email,
		&user.AuthProvider,
		&user.IsEmailVerified,
		&user.EmailVerificationToken,
		&user.EmailVerificationTokenExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

const userSelectColumns = `id, username, password, email, auth_provider, is_email_verified, email_verification_token, email_verification_token_expires_at`

// GetUserByUsername retrieves a user by username.
func GetUserByUsername(db *sql.DB, username string) (*User, error) {
	row := db.QueryRow(`SELECT `+userSelectColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// GetUserByID retrieves a user by primary key.
func GetUserByID(db *sql.DB, id int64) (*User, error) {
	row := db.QueryRow(`SELECT `+userSelectColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email address.
func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	row := db.QueryRow(`SELECT `+userSelectColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetUserByVerificationToken retrieves a user whose verification token is
// still valid.
func GetUserByVerificationToken(db *sql.DB, token string) (*User, error) {
	row := db.QueryRow(`SELECT `+userSelectColumns+` FROM users
		WHERE email_verification_token = ? AND email_verification_token_expires_at > ?`, token, time.Now())
	return scanUser(row)
}

// MarkEmailVerified clears the verification token and flags the user verified.
func (u *User) MarkEmailVerified(db *sql.DB) error {
	_, err := db.Exec(`UPDATE users
		SET is_email_verified = TRUE, email_verification_token = NULL, email_verification_token_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, u.ID)
	if err == nil {
		u.IsEmailVerified = true
	}
	return err
}

// CreateSession inserts a new session into the database.
func CreateSession(db *sql.DB, session *Session) error {
	query := `
	INSERT INTO sessions (user_id, token, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	session.CreatedAt = time.Now()
	_, err := db.Exec(query,
		session.UserID,
		session.Token,
		session.RefreshToken,
		session.UserAgent,
		session.ClientIP,
		session.IsBlocked,
		session.ExpiresAt,
		session.CreatedAt,
	)
	return err
}

// GetSessionByToken retrieves an active, non-blocked session by access token.
func GetSessionByToken(db *sql.DB, token string) (*Session, error) {
	query := `
	SELECT id, user_id, token, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at
	FROM sessions
	WHERE token = ? AND is_blocked = FALSE AND expires_at > ?`

	row := db.QueryRow(query, token, time.Now())
	var session Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.RefreshToken,
		&session.UserAgent,
		&session.ClientIP,
		&session.IsBlocked,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found, expired, or blocked")
		}
		return nil, err
	}
	return &session, nil
}

// GetSessionByRefreshToken retrieves a session by its refresh token.
func GetSessionByRefreshToken(db *sql.DB, refreshToken string) (*Session, error) {
	query := `
	SELECT id, user_id, token, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at
	FROM sessions
	WHERE refresh_token = ? AND is_blocked = FALSE AND expires_at > ?`

	row := db.QueryRow(query, refreshToken, time.Now())
	var session Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.RefreshToken,
		&session.UserAgent,
		&session.ClientIP,
		&session.IsBlocked,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found, expired, or blocked")
		}
		return nil, err
	}
	return &session, nil
}

// UpdateSessionToken swaps in a fresh access token after a refresh.
func UpdateSessionToken(db *sql.DB, sessionID int, newToken string) error {
	_, err := db.Exec(`UPDATE sessions SET token = ? WHERE id = ?`, newToken, sessionID)
	return err
}

// DeleteSessionByToken removes a session based on the access token. Deleting
// an already-gone session is not an error; logout must stay idempotent.
func DeleteSessionByToken(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}
