package postgres

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/stormarchive/timeline-service/internal/config"
	"github.com/stormarchive/timeline-service/internal/storage"
	"github.com/stormarchive/timeline-service/internal/types"
	"github.com/stormarchive/timeline-service/internal/types/admins"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	log.Println("Connected to Postgres database")

	pg := &Postgres{Db: db}
	err = pg.CreateTables()
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS events (
			id SERIAL PRIMARY KEY,
			event_date DATE NOT NULL,
			event_type VARCHAR(255) NOT NULL,
			location TEXT NOT NULL,
			title TEXT NOT NULL,
			short_description TEXT NOT NULL,
			summary TEXT NOT NULL,
			impact TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS media (
			id SERIAL PRIMARY KEY,
			event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			object_key VARCHAR(255) NOT NULL,
			url TEXT NOT NULL,
			caption TEXT NOT NULL,
			content_type VARCHAR(100) NOT NULL,
			size BIGINT NOT NULL,
			uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS security_questions (
			id SERIAL PRIMARY KEY,
			question TEXT NOT NULL
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS admins (
			id SERIAL PRIMARY KEY,
			username VARCHAR(255) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			security_question_id INTEGER REFERENCES security_questions(id),
			security_answer_hash TEXT,
			is_protected BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS about_sections (
			id SERIAL PRIMARY KEY,
			heading TEXT NOT NULL,
			body TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS team_members (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			bio TEXT NOT NULL,
			photo_url TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0
		);
		`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) CreateEvent(req types.EventRequest) (string, error) {
	var eventID int
	query := `
	INSERT INTO events (event_date, event_type, location, title, short_description, summary, impact)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id
	`

	err := p.Db.QueryRow(query, req.EventDate, req.Type, req.Location, req.Title,
		req.ShortDescription, req.Summary, req.Impact).Scan(&eventID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", eventID), nil
}

func (p *Postgres) UpdateEvent(id string, req types.EventRequest) error {
	query := `
	UPDATE events
	SET event_date = $1, event_type = $2, location = $3, title = $4,
	    short_description = $5, summary = $6, impact = $7, updated_at = CURRENT_TIMESTAMP
	WHERE id = $8
	`

	result, err := p.Db.Exec(query, req.EventDate, req.Type, req.Location, req.Title,
		req.ShortDescription, req.Summary, req.Impact, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (p *Postgres) DeleteEvent(id string) error {
	result, err := p.Db.Exec(`DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

const eventColumns = `id, to_char(event_date, 'YYYY-MM-DD'), event_type, location, title,
	short_description, summary, impact, to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"'),
	to_char(updated_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"')`

func scanEvent(row interface{ Scan(...interface{}) error }) (types.Event, error) {
	var ev types.Event
	var id int
	err := row.Scan(&id, &ev.EventDate, &ev.Type, &ev.Location, &ev.Title,
		&ev.ShortDescription, &ev.Summary, &ev.Impact, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return types.Event{}, err
	}
	ev.ID = fmt.Sprintf("%d", id)
	return ev, nil
}

func (p *Postgres) GetEvent(id string) (types.Event, error) {
	row := p.Db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return types.Event{}, storage.ErrNotFound
	}
	return ev, err
}

func (p *Postgres) ListEvents() ([]types.Event, error) {
	rows, err := p.Db.Query(`SELECT ` + eventColumns + ` FROM events ORDER BY event_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []types.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func (p *Postgres) CreateMedia(item types.MediaItem) (string, error) {
	var mediaID int
	query := `
	INSERT INTO media (event_id, object_key, url, caption, content_type, size)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
	`

	err := p.Db.QueryRow(query, item.EventID, item.ObjectKey, item.URL,
		item.Caption, item.ContentType, item.Size).Scan(&mediaID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", mediaID), nil
}

const mediaColumns = `id, event_id, object_key, url, caption, content_type, size, uploaded_at`

func scanMedia(row interface{ Scan(...interface{}) error }) (types.MediaItem, error) {
	var item types.MediaItem
	var id, eventID int
	err := row.Scan(&id, &eventID, &item.ObjectKey, &item.URL, &item.Caption,
		&item.ContentType, &item.Size, &item.UploadedAt)
	if err != nil {
		return types.MediaItem{}, err
	}
	item.ID = fmt.Sprintf("%d", id)
	item.EventID = fmt.Sprintf("%d", eventID)
	return item, nil
}

func (p *Postgres) ListMedia(eventID string) ([]types.MediaItem, error) {
	rows, err := p.Db.Query(`SELECT `+mediaColumns+` FROM media WHERE event_id = $1 ORDER BY id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []types.MediaItem{}
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (p *Postgres) GetMedia(mediaID string) (types.MediaItem, error) {
	row := p.Db.QueryRow(`SELECT `+mediaColumns+` FROM media WHERE id = $1`, mediaID)
	item, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return types.MediaItem{}, storage.ErrNotFound
	}
	return item, err
}

func (p *Postgres) UpdateMediaCaption(mediaID, caption string) error {
	result, err := p.Db.Exec(`UPDATE media SET caption = $1 WHERE id = $2`, caption, mediaID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (p *Postgres) DeleteMedia(eventID, mediaID string) error {
	result, err := p.Db.Exec(`DELETE FROM media WHERE id = $1 AND event_id = $2`, mediaID, eventID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ListObjectKeys returns every object key still referenced by a media
// row. The sweeper diffs this against the bucket contents.
func (p *Postgres) ListObjectKeys() ([]string, error) {
	rows, err := p.Db.Query(`SELECT object_key FROM media`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

const adminColumns = `id, username, password_hash, security_question_id, security_answer_hash,
	is_protected, to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"')`

func scanAdmin(row interface{ Scan(...interface{}) error }) (admins.Admin, error) {
	var a admins.Admin
	var id int
	var questionID sql.NullInt64
	var answerHash sql.NullString
	err := row.Scan(&id, &a.Username, &a.PasswordHash, &questionID, &answerHash,
		&a.IsProtected, &a.CreatedAt)
	if err != nil {
		return admins.Admin{}, err
	}
	a.ID = fmt.Sprintf("%d", id)
	if questionID.Valid {
		a.SecurityQuestionID = fmt.Sprintf("%d", questionID.Int64)
	}
	if answerHash.Valid {
		a.SecurityAnswerHash = answerHash.String
	}
	return a, nil
}

func (p *Postgres) GetAdminByUsername(username string) (admins.Admin, error) {
	row := p.Db.QueryRow(`SELECT `+adminColumns+` FROM admins WHERE username = $1`, username)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return admins.Admin{}, storage.ErrNotFound
	}
	return a, err
}

func (p *Postgres) GetAdmin(id string) (admins.Admin, error) {
	row := p.Db.QueryRow(`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return admins.Admin{}, storage.ErrNotFound
	}
	return a, err
}

func (p *Postgres) ListAdmins() ([]admins.Admin, error) {
	rows, err := p.Db.Query(`SELECT ` + adminColumns + ` FROM admins ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []admins.Admin{}
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

func (p *Postgres) CreateAdmin(username, passwordHash, questionID, answerHash string) (string, error) {
	var adminID int
	query := `
	INSERT INTO admins (username, password_hash, security_question_id, security_answer_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`

	err := p.Db.QueryRow(query, username, passwordHash,
		nullable(questionID), nullable(answerHash)).Scan(&adminID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", adminID), nil
}

// UpdateAdmin replaces the credentials of an unprotected account. An
// empty passwordHash keeps the current password; empty question and
// answer clear the challenge.
func (p *Postgres) UpdateAdmin(id, passwordHash, questionID, answerHash string) error {
	protected, err := p.adminProtected(id)
	if err != nil {
		return err
	}
	if protected {
		return storage.ErrProtected
	}

	query := `
	UPDATE admins
	SET password_hash = COALESCE(NULLIF($1, ''), password_hash),
	    security_question_id = $2,
	    security_answer_hash = $3
	WHERE id = $4
	`

	_, err = p.Db.Exec(query, passwordHash, nullable(questionID), nullable(answerHash), id)
	return err
}

func (p *Postgres) DeleteAdmin(id string) error {
	protected, err := p.adminProtected(id)
	if err != nil {
		return err
	}
	if protected {
		return storage.ErrProtected
	}

	_, err = p.Db.Exec(`DELETE FROM admins WHERE id = $1`, id)
	return err
}

func (p *Postgres) adminProtected(id string) (bool, error) {
	var protected bool
	err := p.Db.QueryRow(`SELECT is_protected FROM admins WHERE id = $1`, id).Scan(&protected)
	if err == sql.ErrNoRows {
		return false, storage.ErrNotFound
	}
	return protected, err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (p *Postgres) GetSecurityQuestion(id string) (admins.SecurityQuestion, error) {
	var q admins.SecurityQuestion
	var qid int
	err := p.Db.QueryRow(`SELECT id, question FROM security_questions WHERE id = $1`, id).
		Scan(&qid, &q.Question)
	if err == sql.ErrNoRows {
		return admins.SecurityQuestion{}, storage.ErrNotFound
	}
	if err != nil {
		return admins.SecurityQuestion{}, err
	}
	q.ID = fmt.Sprintf("%d", qid)
	return q, nil
}

func (p *Postgres) ListSecurityQuestions() ([]admins.SecurityQuestion, error) {
	rows, err := p.Db.Query(`SELECT id, question FROM security_questions ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []admins.SecurityQuestion{}
	for rows.Next() {
		var q admins.SecurityQuestion
		var id int
		if err := rows.Scan(&id, &q.Question); err != nil {
			return nil, err
		}
		q.ID = fmt.Sprintf("%d", id)
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

func (p *Postgres) ListAboutSections() ([]types.AboutSection, error) {
	rows, err := p.Db.Query(`SELECT id, heading, body, position FROM about_sections ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []types.AboutSection{}
	for rows.Next() {
		var s types.AboutSection
		var id int
		if err := rows.Scan(&id, &s.Heading, &s.Body, &s.Position); err != nil {
			return nil, err
		}
		s.ID = fmt.Sprintf("%d", id)
		sections = append(sections, s)
	}

	return sections, rows.Err()
}

func (p *Postgres) ListTeamMembers() ([]types.TeamMember, error) {
	rows, err := p.Db.Query(`SELECT id, name, role, bio, photo_url, position FROM team_members ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []types.TeamMember{}
	for rows.Next() {
		var m types.TeamMember
		var id int
		if err := rows.Scan(&id, &m.Name, &m.Role, &m.Bio, &m.PhotoURL, &m.Position); err != nil {
			return nil, err
		}
		m.ID = fmt.Sprintf("%d", id)
		members = append(members, m)
	}

	return members, rows.Err()
}
