package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/encore-fm/backstage/models"
)

// DB is a wrapper around sql.DB
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Initialize sets up the database tables and performance PRAGMAs.
func (db *DB) Initialize() error {
	// WAL keeps setlist writes from blocking concurrent admin reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;"); err != nil {
		return err
	}

	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS concerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		artist_name TEXT NOT NULL,
		venue TEXT NOT NULL,
		date TIMESTAMP,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS setlist_songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		concert_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		song_name TEXT NOT NULL,
		artist_name TEXT,
		duration_seconds INTEGER,
		notes TEXT,
		external_track_id TEXT,
		external_track_url TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		is_official BOOLEAN NOT NULL DEFAULT 0,
		source_setlist_id TEXT,
		source_song_name TEXT,
		created_at TIMESTAMP,
		FOREIGN KEY (concert_id) REFERENCES concerts(id)
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_setlist_songs_concert ON setlist_songs(concert_id, position)`)
	return err
}

// CreateConcert adds a new concert row
func (db *DB) CreateConcert(c *models.Concert) (int64, error) {
	now := time.Now().UTC()

	result, err := db.Exec(`
	INSERT INTO concerts (artist_name, venue, date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)`,
		c.ArtistName, c.Venue, c.Date, now, now)

	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// GetConcert retrieves a concert by id, returning nil when it does not exist
func (db *DB) GetConcert(id int64) (*models.Concert, error) {
	concert := &models.Concert{}

	err := db.QueryRow(`
	SELECT id, artist_name, venue, date, created_at, updated_at
	FROM concerts WHERE id = ?`, id).Scan(
		&concert.ID, &concert.ArtistName, &concert.Venue,
		&concert.Date, &concert.CreatedAt, &concert.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return concert, nil
}

// ListConcerts returns the most recently created concerts
func (db *DB) ListConcerts(limit int) ([]*models.Concert, error) {
	rows, err := db.Query(`
	SELECT id, artist_name, venue, date, created_at, updated_at
	FROM concerts
	ORDER BY date DESC
	LIMIT ?`, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var concerts []*models.Concert

	for rows.Next() {
		concert := &models.Concert{}
		err := rows.Scan(
			&concert.ID, &concert.ArtistName, &concert.Venue,
			&concert.Date, &concert.CreatedAt, &concert.UpdatedAt)
		if err != nil {
			return nil, err
		}
		concerts = append(concerts, concert)
	}

	return concerts, rows.Err()
}

const setlistSongColumns = `id, concert_id, position, song_name, artist_name, duration_seconds,
	notes, external_track_id, external_track_url, status, is_official,
	source_setlist_id, source_song_name, created_at`

func scanSetlistSong(rows *sql.Rows) (models.SetlistSong, error) {
	var s models.SetlistSong
	err := rows.Scan(
		&s.ID, &s.ConcertID, &s.Position, &s.SongName, &s.ArtistName,
		&s.DurationSeconds, &s.Notes, &s.ExternalTrackID, &s.ExternalTrackURL,
		&s.Status, &s.IsOfficial, &s.SourceSetlistID, &s.SourceSongName,
		&s.CreatedAt)
	return s, err
}

// ListSetlistSongs returns a concert's setlist in performance order
func (db *DB) ListSetlistSongs(concertID int64) ([]models.SetlistSong, error) {
	rows, err := db.Query(`
	SELECT `+setlistSongColumns+`
	FROM setlist_songs
	WHERE concert_id = ?
	ORDER BY position ASC`, concertID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []models.SetlistSong

	for rows.Next() {
		s, err := scanSetlistSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}

	return songs, rows.Err()
}

// CountSetlistSongs returns the number of setlist rows for a concert
func (db *DB) CountSetlistSongs(concertID int64) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM setlist_songs WHERE concert_id = ?`, concertID).Scan(&count)
	return count, err
}

// InsertSetlistSong stores a single setlist row and returns its id
func (db *DB) InsertSetlistSong(s *models.SetlistSong) (int64, error) {
	var id int64

	err := db.QueryRow(`
	INSERT INTO setlist_songs (concert_id, position, song_name, artist_name, duration_seconds,
		notes, external_track_id, external_track_url, status, is_official,
		source_setlist_id, source_song_name, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id`,
		s.ConcertID, s.Position, s.SongName, s.ArtistName, s.DurationSeconds,
		s.Notes, s.ExternalTrackID, s.ExternalTrackURL, s.Status, s.IsOfficial,
		s.SourceSetlistID, s.SourceSongName, time.Now().UTC()).Scan(&id)

	return id, err
}

// InsertSetlistSongs stores a batch of setlist rows in order. Each insert is
// an independent statement; a failure part way through leaves the earlier
// rows committed.
func (db *DB) InsertSetlistSongs(songs []models.SetlistSong) ([]models.SetlistSong, error) {
	inserted := make([]models.SetlistSong, 0, len(songs))

	for _, s := range songs {
		id, err := db.InsertSetlistSong(&s)
		if err != nil {
			return inserted, fmt.Errorf("insert setlist song %q: %w", s.SongName, err)
		}
		s.ID = id
		inserted = append(inserted, s)
	}

	return inserted, nil
}

// DeleteSetlistSongs removes every setlist row for a concert
func (db *DB) DeleteSetlistSongs(concertID int64) (int64, error) {
	result, err := db.Exec(`DELETE FROM setlist_songs WHERE concert_id = ?`, concertID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// UpdateSetlistSongPosition is a single point-update of one row's position
func (db *DB) UpdateSetlistSongPosition(id int64, position int) error {
	_, err := db.Exec(`UPDATE setlist_songs SET position = ? WHERE id = ?`, position, id)
	return err
}

// MaxSetlistPosition returns the highest position for a concert, 0 when the
// setlist is empty.
func (db *DB) MaxSetlistPosition(concertID int64) (int, error) {
	var max sql.NullInt64
	err := db.QueryRow(`SELECT MAX(position) FROM setlist_songs WHERE concert_id = ?`, concertID).Scan(&max)
	if err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}
