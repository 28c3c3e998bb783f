package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studify/backend/core/task"
)

type taskRow struct {
	ID                int64  `db:"id"`
	UserID            string `db:"user_id"`
	Title             string `db:"title"`
	Minutes           int    `db:"minutes"`
	Coins             int    `db:"coins"`
	Done              bool   `db:"done"`
	TotalFocusMinutes int    `db:"total_focus_minutes"`
	LastFocusMinutes  int    `db:"last_focus_minutes"`
	FocusSessions     int    `db:"focus_sessions"`
}

func (r taskRow) toDomain() task.Task {
	return task.Task{
		ID:                r.ID,
		UserID:            r.UserID,
		Title:             r.Title,
		Minutes:           r.Minutes,
		Coins:             r.Coins,
		Done:              r.Done,
		TotalFocusMinutes: r.TotalFocusMinutes,
		LastFocusMinutes:  r.LastFocusMinutes,
		FocusSessions:     r.FocusSessions,
	}
}

type sessionRow struct {
	ID        int64       `db:"id"`
	TaskID    int64       `db:"task_id"`
	Timestamp time.Time   `db:"timestamp"`
	Minutes   int         `db:"minutes"`
	Notes     string      `db:"notes"`
	PhotoPath null.String `db:"photo_path"`
}

func (r sessionRow) toDomain() task.Session {
	return task.Session{
		ID:        r.ID,
		TaskID:    r.TaskID,
		Timestamp: r.Timestamp,
		Minutes:   r.Minutes,
		Notes:     r.Notes,
		PhotoPath: r.PhotoPath,
	}
}

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	var id int64
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO task (user_id, title, minutes, coins, done, total_focus_minutes, last_focus_minutes, focus_sessions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		t.UserID, t.Title, t.Minutes, t.Coins, t.Done, t.TotalFocusMinutes, t.LastFocusMinutes, t.FocusSessions,
	).Scan(&id)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	t.ID = id
	return t, nil
}

func (repo taskRepository) GetTaskByID(ctx context.Context, id int64) (task.Task, error) {
	var row taskRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM task WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "getting task")
	}
	return row.toDomain(), nil
}

func (repo taskRepository) QueryTasksForUser(ctx context.Context, userID string) ([]task.Task, error) {
	var rows []taskRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM task WHERE user_id = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toDomain())
	}
	return tasks, nil
}

func (repo taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE task
		SET title = $2, minutes = $3, coins = $4, done = $5,
		    total_focus_minutes = $6, last_focus_minutes = $7, focus_sessions = $8
		WHERE id = $1`,
		t.ID, t.Title, t.Minutes, t.Coins, t.Done, t.TotalFocusMinutes, t.LastFocusMinutes, t.FocusSessions,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (repo taskRepository) DeleteTaskByID(ctx context.Context, id int64) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM task WHERE id = $1`, id)
	return errors.Wrap(err, "deleting task")
}

func (repo taskRepository) CreateSession(ctx context.Context, s task.Session) (task.Session, error) {
	var id int64
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO study_session (task_id, timestamp, minutes, notes, photo_path)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		s.TaskID, s.Timestamp.UTC(), s.Minutes, s.Notes, s.PhotoPath,
	).Scan(&id)
	if err != nil {
		return task.Session{}, errors.Wrap(err, "inserting study session")
	}
	s.ID = id
	return s, nil
}

func (repo taskRepository) QuerySessionsForTask(ctx context.Context, taskID int64) ([]task.Session, error) {
	var rows []sessionRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM study_session WHERE task_id = $1 ORDER BY timestamp DESC, id DESC`, taskID)
	if err != nil {
		return nil, errors.Wrap(err, "querying study sessions")
	}
	sessions := make([]task.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toDomain())
	}
	return sessions, nil
}

func (repo taskRepository) GetLatestSessionForTask(ctx context.Context, taskID int64) (task.Session, error) {
	var row sessionRow
	err := repo.db.GetContext(ctx, &row, `
		SELECT * FROM study_session WHERE task_id = $1 ORDER BY timestamp DESC, id DESC LIMIT 1`, taskID)
	if err != nil {
		if err == sql.ErrNoRows {
			return task.Session{}, task.ErrNotFound
		}
		return task.Session{}, errors.Wrap(err, "getting latest study session")
	}
	return row.toDomain(), nil
}
