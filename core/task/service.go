package task

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/studify/backend/core/progression"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound = errors.New("task not found")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTaskByID(ctx context.Context, id int64) (Task, error)
		// QueryTasksForUser returns the user's tasks, newest first.
		QueryTasksForUser(ctx context.Context, userID string) ([]Task, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTaskByID(ctx context.Context, id int64) error

		CreateSession(ctx context.Context, s Session) (Session, error)
		// QuerySessionsForTask returns the task's sessions, newest first.
		QuerySessionsForTask(ctx context.Context, taskID int64) ([]Session, error)
		GetLatestSessionForTask(ctx context.Context, taskID int64) (Session, error)
	}

	Service struct {
		repo    Repository
		progSvc *progression.Service
	}
)

func NewService(repo Repository, progSvc *progression.Service) *Service {
	return &Service{repo: repo, progSvc: progSvc}
}

func (svc *Service) Create(ctx context.Context, userID string, nt NewTask) (Task, error) {
	return svc.repo.CreateTask(ctx, Task{
		UserID:  userID,
		Title:   nt.Title,
		Minutes: nt.Minutes,
		Coins:   nt.Coins,
	})
}

func (svc *Service) QueryForUser(ctx context.Context, userID string) ([]Task, error) {
	return svc.repo.QueryTasksForUser(ctx, userID)
}

// Get returns the task only if it belongs to userID; a foreign task is
// indistinguishable from a missing one.
func (svc *Service) Get(ctx context.Context, userID string, id int64) (Task, error) {
	t, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if t.UserID != userID {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (svc *Service) Update(ctx context.Context, userID string, id int64, ut UpdateTask) (Task, error) {
	t, err := svc.Get(ctx, userID, id)
	if err != nil {
		return Task{}, err
	}
	if ut.Title != "" {
		t.Title = ut.Title
	}
	if ut.Minutes != nil {
		t.Minutes = *ut.Minutes
		t.Coins = *ut.Minutes * XPPerFocusMinute
	}
	if ut.Done != nil {
		t.Done = *ut.Done
	}
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, userID string, id int64) error {
	if _, err := svc.Get(ctx, userID, id); err != nil {
		return err
	}
	return svc.repo.DeleteTaskByID(ctx, id)
}

func (svc *Service) Sessions(ctx context.Context, userID string, taskID int64) ([]Session, error) {
	if _, err := svc.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return svc.repo.QuerySessionsForTask(ctx, taskID)
}

// CompleteFocus records a finished focus session, folds its minutes into the
// task's statistics and grants the session reward (XPPerFocusMinute per
// focused minute, coins 1:1) through the progression engine. It returns the
// updated task, the new progression snapshot and the number of levels gained.
func (svc *Service) CompleteFocus(ctx context.Context, userID string, taskID int64, result FocusResult) (Task, progression.State, int, error) {
	t, err := svc.Get(ctx, userID, taskID)
	if err != nil {
		return Task{}, progression.State{}, 0, err
	}

	minutes := result.Minutes
	if minutes < 0 {
		minutes = 0
	}

	if _, err = svc.repo.CreateSession(ctx, Session{
		TaskID:    taskID,
		Timestamp: NowFunc().UTC(),
		Minutes:   minutes,
		Notes:     result.Notes,
		PhotoPath: null.NewString(result.PhotoPath, result.PhotoPath != ""),
	}); err != nil {
		return Task{}, progression.State{}, 0, err
	}

	t.TotalFocusMinutes += minutes
	t.LastFocusMinutes = minutes
	t.FocusSessions++
	if t, err = svc.repo.UpdateTask(ctx, t); err != nil {
		return Task{}, progression.State{}, 0, err
	}

	exp := minutes * XPPerFocusMinute
	state, gained, err := svc.progSvc.GrantSessionReward(ctx, userID, exp)
	if err != nil {
		return Task{}, progression.State{}, 0, err
	}
	return t, state, gained, nil
}
