package dummydb

import (
	"context"
	"sort"

	"github.com/studify/backend/core/task"
)

type taskRepository struct {
	tasks    *taskTable
	sessions *sessionTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{tasks: db.task, sessions: db.session}
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	repo.tasks.pkCount++
	t.ID = repo.tasks.pkCount
	repo.tasks.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) GetTaskByID(_ context.Context, id int64) (task.Task, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()

	if t, ok := repo.tasks.table[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryTasksForUser(_ context.Context, userID string) ([]task.Task, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()

	var tasks []task.Task
	for _, t := range repo.tasks.table {
		if t.UserID == userID {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID > tasks[j].ID })
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	if _, ok := repo.tasks.table[t.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	repo.tasks.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) DeleteTaskByID(_ context.Context, id int64) error {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()
	delete(repo.tasks.table, id)
	return nil
}

func (repo *taskRepository) CreateSession(_ context.Context, s task.Session) (task.Session, error) {
	repo.sessions.Lock()
	defer repo.sessions.Unlock()

	repo.sessions.pkCount++
	s.ID = repo.sessions.pkCount
	repo.sessions.table[s.ID] = &s
	return s, nil
}

func (repo *taskRepository) QuerySessionsForTask(_ context.Context, taskID int64) ([]task.Session, error) {
	repo.sessions.RLock()
	defer repo.sessions.RUnlock()

	var sessions []task.Session
	for _, s := range repo.sessions.table {
		if s.TaskID == taskID {
			sessions = append(sessions, *s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Timestamp.Equal(sessions[j].Timestamp) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	return sessions, nil
}

func (repo *taskRepository) GetLatestSessionForTask(ctx context.Context, taskID int64) (task.Session, error) {
	sessions, err := repo.QuerySessionsForTask(ctx, taskID)
	if err != nil {
		return task.Session{}, err
	}
	if len(sessions) == 0 {
		return task.Session{}, task.ErrNotFound
	}
	return sessions[0], nil
}
