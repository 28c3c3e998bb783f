package dummydb

import (
	"sync"

	"github.com/studify/backend/core/avatar"
	"github.com/studify/backend/core/progression"
	"github.com/studify/backend/core/shop"
	"github.com/studify/backend/core/task"
	"github.com/studify/backend/core/user"
)

type (
	DB struct {
		user        *userTable
		progress    *progressTable
		avatar      *avatarTable
		item        *itemTable
		transaction *transactionTable
		task        *taskTable
		session     *sessionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	progressTable struct {
		sync.RWMutex
		table map[string]progression.State
	}
	avatarTable struct {
		sync.RWMutex
		table map[string]avatar.Profile
	}
	itemTable struct {
		sync.RWMutex
		table map[string]*shop.Item
	}
	transactionTable struct {
		sync.RWMutex
		table []shop.Transaction
	}
	taskTable struct {
		sync.RWMutex
		pkCount int64
		table   map[int64]*task.Task
	}
	sessionTable struct {
		sync.RWMutex
		pkCount int64
		table   map[int64]*task.Session
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:        &userTable{table: make(map[string]*user.User)},
		progress:    &progressTable{table: make(map[string]progression.State)},
		avatar:      &avatarTable{table: make(map[string]avatar.Profile)},
		item:        &itemTable{table: make(map[string]*shop.Item)},
		transaction: &transactionTable{},
		task:        &taskTable{table: make(map[int64]*task.Task)},
		session:     &sessionTable{table: make(map[int64]*task.Session)},
	}
	return db, nil
}
