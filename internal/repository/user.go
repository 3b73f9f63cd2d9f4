package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cloudbasha/elmvoice/internal/common"
	"github.com/cloudbasha/elmvoice/internal/entity"
	"github.com/cloudbasha/elmvoice/internal/kvstore"
)

const (
	usersKey       = "elmvoice/users"
	currentUserKey = "elmvoice/current_user"
)

type UserRepository interface {
	// Login resolves a user by email. Any password is accepted; the account
	// directory is a local mock, not a credential store.
	Login(ctx context.Context, email string) (*entity.User, error)
	Signup(ctx context.Context, name, email, company string) (*entity.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*entity.User, error)
	SwitchUser(ctx context.Context, id int64) (*entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	AddUser(ctx context.Context, u entity.User) (*entity.User, error)
	UpdateUser(ctx context.Context, u entity.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type userRepository struct {
	store  kvstore.Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	users   []entity.User
	current int64 // 0 means logged out
}

func NewUserRepository(ctx context.Context, store kvstore.Store, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	r := &userRepository{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	r.load(ctx)
	return r
}

// seedUsers is the demo account directory installed on first run.
func seedUsers() []entity.User {
	return []entity.User{
		{
			ID:            1,
			Name:          "Abirami Muthiah",
			Email:         "abirami@cloudbasha.com",
			Role:          "admin",
			Plan:          "enterprise",
			InvoicesCount: 45,
			Status:        "active",
			JoinDate:      "2024-01-15",
			Company:       "CloudBasha",
		},
		{
			ID:            2,
			Name:          "John Doe",
			Email:         "john@example.com",
			Role:          "user",
			Plan:          "pro",
			InvoicesCount: 23,
			Status:        "active",
			JoinDate:      "2024-03-20",
			Company:       "Doe Consulting",
		},
		{
			ID:            3,
			Name:          "Sarah Wilson",
			Email:         "sarah@business.com",
			Role:          "user",
			Plan:          "free",
			InvoicesCount: 8,
			Status:        "active",
			JoinDate:      "2024-06-10",
			Company:       "Wilson & Co",
		},
	}
}

func (r *userRepository) load(ctx context.Context) {
	raw, err := r.store.Get(ctx, usersKey)
	if err != nil || len(raw) == 0 {
		if err != nil && err != kvstore.ErrKeyNotFound {
			r.logger.Warn("users.load_failed", "error", err)
		}
		r.users = seedUsers()
		r.persistUsers(ctx)
	} else if err := json.Unmarshal(raw, &r.users); err != nil {
		r.logger.Warn("users.decode_failed, reseeding", "error", err)
		r.users = seedUsers()
		r.persistUsers(ctx)
	}

	if raw, err := r.store.Get(ctx, currentUserKey); err == nil {
		if id, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64); err == nil {
			r.current = id
		}
	}
	r.logger.Info("users.loaded", "count", len(r.users), "current", r.current)
}

func (r *userRepository) persistUsers(ctx context.Context) {
	raw, err := json.Marshal(r.users)
	if err != nil {
		r.logger.Error("users.encode_failed", "error", err)
		return
	}
	if err := r.store.Put(ctx, usersKey, raw); err != nil {
		r.logger.Warn("users.persist_failed", "error", err)
	}
}

func (r *userRepository) persistCurrent(ctx context.Context) {
	if r.current == 0 {
		if err := r.store.Delete(ctx, currentUserKey); err != nil && err != kvstore.ErrKeyNotFound {
			r.logger.Warn("users.persist_current_failed", "error", err)
		}
		return
	}
	raw := []byte(strconv.FormatInt(r.current, 10))
	if err := r.store.Put(ctx, currentUserKey, raw); err != nil {
		r.logger.Warn("users.persist_current_failed", "error", err)
	}
}

func (r *userRepository) Login(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for i := range r.users {
		if strings.ToLower(r.users[i].Email) == email {
			r.current = r.users[i].ID
			r.persistCurrent(ctx)
			out := r.users[i]
			r.logger.Info("user.login", "id", out.ID, "email", out.Email)
			return &out, nil
		}
	}
	return nil, common.ErrUnauthorized
}

func (r *userRepository) Signup(ctx context.Context, name, email, company string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.TrimSpace(email)
	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, email) {
			return nil, common.ErrDuplicate
		}
	}
	u := entity.User{
		ID:       r.now().UnixMilli(),
		Name:     strings.TrimSpace(name),
		Email:    email,
		Role:     "user",
		Plan:     "free",
		Status:   "active",
		JoinDate: r.now().UTC().Format("2006-01-02"),
		Company:  strings.TrimSpace(company),
	}
	r.users = append(r.users, u)
	r.current = u.ID
	r.persistUsers(ctx)
	r.persistCurrent(ctx)
	r.logger.Info("user.signup", "id", u.ID, "email", u.Email)
	return &u, nil
}

func (r *userRepository) Logout(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = 0
	r.persistCurrent(ctx)
	return nil
}

func (r *userRepository) CurrentUser(_ context.Context) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == 0 {
		return nil, common.ErrUnauthorized
	}
	for i := range r.users {
		if r.users[i].ID == r.current {
			out := r.users[i]
			return &out, nil
		}
	}
	return nil, common.ErrUnauthorized
}

func (r *userRepository) SwitchUser(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			r.current = id
			r.persistCurrent(ctx)
			out := r.users[i]
			r.logger.Info("user.switched", "id", id)
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *userRepository) ListUsers(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

func (r *userRepository) AddUser(ctx context.Context, u entity.User) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, u.Email) {
			return nil, common.ErrDuplicate
		}
	}
	if u.ID == 0 {
		u.ID = r.now().UnixMilli()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if u.Plan == "" {
		u.Plan = "free"
	}
	if u.Status == "" {
		u.Status = "active"
	}
	if u.JoinDate == "" {
		u.JoinDate = r.now().UTC().Format("2006-01-02")
	}
	r.users = append(r.users, u)
	r.persistUsers(ctx)
	r.logger.Info("user.added", "id", u.ID, "email", u.Email)
	return &u, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, u entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == u.ID {
			r.users[i] = u
			r.persistUsers(ctx)
			r.logger.Info("user.updated", "id", u.ID)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *userRepository) DeleteUser(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			if r.current == id {
				r.current = 0
				r.persistCurrent(ctx)
			}
			r.persistUsers(ctx)
			r.logger.Info("user.deleted", "id", id)
			return nil
		}
	}
	return nil
}
