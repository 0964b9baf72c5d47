package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"todolist/internal/middleware"
	"todolist/internal/models"
	"todolist/internal/repository"
	"todolist/internal/session"
)

// fakeStore is an in-memory stand-in for both repositories, so handler
// tests exercise the full pipeline without a database.
type fakeStore struct {
	mu         sync.Mutex
	users      map[int]*models.User
	tasks      map[int]*models.Task
	nextUserID int
	nextTaskID int
	clock      time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[int]*models.User),
		tasks:      make(map[int]*models.Task),
		nextUserID: 1,
		nextTaskID: 1,
		clock:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so creation order is
// unambiguous.
func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return repository.ErrConflict
		}
	}

	user.ID = s.nextUserID
	s.nextUserID++
	user.CreatedAt = s.tick()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeStore) List(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *fakeStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range s.users {
		if id != user.ID && other.Username == user.Username {
			return repository.ErrConflict
		}
	}

	existing.Username = user.Username
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.IsActive = user.IsActive
	existing.UpdatedAt = s.tick()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *fakeStore) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Password = passwordHash
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	// Tasks cascade with their owner, like the FK does in Postgres.
	for taskID, task := range s.tasks {
		if task.OwnerID == id {
			delete(s.tasks, taskID)
		}
	}
	return nil
}

func (s *fakeStore) TaskIDsByOwner(_ context.Context, ownerID int) ([]int, error) {
	tasks, err := s.ListByOwner(context.Background(), ownerID, "")
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids, nil
}

func (s *fakeStore) ListByOwner(_ context.Context, ownerID int, statusFilter string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filter := strings.ToLower(strings.TrimSpace(statusFilter))
	tasks := make([]models.Task, 0)
	for _, task := range s.tasks {
		if task.OwnerID != ownerID {
			continue
		}
		if filter != "" && string(task.Status) != filter {
			continue
		}
		copied := *task
		copied.OwnerUsername = s.usernameLocked(task.OwnerID)
		tasks = append(tasks, copied)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *fakeStore) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.nextTaskID
	s.nextTaskID++
	task.CreatedAt = s.tick()
	task.OwnerUsername = s.usernameLocked(task.OwnerID)

	stored := *task
	s.tasks[task.ID] = &stored
	return nil
}

func (s *fakeStore) usernameLocked(userID int) string {
	if user, ok := s.users[userID]; ok {
		return user.Username
	}
	return ""
}

func (s *fakeStore) GetTaskByID(_ context.Context, id int) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *task
	copied.OwnerUsername = s.usernameLocked(task.OwnerID)
	return &copied, nil
}

func (s *fakeStore) UpdateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Title = task.Title
	existing.Description = task.Description
	existing.Status = task.Status
	return nil
}

func (s *fakeStore) DeleteTask(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeStore) MarkCompleted(_ context.Context, id int) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	task.Status = models.StatusCompleted
	copied := *task
	copied.OwnerUsername = s.usernameLocked(task.OwnerID)
	return &copied, nil
}

// taskRepoFacade renames the user-repo methods that collide with the
// task-repo interface.
type taskRepoFacade struct {
	store *fakeStore
}

func (f taskRepoFacade) ListByOwner(ctx context.Context, ownerID int, statusFilter string) ([]models.Task, error) {
	return f.store.ListByOwner(ctx, ownerID, statusFilter)
}

func (f taskRepoFacade) Create(ctx context.Context, task *models.Task) error {
	return f.store.CreateTask(ctx, task)
}

func (f taskRepoFacade) GetByID(ctx context.Context, id int) (*models.Task, error) {
	return f.store.GetTaskByID(ctx, id)
}

func (f taskRepoFacade) Update(ctx context.Context, task *models.Task) error {
	return f.store.UpdateTask(ctx, task)
}

func (f taskRepoFacade) Delete(ctx context.Context, id int) error {
	return f.store.DeleteTask(ctx, id)
}

func (f taskRepoFacade) MarkCompleted(ctx context.Context, id int) (*models.Task, error) {
	return f.store.MarkCompleted(ctx, id)
}

// newTestServer wires the handlers exactly like cmd/api does, over the
// fake store and the in-memory session registry.
func newTestServer(t *testing.T) (*gin.Engine, *fakeStore, *session.MemoryRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	registry := session.NewMemoryRegistry(time.Hour)
	api := NewAPI(store, taskRepoFacade{store: store}, registry, time.Hour)

	router := gin.New()
	router.GET("/health", Health)
	router.POST("/auth/register", api.Register)
	router.POST("/auth/login", api.Login)
	router.GET("/auth/logout", api.Logout)
	router.GET("/users", api.ListUsers)
	router.POST("/users", api.Register)

	authed := router.Group("")
	authed.Use(middleware.RequireAuth(registry))
	{
		authed.GET("/users/:id", api.GetUser)
		authed.PUT("/users/:id", api.UpdateUser)
		authed.DELETE("/users/:id", api.DeleteUser)

		authed.GET("/tasks", api.ListTasks)
		authed.POST("/tasks", api.CreateTask)
		authed.GET("/tasks/:id", api.GetTask)
		authed.PUT("/tasks/:id", api.UpdateTask)
		authed.DELETE("/tasks/:id", api.DeleteTask)
		authed.PATCH("/tasks/:id/mark_completed", api.MarkCompleted)
	}

	return router, store, registry
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func mustStatus(t *testing.T, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if resp.Code != expected {
		t.Fatalf("expected status %d, got %d (body: %s)", expected, resp.Code, resp.Body.String())
	}
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v (body: %s)", err, resp.Body.String())
	}
	return out
}

// registerAndLogin creates a user and returns a live session token.
func registerAndLogin(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()

	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"username":   username,
		"password":   password,
		"first_name": "Test",
	})
	mustStatus(t, resp, http.StatusCreated)

	resp = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	mustStatus(t, resp, http.StatusOK)

	token, _ := decodeBody(t, resp)["token"].(string)
	if token == "" {
		t.Fatal("expected a session token from login")
	}
	return token
}
