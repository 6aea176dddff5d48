package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/fitcoach-api/internal/models"
)

// MemoryStore keeps users, clients, workouts and settings in process
// memory. It backs the API when DATA_SOURCE=mock or the database is
// unreachable, and serves as the fixture fallback for list fetches.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	clients  map[string]models.Client
	workouts map[string]models.Workout
	settings map[string]models.CoachSettings
}

// NewMemoryStore seeds a store with fixtures.
func NewMemoryStore(f Fixtures) *MemoryStore {
	s := &MemoryStore{
		users:    make(map[string]models.User, len(f.Users)),
		clients:  make(map[string]models.Client, len(f.Clients)),
		workouts: make(map[string]models.Workout, len(f.Workouts)),
		settings: make(map[string]models.CoachSettings),
	}
	for _, u := range f.Users {
		s.users[u.ID] = u
	}
	for _, c := range f.Clients {
		s.clients[c.ID] = c
	}
	for _, w := range f.Workouts {
		s.workouts[w.ID] = cloneWorkout(w)
	}
	return s
}

// Clients returns the client repository view of the store.
func (s *MemoryStore) Clients() *MemoryClientRepository { return &MemoryClientRepository{s: s} }

// Workouts returns the workout repository view of the store.
func (s *MemoryStore) Workouts() *MemoryWorkoutRepository { return &MemoryWorkoutRepository{s: s} }

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() *MemoryUserRepository { return &MemoryUserRepository{s: s} }

// Settings returns the settings repository view of the store.
func (s *MemoryStore) Settings() *MemorySettingsRepository { return &MemorySettingsRepository{s: s} }

func cloneWorkout(w models.Workout) models.Workout {
	w.Exercises = append([]models.Exercise(nil), w.Exercises...)
	return w
}

// MemoryClientRepository implements client persistence over a MemoryStore.
type MemoryClientRepository struct{ s *MemoryStore }

// ListByCoach returns the coach's clients ordered by creation, newest first.
func (r *MemoryClientRepository) ListByCoach(ctx context.Context, coachID string) ([]models.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		if c.CoachID == coachID {
			out = append(out, c)
		}
	}
	sortClients(out)
	return out, nil
}

// FindByID fetches a client owned by coachID.
func (r *MemoryClientRepository) FindByID(ctx context.Context, coachID, id string) (*models.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok || c.CoachID != coachID {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

// ExistsByEmail reports whether the coach already has a client with email.
func (r *MemoryClientRepository) ExistsByEmail(ctx context.Context, coachID, email, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.clients {
		if c.CoachID == coachID && c.ID != excludeID && strings.EqualFold(c.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// Create inserts a new client.
func (r *MemoryClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now
	r.s.mu.Lock()
	r.s.clients[client.ID] = *client
	r.s.mu.Unlock()
	return nil
}

// Update replaces a stored client.
func (r *MemoryClientRepository) Update(ctx context.Context, client *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[client.ID]; !ok {
		return sql.ErrNoRows
	}
	client.UpdatedAt = time.Now().UTC()
	r.s.clients[client.ID] = *client
	r.s.refreshClientName(client.ID, client.Name)
	return nil
}

// Delete removes a client and its workouts.
func (r *MemoryClientRepository) Delete(ctx context.Context, coachID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok || c.CoachID != coachID {
		return sql.ErrNoRows
	}
	delete(r.s.clients, id)
	for wid, w := range r.s.workouts {
		if w.ClientID == id {
			delete(r.s.workouts, wid)
		}
	}
	return nil
}

// Touch records client activity.
func (r *MemoryClientRepository) Touch(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.LastActive = &at
	r.s.clients[id] = c
	return nil
}

func (s *MemoryStore) refreshClientName(clientID, name string) {
	for id, w := range s.workouts {
		if w.ClientID == clientID {
			w.ClientName = name
			s.workouts[id] = w
		}
	}
}

// MemoryWorkoutRepository implements workout persistence over a MemoryStore.
type MemoryWorkoutRepository struct{ s *MemoryStore }

// ListByCoach returns the coach's workouts ordered by schedule, latest first.
func (r *MemoryWorkoutRepository) ListByCoach(ctx context.Context, coachID string) ([]models.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Workout, 0, len(r.s.workouts))
	for _, w := range r.s.workouts {
		if w.CoachID == coachID {
			out = append(out, cloneWorkout(w))
		}
	}
	sortWorkouts(out)
	return out, nil
}

// FindByID fetches a workout owned by coachID.
func (r *MemoryWorkoutRepository) FindByID(ctx context.Context, coachID, id string) (*models.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.workouts[id]
	if !ok || w.CoachID != coachID {
		return nil, sql.ErrNoRows
	}
	w = cloneWorkout(w)
	return &w, nil
}

// Create inserts a workout with its exercises.
func (r *MemoryWorkoutRepository) Create(ctx context.Context, workout *models.Workout) error {
	if workout.ID == "" {
		workout.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = now
	}
	workout.UpdatedAt = now
	assignExerciseIDs(workout)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.clients[workout.ClientID]; ok {
		workout.ClientName = c.Name
	}
	r.s.workouts[workout.ID] = cloneWorkout(*workout)
	return nil
}

// Update replaces a workout and its exercise list.
func (r *MemoryWorkoutRepository) Update(ctx context.Context, workout *models.Workout) error {
	workout.UpdatedAt = time.Now().UTC()
	assignExerciseIDs(workout)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.workouts[workout.ID]; !ok {
		return sql.ErrNoRows
	}
	if c, ok := r.s.clients[workout.ClientID]; ok {
		workout.ClientName = c.Name
	}
	r.s.workouts[workout.ID] = cloneWorkout(*workout)
	return nil
}

// Delete removes a workout.
func (r *MemoryWorkoutRepository) Delete(ctx context.Context, coachID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok || w.CoachID != coachID {
		return sql.ErrNoRows
	}
	delete(r.s.workouts, id)
	return nil
}

// Complete marks a workout as done at the given time.
func (r *MemoryWorkoutRepository) Complete(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return sql.ErrNoRows
	}
	w.Completed = true
	w.CompletedAt = &at
	w.UpdatedAt = at
	r.s.workouts[id] = w
	return nil
}

// MemoryUserRepository implements account persistence over a MemoryStore.
type MemoryUserRepository struct{ s *MemoryStore }

// FindByEmail fetches an account by login email.
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByID fetches an account.
func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

// ExistsByEmail reports whether another account uses email.
func (r *MemoryUserRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// UpdateLastLogin stamps a successful login.
func (r *MemoryUserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return r.mutate(id, func(u *models.User) { u.LastLogin = &ts })
}

// UpdateProfile stores profile fields.
func (r *MemoryUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	return r.mutate(user.ID, func(u *models.User) {
		u.FullName = user.FullName
		u.Email = user.Email
		u.Phone = user.Phone
		u.Bio = user.Bio
		u.UpdatedAt = user.UpdatedAt
	})
}

// UpdatePassword stores a new password hash.
func (r *MemoryUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return r.mutate(id, func(u *models.User) {
		u.PasswordHash = passwordHash
		u.UpdatedAt = updatedAt
	})
}

func (r *MemoryUserRepository) mutate(id string, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	fn(&u)
	r.s.users[id] = u
	return nil
}

// MemorySettingsRepository implements settings persistence over a MemoryStore.
type MemorySettingsRepository struct{ s *MemoryStore }

// Get returns stored settings or sql.ErrNoRows.
func (r *MemorySettingsRepository) Get(ctx context.Context, userID string) (*models.CoachSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.settings[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &st, nil
}

// Upsert stores settings.
func (r *MemorySettingsRepository) Upsert(ctx context.Context, settings *models.CoachSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	r.s.mu.Lock()
	r.s.settings[settings.UserID] = *settings
	r.s.mu.Unlock()
	return nil
}

// StaticClients serves the fixture client collection to any coach. It is
// the fallback used when the primary client source fails.
type StaticClients struct{ clients []models.Client }

// NewStaticClients wraps fixture clients.
func NewStaticClients(clients []models.Client) *StaticClients {
	return &StaticClients{clients: clients}
}

// ListByCoach returns a copy of the fixtures stamped with coachID.
func (s *StaticClients) ListByCoach(ctx context.Context, coachID string) ([]models.Client, error) {
	out := make([]models.Client, len(s.clients))
	for i, c := range s.clients {
		c.CoachID = coachID
		out[i] = c
	}
	sortClients(out)
	return out, nil
}

// StaticWorkouts serves the fixture workout collection to any coach.
type StaticWorkouts struct{ workouts []models.Workout }

// NewStaticWorkouts wraps fixture workouts.
func NewStaticWorkouts(workouts []models.Workout) *StaticWorkouts {
	return &StaticWorkouts{workouts: workouts}
}

// ListByCoach returns a copy of the fixtures stamped with coachID.
func (s *StaticWorkouts) ListByCoach(ctx context.Context, coachID string) ([]models.Workout, error) {
	out := make([]models.Workout, len(s.workouts))
	for i, w := range s.workouts {
		w = cloneWorkout(w)
		w.CoachID = coachID
		out[i] = w
	}
	sortWorkouts(out)
	return out, nil
}

func sortClients(clients []models.Client) {
	sort.SliceStable(clients, func(i, j int) bool {
		if clients[i].CreatedAt.Equal(clients[j].CreatedAt) {
			return clients[i].ID < clients[j].ID
		}
		return clients[i].CreatedAt.After(clients[j].CreatedAt)
	})
}

// sortWorkouts orders latest scheduled first, matching the SQL listing.
func sortWorkouts(workouts []models.Workout) {
	sort.SliceStable(workouts, func(i, j int) bool {
		if workouts[i].ScheduledFor.Equal(workouts[j].ScheduledFor) {
			return workouts[i].ID < workouts[j].ID
		}
		return workouts[i].ScheduledFor.After(workouts[j].ScheduledFor)
	})
}

func assignExerciseIDs(w *models.Workout) {
	for i := range w.Exercises {
		if w.Exercises[i].ID == "" {
			w.Exercises[i].ID = uuid.NewString()
		}
		w.Exercises[i].WorkoutID = w.ID
		w.Exercises[i].Position = i
	}
}
