package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/escolinha-api/internal/models"
	"github.com/noah-isme/escolinha-api/internal/repository"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
	"github.com/noah-isme/escolinha-api/pkg/storage"
)

type mockStudentRepo struct {
	students  map[string]models.Student
	insertErr error
	updateErr error
	deleteErr error
	findErr   error
	afterFind func()
	inserted  []models.Student
	updates   int
	nextID    int
}

func newMockStudentRepo(students ...models.Student) *mockStudentRepo {
	repo := &mockStudentRepo{students: map[string]models.Student{}}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (m *mockStudentRepo) Insert(ctx context.Context, student *models.Student) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, existing := range m.students {
		if existing.CPFResponsavel == student.CPFResponsavel && existing.NomeCompleto == student.NomeCompleto {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	student.ID = "student-" + string(rune('0'+m.nextID))
	m.students[student.ID] = *student
	m.inserted = append(m.inserted, *student)
	return nil
}

func (m *mockStudentRepo) FindAll(ctx context.Context) ([]models.Student, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	if hook := m.afterFind; hook != nil {
		m.afterFind = nil
		hook()
	}
	return out, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	s, ok := m.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *mockStudentRepo) UpdateByID(ctx context.Context, id string, student *models.Student) (*models.Student, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if _, ok := m.students[id]; !ok {
		return nil, repository.ErrNotFound
	}
	m.updates++
	updated := *student
	updated.ID = id
	m.students[id] = updated
	return &updated, nil
}

func (m *mockStudentRepo) DeleteByID(ctx context.Context, id string) (*models.Student, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	s, ok := m.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(m.students, id)
	return &s, nil
}

type mockBlobStore struct {
	uploadErr error
	deleteErr error
	uploads   []string
	deleted   []string
	seq       int
}

func (m *mockBlobStore) Upload(ctx context.Context, blob storage.Blob, folder string) (storage.BlobRef, error) {
	if m.uploadErr != nil {
		return storage.BlobRef{}, m.uploadErr
	}
	m.seq++
	id := folder + "/photo" + string(rune('0'+m.seq))
	m.uploads = append(m.uploads, id)
	return storage.BlobRef{URL: "https://cdn.test/" + id + ".jpg", ID: id}, nil
}

func (m *mockBlobStore) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

func (m *mockBlobStore) IDFromURL(url string) string {
	return strings.TrimSuffix(strings.TrimPrefix(url, "https://cdn.test/"), ".jpg")
}

type memoryCacheRepo struct {
	mu          sync.Mutex
	items       map[string][]byte
	invalidated []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = payload
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func (m *memoryCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if payload, ok := m.items[key]; ok {
		if err := json.Unmarshal(payload, &n); err != nil {
			return 0, err
		}
	}
	n++
	payload, err := json.Marshal(n)
	if err != nil {
		return 0, err
	}
	m.items[key] = payload
	return n, nil
}

var errBoom = errors.New("boom")

// newSpooledPhoto writes a small image into a temp spool and returns the uploader inputs.
func newSpooledPhoto(t *testing.T) (*storage.LocalStorage, *PhotoUpload) {
	t.Helper()
	spool, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	name, size, err := spool.SaveStream("foto.jpg", strings.NewReader("\xff\xd8\xff\xe0fake-jpeg"))
	require.NoError(t, err)
	return spool, &PhotoUpload{Filename: "foto.jpg", ContentType: "image/jpeg", Size: size, SpoolName: name}
}

func spoolExists(spool *storage.LocalStorage, name string) bool {
	f, err := spool.Open(name)
	if err != nil {
		return false
	}
	f.Close() //nolint:errcheck
	return true
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
