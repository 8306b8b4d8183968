package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikampus-api/internal/models"
	"github.com/noah-isme/sikampus-api/internal/repository"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
)

type mockScholarRepo struct {
	mu        sync.Mutex
	byCode    map[string]*models.Scholar
	seq       int
	createErr error
	// raceLosses makes CreateIfAbsent report a conflict after storing a rival row.
	raceLosses int
	// phantomLosses reports conflicts without ever storing a row.
	phantomLosses bool
	creates       int
}

func (m *mockScholarRepo) FindByCode(ctx context.Context, code string) (*models.Scholar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byCode[code]; ok {
		found := *s
		return &found, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScholarRepo) CreateIfAbsent(ctx context.Context, scholar *models.Scholar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	if m.byCode == nil {
		m.byCode = make(map[string]*models.Scholar)
	}
	if m.phantomLosses {
		return repository.ErrDuplicateKey
	}
	if m.raceLosses > 0 {
		m.raceLosses--
		m.seq++
		m.byCode[scholar.ScholarCode] = &models.Scholar{ID: fmt.Sprintf("rival-%d", m.seq), ScholarCode: scholar.ScholarCode, Name: "Rival"}
		return repository.ErrDuplicateKey
	}
	if _, ok := m.byCode[scholar.ScholarCode]; ok {
		return repository.ErrDuplicateKey
	}
	m.seq++
	scholar.ID = fmt.Sprintf("sch-%d", m.seq)
	stored := *scholar
	m.byCode[scholar.ScholarCode] = &stored
	return nil
}

func scholarRequest(code, name string) ResolveScholarRequest {
	return ResolveScholarRequest{ScholarCode: code, Name: name, ContactEmail: "scholar@kampus.test", Program: "Informatika"}
}

func TestScholarResolveIsIdempotent(t *testing.T) {
	repo := &mockScholarRepo{}
	svc := NewScholarService(repo, nil, nil, nil, 3)

	first, err := svc.Resolve(context.Background(), scholarRequest("S1", "Ayu"))
	require.NoError(t, err)

	second, err := svc.Resolve(context.Background(), ResolveScholarRequest{
		ScholarCode: " S1 ", Name: "Someone Else", ContactEmail: "other@kampus.test", Program: "Fisika",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ayu", second.Name)
	assert.Equal(t, "Informatika", second.Program)
	assert.Equal(t, 1, repo.creates)
}

func TestScholarResolveRequeriesAfterLostRace(t *testing.T) {
	repo := &mockScholarRepo{raceLosses: 1}
	svc := NewScholarService(repo, nil, nil, nil, 3)

	scholar, err := svc.Resolve(context.Background(), scholarRequest("S9", "Budi"))
	require.NoError(t, err)
	assert.Equal(t, "rival-1", scholar.ID)
	assert.Equal(t, "Rival", scholar.Name)
}

func TestScholarResolveGivesUpAfterRetries(t *testing.T) {
	repo := &mockScholarRepo{phantomLosses: true}
	svc := NewScholarService(repo, nil, nil, nil, 2)

	_, err := svc.Resolve(context.Background(), scholarRequest("S9", "Budi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, 2, repo.creates)
}

func TestScholarResolveConcurrentSameCode(t *testing.T) {
	repo := &mockScholarRepo{}
	svc := NewScholarService(repo, nil, nil, nil, 3)

	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scholar, err := svc.Resolve(context.Background(), scholarRequest("S7", fmt.Sprintf("Caller %d", i)))
			if assert.NoError(t, err) {
				ids[i] = scholar.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Len(t, repo.byCode, 1)
}

func TestScholarResolveValidation(t *testing.T) {
	svc := NewScholarService(&mockScholarRepo{}, nil, nil, nil, 3)

	_, err := svc.Resolve(context.Background(), ResolveScholarRequest{ScholarCode: "S1", Name: "Ayu", ContactEmail: "not-an-email", Program: "Informatika"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Resolve(context.Background(), ResolveScholarRequest{ScholarCode: "   ", Name: "Ayu", ContactEmail: "ayu@kampus.test", Program: "Informatika"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestScholarResolveStorageFailure(t *testing.T) {
	repo := &mockScholarRepo{createErr: errors.New("db down")}
	svc := NewScholarService(repo, nil, nil, nil, 3)

	_, err := svc.Resolve(context.Background(), scholarRequest("S1", "Ayu"))
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, 1, repo.creates)
}
