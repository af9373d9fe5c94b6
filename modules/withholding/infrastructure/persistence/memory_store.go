package persistence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

// MemoryStore backs both ports in process. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	now func() time.Time

	mu          sync.Mutex
	identities  map[string]types.OnboardingIdentity
	submissions map[string]StoredSubmission
}

type StoredSubmission struct {
	TenantID    string
	RecordID    string
	Payload     types.SubmissionPayload
	SubmittedAt time.Time
}

func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		now:         now,
		identities:  map[string]types.OnboardingIdentity{},
		submissions: map[string]StoredSubmission{},
	}
}

func memoryKey(tenantID string, id string) string { return tenantID + "/" + id }

func (m *MemoryStore) PutIdentity(tenantID string, id types.OnboardingIdentity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[memoryKey(tenantID, id.OnboardingID)] = id
}

func (m *MemoryStore) ReadIdentity(_ context.Context, tenantID string, onboardingID string) (types.OnboardingIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.identities[memoryKey(tenantID, strings.TrimSpace(onboardingID))]
	if !ok {
		return types.OnboardingIdentity{}, types.ErrOnboardingNotFound
	}
	return id, nil
}

func (m *MemoryStore) Submit(_ context.Context, tenantID string, payload types.SubmissionPayload) (types.SubmissionResult, error) {
	if strings.TrimSpace(tenantID) == "" {
		return types.SubmissionResult{}, errors.New("tenant_id is required")
	}
	canonical, err := canonicalPayload(payload)
	if err != nil {
		return types.SubmissionResult{}, err
	}
	recordID := submissionRecordID(tenantID, canonical, payload.SignatureImage)

	m.mu.Lock()
	defer m.mu.Unlock()
	key := memoryKey(tenantID, recordID)
	if prev, ok := m.submissions[key]; ok {
		return types.SubmissionResult{RecordID: recordID, SubmittedAt: prev.SubmittedAt}, nil
	}
	at := m.now().UTC()
	m.submissions[key] = StoredSubmission{TenantID: tenantID, RecordID: recordID, Payload: payload, SubmittedAt: at}
	return types.SubmissionResult{RecordID: recordID, SubmittedAt: at}, nil
}

func (m *MemoryStore) Submissions() []StoredSubmission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]StoredSubmission, 0, len(m.submissions))
	for _, s := range m.submissions {
		out = append(out, s)
	}
	return out
}
