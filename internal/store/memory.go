package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

// Memory is an in-process implementation of the store interfaces with the
// same semantics as DB, including conditional counter updates. Used for
// tests and local development without a DynamoDB table.
type Memory struct {
	mu         sync.Mutex
	partitions map[string]map[string]any
	counters   map[string]int64
}

func NewMemory() *Memory {
	return &Memory{
		partitions: make(map[string]map[string]any),
		counters:   make(map[string]int64),
	}
}

func (m *Memory) set(pk, sk string, record any) {
	partition, ok := m.partitions[pk]
	if !ok {
		partition = make(map[string]any)
		m.partitions[pk] = partition
	}
	partition[sk] = record
}

func (m *Memory) lookup(pk, sk string) (any, bool) {
	record, ok := m.partitions[pk][sk]
	return record, ok
}

func (m *Memory) remove(pk, sk string) bool {
	partition, ok := m.partitions[pk]
	if !ok {
		return false
	}
	_, existed := partition[sk]
	delete(partition, sk)
	return existed
}

// sortKeysWithPrefix snapshots a partition's sort keys under the prefix in
// native (lexicographic) scan order.
func (m *Memory) sortKeysWithPrefix(pk, prefix string) []string {
	keys := make([]string, 0)
	for sk := range m.partitions[pk] {
		if strings.HasPrefix(sk, prefix) {
			keys = append(keys, sk)
		}
	}
	sort.Strings(keys)
	return keys
}

func cloneProfile(p *types.Profile) *types.Profile {
	clone := *p
	if p.SubscriptionID != nil {
		id := *p.SubscriptionID
		clone.SubscriptionID = &id
	}
	if p.SubscriptionStartDate != nil {
		t := *p.SubscriptionStartDate
		clone.SubscriptionStartDate = &t
	}
	if p.SubscriptionEndDate != nil {
		t := *p.SubscriptionEndDate
		clone.SubscriptionEndDate = &t
	}
	return &clone
}

// ProfileStore

func (m *Memory) Put(ctx context.Context, profile *types.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.set(UserPK(profile.ID), SortKey(KindProfile, profile.ID), cloneProfile(profile))
	return nil
}

func (m *Memory) Get(ctx context.Context, tenantID string) (*types.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.lookup(UserPK(tenantID), SortKey(KindProfile, tenantID))
	if !ok {
		return nil, types.ErrNotFound
	}
	return cloneProfile(record.(*types.Profile)), nil
}

func (m *Memory) Tier(ctx context.Context, tenantID string) (types.Tier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.lookup(UserPK(tenantID), SortKey(KindProfile, tenantID))
	if !ok {
		return types.TierFree, nil
	}
	return record.(*types.Profile).Tier, nil
}

// QRStore

type memQR struct{ *Memory }

func (m *Memory) QRs() QRStore { return memQR{m} }

func (m memQR) Create(ctx context.Context, tenantID string, qr *types.QR) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *qr
	m.set(UserPK(tenantID), SortKey(KindQR, qr.ID), &clone)
	return nil
}

func (m memQR) Get(ctx context.Context, tenantID, qrID string) (*types.QR, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.lookup(UserPK(tenantID), SortKey(KindQR, qrID))
	if !ok {
		return nil, types.ErrNotFound
	}
	clone := *record.(*types.QR)
	return &clone, nil
}

func (m memQR) List(ctx context.Context, tenantID string) ([]types.QR, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pk := UserPK(tenantID)
	qrs := make([]types.QR, 0)
	for _, sk := range m.sortKeysWithPrefix(pk, KindPrefix(KindQR)) {
		record, _ := m.lookup(pk, sk)
		qrs = append(qrs, *record.(*types.QR))
	}
	return qrs, nil
}

func (m memQR) Delete(ctx context.Context, tenantID, qrID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.remove(UserPK(tenantID), SortKey(KindQR, qrID)), nil
}

// DocumentStore

type memDocument struct{ *Memory }

func (m *Memory) Documents() DocumentStore { return memDocument{m} }

func (m memDocument) Create(ctx context.Context, tenantID string, doc *types.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *doc
	m.set(UserPK(tenantID), SortKey(KindDocument, doc.ID), &clone)
	return nil
}

func (m memDocument) Get(ctx context.Context, tenantID, docID string) (*types.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.lookup(UserPK(tenantID), SortKey(KindDocument, docID))
	if !ok {
		return nil, types.ErrNotFound
	}
	clone := *record.(*types.Document)
	return &clone, nil
}

func (m memDocument) List(ctx context.Context, tenantID string) ([]types.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pk := UserPK(tenantID)
	docs := make([]types.Document, 0)
	for _, sk := range m.sortKeysWithPrefix(pk, KindPrefix(KindDocument)) {
		record, _ := m.lookup(pk, sk)
		docs = append(docs, *record.(*types.Document))
	}
	return docs, nil
}

func (m memDocument) Delete(ctx context.Context, tenantID, docID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.remove(UserPK(tenantID), SortKey(KindDocument, docID)), nil
}

func (m memDocument) SetUploading(ctx context.Context, tenantID, docID string, uploading bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.lookup(UserPK(tenantID), SortKey(KindDocument, docID))
	if !ok {
		return types.ErrNotFound
	}
	record.(*types.Document).Uploading = uploading
	return nil
}

// QuotaStore

func (m *Memory) counterKey(tenantID string, kind Kind) string {
	return UserPK(tenantID) + "/" + SortKey(KindCounter, string(kind))
}

func (m *Memory) CountByPrefix(ctx context.Context, tenantID string, kind Kind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int64(len(m.sortKeysWithPrefix(UserPK(tenantID), KindPrefix(kind)))), nil
}

func (m *Memory) Reserve(ctx context.Context, tenantID string, kind Kind, ceiling int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.counterKey(tenantID, kind)
	if ceiling > 0 && m.counters[key] >= ceiling {
		return types.ErrQuotaExceeded
	}
	m.counters[key]++
	return nil
}

func (m *Memory) Release(ctx context.Context, tenantID string, kind Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.counterKey(tenantID, kind)
	if m.counters[key] > 0 {
		m.counters[key]--
	}
	return nil
}
