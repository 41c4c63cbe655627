package mocks

import (
	"context"
	"io"
	"time"

	"github.com/airenas/async-api/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// Filer is minio mock
type Filer struct{ mock.Mock }

// SaveFile func mock
func (m *Filer) SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) error {
	args := m.Called(ctx, name, r, fileSize)
	return args.Error(0)
}

// LoadFile func mock
func (m *Filer) LoadFile(ctx context.Context, fileName string) (io.ReadSeekCloser, error) {
	args := m.Called(ctx, fileName)
	return to[io.ReadSeekCloser](args.Get(0)), args.Error(1)
}

// Sender is postgres queue mock
type Sender struct{ mock.Mock }

func (m *Sender) SendMessage(ctx context.Context, msg messages.Message, queue string) error {
	args := m.Called(ctx, msg, queue)
	return args.Error(0)
}

// Presigner is object storage URL signer mock
type Presigner struct{ mock.Mock }

func (m *Presigner) PresignPut(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// JobStore is video job store mock
type JobStore struct{ mock.Mock }

func (m *JobStore) Set(ctx context.Context, id string, job *persistence.Job) error {
	args := m.Called(ctx, id, job)
	return args.Error(0)
}

func (m *JobStore) Get(ctx context.Context, id string) (*persistence.Job, error) {
	args := m.Called(ctx, id)
	return to[*persistence.Job](args.Get(0)), args.Error(1)
}

func (m *JobStore) Has(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *JobStore) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *JobStore) GetAll(ctx context.Context) ([]*persistence.Job, error) {
	args := m.Called(ctx)
	return to[[]*persistence.Job](args.Get(0)), args.Error(1)
}

func (m *JobStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *JobStore) Size(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// DB is postgres portal DB mock
type DB struct{ mock.Mock }

func (m *DB) InsertQuote(ctx context.Context, q *persistence.Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *DB) LoadQuote(ctx context.Context, id string) (*persistence.Quote, error) {
	args := m.Called(ctx, id)
	return to[*persistence.Quote](args.Get(0)), args.Error(1)
}

func (m *DB) InsertLead(ctx context.Context, l *persistence.Lead) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *DB) ListLeads(ctx context.Context, f persistence.LeadFilter) ([]*persistence.Lead, int, error) {
	args := m.Called(ctx, f)
	return to[[]*persistence.Lead](args.Get(0)), args.Int(1), args.Error(2)
}

func (m *DB) UpdateLead(ctx context.Context, id string, u *persistence.LeadUpdate, now time.Time) (*persistence.Lead, error) {
	args := m.Called(ctx, id, u, now)
	return to[*persistence.Lead](args.Get(0)), args.Error(1)
}

func (m *DB) InsertSubscriber(ctx context.Context, s *persistence.Subscriber) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *DB) ResubscribeSubscriber(ctx context.Context, s *persistence.Subscriber) (*persistence.Subscriber, error) {
	args := m.Called(ctx, s)
	return to[*persistence.Subscriber](args.Get(0)), args.Error(1)
}

func (m *DB) LoadSubscriberByEmail(ctx context.Context, email string) (*persistence.Subscriber, error) {
	args := m.Called(ctx, email)
	return to[*persistence.Subscriber](args.Get(0)), args.Error(1)
}

func (m *DB) ConfirmSubscriber(ctx context.Context, token string, now time.Time) (*persistence.Subscriber, error) {
	args := m.Called(ctx, token, now)
	return to[*persistence.Subscriber](args.Get(0)), args.Error(1)
}

func (m *DB) Unsubscribe(ctx context.Context, token string, now time.Time) (*persistence.Subscriber, error) {
	args := m.Called(ctx, token, now)
	return to[*persistence.Subscriber](args.Get(0)), args.Error(1)
}

func (m *DB) ListSubscribers(ctx context.Context, page, limit int) ([]*persistence.Subscriber, int, error) {
	args := m.Called(ctx, page, limit)
	return to[[]*persistence.Subscriber](args.Get(0)), args.Int(1), args.Error(2)
}

func (m *DB) SubscriberStats(ctx context.Context) (*persistence.SubscriberStats, error) {
	args := m.Called(ctx)
	return to[*persistence.SubscriberStats](args.Get(0)), args.Error(1)
}

func (m *DB) InsertUser(ctx context.Context, u *persistence.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *DB) LoadUserByEmail(ctx context.Context, email string) (*persistence.User, error) {
	args := m.Called(ctx, email)
	return to[*persistence.User](args.Get(0)), args.Error(1)
}

func (m *DB) LoadUser(ctx context.Context, id string) (*persistence.User, error) {
	args := m.Called(ctx, id)
	return to[*persistence.User](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *DB) ListUsers(ctx context.Context, page, limit int) ([]*persistence.User, int, error) {
	args := m.Called(ctx, page, limit)
	return to[[]*persistence.User](args.Get(0)), args.Int(1), args.Error(2)
}

func (m *DB) InsertProject(ctx context.Context, p *persistence.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *DB) ListProjects(ctx context.Context, userID string) ([]*persistence.Project, error) {
	args := m.Called(ctx, userID)
	return to[[]*persistence.Project](args.Get(0)), args.Error(1)
}

func (m *DB) InsertAudit(ctx context.Context, e *persistence.AuditEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *DB) ListAudit(ctx context.Context, f persistence.AuditFilter) ([]*persistence.AuditEvent, error) {
	args := m.Called(ctx, f)
	return to[[]*persistence.AuditEvent](args.Get(0)), args.Error(1)
}

// RefreshStore is refresh token store mock
type RefreshStore struct{ mock.Mock }

func (m *RefreshStore) Save(ctx context.Context, token, userID string) error {
	args := m.Called(ctx, token, userID)
	return args.Error(0)
}

func (m *RefreshStore) Take(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *RefreshStore) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func to[T interface{}](val interface{}) T {
	if val == nil {
		var res T
		return res
	}
	return val.(T)
}
