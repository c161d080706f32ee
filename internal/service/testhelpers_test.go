package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"digital-goods-store/internal/client"
	"digital-goods-store/internal/crypto"
	"digital-goods-store/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.PremiumSecret{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderLog{},
		&model.User{},
		&model.CartItem{},
		&model.AnalyticsEvent{},
	))
	return db
}

func newTestCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	c, err := crypto.NewCipher(testKeyHex)
	require.NoError(t, err)
	return c
}

// fakeImageHost records calls; Upload fails when failUpload is set.
type fakeImageHost struct {
	uploads    int
	destroys   []string
	failUpload bool
}

func (f *fakeImageHost) Upload(_ context.Context, _ []byte, filename string) (*client.ImageUploadResult, error) {
	if f.failUpload {
		return nil, fmt.Errorf("image host unavailable")
	}
	f.uploads++
	return &client.ImageUploadResult{
		URL:      "https://img.test/" + filename,
		PublicID: "pub-" + filename,
	}, nil
}

func (f *fakeImageHost) Destroy(_ context.Context, publicID string) error {
	f.destroys = append(f.destroys, publicID)
	return nil
}

type fakeFileStore struct {
	uploads int
	deletes []string
}

func (f *fakeFileStore) Upload(_ context.Context, _ []byte, filename, _ string) (*client.FileUploadResult, error) {
	f.uploads++
	return &client.FileUploadResult{
		FileID:   "file-" + filename,
		FileName: filename,
		BucketID: "bucket-1",
	}, nil
}

func (f *fakeFileStore) Delete(_ context.Context, fileID, _ string) error {
	f.deletes = append(f.deletes, fileID)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []fakeMail
}

type fakeMail struct {
	To      string
	Subject string
	Body    string
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, fakeMail{To: to, Subject: subject, Body: body})
	return nil
}

// memOTPStore is the map-backed stand-in for the redis store.
type memOTPStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemOTPStore() *memOTPStore {
	return &memOTPStore{entries: map[string]string{}}
}

func (s *memOTPStore) Put(_ context.Context, kind, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[kind+":"+key] = value
	return nil
}

func (s *memOTPStore) Get(_ context.Context, kind, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.entries[kind+":"+key]
	return val, ok, nil
}

func (s *memOTPStore) Delete(_ context.Context, kind, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, kind+":"+key)
	return nil
}
