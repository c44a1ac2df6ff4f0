package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// NATSConfig configures a NATS KV settings store.
type NATSConfig struct {
	URL    string
	Bucket string
	// Key under which settings are stored, e.g. one per user.
	Key string
}

// KeyValue is the part of jetstream.KeyValue the store uses.
type KeyValue interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
}

// NATSStore keeps settings as JSON in a JetStream key-value bucket, so every
// workstation of a user shares the same preferences.
type NATSStore struct {
	kv  KeyValue
	key string
}

// NewNATSStore creates a store on an existing bucket.
func NewNATSStore(kv KeyValue, key string) (*NATSStore, error) {
	if kv == nil {
		return nil, ErrKeyValueRequired
	}

	if key == "" {
		key = constants.DefaultSettingsKey
	}

	return &NATSStore{kv: kv, key: key}, nil
}

// ConnectNATSStore dials config.URL, creates the bucket if needed and
// returns a store plus a function closing the connection.
func ConnectNATSStore(ctx context.Context, config *NATSConfig) (*NATSStore, func(), error) {
	url := config.URL
	if url == "" {
		url = nats.DefaultURL
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultSettingsBucket
	}

	conn, err := nats.Connect(url, nats.Name("bizctl settings"))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()

		return nil, nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "bizctl pagination settings",
		History:     1,
	})
	if err != nil {
		conn.Close()

		return nil, nil, fmt.Errorf("opening key-value bucket %s: %w", bucket, err)
	}

	store, err := NewNATSStore(kv, config.Key)
	if err != nil {
		conn.Close()

		return nil, nil, err
	}

	return store, conn.Close, nil
}

// Get reads the settings entry. A missing key reports
// bizapi.ErrSettingsNotFound.
func (s *NATSStore) Get(ctx context.Context) (bizapi.PaginationSettings, error) {
	entry, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return bizapi.PaginationSettings{}, bizapi.ErrSettingsNotFound
	}

	if err != nil {
		return bizapi.PaginationSettings{}, fmt.Errorf("getting %s: %w", s.key, err)
	}

	settings := bizapi.DefaultPaginationSettings()

	err = json.Unmarshal(entry.Value(), &settings)
	if err != nil {
		return bizapi.PaginationSettings{}, fmt.Errorf("%w: %s: %w", ErrCorruptSettingsData, s.key, err)
	}

	return settings, nil
}

// Save writes the settings entry.
func (s *NATSStore) Save(ctx context.Context, settings bizapi.PaginationSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	_, err = s.kv.Put(ctx, s.key, data)
	if err != nil {
		return fmt.Errorf("putting %s: %w", s.key, err)
	}

	return nil
}
