package server

import (
	"fmt"
	"log"
	"os"

	"pulseboard/pkg/storage"
	"pulseboard/pkg/storage/badger"
	"pulseboard/pkg/storage/memory"
	"pulseboard/pkg/storage/sqlstore"
)

// OpenStore opens the backend selected by a DATABASE_URL-style connection
// string. See storage.ParseURL for the accepted forms.
func OpenStore(databaseURL string) (storage.Store, error) {
	backend, dsn, err := storage.ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	switch backend {
	case storage.BackendMemory:
		log.Println("💾 Using in-memory storage (data is lost on restart)")
		return memory.New(), nil

	case storage.BackendBadger:
		log.Printf("💾 Initializing Badger storage at %s...", dsn)
		if err := os.MkdirAll(dsn, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create badger directory: %w", err)
		}
		return badger.New(badger.Config{Path: dsn})

	default:
		log.Printf("💾 Initializing %s storage...", backend)
		return sqlstore.New(backend, dsn)
	}
}
