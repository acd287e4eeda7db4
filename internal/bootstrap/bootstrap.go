// Package bootstrap resolves command line settings shared by the commands:
// the backing store, the serializer and the form definition.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formwizard/internal/players"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/storage"
)

// Store kinds accepted by OpenStore.
const (
	StoreMemory = "memory"
	StoreDir    = "dir"
	StoreSQLite = "sqlite"
)

// Encodings accepted by Serializer.
const (
	EncodingJSON    = "json"
	EncodingMsgPack = "msgpack"
)

// OpenStore opens the store named by kind. path is the directory for dir
// and the database file for sqlite; it defaults below ".formwizard". The
// returned closer releases the store.
func OpenStore(ctx context.Context, kind, path string) (storage.Store, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", StoreMemory:
		return storage.NewMemory(), nopCloser{}, nil
	case StoreDir:
		if path == "" {
			path = filepath.Join(".formwizard", "data")
		}
		dir, err := storage.NewDir(path)
		if err != nil {
			return nil, nil, err
		}
		return dir, nopCloser{}, nil
	case StoreSQLite:
		if path == "" {
			path = filepath.Join(".formwizard", "formwizard.db")
		}
		if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
			if _, err := storage.NewDir(dir); err != nil {
				return nil, nil, err
			}
		}
		db, err := storage.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewSQLite(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown store %q (want memory, dir or sqlite)", kind)
	}
}

// Serializer maps an encoding name to a storage serializer.
func Serializer(encoding string) (storage.Serializer, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingJSON:
		return storage.JSON{}, nil
	case EncodingMsgPack:
		return storage.MsgPack{}, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown encoding %q (want json or msgpack)", encoding)
	}
}

// LoadDefinition returns the built-in player registration form, or the
// document at source when set. Sources starting with http:// or https://
// are fetched.
func LoadDefinition(ctx context.Context, source string) (schema.Definition, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return players.LoadDefinition(ctx)
	}
	var (
		loader *schema.Loader
		src    schema.Source
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		loader = schema.New(schema.WithHTTPClient(http.DefaultClient))
		src = schema.SourceFromURL(source)
	} else {
		loader = schema.New()
		src = schema.SourceFromFile(source)
	}
	def, err := loader.Load(ctx, src)
	if err != nil {
		return schema.Definition{}, err
	}
	if len(def.Steps) == 0 && len(def.Fields) == 0 {
		return schema.Definition{}, errors.New("bootstrap: definition declares no fields")
	}
	return def, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
