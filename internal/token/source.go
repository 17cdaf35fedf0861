package token

import (
	"context"
	"fmt"

	"github.com/janekbaraniewski/cursorbar/internal/config"
)

// PathResolver resolves the state.vscdb location, honouring a configured override.
type PathResolver interface {
	StateDBPath(ctx context.Context, override string) (string, error)
}

// Source chains path resolution, extraction and derivation.
type Source struct {
	Paths     PathResolver
	Extractor *Extractor
}

// Credential returns the current session credential or an error matching
// ErrNotSignedIn when there is none.
func (s Source) Credential(ctx context.Context, cfg config.Config) (Credential, error) {
	path, err := s.Paths.StateDBPath(ctx, cfg.DatabasePath)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrNotSignedIn, err)
	}

	raw, err := s.Extractor.Extract(ctx, path)
	if err != nil {
		return Credential{}, err
	}

	cred, err := Derive(raw)
	if err != nil {
		s.Extractor.Logger.Debug().Err(err).Msg("stored token rejected")
		return Credential{}, err
	}
	return cred, nil
}
