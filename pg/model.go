package pg

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Timestamps adds created/updated columns maintained on insert and update.
type Timestamps struct {
	CreatedAt time.Time `bun:",nullzero" json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time `bun:",nullzero" json:"updated_at" msgpack:"updated_at"`
}

var _ bun.BeforeAppendModelHook = (*Timestamps)(nil)

// BeforeAppendModel stamps the columns. An already set CreatedAt is kept so
// that callers may insert historical rows.
func (m *Timestamps) BeforeAppendModel(_ context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UpdatedAt = now
	case *bun.UpdateQuery:
		m.UpdatedAt = now
	}
	return nil
}
