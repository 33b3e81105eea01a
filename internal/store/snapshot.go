package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erdilatifi/User-Management-App/internal/record"
)

// SnapshotVersion is the only snapshot format this package reads or writes.
const SnapshotVersion = 1

// ErrSnapshotMismatch means the slot holds something that is not a version 1 snapshot.
var ErrSnapshotMismatch = errors.New("snapshot schema mismatch")

type snapshotEnvelope struct {
	State   *snapshotState `json:"state"`
	Version int            `json:"version"`
}

type snapshotState struct {
	Users []persistedUser `json:"users"`
}

// persistedUser keeps the field names the browser client used, so a slot
// exported from there loads unchanged.
type persistedUser struct {
	ID        *int64            `json:"id"`
	Name      *string           `json:"name"`
	Email     *string           `json:"email"`
	Company   *persistedCompany `json:"company,omitempty"`
	CreatedAt *int64            `json:"createdAt,omitempty"`
	IsLocal   bool              `json:"isLocal,omitempty"`
}

type persistedCompany struct {
	Name string `json:"name"`
}

// EncodeSnapshot serialises records into the versioned envelope.
func EncodeSnapshot(records []record.Record) ([]byte, error) {
	users := make([]persistedUser, len(records))
	for i, r := range records {
		r := r // per-iteration copy; the pointers below must not alias across iterations
		u := persistedUser{
			ID:      &r.ID,
			Name:    &r.Name,
			Email:   &r.Email,
			Company: &persistedCompany{Name: r.Organization},
			IsLocal: r.IsLocal(),
		}
		if r.CreatedAt != nil {
			ms := r.CreatedAt.UnixMilli()
			u.CreatedAt = &ms
		}
		users[i] = u
	}

	data, err := json.Marshal(snapshotEnvelope{
		State:   &snapshotState{Users: users},
		Version: SnapshotVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot. Every structural problem is reported as
// ErrSnapshotMismatch so callers can fall back to an empty store.
func DecodeSnapshot(data []byte) ([]record.Record, error) {
	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotMismatch, err)
	}
	if env.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrSnapshotMismatch, env.Version)
	}
	if env.State == nil || env.State.Users == nil {
		return nil, fmt.Errorf("%w: missing state.users", ErrSnapshotMismatch)
	}

	records := make([]record.Record, 0, len(env.State.Users))
	seen := make(map[int64]struct{}, len(env.State.Users))
	for i, u := range env.State.Users {
		r, err := u.toRecord()
		if err != nil {
			return nil, fmt.Errorf("%w: users[%d]: %v", ErrSnapshotMismatch, i, err)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrSnapshotMismatch, r.ID)
		}
		seen[r.ID] = struct{}{}
		records = append(records, r)
	}
	return records, nil
}

func (u persistedUser) toRecord() (record.Record, error) {
	if u.ID == nil || u.Name == nil || u.Email == nil {
		return record.Record{}, errors.New("id, name and email are required")
	}

	org := ""
	if u.Company != nil {
		org = u.Company.Name
	}

	if !u.IsLocal {
		return record.NewRemote(*u.ID, *u.Name, *u.Email, org), nil
	}
	if u.CreatedAt == nil {
		return record.Record{}, errors.New("local user without createdAt")
	}
	created := time.UnixMilli(*u.CreatedAt).UTC()
	return record.Record{
		ID:           *u.ID,
		Name:         *u.Name,
		Email:        *u.Email,
		Organization: record.OrPlaceholder(org),
		Origin:       record.Local,
		CreatedAt:    &created,
	}, nil
}
