package memstore

import (
	"context"
	"strings"

	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/store"
	"github.com/mahdiimanzadeh/storetrack/internal/user"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(ctx context.Context, u *user.User) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.s.run(ctx, func(d *data) error {
		email := strings.ToLower(u.Email)
		if _, taken := d.emails[email]; taken {
			return user.ErrEmailExists
		}
		genID, err := newID()
		if err != nil {
			return err
		}
		id = genID

		now := r.s.now()
		u.CreatedAt = now
		u.UpdatedAt = now
		stored := *u
		stored.ID = id
		stored.Email = email
		d.users[id] = stored
		d.emails[email] = id
		return nil
	})
	return id, err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var out *user.User
	err := r.s.run(ctx, func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return user.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var out *user.User
	err := r.s.run(ctx, func(d *data) error {
		id, ok := d.emails[strings.ToLower(email)]
		if !ok {
			return user.ErrNotFound
		}
		u := d.users[id]
		out = &u
		return nil
	})
	return out, err
}

type storeRepo struct {
	s *Store
}

func (r *storeRepo) Create(ctx context.Context, st *store.Store) error {
	return r.s.run(ctx, func(d *data) error {
		id, err := newID()
		if err != nil {
			return err
		}
		st.ID = id
		st.CreatedAt = r.s.now()
		st.UpdatedAt = st.CreatedAt
		d.stores[id] = record[store.Store]{seq: d.next(), val: *st}
		return nil
	})
}

func (r *storeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]store.Store, error) {
	var recs []record[store.Store]
	err := r.s.run(ctx, func(d *data) error {
		for _, rec := range d.stores {
			if rec.val.UserID == userID {
				recs = append(recs, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(recs, func(st store.Store) int64 { return st.CreatedAt.UnixNano() })
	out := make([]store.Store, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.val)
	}
	return out, nil
}
