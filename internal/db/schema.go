package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the full database schema. Every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS public.users (
    id            BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT users_email_key UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS public.item_requests (
    id           BIGSERIAL PRIMARY KEY,
    requester_id BIGINT NOT NULL,
    description  TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT item_requests_requester_id_fkey FOREIGN KEY (requester_id) REFERENCES public.users(id)
);

CREATE INDEX IF NOT EXISTS idx_item_requests_requester_id ON public.item_requests(requester_id);

CREATE TABLE IF NOT EXISTS public.items (
    id          BIGSERIAL PRIMARY KEY,
    owner_id    BIGINT NOT NULL,
    name        TEXT NOT NULL,
    description TEXT NOT NULL,
    available   BOOLEAN NOT NULL,
    request_id  BIGINT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT items_owner_id_fkey FOREIGN KEY (owner_id) REFERENCES public.users(id),
    CONSTRAINT items_request_id_fkey FOREIGN KEY (request_id) REFERENCES public.item_requests(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_items_owner_id ON public.items(owner_id);
CREATE INDEX IF NOT EXISTS idx_items_request_id ON public.items(request_id);

CREATE TABLE IF NOT EXISTS public.bookings (
    id         BIGSERIAL PRIMARY KEY,
    item_id    BIGINT NOT NULL,
    booker_id  BIGINT NOT NULL,
    start_time TIMESTAMPTZ NOT NULL,
    end_time   TIMESTAMPTZ NOT NULL,
    status     TEXT NOT NULL CHECK (status IN ('WAITING', 'APPROVED', 'REJECTED', 'CANCELED')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT bookings_time_range_check CHECK (end_time > start_time),
    CONSTRAINT bookings_item_id_fkey FOREIGN KEY (item_id) REFERENCES public.items(id),
    CONSTRAINT bookings_booker_id_fkey FOREIGN KEY (booker_id) REFERENCES public.users(id)
);

CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON public.bookings(booker_id);
CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON public.bookings(item_id);
CREATE INDEX IF NOT EXISTS idx_bookings_item_status ON public.bookings(item_id, status);

CREATE TABLE IF NOT EXISTS public.comments (
    id         BIGSERIAL PRIMARY KEY,
    item_id    BIGINT NOT NULL,
    author_id  BIGINT NOT NULL,
    text       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT comments_item_id_fkey FOREIGN KEY (item_id) REFERENCES public.items(id),
    CONSTRAINT comments_author_id_fkey FOREIGN KEY (author_id) REFERENCES public.users(id)
);

CREATE INDEX IF NOT EXISTS idx_comments_item_id ON public.comments(item_id);

CREATE TABLE IF NOT EXISTS public.item_photos (
    id             UUID PRIMARY KEY,
    item_id        BIGINT NOT NULL,
    uploader_id    BIGINT NOT NULL,
    filename       TEXT NOT NULL,
    content_type   TEXT NOT NULL,
    size           BIGINT NOT NULL,
    width          INT NOT NULL,
    height         INT NOT NULL,
    storage_path   TEXT NOT NULL,
    thumbnail_path TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT item_photos_item_id_fkey FOREIGN KEY (item_id) REFERENCES public.items(id),
    CONSTRAINT item_photos_uploader_id_fkey FOREIGN KEY (uploader_id) REFERENCES public.users(id)
);

CREATE INDEX IF NOT EXISTS idx_item_photos_item_id ON public.item_photos(item_id);
`

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
