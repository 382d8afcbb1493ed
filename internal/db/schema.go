package db

// Schema is the PostgreSQL DDL for the tracker. Companies are global; jobs and
// users are owned rows. The unique index on lower(name) turns the resolver's
// check-then-insert race into a constraint violation the resolver recovers from.
const Schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS companies (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name       TEXT NOT NULL CHECK (btrim(name) <> ''),
    website    TEXT,
    industry   TEXT,
    location   TEXT,
    notes      TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS companies_name_lower_key ON companies (lower(name));

CREATE TABLE IF NOT EXISTS jobs (
    id                   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id              UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    company_id           UUID REFERENCES companies(id) ON DELETE SET NULL,
    title                TEXT NOT NULL CHECK (btrim(title) <> ''),
    url                  TEXT,
    status               TEXT NOT NULL DEFAULT 'SAVED'
                         CHECK (status IN ('SAVED', 'APPLIED', 'INTERVIEWING', 'OFFERED', 'REJECTED')),
    application_date     DATE,
    resume_id            UUID,
    notes                TEXT,
    job_type             TEXT,
    term                 TEXT,
    start_date           DATE,
    end_date             DATE,
    duration             TEXT,
    city                 TEXT,
    state                TEXT,
    country              TEXT,
    remote_status        TEXT,
    visa_sponsorship     BOOLEAN,
    technical_tags       TEXT[] NOT NULL DEFAULT '{}',
    role_tags            TEXT[] NOT NULL DEFAULT '{}',
    salary_min           DOUBLE PRECISION,
    salary_max           DOUBLE PRECISION,
    salary_currency      TEXT,
    posted_date          DATE,
    application_deadline DATE,
    markdown_content     TEXT,
    scraper_data         TEXT,
    confidence_score     DOUBLE PRECISION,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS jobs_user_updated_idx ON jobs (user_id, updated_at DESC);
CREATE INDEX IF NOT EXISTS jobs_company_idx ON jobs (company_id);
CREATE INDEX IF NOT EXISTS jobs_technical_tags_idx ON jobs USING GIN (technical_tags);

-- scraper_data is an archive of the payload as received; JSONB would reorder keys.
ALTER TABLE jobs ALTER COLUMN scraper_data TYPE TEXT USING scraper_data::text;
`
