// Package postgres implements the PostgreSQL persistence layer for TestMancer.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create users table
-- Version: 001

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(255) NOT NULL,
    display_name VARCHAR(100) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'user',
    category VARCHAR(20) NOT NULL DEFAULT '',

    -- Admin scope: which audiences a subadmin manages
    scope_universities TEXT[] NOT NULL DEFAULT '{}',
    scope_faculties TEXT[] NOT NULL DEFAULT '{}',
    scope_departments TEXT[] NOT NULL DEFAULT '{}',
    scope_levels TEXT[] NOT NULL DEFAULT '{}',

    -- Student profile: where the student studies
    profile_university VARCHAR(150) NOT NULL DEFAULT '',
    profile_faculty VARCHAR(150) NOT NULL DEFAULT '',
    profile_department VARCHAR(150) NOT NULL DEFAULT '',
    profile_level VARCHAR(20) NOT NULL DEFAULT '',

    gem_balance INTEGER NOT NULL DEFAULT 0,
    last_activity_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Constraints for data integrity
    CONSTRAINT valid_role CHECK (role IN ('user', 'admin', 'subadmin', 'category-admin')),
    CONSTRAINT valid_category CHECK (category IN ('', 'waec', 'jamb')),
    CONSTRAINT valid_gem_balance CHECK (gem_balance >= 0)
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
CREATE INDEX IF NOT EXISTS idx_users_gem_balance ON users(gem_balance DESC);
CREATE INDEX IF NOT EXISTS idx_users_last_activity ON users(last_activity_at DESC);

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_users_updated_at ON users;
CREATE TRIGGER update_users_updated_at
    BEFORE UPDATE ON users
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_users_updated_at ON users;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE CONTENT
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create content tables
-- Version: 002
-- Courses hold units and pages inline (JSONB); quizzes and resources are
-- separate rows because they carry their own audience snapshots.

CREATE TABLE IF NOT EXISTS courses (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    subject VARCHAR(100) NOT NULL,
    category VARCHAR(20) NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,

    -- Audience targeting (empty array = field not constrained)
    audience_universities TEXT[] NOT NULL DEFAULT '{}',
    audience_faculties TEXT[] NOT NULL DEFAULT '{}',
    audience_departments TEXT[] NOT NULL DEFAULT '{}',
    audience_levels TEXT[] NOT NULL DEFAULT '{}',

    -- Units with nested pages, ordered by position
    units JSONB NOT NULL DEFAULT '[]'::jsonb,

    created_by UUID NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_course_category CHECK (category IN ('', 'waec', 'jamb'))
);

CREATE INDEX IF NOT EXISTS idx_courses_subject ON courses(subject);
CREATE INDEX IF NOT EXISTS idx_courses_active ON courses(is_active) WHERE is_active;
CREATE INDEX IF NOT EXISTS idx_courses_created_by ON courses(created_by);

CREATE TABLE IF NOT EXISTS quizzes (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    unit_id UUID NOT NULL,
    page_id UUID,
    title VARCHAR(255) NOT NULL,
    kind VARCHAR(20) NOT NULL DEFAULT 'quiz',
    subject VARCHAR(100) NOT NULL,
    category VARCHAR(20) NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,

    audience_universities TEXT[] NOT NULL DEFAULT '{}',
    audience_faculties TEXT[] NOT NULL DEFAULT '{}',
    audience_departments TEXT[] NOT NULL DEFAULT '{}',
    audience_levels TEXT[] NOT NULL DEFAULT '{}',

    questions JSONB NOT NULL DEFAULT '[]'::jsonb,
    passing_score INTEGER NOT NULL DEFAULT 50,
    attempt_count INTEGER NOT NULL DEFAULT 0,
    average_score INTEGER NOT NULL DEFAULT 0,

    created_by UUID NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_quiz_kind CHECK (kind IN ('quiz', 'assessment')),
    CONSTRAINT valid_passing_score CHECK (passing_score >= 0 AND passing_score <= 100),
    CONSTRAINT valid_average_score CHECK (average_score >= 0 AND average_score <= 100)
);

CREATE INDEX IF NOT EXISTS idx_quizzes_course ON quizzes(course_id);
CREATE INDEX IF NOT EXISTS idx_quizzes_subject ON quizzes(subject);
CREATE INDEX IF NOT EXISTS idx_quizzes_active ON quizzes(is_active) WHERE is_active;

CREATE TABLE IF NOT EXISTS resource_folders (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title VARCHAR(255) NOT NULL,
    category VARCHAR(20) NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,

    audience_universities TEXT[] NOT NULL DEFAULT '{}',
    audience_faculties TEXT[] NOT NULL DEFAULT '{}',
    audience_departments TEXT[] NOT NULL DEFAULT '{}',
    audience_levels TEXT[] NOT NULL DEFAULT '{}',

    created_by UUID NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS resources (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    folder_id UUID NOT NULL REFERENCES resource_folders(id) ON DELETE CASCADE,
    title VARCHAR(255) NOT NULL,
    url TEXT NOT NULL,
    category VARCHAR(20) NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,

    -- Snapshot of the folder audience at creation time
    audience_universities TEXT[] NOT NULL DEFAULT '{}',
    audience_faculties TEXT[] NOT NULL DEFAULT '{}',
    audience_departments TEXT[] NOT NULL DEFAULT '{}',
    audience_levels TEXT[] NOT NULL DEFAULT '{}',

    created_by UUID NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_resources_folder ON resources(folder_id);
`

const migration002Down = `
DROP TABLE IF EXISTS resources;
DROP TABLE IF EXISTS resource_folders;
DROP TABLE IF EXISTS quizzes;
DROP TABLE IF EXISTS courses;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE LEDGER
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create gem ledger tables
-- Version: 003
-- The unique constraints are the exactly-once guarantee: a concurrent retry
-- that loses the insert race hits 23505 and is treated as already-awarded.

CREATE TABLE IF NOT EXISTS gem_awards (
    id BIGSERIAL PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    source_kind VARCHAR(30) NOT NULL,
    source_id UUID NOT NULL,
    item_id UUID NOT NULL,
    amount INTEGER NOT NULL,
    subject VARCHAR(100) NOT NULL DEFAULT '',
    awarded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(user_id, source_kind, source_id, item_id),
    CONSTRAINT valid_source_kind CHECK (source_kind IN ('quiz_question', 'unit_completion')),
    CONSTRAINT valid_amount CHECK (amount >= 0)
);

CREATE INDEX IF NOT EXISTS idx_gem_awards_user ON gem_awards(user_id);
CREATE INDEX IF NOT EXISTS idx_gem_awards_user_awarded ON gem_awards(user_id, awarded_at DESC);
CREATE INDEX IF NOT EXISTS idx_gem_awards_subject ON gem_awards(subject, awarded_at DESC);

-- Page completions are tracked but never award gems
CREATE TABLE IF NOT EXISTS page_completions (
    id BIGSERIAL PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    course_id UUID NOT NULL,
    page_id UUID NOT NULL,
    completed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(user_id, course_id, page_id)
);

CREATE INDEX IF NOT EXISTS idx_page_completions_user_course ON page_completions(user_id, course_id);

-- Raw activity log feeding streak computation
CREATE TABLE IF NOT EXISTS activity_log (
    id BIGSERIAL PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    kind VARCHAR(30) NOT NULL,
    occurred_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_activity_log_user_at ON activity_log(user_id, occurred_at DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS activity_log;
DROP TABLE IF EXISTS page_completions;
DROP TABLE IF EXISTS gem_awards;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE LEADERBOARD
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create leaderboard tables
-- Version: 004
-- Buckets are fully replaced on every score-affecting write.

CREATE TABLE IF NOT EXISTS leaderboard_entries (
    id BIGSERIAL PRIMARY KEY,
    subject VARCHAR(100) NOT NULL,
    timeframe VARCHAR(10) NOT NULL,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    display_name VARCHAR(100) NOT NULL,
    rank INTEGER NOT NULL,
    score INTEGER NOT NULL,
    last_activity_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(subject, timeframe, user_id),
    CONSTRAINT valid_timeframe CHECK (timeframe IN ('weekly', 'monthly', 'all')),
    CONSTRAINT valid_rank CHECK (rank >= 1),
    CONSTRAINT valid_score CHECK (score >= 0)
);

CREATE INDEX IF NOT EXISTS idx_leaderboard_bucket_rank ON leaderboard_entries(subject, timeframe, rank);
CREATE INDEX IF NOT EXISTS idx_leaderboard_user ON leaderboard_entries(user_id);

-- Bucket metadata: when each board was last rebuilt
CREATE TABLE IF NOT EXISTS leaderboard_buckets (
    subject VARCHAR(100) NOT NULL,
    timeframe VARCHAR(10) NOT NULL,
    rebuilt_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    total_users INTEGER NOT NULL DEFAULT 0,
    total_score BIGINT NOT NULL DEFAULT 0,

    PRIMARY KEY(subject, timeframe),
    CONSTRAINT valid_bucket_timeframe CHECK (timeframe IN ('weekly', 'monthly', 'all'))
);
`

const migration004Down = `
DROP TABLE IF EXISTS leaderboard_buckets;
DROP TABLE IF EXISTS leaderboard_entries;
`
