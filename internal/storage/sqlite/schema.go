package sqlite

const schema = `
-- Plans table: one row per case, the plan stored as JSON
CREATE TABLE IF NOT EXISTS plans (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- Config table: key/value settings, including the current plan id
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Plan events table: activity log of changes to a plan
CREATE TABLE IF NOT EXISTS plan_events (
    id TEXT PRIMARY KEY,
    plan_id TEXT NOT NULL,
    type TEXT NOT NULL,
    step_id TEXT NOT NULL DEFAULT '',
    timestamp TEXT NOT NULL,
    data TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_plan_events_plan ON plan_events(plan_id, timestamp);
`
