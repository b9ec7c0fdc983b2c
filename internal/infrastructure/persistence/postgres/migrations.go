package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// Schema for the learning hub. A progress record's identity is its full
// key; the optional node columns are folded into the unique index via
// COALESCE with the zero UUID so that one (student, course, level, node)
// combination can only ever have one row.
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_students", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_courses", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_enrollments", UpSQL: migration003Up, DownSQL: migration003Down},
		{Version: 4, Name: "create_progress_records", UpSQL: migration004Up, DownSQL: migration004Down},
		{Version: 5, Name: "create_payments_notifications", UpSQL: migration005Up, DownSQL: migration005Down},
		{Version: 6, Name: "create_quizzes", UpSQL: migration006Up, DownSQL: migration006Down},
	}
}

const migration001Up = `
CREATE TABLE students (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'student',
	total_points INTEGER NOT NULL DEFAULT 0,
	premium_access BOOLEAN NOT NULL DEFAULT FALSE,
	premium_plan TEXT NOT NULL DEFAULT '',
	premium_expires_at TIMESTAMP WITH TIME ZONE,
	enrolled_course_ids TEXT[] NOT NULL DEFAULT '{}',
	preferences JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX idx_students_email ON students (email);
CREATE INDEX idx_students_leaderboard ON students (total_points DESC, created_at ASC);
`

const migration001Down = `
DROP TABLE IF EXISTS students;
`

const migration002Up = `
CREATE TABLE courses (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	instructor_id UUID,
	category TEXT NOT NULL DEFAULT '',
	difficulty TEXT NOT NULL DEFAULT 'beginner',
	tags TEXT[] NOT NULL DEFAULT '{}',
	price NUMERIC(10,2) NOT NULL DEFAULT 0,
	enrolled_count INTEGER NOT NULL DEFAULT 0,
	rating DOUBLE PRECISION NOT NULL DEFAULT 0,
	is_published BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_courses_category ON courses (category) WHERE is_published;
CREATE INDEX idx_courses_popular ON courses (enrolled_count DESC) WHERE is_published;

CREATE TABLE units (
	id UUID PRIMARY KEY,
	course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	ord INTEGER NOT NULL DEFAULT 0,
	premium_only BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_units_course ON units (course_id, ord);

CREATE TABLE topics (
	id UUID PRIMARY KEY,
	unit_id UUID NOT NULL REFERENCES units(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	ord INTEGER NOT NULL DEFAULT 0,
	premium_only BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_topics_unit ON topics (unit_id, ord);

CREATE TABLE subtopics (
	id UUID PRIMARY KEY,
	topic_id UUID NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT 'text',
	content TEXT NOT NULL DEFAULT '',
	video_url TEXT NOT NULL DEFAULT '',
	duration INTEGER NOT NULL DEFAULT 0,
	quiz_id UUID,
	ord INTEGER NOT NULL DEFAULT 0,
	premium_only BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_subtopics_topic ON subtopics (topic_id, ord);
`

const migration002Down = `
DROP TABLE IF EXISTS subtopics;
DROP TABLE IF EXISTS topics;
DROP TABLE IF EXISTS units;
DROP TABLE IF EXISTS courses;
`

const migration003Up = `
CREATE TABLE enrollments (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	progress INTEGER NOT NULL DEFAULT 0,
	completed_lessons INTEGER[] NOT NULL DEFAULT '{}',
	quiz_results JSONB NOT NULL DEFAULT '[]',
	enrolled_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX idx_enrollments_student_course ON enrollments (student_id, course_id);
CREATE INDEX idx_enrollments_course ON enrollments (course_id);
`

const migration003Down = `
DROP TABLE IF EXISTS enrollments;
`

const migration004Up = `
CREATE TABLE progress_records (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	level TEXT NOT NULL,
	unit_id UUID,
	topic_id UUID,
	subtopic_id UUID,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	completed_at TIMESTAMP WITH TIME ZONE,
	points INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX idx_progress_records_key ON progress_records (
	student_id,
	course_id,
	level,
	COALESCE(unit_id, '00000000-0000-0000-0000-000000000000'::uuid),
	COALESCE(topic_id, '00000000-0000-0000-0000-000000000000'::uuid),
	COALESCE(subtopic_id, '00000000-0000-0000-0000-000000000000'::uuid)
);

CREATE INDEX idx_progress_records_student ON progress_records (student_id);
CREATE INDEX idx_progress_records_student_course ON progress_records (student_id, course_id);
`

const migration004Down = `
DROP TABLE IF EXISTS progress_records;
`

const migration005Up = `
CREATE TABLE payments (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	plan TEXT NOT NULL,
	amount NUMERIC(10,2) NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	method TEXT NOT NULL DEFAULT 'card',
	course_id TEXT NOT NULL DEFAULT '',
	unit_id TEXT NOT NULL DEFAULT '',
	topic_id TEXT NOT NULL DEFAULT '',
	transaction_id TEXT NOT NULL DEFAULT '',
	premium_expires_at TIMESTAMP WITH TIME ZONE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_payments_student ON payments (student_id, created_at DESC);

CREATE TABLE notifications (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT 'system',
	related_id TEXT NOT NULL DEFAULT '',
	read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_notifications_student ON notifications (student_id, created_at DESC);
CREATE INDEX idx_notifications_unread ON notifications (student_id) WHERE NOT read;
`

const migration005Down = `
DROP TABLE IF EXISTS notifications;
DROP TABLE IF EXISTS payments;
`

const migration006Up = `
CREATE TABLE quizzes (
	id UUID PRIMARY KEY,
	course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	questions JSONB NOT NULL DEFAULT '[]',
	ai_evaluation BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_quizzes_course ON quizzes (course_id);
`

const migration006Down = `
DROP TABLE IF EXISTS quizzes;
`
