package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// steppedClock returns a clock that advances one second per call.
func steppedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}

func mustAddQuestion(t *testing.T, s *Store, topic, question, answer string) int64 {
	t.Helper()
	id, err := s.AddQuestion(AddQuestionParams{TopicName: topic, Question: question, Answer: answer})
	if err != nil {
		t.Fatalf("add question %q: %v", question, err)
	}
	return id
}

func TestNewDoesNotOpenDatabaseUntilFirstUse(t *testing.T) {
	s := newTestStore(t)

	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected no database file before first use, stat err=%v", err)
	}

	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("expected database file after first use: %v", err)
	}
	if filepath.Base(s.Path()) != DefaultDBName {
		t.Fatalf("expected db name %q, got %q", DefaultDBName, filepath.Base(s.Path()))
	}
}

func TestNewRequiresDataDir(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for empty data dir")
	}
}

func TestInitIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.Init(); err != nil {
			t.Fatalf("init #%d: %v", i+1, err)
		}
	}

	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != len(migrations) {
		t.Fatalf("expected schema version %d, got %d", len(migrations), version)
	}
}

func TestQuestionRoundTripByTopic(t *testing.T) {
	s := newTestStore(t)

	id := mustAddQuestion(t, s, "Science", "What is H2O?", "Water")

	qs, err := s.QuestionsByTopic("Science")
	if err != nil {
		t.Fatalf("questions by topic: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("expected 1 question, got %d", len(qs))
	}
	q := qs[0]
	if q.ID != id || q.TopicName != "Science" || q.Question != "What is H2O?" || q.Answer != "Water" {
		t.Fatalf("unexpected question: %+v", q)
	}
	if q.CreatedAt == nil {
		t.Fatalf("expected createdAt to be stamped")
	}
	if _, err := time.Parse(TimeLayout, *q.CreatedAt); err != nil {
		t.Fatalf("createdAt %q is not ISO 8601: %v", *q.CreatedAt, err)
	}
}

func TestDeleteQuestionRemovesExactlyThatRow(t *testing.T) {
	s := newTestStore(t)

	a := mustAddQuestion(t, s, "Math", "1+1?", "2")
	b := mustAddQuestion(t, s, "Math", "2+2?", "4")
	c := mustAddQuestion(t, s, "Art", "Mona Lisa?", "da Vinci")

	if err := s.DeleteQuestion(b); err != nil {
		t.Fatalf("delete: %v", err)
	}

	all, err := s.AllQuestions()
	if err != nil {
		t.Fatalf("all questions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 remaining questions, got %d", len(all))
	}
	for _, q := range all {
		if q.ID == b {
			t.Fatalf("deleted question #%d still present", b)
		}
		if q.ID != a && q.ID != c {
			t.Fatalf("unexpected question #%d", q.ID)
		}
	}

	if err := s.DeleteQuestion(b); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListQuestionsSortsByCreatedAt(t *testing.T) {
	s := newTestStore(t)
	s.now = steppedClock(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))

	first := mustAddQuestion(t, s, "History", "first", "a")
	second := mustAddQuestion(t, s, "History", "second", "b")
	third := mustAddQuestion(t, s, "History", "third", "c")

	newest, err := s.ListQuestions(ListOptions{Topic: "History"})
	if err != nil {
		t.Fatalf("list newest: %v", err)
	}
	if got := ids(newest); !equalIDs(got, []int64{third, second, first}) {
		t.Fatalf("unexpected newest-first order: %v", got)
	}

	oldest, err := s.ListQuestions(ListOptions{Topic: "History", Oldest: true})
	if err != nil {
		t.Fatalf("list oldest: %v", err)
	}
	if got := ids(oldest); !equalIDs(got, []int64{first, second, third}) {
		t.Fatalf("unexpected oldest-first order: %v", got)
	}

	limited, err := s.ListQuestions(ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit to cap results at 2, got %d", len(limited))
	}
}

func TestListQuestionsSearchIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	mustAddQuestion(t, s, "JavaScript", "What is a closure?", "A function with its scope")
	mustAddQuestion(t, s, "Science", "Speed of light?", "299792 km/s")
	mustAddQuestion(t, s, "Geography", "Capital of France?", "Paris")

	cases := []struct {
		query string
		topic string
		want  int
	}{
		{query: "CLOSURE", want: 1},
		{query: "km/s", want: 1},
		{query: "science", want: 1},
		{query: "?", want: 3},
		{query: "paris", topic: "Science", want: 0},
		{query: "   ", want: 3},
	}
	for _, tc := range cases {
		got, err := s.ListQuestions(ListOptions{Query: tc.query, Topic: tc.topic})
		if err != nil {
			t.Fatalf("list %q: %v", tc.query, err)
		}
		if len(got) != tc.want {
			t.Fatalf("query %q topic %q: expected %d results, got %d", tc.query, tc.topic, tc.want, len(got))
		}
	}
}

func TestUniqueTopicsDeriveFromQuestions(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.AddTopic("Unused Catalog Topic"); err != nil {
		t.Fatalf("add topic: %v", err)
	}
	mustAddQuestion(t, s, "Science", "q1", "a1")
	mustAddQuestion(t, s, "Art", "q2", "a2")
	mustAddQuestion(t, s, "Science", "q3", "a3")

	topics, err := s.UniqueTopics()
	if err != nil {
		t.Fatalf("unique topics: %v", err)
	}
	if strings.Join(topics, ",") != "Art,Science" {
		t.Fatalf("unexpected derived topics: %v", topics)
	}

	stats, err := s.TopicStats()
	if err != nil {
		t.Fatalf("topic stats: %v", err)
	}
	if len(stats) != 2 || stats[1].Name != "Science" || stats[1].Total != 2 {
		t.Fatalf("unexpected topic stats: %+v", stats)
	}
}

func TestAddTopicRejectsDuplicates(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.AddTopic("Physics"); err != nil {
		t.Fatalf("add topic: %v", err)
	}
	if _, err := s.AddTopic("Physics"); !errors.Is(err, ErrTopicExists) {
		t.Fatalf("expected ErrTopicExists, got %v", err)
	}

	topics, err := s.AllTopics()
	if err != nil {
		t.Fatalf("all topics: %v", err)
	}
	if len(topics) != 1 || topics[0].Name != "Physics" {
		t.Fatalf("unexpected catalog: %+v", topics)
	}
}

func TestTopicChoicesMergesDefaultsCatalogAndDerived(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.AddTopic("Physics"); err != nil {
		t.Fatalf("add topic: %v", err)
	}
	mustAddQuestion(t, s, "Rust", "q", "a")
	mustAddQuestion(t, s, "Science", "q", "a")

	choices, err := s.TopicChoices()
	if err != nil {
		t.Fatalf("topic choices: %v", err)
	}
	if len(choices) != len(DefaultTopics)+2 {
		t.Fatalf("expected defaults plus Physics and Rust, got %v", choices)
	}
	if choices[0] != DefaultTopics[0] {
		t.Fatalf("expected defaults first, got %q", choices[0])
	}
	if choices[len(choices)-2] != "Physics" || choices[len(choices)-1] != "Rust" {
		t.Fatalf("expected catalog then derived at the end, got %v", choices)
	}
}

func TestSaveUserTwiceKeepsSingleRow(t *testing.T) {
	s := newTestStore(t)
	s.now = steppedClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	first, err := s.SaveUser(SaveUserParams{Name: "Dipak", Age: 21, ClassName: "B.Tech", Email: "dipak@example.com"})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := s.SaveUser(SaveUserParams{Name: "Dipak S", Age: 22, ClassName: "M.Tech"})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	n, err := s.CountUsers()
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one user row after two saves, got %d", n)
	}

	if second.Name != "Dipak S" || second.Age != 22 || second.ClassName != "M.Tech" {
		t.Fatalf("expected second save values, got %+v", second)
	}
	if second.Email != nil {
		t.Fatalf("expected empty email to be stored as NULL, got %q", *second.Email)
	}
	if derefString(second.CreatedAt) != derefString(first.CreatedAt) {
		t.Fatalf("expected createdAt to survive updates: %q vs %q", derefString(first.CreatedAt), derefString(second.CreatedAt))
	}
	if derefString(second.UpdatedAt) == derefString(first.UpdatedAt) {
		t.Fatalf("expected updatedAt to move on the second save")
	}
}

func TestGetUserWithoutProfile(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetUser(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUserRemovesAllRows(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SaveUser(SaveUserParams{Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A legacy row written by an insert-only build.
	if _, err := s.exec(`INSERT INTO users (name, age, className) VALUES ('Legacy', 30, 'X')`); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	if err := s.DeleteUser(); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	n, err := s.CountUsers()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no user rows, got %d", n)
	}
}

func TestMigrationAddsCreatedAtToLegacyQuestionsTable(t *testing.T) {
	dir := t.TempDir()
	legacyPath := filepath.Join(dir, DefaultDBName)

	legacy, err := sql.Open("sqlite", legacyPath)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	if _, err := legacy.Exec(`
		CREATE TABLE questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic_name TEXT,
			question TEXT,
			answer TEXT
		);
		INSERT INTO questions (topic_name, question, answer) VALUES ('Old', 'legacy q', 'legacy a');
	`); err != nil {
		t.Fatalf("seed legacy db: %v", err)
	}
	legacy.Close()

	s, err := New(Config{DataDir: dir})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	id := mustAddQuestion(t, s, "Old", "new q", "new a")

	qs, err := s.QuestionsByTopic("Old")
	if err != nil {
		t.Fatalf("questions by topic: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected legacy and new rows, got %d", len(qs))
	}
	if qs[0].ID != id || qs[0].CreatedAt == nil {
		t.Fatalf("expected stamped new row first, got %+v", qs[0])
	}
	if qs[1].CreatedAt != nil {
		t.Fatalf("expected legacy row to keep NULL createdAt, got %q", *qs[1].CreatedAt)
	}

	added, err := s.AddCreatedAtColumn()
	if err != nil {
		t.Fatalf("add createdAt again: %v", err)
	}
	if added {
		t.Fatalf("expected second column check to be a no-op")
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)

	mustAddQuestion(t, s, "A", "q1", "a1")
	mustAddQuestion(t, s, "B", "q2", "a2")
	if _, err := s.AddTopic("Catalog"); err != nil {
		t.Fatalf("add topic: %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalQuestions != 2 || stats.TotalTopics != 2 || stats.CatalogTopics != 1 || stats.HasProfile {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestStore(t)

	if _, err := src.SaveUser(SaveUserParams{Name: "Dipak", Age: 21, ClassName: "B.Tech", Email: "d@example.com"}); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if _, err := src.AddTopic("Physics"); err != nil {
		t.Fatalf("add topic: %v", err)
	}
	mustAddQuestion(t, src, "Physics", "F=?", "ma")
	mustAddQuestion(t, src, "Physics", "E=?", "mc^2")

	data, err := src.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if data.User == nil || len(data.Topics) != 1 || len(data.Questions) != 2 {
		t.Fatalf("unexpected export: %+v", data)
	}

	dst := newTestStore(t)
	if _, err := dst.AddTopic("Physics"); err != nil {
		t.Fatalf("seed dst topic: %v", err)
	}

	result, err := dst.Import(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !result.ProfileImported || result.TopicsImported != 0 || result.QuestionsImported != 2 {
		t.Fatalf("unexpected import result: %+v", result)
	}

	user, err := dst.GetUser()
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Name != "Dipak" || derefString(user.CreatedAt) != derefString(data.User.CreatedAt) {
		t.Fatalf("unexpected restored user: %+v", user)
	}

	qs, err := dst.QuestionsByTopic("Physics")
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 restored questions, got %d", len(qs))
	}
}

func TestFormatStudySheet(t *testing.T) {
	created := "2025-02-03T04:05:06.000Z"
	out := FormatStudySheet([]Question{
		{ID: 1, TopicName: "Science", Question: "What is H2O?", Answer: "Water", CreatedAt: &created},
		{ID: 2, TopicName: "Science", Question: "Legacy?", Answer: "Yes"},
	}, "Science", time.Date(2025, 2, 4, 9, 30, 0, 0, time.UTC))

	for _, want := range []string{
		"Topic: Science\n\n",
		"Question 1:\nTopic: Science\nQuestion: What is H2O?\nAnswer: Water\nCreated: Feb 3, 2025\n",
		"Question 2:",
		"Created: unknown",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected study sheet to contain %q, got:\n%s", want, out)
		}
	}
}

func ids(qs []Question) []int64 {
	out := make([]int64, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWriteStudySheet(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC) }

	mustAddQuestion(t, s, "React Native", "What is JSX?", "Syntax sugar for createElement")
	mustAddQuestion(t, s, "Art", "Mona Lisa?", "da Vinci")

	path, err := s.WriteStudySheet("React Native", filepath.Join(s.DataDir(), "exports"))
	if err != nil {
		t.Fatalf("write study sheet: %v", err)
	}
	if filepath.Base(path) != "react-native-20250506-070809.txt" {
		t.Fatalf("unexpected file name: %s", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, "What is JSX?") || strings.Contains(out, "Mona Lisa?") {
		t.Fatalf("expected only the selected topic in the sheet, got:\n%s", out)
	}
}
